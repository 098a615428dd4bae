package checkpoints

import "sort"

// Store holds one checkpoint sequence per key with creation-on-first-use
// semantics. Keys are opaque; the pool uses depositor addresses plus a
// reserved key for its own total.
type Store struct {
	seqs map[string]*Sequence
}

func NewStore() *Store {
	return &Store{seqs: make(map[string]*Sequence)}
}

// Sequence returns the sequence for key, creating an empty one on first use.
func (st *Store) Sequence(key string) *Sequence {
	seq, ok := st.seqs[key]
	if !ok {
		seq = NewSequence()
		st.seqs[key] = seq
	}
	return seq
}

// Has reports whether key has ever been checkpointed.
func (st *Store) Has(key string) bool {
	seq, ok := st.seqs[key]
	return ok && seq.Len() > 0
}

// Keys returns all checkpointed keys in stable order.
func (st *Store) Keys() []string {
	keys := make([]string, 0, len(st.seqs))
	for k := range st.seqs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
