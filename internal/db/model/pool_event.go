package model

const PoolEventCollection = "pool_events"

// PoolEventDocument is one entry of the durable pool event log. The log is
// replayed in order on startup to rebuild in-memory ledger and pool state.
type PoolEventDocument struct {
	// ID is the emitter-assigned event id, unique per emission.
	ID         string `bson:"_id"`
	Type       string `bson:"type"`
	Height     uint64 `bson:"height"`
	Seq        uint64 `bson:"seq"`
	User       string `bson:"user,omitempty"`
	Delegatee  string `bson:"delegatee,omitempty"`
	ProposalID uint64 `bson:"proposal_id,omitempty"`
	Support    uint8  `bson:"support,omitempty"`
	// Amount is a decimal string to keep full uint128 precision in bson.
	Amount   string `bson:"amount,omitempty"`
	Snapshot uint64 `bson:"snapshot,omitempty"`
	Deadline uint64 `bson:"deadline,omitempty"`
}
