package types

import "fmt"

// VoteSupport is the ballot category for a vote. The numeric values follow
// the governor convention: Against=0, For=1, Abstain=2.
type VoteSupport uint8

const (
	SupportAgainst VoteSupport = 0
	SupportFor     VoteSupport = 1
	SupportAbstain VoteSupport = 2
)

func (s VoteSupport) String() string {
	switch s {
	case SupportAgainst:
		return "AGAINST"
	case SupportFor:
		return "FOR"
	case SupportAbstain:
		return "ABSTAIN"
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(s))
}

func (s VoteSupport) Valid() bool {
	return s == SupportAgainst || s == SupportFor || s == SupportAbstain
}

// ParseVoteSupport maps the string form used in queue messages back to a
// VoteSupport value.
func ParseVoteSupport(s string) (VoteSupport, error) {
	switch s {
	case SupportAgainst.String():
		return SupportAgainst, nil
	case SupportFor.String():
		return SupportFor, nil
	case SupportAbstain.String():
		return SupportAbstain, nil
	}
	return 0, fmt.Errorf("vote support %q is not one of {%s, %s, %s}",
		s, SupportAgainst, SupportFor, SupportAbstain)
}
