package types

// Enum values for Proposal State
type ProposalState string

const (
	StatePending   ProposalState = "PENDING"
	StateActive    ProposalState = "ACTIVE"
	StateDefeated  ProposalState = "DEFEATED"
	StateSucceeded ProposalState = "SUCCEEDED"
	StateExpired   ProposalState = "EXPIRED"
	StateExecuted  ProposalState = "EXECUTED"
)

func (s ProposalState) String() string {
	return string(s)
}

// AcceptsVotes reports whether the governance ledger accepts casts for a
// proposal in this state. Only Active proposals are inside the voting window.
func (s ProposalState) AcceptsVotes() bool {
	return s == StateActive
}
