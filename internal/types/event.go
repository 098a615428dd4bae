package types

type EventTypes string

func (e EventTypes) String() string {
	return string(e)
}

// Event types delivered on the pool event queue. Deposit and Withdraw mutate
// the raw-balance checkpoints, ExpressVote mutates the pool-internal tally,
// Delegate redirects pooled voting weight, and HeightAdvanced moves the
// ledger clock forward.
const (
	EventDeposit         EventTypes = "flexvote.pool.v1.EventDeposit"
	EventWithdraw        EventTypes = "flexvote.pool.v1.EventWithdraw"
	EventExpressVote     EventTypes = "flexvote.pool.v1.EventExpressVote"
	EventDelegate        EventTypes = "flexvote.pool.v1.EventDelegate"
	EventHeightAdvanced  EventTypes = "flexvote.pool.v1.EventHeightAdvanced"
	EventProposalCreated EventTypes = "flexvote.gov.v1.EventProposalCreated"
)
