package model

const CastProgressCollection = "cast_progress"

// CastProgressDocument tracks how much expressed weight has already been
// forwarded to the governor for one proposal, split per support bucket.
type CastProgressDocument struct {
	ProposalID   uint64 `bson:"_id"`
	AgainstVotes string `bson:"against_votes"`
	ForVotes     string `bson:"for_votes"`
	AbstainVotes string `bson:"abstain_votes"`
}
