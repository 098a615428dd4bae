package model

import "fmt"

const ExpressionCollection = "expressions"

type ExpressionDocument struct {
	ID         string `bson:"_id"`
	ProposalID uint64 `bson:"proposal_id"`
	Voter      string `bson:"voter"`
	Support    uint8  `bson:"support"`
	Weight     string `bson:"weight"`
	Height     uint64 `bson:"height"`
}

func NewExpressionDocument(proposalID uint64, voter string, support uint8, weight string, height uint64) *ExpressionDocument {
	return &ExpressionDocument{
		ID:         fmt.Sprintf("%d:%s", proposalID, voter),
		ProposalID: proposalID,
		Voter:      voter,
		Support:    support,
		Weight:     weight,
		Height:     height,
	}
}
