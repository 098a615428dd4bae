package model

const LastProcessedHeightCollection = "last_processed_height"

type LastProcessedHeight struct {
	Height uint64 `bson:"height"`
}
