package models

// Counter is the single persistent sequence document backing order numbers.
// It is only ever mutated through an atomic $inc, never read-modify-write.
type Counter struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}
