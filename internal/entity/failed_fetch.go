package entity

import "time"

// FailedFetch mirrors the `failed_fetches` PostgreSQL table schema.
type FailedFetch struct {
	ID                   int64
	RollNo               string // hashed
	Term                 Term
	FailureReason        string
	ErrorType            string
	LastAttemptTimestamp time.Time
	AttemptCount         int
}
