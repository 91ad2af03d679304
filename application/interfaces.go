package application

import (
	"context"
	"time"
)

// ContestLocker serializes mutating operations on one contest.
// Operations on different contests never contend.
type ContestLocker interface {
	// Lock blocks until the contest's critical section is acquired or ctx ends.
	// The returned function releases it and is safe to call once.
	Lock(ctx context.Context, contestID int64) (func(), error)
}

// MetricsRecorder receives operational measurements from the engine
type MetricsRecorder interface {
	// RecordOperation records one engine operation and how it ended
	RecordOperation(ctx context.Context, operation string, errorKind string, duration time.Duration)

	// RecordWager records funds entering a contest
	RecordWager(ctx context.Context, side string, amount int64)

	// RecordSettlement records a settled contest
	RecordSettlement(ctx context.Context, totalPool, fee int64)

	// RecordClaim records a paid claim
	RecordClaim(ctx context.Context, payout int64)
}
