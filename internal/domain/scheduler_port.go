package domain

import (
	"context"
	"time"
)

const MaxPollAttempts = 15

type PollJob struct {
	OrderID string `json:"order_id"`
	Attempt int    `json:"attempt"`
}

// JobID dedupes pending polls: at most one scheduled poll per order.
func (j PollJob) JobID() string {
	return "poll:" + j.OrderID
}

// PollScheduler is the delayed-job queue for ticket polls. Enqueue with a job
// id that is already pending is a no-op; Requeue is the running chain's own
// continuation and bypasses the guard. Complete releases the guard once the
// chain terminates.
type PollScheduler interface {
	Enqueue(ctx context.Context, job PollJob, delay time.Duration) error
	Requeue(ctx context.Context, job PollJob, delay time.Duration) error
	Complete(ctx context.Context, job PollJob) error
}

// PollBackoff returns the requeue delay before the given attempt:
// min(60s, 5s * 1.6^(attempt-1)).
func PollBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := 5 * time.Second
	for i := 1; i < attempt; i++ {
		delay = delay * 16 / 10
		if delay >= 60*time.Second {
			return 60 * time.Second
		}
	}
	if delay > 60*time.Second {
		delay = 60 * time.Second
	}
	return delay
}
