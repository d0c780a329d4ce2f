package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/skylane/skylane-fulfillment-service/internal/domain"
)

const (
	pendingKeyPrefix = "fulfillment:poll:pending:"
	payloadKeyPrefix = "fulfillment:poll:job:"
	dueSetKey        = "fulfillment:poll:due"

	// pendingTTL bounds guard leakage if a worker dies mid-chain; well past
	// the poller's ~15 minute attempt window.
	pendingTTL = 2 * time.Hour
)

// PollJobScheduler keeps poll jobs in a redis ZSET ordered by due time with a
// per-order SETNX guard, so at most one poll chain is pending per order.
type PollJobScheduler struct {
	client *redis.Client
}

func NewPollJobScheduler(client *redis.Client) *PollJobScheduler {
	return &PollJobScheduler{client: client}
}

func (s *PollJobScheduler) Enqueue(ctx context.Context, job domain.PollJob, delay time.Duration) error {
	set, err := s.client.SetNX(ctx, pendingKeyPrefix+job.JobID(), 1, pendingTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to set poll guard: %w", err)
	}
	if !set {
		// A poll is already pending for this order.
		return nil
	}
	return s.schedule(ctx, job, delay)
}

func (s *PollJobScheduler) Requeue(ctx context.Context, job domain.PollJob, delay time.Duration) error {
	if err := s.client.Set(ctx, pendingKeyPrefix+job.JobID(), 1, pendingTTL).Err(); err != nil {
		return fmt.Errorf("failed to refresh poll guard: %w", err)
	}
	return s.schedule(ctx, job, delay)
}

func (s *PollJobScheduler) Complete(ctx context.Context, job domain.PollJob) error {
	if err := s.client.Del(ctx, pendingKeyPrefix+job.JobID(), payloadKeyPrefix+job.JobID()).Err(); err != nil {
		return fmt.Errorf("failed to release poll guard: %w", err)
	}
	return nil
}

func (s *PollJobScheduler) schedule(ctx context.Context, job domain.PollJob, delay time.Duration) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, payloadKeyPrefix+job.JobID(), payload, pendingTTL).Err(); err != nil {
		return fmt.Errorf("failed to store poll payload: %w", err)
	}

	due := time.Now().Add(delay)
	err = s.client.ZAdd(ctx, dueSetKey, &redis.Z{
		Score:  float64(due.UnixMilli()),
		Member: job.JobID(),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to schedule poll job: %w", err)
	}
	return nil
}

// PopDue atomically claims the jobs whose due time has passed. Claimed jobs
// stay guarded until Complete or Requeue.
func (s *PollJobScheduler) PopDue(ctx context.Context, now time.Time) ([]domain.PollJob, error) {
	ids, err := s.client.ZRangeByScore(ctx, dueSetKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", now.UnixMilli()),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read due poll jobs: %w", err)
	}

	var jobs []domain.PollJob
	for _, id := range ids {
		removed, err := s.client.ZRem(ctx, dueSetKey, id).Result()
		if err != nil {
			return nil, err
		}
		if removed == 0 {
			// Another worker claimed it first.
			continue
		}

		payload, err := s.client.Get(ctx, payloadKeyPrefix+id).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}

		var job domain.PollJob
		if err := json.Unmarshal(payload, &job); err != nil {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
