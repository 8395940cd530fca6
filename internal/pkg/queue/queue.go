// Package queue is an at-least-once job queue on Redis lists and sorted sets.
//
// Keys under "queue:<name>":
//
//	:id            INCR source for job ids
//	:wait          list of ready ids, consumed from the right
//	:active        list of reserved ids
//	:delayed       zset of ids scored by ready time in unix ms
//	:job:<id>      job JSON
//	:lock:<id>     lease, expires after Options.LeaseDuration
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrJobNotFound = errors.New("job not found")

type State string

const (
	StateWaiting   State = "waiting"
	StateActive    State = "active"
	StateDelayed   State = "delayed"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

const promoteBatch = 100

type Job struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Data         json.RawMessage `json:"data"`
	State        State           `json:"state"`
	AttemptsMade int             `json:"attemptsMade"`
	MaxAttempts  int             `json:"maxAttempts"`
	FailedReason string          `json:"failedReason,omitempty"`
	ReturnValue  json.RawMessage `json:"returnValue,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	ProcessedAt  *time.Time      `json:"processedAt,omitempty"`
	FinishedAt   *time.Time      `json:"finishedAt,omitempty"`
}

// Decode unmarshals the job payload into v.
func (j *Job) Decode(v any) error {
	return json.Unmarshal(j.Data, v)
}

type Options struct {
	Attempts      int
	BackoffDelay  time.Duration
	LeaseDuration time.Duration
}

type Queue struct {
	client redis.Cmdable
	name   string
	prefix string
	opts   Options
	now    func() time.Time
}

func New(client redis.Cmdable, name string, opts Options) *Queue {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.LeaseDuration <= 0 {
		opts.LeaseDuration = 30 * time.Second
	}
	return &Queue{
		client: client,
		name:   name,
		prefix: "queue:" + name,
		opts:   opts,
		now:    time.Now,
	}
}

func (q *Queue) Name() string { return q.name }

func (q *Queue) key(part string) string { return q.prefix + ":" + part }

func (q *Queue) jobKey(id string) string { return q.prefix + ":job:" + id }

func (q *Queue) lockPrefix() string { return q.prefix + ":lock:" }

// Backoff is the delay after the given failed attempt: base × 2^(attempt-1).
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << (attempt - 1)
}

// Add stores a new job and makes it ready for the next Reserve.
func (q *Queue) Add(ctx context.Context, name string, data any) (*Job, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal job data: %w", err)
	}
	seq, err := q.client.Incr(ctx, q.key("id")).Result()
	if err != nil {
		return nil, fmt.Errorf("allocate job id: %w", err)
	}

	job := &Job{
		ID:          strconv.FormatInt(seq, 10),
		Name:        name,
		Data:        payload,
		State:       StateWaiting,
		MaxAttempts: q.opts.Attempts,
		CreatedAt:   q.now().UTC(),
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}

	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, q.jobKey(job.ID), raw, 0)
		pipe.LPush(ctx, q.key("wait"), job.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	logger.CtxInfo(ctx, log_messages.JobEnqueued,
		zap.String("queue", q.name), zap.String("job_id", job.ID), zap.String("job_name", name))
	return job, nil
}

// GetJob loads a job by id.
func (q *Queue) GetJob(ctx context.Context, id string) (*Job, error) {
	job, err := q.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.State == StateDelayed {
		// promoted but not yet reserved
		if err := q.client.ZScore(ctx, q.key("delayed"), id).Err(); errors.Is(err, redis.Nil) {
			job.State = StateWaiting
		}
	}
	return job, nil
}

func (q *Queue) load(ctx context.Context, id string) (*Job, error) {
	raw, err := q.client.Get(ctx, q.jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return &job, nil
}

func (q *Queue) save(ctx context.Context, pipe redis.Pipeliner, job *Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	pipe.Set(ctx, q.jobKey(job.ID), raw, 0)
	return nil
}

// PromoteDelayed moves delayed jobs whose time has come onto the wait list.
func (q *Queue) PromoteDelayed(ctx context.Context) (int, error) {
	n, err := promoteScript.Run(ctx, q.client,
		[]string{q.key("delayed"), q.key("wait")},
		q.now().UnixMilli(), promoteBatch,
	).Int()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Reserve takes the next ready job and leases it to the caller. It returns
// nil, nil when nothing is ready.
func (q *Queue) Reserve(ctx context.Context) (*Job, error) {
	if _, err := q.PromoteDelayed(ctx); err != nil {
		logger.CtxError(ctx, log_messages.QueuePromotionFailed, err, zap.String("queue", q.name))
	}

	id, err := reserveScript.Run(ctx, q.client,
		[]string{q.key("wait"), q.key("active")},
		q.lockPrefix(), uuid.NewString(), q.opts.LeaseDuration.Milliseconds(),
	).Text()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reserve job: %w", err)
	}

	job, err := q.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := q.now().UTC()
	job.State = StateActive
	job.ProcessedAt = &now
	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return q.save(ctx, pipe, job)
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Complete marks the job done and releases its lease.
func (q *Queue) Complete(ctx context.Context, job *Job, result any) error {
	if result != nil {
		raw, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshal job result: %w", err)
		}
		job.ReturnValue = raw
	}
	now := q.now().UTC()
	job.AttemptsMade++
	job.State = StateCompleted
	job.FailedReason = ""
	job.FinishedAt = &now

	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.key("active"), 1, job.ID)
		pipe.Del(ctx, q.lockPrefix()+job.ID)
		return q.save(ctx, pipe, job)
	})
	return err
}

// Fail records a failed attempt. While attempts remain the job is delayed by
// Backoff and retried is true; otherwise it ends in StateFailed.
func (q *Queue) Fail(ctx context.Context, job *Job, cause error) (retried bool, delay time.Duration, err error) {
	job.AttemptsMade++
	job.FailedReason = cause.Error()
	now := q.now()

	retried = job.AttemptsMade < job.MaxAttempts
	if retried {
		delay = Backoff(q.opts.BackoffDelay, job.AttemptsMade)
		job.State = StateDelayed
	} else {
		finished := now.UTC()
		job.State = StateFailed
		job.FinishedAt = &finished
	}

	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.key("active"), 1, job.ID)
		pipe.Del(ctx, q.lockPrefix()+job.ID)
		if retried {
			pipe.ZAdd(ctx, q.key("delayed"), redis.Z{
				Score:  float64(now.Add(delay).UnixMilli()),
				Member: job.ID,
			})
		}
		return q.save(ctx, pipe, job)
	})
	if err != nil {
		return false, 0, err
	}
	return retried, delay, nil
}

// RecoverStalled returns active jobs whose lease expired to the front of the
// wait list. Their handler may already have run, so delivery is at-least-once.
func (q *Queue) RecoverStalled(ctx context.Context) ([]string, error) {
	ids, err := recoverScript.Run(ctx, q.client,
		[]string{q.key("active"), q.key("wait")},
		q.lockPrefix(),
	).StringSlice()
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		job, err := q.load(ctx, id)
		if err != nil {
			continue
		}
		job.State = StateWaiting
		if _, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return q.save(ctx, pipe, job)
		}); err != nil {
			return ids, err
		}
		logger.CtxWarn(ctx, log_messages.JobStalledRequeued, zap.String("queue", q.name), zap.String("job_id", id))
	}
	return ids, nil
}

// Counts reports list sizes per state.
func (q *Queue) Counts(ctx context.Context) (map[State]int64, error) {
	pipe := q.client.Pipeline()
	wait := pipe.LLen(ctx, q.key("wait"))
	active := pipe.LLen(ctx, q.key("active"))
	delayed := pipe.ZCard(ctx, q.key("delayed"))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return map[State]int64{
		StateWaiting: wait.Val(),
		StateActive:  active.Val(),
		StateDelayed: delayed.Val(),
	}, nil
}
