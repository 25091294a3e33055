package trendingqueue

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	schedKey    = "trending:reeval:sched"
	attemptsKey = "trending:reeval:attempts"
)

// luaPopDue atomically claims due members so no two workers process the
// same job. KEYS[1]=sorted set, ARGV[1]=now ms, ARGV[2]=batch size.
const luaPopDue = `
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[2])
if #due > 0 then
  redis.call('ZREM', KEYS[1], unpack(due))
end
return due
`

var popDue = redis.NewScript(luaPopDue)

// Handler processes one re-evaluation job. A returned error means the job
// is retried with backoff until the attempt budget runs out.
type Handler func(ctx context.Context, listingID string) error

// Options tune the batching delay and the retry policy.
type Options struct {
	Delay        time.Duration // batching window before a job becomes due
	MaxAttempts  int
	BackoffBase  time.Duration // doubled per failed attempt
	Workers      int
	PollInterval time.Duration
	BatchSize    int
}

// Queue is a delayed, retrying re-evaluation queue over a Redis sorted
// set. The member is the listing id itself, so a burst of enqueues inside
// the delay window collapses into a single due job (ZADD NX keeps the
// earliest schedule).
type Queue struct {
	rdc  *redis.Client
	opts Options
}

func New(rdc *redis.Client, opts Options) *Queue {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = time.Second
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 16
	}
	return &Queue{rdc: rdc, opts: opts}
}

// Enqueue schedules a re-evaluation after the batching delay. Calling it
// again for the same listing before the job runs is a no-op.
func (q *Queue) Enqueue(ctx context.Context, listingID string) error {
	runAt := time.Now().Add(q.opts.Delay).UnixMilli()
	return q.rdc.ZAddNX(ctx, schedKey, redis.Z{
		Score:  float64(runAt),
		Member: listingID,
	}).Err()
}

// Run starts the worker pool. Workers poll until ctx is cancelled.
func (q *Queue) Run(ctx context.Context, handle Handler) {
	for i := 0; i < q.opts.Workers; i++ {
		go q.worker(ctx, handle)
	}
}

func (q *Queue) worker(ctx context.Context, handle Handler) {
	tk := time.NewTicker(q.opts.PollInterval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			q.drainDue(ctx, handle)
		}
	}
}

func (q *Queue) drainDue(ctx context.Context, handle Handler) {
	for {
		ids, err := q.popBatch(ctx)
		if err != nil {
			zap.L().Warn("queue.pop", zap.Error(err))
			return
		}
		if len(ids) == 0 {
			return
		}
		for _, id := range ids {
			q.runOne(ctx, handle, id)
		}
	}
}

func (q *Queue) popBatch(ctx context.Context) ([]string, error) {
	now := time.Now().UnixMilli()
	res, err := popDue.Run(ctx, q.rdc, []string{schedKey}, now, q.opts.BatchSize).Result()
	if err != nil {
		return nil, err
	}
	raw, _ := res.([]interface{})
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

func (q *Queue) runOne(ctx context.Context, handle Handler, listingID string) {
	if err := handle(ctx, listingID); err != nil {
		q.retry(ctx, listingID, err)
		return
	}
	_ = q.rdc.HDel(ctx, attemptsKey, listingID).Err()
}

// retry reschedules with exponential backoff, or drops the job once the
// attempt budget is spent. Dropped jobs are non-fatal: the next sweep
// corrects whatever this job would have.
func (q *Queue) retry(ctx context.Context, listingID string, cause error) {
	attempts, err := q.rdc.HIncrBy(ctx, attemptsKey, listingID, 1).Result()
	if err != nil {
		zap.L().Error("queue.attempts", zap.String("listing_id", listingID), zap.Error(err))
		return
	}
	if attempts >= int64(q.opts.MaxAttempts) {
		_ = q.rdc.HDel(ctx, attemptsKey, listingID).Err()
		zap.L().Error("queue.dropped",
			zap.String("listing_id", listingID),
			zap.Int64("attempts", attempts),
			zap.Error(cause))
		return
	}

	backoff := q.opts.BackoffBase << (attempts - 1)
	runAt := time.Now().Add(backoff).UnixMilli()
	err = q.rdc.ZAdd(ctx, schedKey, redis.Z{
		Score:  float64(runAt),
		Member: listingID,
	}).Err()
	if err != nil {
		zap.L().Error("queue.requeue", zap.String("listing_id", listingID), zap.Error(err))
		return
	}
	zap.L().Warn("queue.retry",
		zap.String("listing_id", listingID),
		zap.Int64("attempt", attempts),
		zap.Duration("backoff", backoff),
		zap.Error(cause))
}
