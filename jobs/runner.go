package jobs

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/robfig/cron/v3"

	"github.com/goliatone/go-leads/adapters/gologger"
	"github.com/goliatone/go-leads/core"
)

const (
	JobIDFallbackDigest = "leads.fallback.digest"

	runnerLoggerName = "leads:jobs"

	defaultDigestSchedule = "0 * * * *"
)

// Runner schedules fallback digest executions. The cron trigger only
// enqueues an execution message; a single consumer goroutine drains the
// queue and runs the digest, so overlapping runs cannot happen.
type Runner struct {
	digest   *FallbackDigest
	queue    *MemoryQueue
	cron     *cron.Cron
	logger   core.Logger
	schedule string
	retry    RetryPolicy
	now      func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

type RunnerOption func(*Runner)

func WithRunnerLogger(logger core.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithRunnerQueue(queue *MemoryQueue) RunnerOption {
	return func(r *Runner) {
		if queue != nil {
			r.queue = queue
		}
	}
}

func WithRunnerRetryPolicy(policy RetryPolicy) RunnerOption {
	return func(r *Runner) {
		r.retry = policy
	}
}

func WithRunnerClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRunner(digest *FallbackDigest, schedule string, options ...RunnerOption) (*Runner, error) {
	if digest == nil {
		return nil, fmt.Errorf("jobs: fallback digest is required")
	}
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		schedule = defaultDigestSchedule
	}
	runner := &Runner{
		digest:   digest,
		queue:    NewMemoryQueue(0),
		cron:     cron.New(),
		schedule: schedule,
		retry:    DefaultRetryPolicy(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		if option != nil {
			option(runner)
		}
	}
	_, runner.logger = gologger.Resolve(runnerLoggerName, nil, runner.logger)
	return runner, nil
}

// FromConfig builds a runner when the fallback digest is enabled. A disabled
// config returns a nil runner and no error.
func FromConfig(cfg core.JobsConfig, events core.LeadEventLog, options ...RunnerOption) (*Runner, error) {
	if !cfg.FallbackDigestEnabled {
		return nil, nil
	}
	digest, err := NewFallbackDigest(events)
	if err != nil {
		return nil, err
	}
	return NewRunner(digest, cfg.FallbackDigestSchedule, options...)
}

func (r *Runner) Start(ctx context.Context) error {
	if r == nil || r.digest == nil {
		return fmt.Errorf("jobs: runner is not configured")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return fmt.Errorf("jobs: runner already started")
	}

	if _, err := r.cron.AddFunc(r.schedule, func() {
		if err := r.TriggerNow(context.Background()); err != nil {
			r.logger.Error("enqueue fallback digest run", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("jobs: invalid digest schedule %q: %w", r.schedule, err)
	}

	consumerCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.wg.Add(1)
	go r.consume(consumerCtx)

	r.cron.Start()
	r.started = true
	r.logger.Info("fallback digest runner started", "schedule", r.schedule)
	return nil
}

func (r *Runner) Stop() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return
	}
	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	r.started = false
	r.logger.Info("fallback digest runner stopped")
}

// TriggerNow enqueues one digest execution outside the schedule.
func (r *Runner) TriggerNow(ctx context.Context) error {
	if r == nil || r.queue == nil {
		return fmt.Errorf("jobs: runner is not configured")
	}
	return r.queue.Enqueue(ctx, &job.ExecutionMessage{
		JobID:          JobIDFallbackDigest,
		IdempotencyKey: r.now().Format(time.RFC3339),
	})
}

func (r *Runner) consume(ctx context.Context) {
	defer r.wg.Done()
	for {
		delivery, err := r.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.logger.Error("dequeue fallback digest run", "error", err)
			return
		}
		r.processDelivery(ctx, delivery)
	}
}

func (r *Runner) processDelivery(ctx context.Context, delivery queue.Delivery) {
	msg := delivery.Message()
	if msg == nil || msg.JobID != JobIDFallbackDigest {
		_ = delivery.Ack(ctx)
		return
	}
	if _, err := r.digest.Run(ctx); err != nil {
		attempt := deliveryAttempt(msg)
		opts := r.retry.NormalizeAttempt(queue.NackOptions{Requeue: true, Reason: err.Error()}, attempt)
		if opts.Requeue {
			recordDeliveryAttempt(msg, attempt+1)
		} else {
			r.logger.Error("dropping fallback digest run after retries",
				"job_id", msg.JobID, "attempts", attempt+1, "error", err)
		}
		_ = delivery.Nack(ctx, opts)
		return
	}
	_ = delivery.Ack(ctx)
}

func deliveryAttempt(msg *job.ExecutionMessage) int {
	if msg == nil || msg.Parameters == nil {
		return 0
	}
	attempt, _ := msg.Parameters["attempt"].(int)
	return attempt
}

func recordDeliveryAttempt(msg *job.ExecutionMessage, attempt int) {
	if msg == nil {
		return
	}
	if msg.Parameters == nil {
		msg.Parameters = map[string]any{}
	}
	msg.Parameters["attempt"] = attempt
}
