package jobs

import (
	"strings"
	"time"

	"github.com/goliatone/go-job/queue"
)

// RetryPolicy bounds how often a failed digest delivery is redelivered. A
// zero policy allows unbounded requeues, which is only safe for queues with
// external dead-lettering.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// DefaultRetryPolicy keeps a failed digest from looping forever on a broken
// event store: three attempts, then drop.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		MaxDelay:    time.Minute,
	}
}

// NormalizeAttempt clamps nack options to the policy for the given attempt
// number. Attempts are zero-based: attempt 0 is the first delivery.
func (p RetryPolicy) NormalizeAttempt(opts queue.NackOptions, attempt int) queue.NackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.DeadLetter {
		out.Requeue = false
	}
	if p.MaxAttempts > 0 && attempt+1 >= p.MaxAttempts {
		out.Requeue = false
		if p.DeadLetterOnMax {
			out.DeadLetter = true
		}
	}
	return out
}
