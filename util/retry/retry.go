package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

var (
	// DefaultRetry suits short chain/database calls: a handful of quick tries.
	DefaultRetry = Retry{MinWait: 200 * time.Millisecond, MaxWait: 2 * time.Second, MaxRetries: 3}

	ErrOutOfRetries = errors.New("tried too many times")
)

// Retry is an exponential backoff policy with full jitter.
type Retry struct {
	MinWait    time.Duration // Min amount of time to sleep per iteration
	MaxWait    time.Duration // Max amount of time to sleep per iteration
	MaxRetries int           // Number of times to retry
}

func (r Retry) sleep(ctx context.Context, i int) error {
	wait := r.MinWait << uint(i)
	if wait > r.MaxWait || wait <= 0 {
		wait = r.MaxWait
	}
	wait = time.Duration(rand.Int63n(int64(wait)) + 1)
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryFunc runs f until it succeeds, the retryable predicate rejects the
// error, or the policy is exhausted. The last error is wrapped so callers
// can still inspect the underlying cause.
func RetryFunc(ctx context.Context, f func(ctx context.Context) error, shouldRetry func(error) bool, r Retry) error {
	var err error
	for i := 0; i <= r.MaxRetries; i++ {
		err = f(ctx)
		if err == nil {
			return nil
		}

		if !shouldRetry(err) {
			return err
		}

		if i == r.MaxRetries {
			break
		}

		if serr := r.sleep(ctx, i); serr != nil {
			return serr
		}
	}
	return errors.Join(ErrOutOfRetries, err)
}
