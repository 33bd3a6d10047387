package search

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/bornholm/skimmer/pkg/captcha"
	"github.com/pkg/errors"
)

type Retry struct {
	client     Client
	baseDelay  time.Duration
	maxRetries int
}

// Search implements Client. Failed searches are retried with exponential
// backoff and jitter. Captcha detections are not retried: hammering a
// challenge page only makes the blocking worse.
func (r *Retry) Search(ctx context.Context, search string) ([]Result, error) {
	backoff := r.baseDelay
	retries := 0
	for {
		results, err := r.client.Search(ctx, search)
		if err != nil {
			if errors.Is(err, captcha.ErrDetected) || retries >= r.maxRetries {
				return nil, errors.WithStack(err)
			}

			slog.WarnContext(ctx, "search failed, will retry", slog.Duration("backoff", backoff), slog.Int("retries", retries), slog.Any("error", errors.WithStack(err)))

			delay := backoff + time.Duration(rand.Float64()*float64(r.baseDelay))

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, errors.WithStack(ctx.Err())
			}

			backoff *= 2
			retries++
			continue
		}

		return results, nil
	}
}

var _ Client = &Retry{}

func WithRetry(client Client, maxRetries int, baseDelay time.Duration) *Retry {
	return &Retry{client: client, maxRetries: maxRetries, baseDelay: baseDelay}
}
