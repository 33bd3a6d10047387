package search

import (
	"context"
	"testing"
	"time"

	"github.com/bornholm/skimmer/pkg/captcha"
	"github.com/pkg/errors"
)

type flakyClient struct {
	failures int
	calls    int
	err      error
}

func (c *flakyClient) Search(ctx context.Context, search string) ([]Result, error) {
	c.calls++

	if c.calls <= c.failures {
		err := c.err
		if err == nil {
			err = errors.New("transient failure")
		}

		return nil, err
	}

	return []Result{{Title: "ok", URL: "https://example.com"}}, nil
}

func TestRetryEventuallySucceeds(t *testing.T) {
	client := &flakyClient{failures: 2}

	results, err := WithRetry(client, 3, time.Millisecond).Search(context.Background(), "query")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	if client.calls != 3 {
		t.Errorf("expected 3 calls, got %d", client.calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	client := &flakyClient{failures: 10}

	_, err := WithRetry(client, 2, time.Millisecond).Search(context.Background(), "query")
	if err == nil {
		t.Fatal("expected an error")
	}

	if client.calls != 3 {
		t.Errorf("expected 3 calls, got %d", client.calls)
	}
}

func TestRetryDoesNotRetryCaptcha(t *testing.T) {
	client := &flakyClient{failures: 10, err: errors.WithStack(captcha.ErrDetected)}

	_, err := WithRetry(client, 3, time.Millisecond).Search(context.Background(), "query")
	if !errors.Is(err, captcha.ErrDetected) {
		t.Fatalf("expected captcha error, got %+v", err)
	}

	if client.calls != 1 {
		t.Errorf("expected 1 call, got %d", client.calls)
	}
}
