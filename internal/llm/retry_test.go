package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetryRecoversFromTransientFailures(t *testing.T) {
	calls := 0
	retries := 0

	err := WithRetry(context.Background(), "test", func(attempt int, err error) {
		retries++
	}, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return NewError(KindTransient, "test", errors.New("connection reset"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, retries)
}

func TestWithRetryAbortsOnPermanent(t *testing.T) {
	calls := 0

	err := WithRetry(context.Background(), "test", nil, func(ctx context.Context) error {
		calls++
		return NewError(KindPermanent, "test", errors.New("status code: 400"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, KindPermanent, KindOf(err))
}

func TestWithRetryAbortsOnCancelled(t *testing.T) {
	calls := 0

	err := WithRetry(context.Background(), "test", nil, func(ctx context.Context) error {
		calls++
		return NewError(KindCancelled, "test", context.Canceled)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, KindCancelled, KindOf(err))
}

func TestWithRetryEscalatesExhaustedTransient(t *testing.T) {
	calls := 0

	err := WithRetry(context.Background(), "test", nil, func(ctx context.Context) error {
		calls++
		return NewError(KindTransient, "test", errors.New("timeout"))
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, KindPermanent, KindOf(err), "exhausted transient budget must surface as permanent")
}

func TestWithRetryStopsWhenContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := WithRetry(ctx, "test", nil, func(ctx context.Context) error {
		calls++
		cancel()
		return NewError(KindTransient, "test", errors.New("flaky"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, KindCancelled, KindOf(err))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"classified transient", NewError(KindTransient, "op", errors.New("x")), KindTransient},
		{"classified permanent", NewError(KindPermanent, "op", errors.New("x")), KindPermanent},
		{"wrapped classified", fmt.Errorf("outer: %w", NewError(KindPermanent, "op", errors.New("x"))), KindPermanent},
		{"raw context canceled", context.Canceled, KindCancelled},
		{"raw deadline exceeded", context.DeadlineExceeded, KindTransient},
		{"plain error defaults transient", errors.New("something broke"), KindTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil stays nil", nil, 0},
		{"context canceled", context.Canceled, KindCancelled},
		{"deadline exceeded", context.DeadlineExceeded, KindTransient},
		{"4xx status is permanent", errors.New("API returned unexpected status code: 401 Unauthorized"), KindPermanent},
		{"429 is transient", errors.New("API returned unexpected status code: 429 Too Many Requests"), KindTransient},
		{"5xx status is transient", errors.New("API returned unexpected status code: 503"), KindTransient},
		{"unknown error is transient", errors.New("EOF"), KindTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("complete", tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}
			require.Error(t, got)
			assert.Equal(t, tt.want, KindOf(got))
		})
	}
}
