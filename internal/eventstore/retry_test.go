package eventstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sharath018/event-calendar-backend/internal/collection"
)

func TestRetryPolicy_SucceedsAfterTransientFailures(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
	calls := 0

	attempts, err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("unavailable")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, attempts)
}

func TestRetryPolicy_StopsOnPermanentError(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, InitialInterval: time.Millisecond}

	attempts, err := p.Do(context.Background(), func(context.Context) error {
		return collection.ErrNotFound
	})

	assert.ErrorIs(t, err, collection.ErrNotFound)
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicy_ZeroAttemptsMeansOne(t *testing.T) {
	p := RetryPolicy{InitialInterval: time.Millisecond}

	attempts, err := p.Do(context.Background(), func(context.Context) error {
		return errors.New("unavailable")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}
