package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDo_SuccessFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient error")
		}
		return nil
	}, WithMaxRetries(3), WithInitialDelay(time.Millisecond))

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_AllAttemptsFail(t *testing.T) {
	calls := 0
	permanent := errors.New("permanent error")
	err := Do(context.Background(), func() error {
		calls++
		return permanent
	}, WithMaxRetries(2), WithInitialDelay(time.Millisecond))

	assert.Error(t, err)
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 3, calls) // 首次 + 2 次重试
}

func TestDo_RateLimitNoRetry(t *testing.T) {
	// 被限流的请求重试只会雪上加霜，应立即返回
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return WrapError(ErrCodeRateLimited, "触发限流", ErrRateLimited)
	}, WithMaxRetries(3), WithInitialDelay(time.Millisecond))

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, func() error {
		calls++
		return errors.New("transient error")
	}, WithMaxRetries(3), WithInitialDelay(10*time.Millisecond))

	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_NilFunction(t *testing.T) {
	err := Do(context.Background(), nil)
	assert.Error(t, err)
}

func TestCalculateDelay(t *testing.T) {
	tests := []struct {
		name     string
		attempt  int
		expected time.Duration
	}{
		{name: "第一次重试", attempt: 1, expected: 100 * time.Millisecond},
		{name: "第二次重试", attempt: 2, expected: 200 * time.Millisecond},
		{name: "第三次重试", attempt: 3, expected: 400 * time.Millisecond},
		{name: "超过上限被截断", attempt: 10, expected: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delay := calculateDelay(tt.attempt, 100*time.Millisecond, time.Second, 2.0)
			assert.Equal(t, tt.expected, delay)
		})
	}
}
