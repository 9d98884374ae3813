// ABOUTME: Tests for retry policy and backoff calculation
// ABOUTME: Verifies retryability classification, attempt bounds, and cancellation
package util

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"docqa/internal/models"
)

func TestCalculateBackoff_Zero(t *testing.T) {
	if got := CalculateBackoff(time.Second, 0); got != 0 {
		t.Errorf("CalculateBackoff(1s, 0) = %v, want 0", got)
	}
	if got := CalculateBackoff(time.Second, -1); got != 0 {
		t.Errorf("CalculateBackoff(1s, -1) = %v, want 0", got)
	}
}

func TestCalculateBackoff_GrowsAndCaps(t *testing.T) {
	base := 100 * time.Millisecond

	// With +/-25% jitter, attempt 1 is 200ms +/- 50ms
	got := CalculateBackoff(base, 1)
	if got < 150*time.Millisecond || got > 250*time.Millisecond {
		t.Errorf("attempt 1 backoff = %v, want within [150ms, 250ms]", got)
	}

	// Large attempts cap at 30s (+25% jitter headroom)
	got = CalculateBackoff(base, 25)
	if got > 38*time.Second {
		t.Errorf("attempt 25 backoff = %v, want capped near 30s", got)
	}
}

func TestRetryPolicy_SucceedsAfterTransientFailure(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("flaky: %w", models.ErrUpstream)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryPolicy_ExhaustsAttempts(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return fmt.Errorf("still down: %w", models.ErrUpstream)
	})
	if !errors.Is(err, models.ErrUpstream) {
		t.Fatalf("Do() error = %v, want upstream error", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryPolicy_DoesNotRetryValidation(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return fmt.Errorf("bad input: %w", models.ErrValidation)
	})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("Do() error = %v, want validation error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryPolicy_HonorsCancellation(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 10, BaseDelay: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- policy.Do(ctx, func(ctx context.Context) error {
			calls++
			return fmt.Errorf("down: %w", models.ErrUpstream)
		})
	}()

	// Cancel while the policy is sleeping before attempt 2
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Do() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Do() did not return after cancellation")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
