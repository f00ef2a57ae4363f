package ratelimit

import (
	"context"
	"testing"
	"time"
)

// ============================================================
// Тесты RateLimiter
// ============================================================

func TestNewRateLimiterDefaults(t *testing.T) {
	tests := []struct {
		name      string
		rate      float64
		burst     float64
		wantRate  float64
		wantBurst float64
	}{
		{"explicit values", 5, 10, 5, 10},
		{"zero rate falls back", 0, 0, 10, 20},
		{"negative rate falls back", -1, 0, 10, 20},
		{"zero burst derives from rate", 5, 0, 5, 10},
		{"burst below rate raised to rate", 10, 3, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRateLimiter(tt.rate, tt.burst)
			if rl.Rate() != tt.wantRate {
				t.Errorf("Rate() = %v, want %v", rl.Rate(), tt.wantRate)
			}
			if rl.Burst() != tt.wantBurst {
				t.Errorf("Burst() = %v, want %v", rl.Burst(), tt.wantBurst)
			}
		})
	}
}

func TestRateLimiterAllowDrainsBurst(t *testing.T) {
	rl := NewRateLimiter(1, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow() {
			t.Fatalf("request %d within burst must be allowed", i+1)
		}
	}

	// Ведро пустое, пополнение при rate=1 занимает секунду
	if rl.Allow() {
		t.Error("request beyond burst must be rejected")
	}
}

func TestRateLimiterWaitImmediate(t *testing.T) {
	rl := NewRateLimiter(10, 10)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := rl.Wait(ctx); err != nil {
		t.Errorf("wait with available tokens must not block: %v", err)
	}
}

func TestRateLimiterWaitRefills(t *testing.T) {
	// Высокий rate, чтобы ожидание было коротким
	rl := NewRateLimiter(100, 1)

	if !rl.Allow() {
		t.Fatal("first request must pass")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	started := time.Now()
	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("wait must succeed after refill: %v", err)
	}
	if time.Since(started) > 500*time.Millisecond {
		t.Error("refill took unexpectedly long")
	}
}

func TestRateLimiterWaitCancelled(t *testing.T) {
	// Медленный limiter с пустым ведром
	rl := NewRateLimiter(0.001, 1)
	if !rl.Allow() {
		t.Fatal("first request must pass")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)
	if err != context.DeadlineExceeded {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestRateLimiterTokens(t *testing.T) {
	rl := NewRateLimiter(10, 5)

	if got := rl.Tokens(); got != 5 {
		t.Errorf("fresh limiter must have full bucket, got %v", got)
	}

	rl.Allow()

	if got := rl.Tokens(); got >= 5 {
		t.Errorf("tokens must decrease after Allow, got %v", got)
	}
}
