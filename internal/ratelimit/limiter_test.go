package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T) *Limiter {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	clean := func() {
		iter := client.Scan(ctx, 0, "rl:test:*", 100).Iterator()
		for iter.Next(ctx) {
			client.Del(ctx, iter.Val())
		}
	}
	clean()
	t.Cleanup(func() {
		clean()
		client.Close()
	})
	return NewLimiter(client)
}

func TestAllow_WithinAndOverLimit(t *testing.T) {
	l := newTestLimiter(t)
	ctx := context.Background()
	rule := Rule{Key: "rl:test:", Limit: 3, Window: 30 * time.Second}

	for i := 1; i <= 3; i++ {
		ok, err := l.Allow(ctx, "donor", rule)
		if err != nil {
			t.Fatalf("Allow #%d error: %v", i, err)
		}
		if !ok {
			t.Fatalf("Allow #%d = false, want true", i)
		}
	}

	ok, err := l.Allow(ctx, "donor", rule)
	if err != nil {
		t.Fatalf("Allow #4 error: %v", err)
	}
	if ok {
		t.Error("Allow #4 = true, want false")
	}

	remaining, err := l.Remaining(ctx, "donor", rule)
	if err != nil {
		t.Fatalf("Remaining error: %v", err)
	}
	if remaining != 0 {
		t.Errorf("Remaining = %d, want 0", remaining)
	}
}

func TestRemaining_Fresh(t *testing.T) {
	l := newTestLimiter(t)
	rule := Rule{Key: "rl:test:", Limit: 7, Window: time.Minute}

	remaining, err := l.Remaining(context.Background(), "nobody", rule)
	if err != nil {
		t.Fatalf("Remaining error: %v", err)
	}
	if remaining != 7 {
		t.Errorf("Remaining = %d, want 7", remaining)
	}
}

func TestAllow_FailsOpen(t *testing.T) {
	// Nothing listens on this port.
	client := redis.NewClient(&redis.Options{Addr: "localhost:1", DialTimeout: 50 * time.Millisecond})
	defer client.Close()
	l := NewLimiter(client)

	ok, err := l.Allow(context.Background(), "donor", RuleModerate)
	if err == nil {
		t.Fatal("expected error from unreachable redis")
	}
	if !ok {
		t.Error("Allow = false on redis error, want fail open")
	}
}

func TestRule_WithLimit(t *testing.T) {
	r := RuleModerate.WithLimit(5, 0)
	if r.Limit != 5 || r.Window != RuleModerate.Window || r.Key != RuleModerate.Key {
		t.Errorf("WithLimit(5, 0) = %+v", r)
	}
	if RuleModerate.Limit != 20 {
		t.Errorf("RuleModerate mutated: %+v", RuleModerate)
	}
}
