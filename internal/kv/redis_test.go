package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	l, err := NewLimiter(context.Background(), "redis://"+mr.Addr()+"/0", limit, window)
	if err != nil {
		t.Fatalf("NewLimiter: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l, mr
}

func allow(t *testing.T, l *Limiter, key string) bool {
	t.Helper()
	ok, err := l.Allow(context.Background(), key)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	return ok
}

func TestAllowUpToLimit(t *testing.T) {
	l, mr := newTestLimiter(t, 3, time.Minute)

	for i := 1; i <= 3; i++ {
		if !allow(t, l, "203.0.113.7") {
			t.Fatalf("attempt %d refused", i)
		}
	}
	if allow(t, l, "203.0.113.7") {
		t.Fatal("attempt 4 allowed")
	}

	// other clients keep their own count
	if !allow(t, l, "198.51.100.1") {
		t.Error("second client refused")
	}

	if ttl := mr.TTL("certportal:login:203.0.113.7"); ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl = %v, want within the window", ttl)
	}
}

func TestResetClearsCount(t *testing.T) {
	l, mr := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	allow(t, l, "203.0.113.7")
	if allow(t, l, "203.0.113.7") {
		t.Fatal("attempt over limit allowed")
	}

	if err := l.Reset(ctx, "203.0.113.7"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if mr.Exists("certportal:login:203.0.113.7") {
		t.Error("counter still present after Reset")
	}
	if !allow(t, l, "203.0.113.7") {
		t.Error("attempt after Reset refused")
	}
}

func TestWindowExpiry(t *testing.T) {
	l, mr := newTestLimiter(t, 2, time.Minute)

	allow(t, l, "203.0.113.7")
	allow(t, l, "203.0.113.7")
	if allow(t, l, "203.0.113.7") {
		t.Fatal("attempt over limit allowed")
	}

	mr.FastForward(time.Minute)

	if !allow(t, l, "203.0.113.7") {
		t.Error("count did not restart after the window")
	}
}

func TestAllowReportsRedisErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	l := NewLimiterWithClient(client, 1, time.Minute)
	t.Cleanup(func() { l.Close() })

	mr.Close()

	ok, err := l.Allow(context.Background(), "203.0.113.7")
	if err == nil {
		t.Fatal("expected an error with redis down")
	}
	if !ok {
		t.Error("Allow must report true alongside an error")
	}
}

func TestNewLimiterBadURL(t *testing.T) {
	if _, err := NewLimiter(context.Background(), "not a url", 5, time.Minute); err == nil {
		t.Fatal("invalid REDIS_URL accepted")
	}
}

func TestNewLimiterUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// port 1 is never a redis server
	if _, err := NewLimiter(ctx, "redis://127.0.0.1:1/0", 5, time.Minute); err == nil {
		t.Fatal("unreachable redis accepted")
	}
}
