package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/halloran/ap-gateway-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
)

func TestCircuitBreaker_TripsAfterRepeatedFailures(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test")

	boom := errors.New("boom")
	for i := 0; i < 5; i++ {
		_, err := cb.Execute(func() (any, error) { return nil, boom })
		if !errors.Is(err, boom) {
			t.Fatalf("attempt %d: expected boom, got %v", i, err)
		}
	}

	_, err := cb.Execute(func() (any, error) { return nil, nil })
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
}

func TestCircuitBreaker_PassesThroughSuccess(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test")

	res, err := cb.Execute(func() (any, error) { return "ok", nil })
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.(string) != "ok" {
		t.Errorf("expected 'ok', got %v", res)
	}
}

func TestBulkhead_AcquireRelease(t *testing.T) {
	bh := resilience.NewBulkhead(2)

	if err := bh.Acquire(context.Background()); err != nil {
		t.Fatalf("expected acquire, got %v", err)
	}
	if err := bh.Acquire(context.Background()); err != nil {
		t.Fatalf("expected acquire, got %v", err)
	}

	// Third acquire should block; test with timeout context
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := bh.Acquire(ctx)
	if err == nil {
		t.Fatal("expected timeout on third acquire")
	}

	// Release one slot
	bh.Release()

	if err := bh.Acquire(context.Background()); err != nil {
		t.Fatalf("expected acquire after release, got %v", err)
	}
}
