package cache_test

import (
	"testing"
	"time"

	"github.com/halloran/ap-gateway-go/internal/infra/cache"
)

func TestTTL_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("entity-1", "tok-abc")
	got, ok := c.Get("entity-1")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if got != "tok-abc" {
		t.Errorf("expected 'tok-abc', got '%s'", got)
	}
}

func TestTTL_Miss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	if _, ok := c.Get("absent"); ok {
		t.Fatal("expected miss for absent key")
	}
}

func TestTTL_Expiration(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.SetFor("entity-1", "tok-abc", 50*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	if _, ok := c.Get("entity-1"); ok {
		t.Fatal("expected entry to be expired")
	}
}

func TestTTL_ConcurrentAccess(t *testing.T) {
	c := cache.New[int](time.Minute)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				c.Set("shared", n)
				c.Get("shared")
			}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if _, ok := c.Get("shared"); !ok {
		t.Fatal("expected value after concurrent writes")
	}
}
