package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/k1nky/pachca-client/internal/apierr"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time { return f.t }

func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(t *testing.T, ttl time.Duration) (*Cache[string], *fakeClock) {
	t.Helper()
	c, err := New[string](ttl)
	if err != nil {
		t.Fatalf("New(%s) error: %v", ttl, err)
	}
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c.now = clock.now
	return c, clock
}

func TestNew_InvalidTTL(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Second, -time.Nanosecond} {
		_, err := New[string](ttl)
		if !errors.Is(err, apierr.ErrInvalidConfiguration) {
			t.Errorf("New(%s) error = %v, want ErrInvalidConfiguration", ttl, err)
		}
	}
}

func TestNew_ValidTTL(t *testing.T) {
	c, err := New[int](10 * time.Second)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if c.TTL() != 10*time.Second {
		t.Errorf("TTL() = %s, want 10s", c.TTL())
	}
}

func TestGet_NotExists(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	if v, ok := c.Get("users"); ok {
		t.Errorf("Get() = %q, true; want absent", v)
	}
}

func TestGet_Expiry(t *testing.T) {
	c, clock := newTestCache(t, 2*time.Second)
	c.Update("users", "A")

	if v, ok := c.Get("users"); !ok || v != "A" {
		t.Fatalf("Get() = %q, %v; want A, true", v, ok)
	}

	clock.advance(time.Second)
	if v, ok := c.Get("users"); !ok || v != "A" {
		t.Fatalf("Get() after 1s = %q, %v; want A, true", v, ok)
	}

	clock.advance(time.Second)
	if _, ok := c.Get("users"); ok {
		t.Fatal("Get() at exactly ttl should be absent")
	}
}

func TestUpdate_ResetsExpiryAndOverwrites(t *testing.T) {
	c, clock := newTestCache(t, 2*time.Second)
	c.Update("chats", "old")
	clock.advance(1500 * time.Millisecond)
	c.Update("chats", "new")
	clock.advance(1500 * time.Millisecond)

	v, ok := c.Get("chats")
	if !ok || v != "new" {
		t.Errorf("Get() = %q, %v; want new, true", v, ok)
	}
}

func TestScopesAreIndependent(t *testing.T) {
	c, clock := newTestCache(t, 2*time.Second)
	c.Update("chats", "C")
	clock.advance(time.Second)
	c.Update("users", "U")
	clock.advance(1500 * time.Millisecond)

	if _, ok := c.Get("chats"); ok {
		t.Error("chats should have expired")
	}
	if v, ok := c.Get("users"); !ok || v != "U" {
		t.Errorf("Get(users) = %q, %v; want U, true", v, ok)
	}
}
