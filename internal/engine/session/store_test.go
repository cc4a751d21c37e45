package session

import (
	"image"
	"testing"
	"time"

	"qrgen/internal/engine/pipeline"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(ttl time.Duration, max int) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	s := NewStore(ttl, max)
	s.now = clock.Now
	return s, clock
}

func testState(url string) pipeline.State {
	return pipeline.State{
		Image:     image.NewPaletted(image.Rect(0, 0, 1, 1), nil),
		TargetURL: url,
		Size:      400,
	}
}

func TestStore_PutGet(t *testing.T) {
	s, _ := newTestStore(time.Minute, 10)

	if _, ok := s.Get("missing"); ok {
		t.Error("Get() on empty store returned ok")
	}

	s.Put("a", testState("https://a.example"))
	got, ok := s.Get("a")
	if !ok {
		t.Fatal("Get() after Put() returned !ok")
	}
	if got.TargetURL != "https://a.example" {
		t.Errorf("TargetURL = %q", got.TargetURL)
	}

	// Sessions are isolated.
	if _, ok := s.Get("b"); ok {
		t.Error("session b sees session a's state")
	}
}

func TestStore_Expiry(t *testing.T) {
	s, clock := newTestStore(time.Minute, 10)
	s.Put("a", testState("https://a.example"))

	clock.Advance(30 * time.Second)
	if _, ok := s.Get("a"); !ok {
		t.Fatal("entry expired too early")
	}

	// Access refreshes the deadline.
	clock.Advance(50 * time.Second)
	if _, ok := s.Get("a"); !ok {
		t.Fatal("access did not refresh expiry")
	}

	clock.Advance(2 * time.Minute)
	if _, ok := s.Get("a"); ok {
		t.Error("expired entry returned")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestStore_Sweep(t *testing.T) {
	s, clock := newTestStore(time.Minute, 10)
	s.Put("old", testState("https://old.example"))
	clock.Advance(2 * time.Minute)
	s.Put("new", testState("https://new.example"))

	if n := s.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
	if _, ok := s.Get("new"); !ok {
		t.Error("Sweep() removed a live entry")
	}
}

func TestStore_EvictsOldest(t *testing.T) {
	s, clock := newTestStore(time.Hour, 2)
	s.Put("a", testState("https://a.example"))
	clock.Advance(time.Second)
	s.Put("b", testState("https://b.example"))
	clock.Advance(time.Second)
	s.Put("c", testState("https://c.example"))

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if _, ok := s.Get("a"); ok {
		t.Error("oldest entry was not evicted")
	}
}

func TestStore_Delete(t *testing.T) {
	s, _ := newTestStore(time.Minute, 10)
	s.Put("a", testState("https://a.example"))
	s.Put("b", testState("https://b.example"))
	s.Delete("a")

	if _, ok := s.Get("a"); ok {
		t.Error("deleted entry still present")
	}
	if _, ok := s.Get("b"); !ok {
		t.Error("Delete() removed another session")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}

	s.Delete("missing")
}
