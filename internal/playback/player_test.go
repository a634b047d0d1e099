package playback

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestPlayer(duration float64) (*ClockPlayer, *fakeClock) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewClockPlayer(duration, Options{})
	p.now = clock.now
	return p, clock
}

func TestClockPlayerAdvancesOnlyWhilePlaying(t *testing.T) {
	p, clock := newTestPlayer(30)

	clock.add(time.Second)
	p.tick()
	if p.Position() != 0 {
		t.Fatalf("paused player moved to %v", p.Position())
	}

	if !p.TogglePlay() {
		t.Fatal("TogglePlay should start playback")
	}
	clock.add(1500 * time.Millisecond)
	p.tick()
	if got := p.Position(); got != 1.5 {
		t.Fatalf("position = %v, want 1.5", got)
	}

	p.TogglePlay()
	clock.add(time.Second)
	p.tick()
	if got := p.Position(); got != 1.5 {
		t.Fatalf("position after pause = %v, want 1.5", got)
	}
}

func TestClockPlayerStopsAtEnd(t *testing.T) {
	p, clock := newTestPlayer(2)
	var last float64
	p.OnProgress(func(pos float64) { last = pos })

	p.Play()
	clock.add(5 * time.Second)
	if ended := p.tick(); !ended {
		t.Fatal("expected end of timeline")
	}
	if last != 2 || p.Playing() {
		t.Fatalf("last=%v playing=%v", last, p.Playing())
	}

	// playing again from the end rewinds
	p.Play()
	if p.Position() != 0 {
		t.Fatalf("position = %v, want 0", p.Position())
	}
}

func TestClockPlayerSeekClamps(t *testing.T) {
	p, _ := newTestPlayer(12)
	var reported []float64
	p.OnProgress(func(pos float64) { reported = append(reported, pos) })

	p.SkipForward()
	p.SkipForward()
	p.SkipForward()
	if got := p.Position(); got != 12 {
		t.Fatalf("position = %v, want 12", got)
	}

	p.Seek(3)
	p.SkipBack()
	if got := p.Position(); got != 0 {
		t.Fatalf("position = %v, want 0", got)
	}

	want := []float64{5, 10, 12, 3, 0}
	if len(reported) != len(want) {
		t.Fatalf("reported = %v, want %v", reported, want)
	}
	for i := range want {
		if reported[i] != want[i] {
			t.Fatalf("reported = %v, want %v", reported, want)
		}
	}
}

func TestClockPlayerUnknownDuration(t *testing.T) {
	p, _ := newTestPlayer(0)
	p.Seek(1000)
	if got := p.Position(); got != 1000 {
		t.Fatalf("position = %v, want 1000", got)
	}
	p.Seek(-1)
	if got := p.Position(); got != 0 {
		t.Fatalf("position = %v, want 0", got)
	}
}

func TestClockPlayerMute(t *testing.T) {
	p, _ := newTestPlayer(10)
	if p.Volume() != 0.8 {
		t.Fatalf("initial volume = %v", p.Volume())
	}
	p.ToggleMute()
	if p.Volume() != 0 {
		t.Fatalf("muted volume = %v", p.Volume())
	}
	p.ToggleMute()
	if p.Volume() != 0.8 {
		t.Fatalf("restored volume = %v", p.Volume())
	}

	p.SetVolume(1.7)
	if p.Volume() != 1 {
		t.Fatalf("clamped volume = %v", p.Volume())
	}
	p.ToggleMute()
	p.ToggleMute()
	if p.Volume() != 1 {
		t.Fatalf("restored volume = %v", p.Volume())
	}
}

func TestClockPlayerRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p := NewClockPlayer(0, Options{Interval: time.Millisecond})
	ticks := make(chan float64, 1)
	p.OnProgress(func(pos float64) {
		select {
		case ticks <- pos:
		default:
		}
	})
	p.Play()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("no progress reported")
	}
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestClockPlayerRunReturnsAtEnd(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p := NewClockPlayer(0.01, Options{Interval: time.Millisecond, Speed: 10})
	p.Play()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if p.Position() != 0.01 {
		t.Fatalf("position = %v", p.Position())
	}
}
