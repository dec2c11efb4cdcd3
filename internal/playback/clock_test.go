package playback

import (
	"sync"
	"testing"
	"time"
)

func TestClock_TicksWhileRunning(t *testing.T) {
	c := NewClock(5 * time.Millisecond)

	var mu sync.Mutex
	var readings []time.Duration

	c.Start(func(elapsed time.Duration) {
		mu.Lock()
		readings = append(readings, elapsed)
		mu.Unlock()
	})

	time.Sleep(30 * time.Millisecond)
	c.Stop()

	mu.Lock()
	defer mu.Unlock()

	if len(readings) < 2 {
		t.Fatalf("expected multiple tick readings, got %d", len(readings))
	}
	for i := 1; i < len(readings); i++ {
		if readings[i] < readings[i-1] {
			t.Errorf("elapsed readings went backwards: %v then %v", readings[i-1], readings[i])
		}
	}
}

func TestClock_StopDeliversFinalReading(t *testing.T) {
	c := NewClock(time.Hour) // ticker never fires on its own

	var mu sync.Mutex
	var calls int

	c.Start(func(elapsed time.Duration) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	time.Sleep(10 * time.Millisecond)
	c.Stop()

	mu.Lock()
	got := calls
	mu.Unlock()

	if got != 1 {
		t.Errorf("expected exactly one final reading on stop, got %d", got)
	}
	if c.Running() {
		t.Error("clock still reports running after stop")
	}
}

func TestClock_NoReadingsAfterStop(t *testing.T) {
	c := NewClock(time.Millisecond)

	var mu sync.Mutex
	var last time.Duration

	c.Start(func(elapsed time.Duration) {
		mu.Lock()
		last = elapsed
		mu.Unlock()
	})

	time.Sleep(10 * time.Millisecond)
	c.Stop()

	mu.Lock()
	final := last
	mu.Unlock()

	// A tick queued up alongside the stop must not land after the final
	// reading.
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if last != final {
		t.Errorf("reading moved after stop: %v then %v", final, last)
	}
}

func TestClock_StartStopIdempotent(t *testing.T) {
	c := NewClock(time.Hour)

	c.Stop() // idle stop is a no-op

	c.Start(func(time.Duration) {})
	c.Start(func(time.Duration) {}) // second start ignored
	if !c.Running() {
		t.Fatal("clock should be running")
	}

	c.Stop()
	c.Stop()
	if c.Running() {
		t.Error("clock should be stopped")
	}
}

func TestMemoryHandle(t *testing.T) {
	p := NewMemoryProvider()
	h, err := p.Open("/videos/scrim.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.FilePath() != "/videos/scrim.mp4" {
		t.Errorf("unexpected file path %q", h.FilePath())
	}

	mh := h.(*MemoryHandle)
	h.Play()
	if !mh.Playing() {
		t.Error("expected handle to be playing")
	}
	h.Seek(12.5)
	if mh.Position() != 12.5 {
		t.Errorf("expected position 12.5, got %f", mh.Position())
	}
	h.SetVolume(0.4)
	if mh.Volume() != 0.4 {
		t.Errorf("expected volume 0.4, got %f", mh.Volume())
	}
	h.Pause()
	if mh.Playing() {
		t.Error("expected handle to be paused")
	}
	if err := h.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
	if !mh.Closed() {
		t.Error("expected handle to be closed")
	}
}
