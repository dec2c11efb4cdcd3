package playback

import (
	"sync"
	"time"
)

// Clock advances the shared review timeline while playback runs. Each tick
// reports total wall-clock time elapsed since Start; the caller adds that
// (scaled by playback speed) to the timeline position captured at Start.
// Stop delivers one final elapsed reading before the ticker is released, so
// no time is lost between the last tick and the stop action.
type Clock struct {
	interval time.Duration
	now      func() time.Time

	mu        sync.Mutex
	running   bool
	startedAt time.Time
	stopChan  chan struct{}
	onAdvance func(elapsed time.Duration)
}

// NewClock creates a playback clock ticking at the given interval.
func NewClock(interval time.Duration) *Clock {
	return &Clock{
		interval: interval,
		now:      time.Now,
	}
}

// Start begins ticking. onAdvance is invoked with the total elapsed
// wall-clock duration since this Start call. Starting a running clock is a
// no-op.
func (c *Clock) Start(onAdvance func(elapsed time.Duration)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}
	c.running = true
	c.startedAt = c.now()
	c.stopChan = make(chan struct{})
	c.onAdvance = onAdvance

	go c.tickLoop(c.startedAt, c.stopChan, onAdvance)
}

// Stop cancels the ticker after delivering one final elapsed reading.
// Stopping an idle clock is a no-op.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	c.running = false
	close(c.stopChan)
	c.onAdvance(c.now().Sub(c.startedAt))
}

// Running reports whether the clock is ticking.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Clock) tickLoop(startedAt time.Time, stop chan struct{}, onAdvance func(time.Duration)) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// A tick racing a concurrent Stop must not advance the
			// timeline past the final reading Stop delivers, so the
			// callback runs under the same mutex Stop holds.
			c.mu.Lock()
			if c.running && c.stopChan == stop {
				onAdvance(c.now().Sub(startedAt))
			}
			c.mu.Unlock()
		}
	}
}
