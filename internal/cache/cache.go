// Package cache keeps probe results around so re-adding a video, or
// loading a project that references one, does not shell out to ffprobe
// again.
package cache

import (
	"context"
	"sync"

	"github.com/Rodeoclash/vodon-pro-sub000/internal/probe"
)

// MetadataCache caches probe metadata by file path.
type MetadataCache struct {
	m       sync.Mutex
	entries map[string]probe.Metadata
}

func NewMetadataCache() *MetadataCache {
	return &MetadataCache{
		entries: make(map[string]probe.Metadata),
	}
}

func (c *MetadataCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.entries = make(map[string]probe.Metadata)
}

func (c *MetadataCache) Get(filePath string) (probe.Metadata, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if m, ok := c.entries[filePath]; ok {
		return m, true
	}
	return probe.Metadata{}, false
}

func (c *MetadataCache) Add(filePath string, m probe.Metadata) {
	c.m.Lock()
	defer c.m.Unlock()
	c.entries[filePath] = m
}

func (c *MetadataCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.entries)
}

// Prober wraps another prober with the cache. Probe failures are not
// cached, so a file that gains a video stream later probes clean.
type Prober struct {
	Inner  probe.Prober
	Cache  *MetadataCache
	Hits   SafeCounter
	Misses SafeCounter
}

func NewProber(inner probe.Prober) *Prober {
	return &Prober{
		Inner: inner,
		Cache: NewMetadataCache(),
	}
}

func (p *Prober) Probe(ctx context.Context, filePath string) (*probe.Metadata, error) {
	if m, ok := p.Cache.Get(filePath); ok {
		p.Hits.Inc()
		return &m, nil
	}
	p.Misses.Inc()
	m, err := p.Inner.Probe(ctx, filePath)
	if err != nil {
		return nil, err
	}
	p.Cache.Add(filePath, *m)
	return m, nil
}

// SafeCounter is a thread-safe counter.
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
