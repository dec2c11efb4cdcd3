package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rodeoclash/vodon-pro-sub000/internal/probe"
)

type countingProber struct {
	calls int
	err   error
}

func (p *countingProber) Probe(ctx context.Context, filePath string) (*probe.Metadata, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &probe.Metadata{Duration: 10, FrameRate: 60}, nil
}

func TestProberCachesResults(t *testing.T) {
	inner := &countingProber{}
	p := NewProber(inner)

	first, err := p.Probe(context.Background(), "/recordings/a.mp4")
	require.NoError(t, err)
	second, err := p.Probe(context.Background(), "/recordings/a.mp4")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first.Duration, second.Duration)
	assert.Equal(t, 1, p.Cache.Len())
	assert.Equal(t, 1, p.Hits.Value())
	assert.Equal(t, 1, p.Misses.Value())

	_, err = p.Probe(context.Background(), "/recordings/b.mp4")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2, p.Misses.Value())
}

func TestProberDoesNotCacheFailures(t *testing.T) {
	inner := &countingProber{err: probe.ErrNoVideoStream}
	p := NewProber(inner)

	_, err := p.Probe(context.Background(), "/recordings/a.mp4")
	assert.ErrorIs(t, err, probe.ErrNoVideoStream)

	inner.err = nil
	_, err = p.Probe(context.Background(), "/recordings/a.mp4")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestMetadataCacheReset(t *testing.T) {
	c := NewMetadataCache()
	c.Add("/a.mp4", probe.Metadata{Duration: 1})
	c.Reset()
	_, ok := c.Get("/a.mp4")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestSafeCounter(t *testing.T) {
	var c SafeCounter
	c.Inc()
	c.Inc()
	assert.Equal(t, 2, c.Value())
	c.Set(10)
	assert.Equal(t, 10, c.Value())
}
