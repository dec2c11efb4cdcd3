package autosave

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rodeoclash/vodon-pro-sub000/internal/model"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/store"
)

func addVideo(s *store.Store, id string) {
	d := 10.0
	s.AddVideo(&model.Video{ID: id, Duration: &d, Volume: 1.0, CreatedAt: time.Now()})
}

func TestSavesAfterChanges(t *testing.T) {
	st := store.NewStore(zerolog.Nop())

	var saves atomic.Int32
	svc := NewService(Dependencies{
		Store:       st,
		Interval:    10 * time.Millisecond,
		Save:        func() (string, error) { saves.Add(1); return "/projects/a.vodon", nil },
		SessionPath: func() string { return "/projects/a.vodon" },
	})
	require.NoError(t, svc.Start())
	defer svc.Stop()

	addVideo(st, "a")

	deadline := time.Now().Add(time.Second)
	for saves.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Greater(t, saves.Load(), int32(0))
}

func TestQuietWithoutChanges(t *testing.T) {
	st := store.NewStore(zerolog.Nop())

	var saves atomic.Int32
	svc := NewService(Dependencies{
		Store:       st,
		Interval:    10 * time.Millisecond,
		Save:        func() (string, error) { saves.Add(1); return "", nil },
		SessionPath: func() string { return "/projects/a.vodon" },
	})
	require.NoError(t, svc.Start())
	defer svc.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), saves.Load())
}

func TestQuietWithoutPath(t *testing.T) {
	st := store.NewStore(zerolog.Nop())

	var saves atomic.Int32
	svc := NewService(Dependencies{
		Store:       st,
		Interval:    10 * time.Millisecond,
		Save:        func() (string, error) { saves.Add(1); return "", nil },
		SessionPath: func() string { return "" },
	})
	require.NoError(t, svc.Start())
	defer svc.Stop()

	addVideo(st, "a")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), saves.Load())
	assert.Greater(t, svc.Pending(), 0)
}

func TestStartIdempotent(t *testing.T) {
	st := store.NewStore(zerolog.Nop())
	svc := NewService(Dependencies{
		Store:       st,
		Interval:    time.Hour,
		Save:        func() (string, error) { return "", nil },
		SessionPath: func() string { return "" },
	})
	require.NoError(t, svc.Start())
	require.NoError(t, svc.Start())
	assert.True(t, svc.IsRunning())

	svc.Stop()
	assert.False(t, svc.IsRunning())
}

func TestStopIdempotent(t *testing.T) {
	st := store.NewStore(zerolog.Nop())
	svc := NewService(Dependencies{
		Store:       st,
		Interval:    time.Hour,
		Save:        func() (string, error) { return "", nil },
		SessionPath: func() string { return "" },
	})
	require.NoError(t, svc.Start())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Stop()
		}()
	}
	wg.Wait()
	assert.False(t, svc.IsRunning())

	// The service can come back up after a stop.
	require.NoError(t, svc.Start())
	assert.True(t, svc.IsRunning())
	svc.Stop()
}
