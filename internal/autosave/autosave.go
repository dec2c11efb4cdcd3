// Package autosave periodically writes the current project back to disk
// while a review session is open, so a crash loses at most one sweep of
// work.
package autosave

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Rodeoclash/vodon-pro-sub000/internal/queue"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/store"
)

// Dependencies holds everything the autosave loop needs.
type Dependencies struct {
	Store    *store.Store
	Interval time.Duration
	Logger   *slog.Logger

	// Save writes the current project and returns its path. Usually the
	// project.save command.
	Save func() (string, error)

	// SessionPath reports where the current project lives. An empty path
	// means the session has never been saved, and autosave stays quiet
	// rather than inventing a file.
	SessionPath func() string
}

// Service watches the store for changes and saves on a timer.
type Service struct {
	deps      Dependencies
	changes   *queue.Queue[time.Time]
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = 30 * time.Second
	}
	return &Service{
		deps:     deps,
		changes:  queue.New[time.Time](),
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the autosave loop is running.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Pending returns how many unsaved changes have been observed.
func (s *Service) Pending() int {
	return s.changes.Len()
}

// Start begins watching the store and saving on the configured interval.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	notifications := s.deps.Store.Subscribe()
	stop := s.stopChan

	go func() {
		for {
			select {
			case <-stop:
				return
			case <-notifications:
				s.changes.Push(time.Now())
			}
		}
	}()

	go func() {
		s.deps.Logger.Debug("starting autosave loop", "interval", s.deps.Interval)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				s.sweep()
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()

	return nil
}

// sweep saves once when there are pending changes and a known path.
func (s *Service) sweep() {
	if s.changes.Empty() {
		return
	}
	if s.deps.SessionPath() == "" {
		return
	}
	pending := s.changes.Drain()
	path, err := s.deps.Save()
	if err != nil {
		s.deps.Logger.Error("autosave failed", "error", err)
		s.changes.Push(pending...)
		return
	}
	s.deps.Logger.Debug("autosaved", "path", path, "changes", len(pending))
}

// Stop halts the loop after one final sweep. The running flag flips here,
// not in the loop goroutine, so a second Stop can never close the channel
// twice.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	s.isRunning = false
	close(s.stopChan)
}
