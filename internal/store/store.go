// Package store holds the whole application state for a review session:
// the aligned videos, their bookmarks, and the shared playback cursor.
// Mutations always go through the store so that offsets and the overall
// session length stay consistent.
package store

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rodeoclash/vodon-pro-sub000/internal/model"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/playback"
)

var (
	ErrVideoNotFound    = errors.New("video not found")
	ErrBookmarkNotFound = errors.New("bookmark not found")
)

// State is an immutable snapshot of the session, safe to hand to
// renderers and serialisers without further locking.
type State struct {
	Videos          []*model.Video `json:"videos"`
	ActiveVideoID   string         `json:"activeVideoId"`
	CurrentTime     float64        `json:"currentTime"`
	Playing         bool           `json:"playing"`
	PlaybackSpeed   float64        `json:"playbackSpeed"`
	FullDuration    *float64       `json:"fullDuration"`
	EditingBookmark bool           `json:"editingBookmark"`
}

type Store struct {
	m sync.RWMutex

	videos          []*model.Video
	activeVideoID   string
	currentTime     float64
	playing         bool
	playbackSpeed   float64
	fullDuration    *float64
	editingBookmark bool

	clock *playback.Clock

	subscribers []chan struct{}
	logger      zerolog.Logger
}

func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		playbackSpeed: 1.0,
		logger:        logger.With().Str("component", "store").Logger(),
	}
}

// Subscribe returns a channel that receives a signal after every mutation.
// Signals are coalesced: a slow receiver sees at least one notification for
// any burst of changes.
func (s *Store) Subscribe() <-chan struct{} {
	s.m.Lock()
	defer s.m.Unlock()
	ch := make(chan struct{}, 1)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// notify must be called with the lock held.
func (s *Store) notify() {
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// State returns a deep snapshot of the session.
func (s *Store) State() State {
	s.m.RLock()
	defer s.m.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	videos := make([]*model.Video, len(s.videos))
	for i, v := range s.videos {
		videos[i] = v.Clone()
	}
	var fullDuration *float64
	if s.fullDuration != nil {
		d := *s.fullDuration
		fullDuration = &d
	}
	return State{
		Videos:          videos,
		ActiveVideoID:   s.activeVideoID,
		CurrentTime:     s.currentTime,
		Playing:         s.playing,
		PlaybackSpeed:   s.playbackSpeed,
		FullDuration:    fullDuration,
		EditingBookmark: s.editingBookmark,
	}
}

// recalculateLocked realigns offsets and refreshes the session length.
// Must be called with the lock held, after any change that moves a video
// on the shared timeline.
func (s *Store) recalculateLocked() {
	model.RecalculateOffsets(s.videos)
	s.fullDuration = model.FindMaxNormalisedDuration(s.videos)
}

// AddVideo appends a video to the session, rewinds the playback cursor and
// realigns the timeline. When nothing is active the new video becomes the
// active one.
func (s *Store) AddVideo(v *model.Video) {
	s.m.Lock()
	defer s.m.Unlock()
	s.videos = append(s.videos, v)
	s.currentTime = 0
	if s.activeVideoID == "" {
		s.activeVideoID = v.ID
	}
	s.recalculateLocked()
	s.logger.Info().Str("video", v.ID).Str("name", v.Name).Msg("video added")
	s.notify()
}

// RemoveVideo drops a video from the session. When exactly one video
// remains afterwards it becomes active, matching what a reviewer expects
// once the comparison collapses to a single recording.
func (s *Store) RemoveVideo(id string) error {
	s.m.Lock()
	defer s.m.Unlock()
	idx := -1
	for i, v := range s.videos {
		if v.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.logger.Warn().Str("video", id).Msg("remove requested for unknown video")
		return ErrVideoNotFound
	}
	removed := s.videos[idx]
	if removed.Handle != nil {
		if err := removed.Handle.Close(); err != nil {
			s.logger.Warn().Err(err).Str("video", id).Msg("failed to close playback handle")
		}
	}
	s.videos = append(s.videos[:idx], s.videos[idx+1:]...)
	if s.activeVideoID == id {
		s.activeVideoID = ""
	}
	if len(s.videos) == 1 {
		s.activeVideoID = s.videos[0].ID
	}
	if len(s.videos) == 0 {
		s.fullDuration = nil
	} else {
		s.recalculateLocked()
	}
	s.notify()
	return nil
}

// NewProject resets the session to an empty state, closing any playback
// handles still open.
func (s *Store) NewProject() {
	s.haltClock()
	s.m.Lock()
	defer s.m.Unlock()
	for _, v := range s.videos {
		if v.Handle != nil {
			if err := v.Handle.Close(); err != nil {
				s.logger.Warn().Err(err).Str("video", v.ID).Msg("failed to close playback handle")
			}
		}
	}
	s.videos = nil
	s.activeVideoID = ""
	s.currentTime = 0
	s.playing = false
	s.playbackSpeed = 1.0
	s.fullDuration = nil
	s.editingBookmark = false
	s.logger.Info().Msg("session cleared")
	s.notify()
}

// Install replaces the whole session in one step, including the saved
// cursor and playback speed. Used when a saved project has been
// reconciled and is ready to take over. Subscribers never observe a
// half-installed session.
func (s *Store) Install(videos []*model.Video, activeVideoID string, currentTime float64, playbackSpeed float64) {
	s.haltClock()
	s.m.Lock()
	defer s.m.Unlock()
	for _, v := range s.videos {
		if v.Handle != nil {
			v.Handle.Close()
		}
	}
	s.videos = videos
	s.activeVideoID = ""
	for _, v := range videos {
		if v.ID == activeVideoID {
			s.activeVideoID = activeVideoID
			break
		}
	}
	if s.activeVideoID == "" && len(videos) > 0 {
		s.activeVideoID = videos[0].ID
	}
	s.currentTime = currentTime
	s.playing = false
	s.playbackSpeed = 1.0
	if playbackSpeed > 0 {
		s.playbackSpeed = playbackSpeed
	}
	s.editingBookmark = false
	s.recalculateLocked()
	s.logger.Info().Int("videos", len(videos)).Msg("session installed")
	s.notify()
}

func (s *Store) findVideoLocked(id string) (*model.Video, error) {
	for _, v := range s.videos {
		if v.ID == id {
			return v, nil
		}
	}
	s.logger.Warn().Str("video", id).Msg("lookup for unknown video")
	return nil, ErrVideoNotFound
}

// FindVideo returns a deep copy of the video with the given id.
func (s *Store) FindVideo(id string) (*model.Video, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	v, err := s.findVideoLocked(id)
	if err != nil {
		return nil, err
	}
	return v.Clone(), nil
}

// SetVideoDuration records the probed duration and realigns the timeline.
func (s *Store) SetVideoDuration(id string, duration float64) error {
	s.m.Lock()
	defer s.m.Unlock()
	v, err := s.findVideoLocked(id)
	if err != nil {
		return err
	}
	v.Duration = &duration
	s.recalculateLocked()
	s.notify()
	return nil
}

func (s *Store) SetVideoName(id string, name string) error {
	s.m.Lock()
	defer s.m.Unlock()
	v, err := s.findVideoLocked(id)
	if err != nil {
		return err
	}
	v.Name = name
	s.notify()
	return nil
}

func (s *Store) SetVideoVolume(id string, volume float64) error {
	s.m.Lock()
	defer s.m.Unlock()
	v, err := s.findVideoLocked(id)
	if err != nil {
		return err
	}
	v.Volume = volume
	if v.Handle != nil {
		v.Handle.SetVolume(volume)
	}
	s.notify()
	return nil
}

// SetVideoSyncTime moves a video's alignment point and realigns the
// timeline.
func (s *Store) SetVideoSyncTime(id string, syncTime float64) error {
	s.m.Lock()
	defer s.m.Unlock()
	v, err := s.findVideoLocked(id)
	if err != nil {
		return err
	}
	v.SyncTime = syncTime
	s.recalculateLocked()
	s.notify()
	return nil
}

// RecalculateOffsets forces a timeline realignment. Mutations that move
// videos already trigger this; it exists for callers reconciling state
// assembled outside the store.
func (s *Store) RecalculateOffsets() {
	s.m.Lock()
	defer s.m.Unlock()
	s.recalculateLocked()
	s.notify()
}

// CreateBookmark stores a new annotation on a video and returns a copy of
// it.
func (s *Store) CreateBookmark(videoID string, content string, time float64, scale float64, drawing json.RawMessage) (model.Bookmark, error) {
	s.m.Lock()
	defer s.m.Unlock()
	v, err := s.findVideoLocked(videoID)
	if err != nil {
		return model.Bookmark{}, err
	}
	b := model.NewBookmark(content, time, scale, drawing)
	v.Bookmarks = append(v.Bookmarks, b)
	s.logger.Info().Str("video", videoID).Str("bookmark", b.ID).Msg("bookmark created")
	s.notify()
	return b.Clone(), nil
}

func (s *Store) findBookmarkLocked(id string) (*model.Video, *model.Bookmark, error) {
	for _, v := range s.videos {
		for i := range v.Bookmarks {
			if v.Bookmarks[i].ID == id {
				return v, &v.Bookmarks[i], nil
			}
		}
	}
	s.logger.Warn().Str("bookmark", id).Msg("lookup for unknown bookmark")
	return nil, nil, ErrBookmarkNotFound
}

func (s *Store) SetBookmarkContent(id string, content string) error {
	s.m.Lock()
	defer s.m.Unlock()
	_, b, err := s.findBookmarkLocked(id)
	if err != nil {
		return err
	}
	b.Content = content
	s.notify()
	return nil
}

func (s *Store) SetBookmarkTime(id string, time float64) error {
	s.m.Lock()
	defer s.m.Unlock()
	_, b, err := s.findBookmarkLocked(id)
	if err != nil {
		return err
	}
	b.Time = time
	s.notify()
	return nil
}

func (s *Store) SetBookmarkPosition(id string, position model.Position, scale float64) error {
	s.m.Lock()
	defer s.m.Unlock()
	_, b, err := s.findBookmarkLocked(id)
	if err != nil {
		return err
	}
	b.Position = &position
	b.Scale = scale
	s.notify()
	return nil
}

func (s *Store) SetBookmarkDrawing(id string, drawing json.RawMessage) error {
	s.m.Lock()
	defer s.m.Unlock()
	_, b, err := s.findBookmarkLocked(id)
	if err != nil {
		return err
	}
	copied := make(json.RawMessage, len(drawing))
	copy(copied, drawing)
	b.Drawing = copied
	s.notify()
	return nil
}

func (s *Store) DeleteBookmark(id string) error {
	s.m.Lock()
	defer s.m.Unlock()
	for _, v := range s.videos {
		for i := range v.Bookmarks {
			if v.Bookmarks[i].ID == id {
				v.Bookmarks = append(v.Bookmarks[:i], v.Bookmarks[i+1:]...)
				s.editingBookmark = false
				s.notify()
				return nil
			}
		}
	}
	s.logger.Warn().Str("bookmark", id).Msg("delete requested for unknown bookmark")
	return ErrBookmarkNotFound
}

// JumpToBookmark moves the shared cursor onto a bookmark's moment and
// makes its video active.
func (s *Store) JumpToBookmark(id string) error {
	s.haltClock()
	s.m.Lock()
	defer s.m.Unlock()
	v, b, err := s.findBookmarkLocked(id)
	if err != nil {
		return err
	}
	s.activeVideoID = v.ID
	s.currentTime = b.Time
	s.playing = false
	s.notify()
	return nil
}

// SetActiveVideo focuses a video by id. An empty id clears the focus.
func (s *Store) SetActiveVideo(id string) error {
	s.m.Lock()
	defer s.m.Unlock()
	if id != "" {
		if _, err := s.findVideoLocked(id); err != nil {
			return err
		}
	}
	s.activeVideoID = id
	s.notify()
	return nil
}

func (s *Store) SetCurrentTime(t float64) {
	s.m.Lock()
	defer s.m.Unlock()
	s.currentTime = t
	s.notify()
}

// AttachClock wires a playback clock. While playing, the clock advances
// the shared cursor from where playback started, scaled by the current
// playback speed.
func (s *Store) AttachClock(c *playback.Clock) {
	s.m.Lock()
	defer s.m.Unlock()
	s.clock = c
}

// haltClock stops a running clock without holding the store lock; the
// clock's final reading re-enters the store through SetCurrentTime.
func (s *Store) haltClock() {
	s.m.Lock()
	clock := s.clock
	s.m.Unlock()
	if clock != nil {
		clock.Stop()
	}
}

func (s *Store) StartPlaying() {
	s.m.Lock()
	if s.playing {
		s.m.Unlock()
		return
	}
	s.playing = true
	base := s.currentTime
	speed := s.playbackSpeed
	clock := s.clock
	s.notify()
	s.m.Unlock()

	if clock != nil {
		clock.Start(func(elapsed time.Duration) {
			s.SetCurrentTime(base + elapsed.Seconds()*speed)
		})
	}
}

func (s *Store) StopPlaying() {
	s.m.Lock()
	if !s.playing {
		s.m.Unlock()
		return
	}
	s.playing = false
	clock := s.clock
	s.notify()
	s.m.Unlock()

	// Stop delivers a final cursor reading, so it runs outside the lock.
	if clock != nil {
		clock.Stop()
	}
}

func (s *Store) TogglePlaying() {
	if s.State().Playing {
		s.StopPlaying()
	} else {
		s.StartPlaying()
	}
}

func (s *Store) SetPlaybackSpeed(speed float64) {
	s.m.Lock()
	defer s.m.Unlock()
	s.playbackSpeed = speed
	s.notify()
}

// StartEditingBookmark raises the global editing flag. While it is set the
// host suppresses playback shortcuts so typing does not scrub the videos.
func (s *Store) StartEditingBookmark() {
	s.m.Lock()
	defer s.m.Unlock()
	s.editingBookmark = true
	s.notify()
}

func (s *Store) StopEditingBookmark() {
	s.m.Lock()
	defer s.m.Unlock()
	s.editingBookmark = false
	s.notify()
}

func (s *Store) FullDuration() *float64 {
	s.m.RLock()
	defer s.m.RUnlock()
	if s.fullDuration == nil {
		return nil
	}
	d := *s.fullDuration
	return &d
}
