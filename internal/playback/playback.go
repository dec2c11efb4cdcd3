// Package playback defines the contract between the review core and the
// host platform's media playback. The core never decodes video; it holds an
// opaque handle per loaded file and drives it through this interface.
package playback

import "sync"

// Handle is a live playback resource bound to one media file. Handles are
// runtime-only: they are never serialized and are rebuilt from the file
// path when a project is loaded.
type Handle interface {
	Play()
	Pause()
	Seek(seconds float64)
	SetVolume(volume float64)
	FilePath() string
	Close() error
}

// Provider produces playback handles for media files.
type Provider interface {
	Open(filePath string) (Handle, error)
}

// MemoryProvider is a Provider whose handles only track state. It backs the
// headless CLI and tests, where no real media element exists.
type MemoryProvider struct{}

// NewMemoryProvider creates a state-only playback provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{}
}

// Open returns a fresh state-only handle for the file.
func (p *MemoryProvider) Open(filePath string) (Handle, error) {
	return &MemoryHandle{filePath: filePath, volume: 1.0}, nil
}

// MemoryHandle tracks play/pause/seek/volume state without touching media.
type MemoryHandle struct {
	mu       sync.Mutex
	filePath string
	playing  bool
	position float64
	volume   float64
	closed   bool
}

func (h *MemoryHandle) Play() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = true
}

func (h *MemoryHandle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = false
}

func (h *MemoryHandle) Seek(seconds float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.position = seconds
}

func (h *MemoryHandle) SetVolume(volume float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = volume
}

func (h *MemoryHandle) FilePath() string {
	return h.filePath
}

func (h *MemoryHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// Playing reports whether the handle is currently playing.
func (h *MemoryHandle) Playing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}

// Position returns the last seeked position.
func (h *MemoryHandle) Position() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.position
}

// Volume returns the current volume.
func (h *MemoryHandle) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}

// Closed reports whether Close was called.
func (h *MemoryHandle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
