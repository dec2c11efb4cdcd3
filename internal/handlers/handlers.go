// Package handlers implements the host commands: project lifecycle and
// adding videos to the session.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/Rodeoclash/vodon-pro-sub000/internal/bridge"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/library"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/model"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/playback"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/probe"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/project"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/store"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/telemetry"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/util"
)

// SessionContext tracks which project the session belongs to.
type SessionContext struct {
	mu   sync.RWMutex
	Name string
	Path string
}

func NewSessionContext() *SessionContext {
	return &SessionContext{}
}

func (sc *SessionContext) GetName() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.Name
}

func (sc *SessionContext) GetPath() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.Path
}

func (sc *SessionContext) Set(name, path string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.Name = name
	sc.Path = path
}

// Dependencies holds all dependencies needed by handlers.
type Dependencies struct {
	Store       *store.Store
	Library     *library.Manager
	Telemetry   *telemetry.Manager
	Provider    playback.Provider
	Prober      probe.Prober
	Reconciler  *project.Reconciler
	ProjectsDir string
	Logger      *slog.Logger
}

// Service executes host commands against the session.
type Service struct {
	deps Dependencies
	ctx  *SessionContext
}

func NewService(deps Dependencies, ctx *SessionContext) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps, ctx: ctx}
}

func (s *Service) GetSessionContext() *SessionContext {
	return s.ctx
}

// Register wires every command onto the bridge.
func (s *Service) Register(b *bridge.Bridge) {
	b.Register("project.new", func(r bridge.Request) (any, error) {
		return s.NewProject()
	}, bridge.Logged())
	b.Register("project.save", func(r bridge.Request) (any, error) {
		return s.SaveProject(r.Payload)
	}, bridge.Logged())
	b.Register("project.load", func(r bridge.Request) (any, error) {
		return s.LoadProject(r.Payload)
	}, bridge.Logged())
	b.Register("video.add", func(r bridge.Request) (any, error) {
		return s.AddVideo(r.Payload)
	}, bridge.Logged())
}

// NewProject clears the session.
func (s *Service) NewProject() (string, error) {
	s.deps.Store.NewProject()
	s.ctx.Set("", "")
	s.deps.Logger.Info("new project started")
	return "ok", nil
}

type saveProjectPayload struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// SaveProject snapshots the session, writes the project file and records
// it in the library.
func (s *Service) SaveProject(payload json.RawMessage) (string, error) {
	var req saveProjectPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return "", fmt.Errorf("invalid save payload: %w", err)
		}
	}
	if req.Name == "" {
		req.Name = s.ctx.GetName()
	}
	if req.Name == "" {
		req.Name = "untitled"
	}
	if req.Path == "" {
		req.Path = s.ctx.GetPath()
	}
	if req.Path == "" {
		req.Path = filepath.Join(s.deps.ProjectsDir, req.Name+".vodon")
	}

	state := s.deps.Store.State()
	doc := project.Serialize(state)
	if err := project.Save(req.Path, doc); err != nil {
		return "", err
	}

	s.ctx.Set(req.Name, req.Path)
	s.recordInLibrary(req.Name, req.Path, doc)
	s.writeSessionPoint("save", state)

	s.deps.Logger.Info("project saved", "name", req.Name, "path", req.Path, "videos", len(state.Videos))
	return req.Path, nil
}

type loadProjectPayload struct {
	Path string `json:"path"`
}

// LoadProject reads a project file, reconciles it against the disk and
// installs it as the current session.
func (s *Service) LoadProject(payload json.RawMessage) (int, error) {
	var req loadProjectPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return 0, fmt.Errorf("invalid load payload: %w", err)
	}
	if req.Path == "" {
		return 0, fmt.Errorf("load payload missing path")
	}

	doc, err := project.Load(req.Path)
	if err != nil {
		return 0, err
	}

	s.deps.Reconciler.Restore(doc, s.deps.Store)

	name := util.Basename(filepath.Base(req.Path))
	s.ctx.Set(name, req.Path)
	s.recordInLibrary(name, req.Path, doc)

	state := s.deps.Store.State()
	s.writeSessionPoint("load", state)

	s.deps.Logger.Info("project loaded", "name", name, "path", req.Path, "videos", len(state.Videos))
	return len(state.Videos), nil
}

type addVideoPayload struct {
	Path string `json:"path"`
}

// AddVideo probes a file, opens a playback handle and adds it to the
// session.
func (s *Service) AddVideo(payload json.RawMessage) (string, error) {
	var req addVideoPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return "", fmt.Errorf("invalid video payload: %w", err)
	}
	if req.Path == "" {
		return "", fmt.Errorf("video payload missing path")
	}

	v, err := model.CreateFromPath(context.Background(), s.deps.Prober, req.Path)
	if err != nil {
		return "", err
	}
	if s.deps.Provider != nil {
		handle, err := s.deps.Provider.Open(req.Path)
		if err != nil {
			s.deps.Logger.Warn("failed to open playback handle", "path", req.Path, "error", err)
		} else {
			handle.SetVolume(v.Volume)
			v.Handle = handle
		}
	}

	s.deps.Store.AddVideo(v)
	return v.ID, nil
}

func (s *Service) recordInLibrary(name, path string, doc *project.Document) {
	if s.deps.Library == nil {
		return
	}
	if err := s.deps.Library.Record(name, path, doc); err != nil {
		s.deps.Logger.Error("failed to record project in library", "path", path, "error", err)
	}
}

func (s *Service) writeSessionPoint(event string, state store.State) {
	if s.deps.Telemetry == nil {
		return
	}
	bookmarks := 0
	for _, v := range state.Videos {
		bookmarks += len(v.Bookmarks)
	}
	fullDuration := 0.0
	if state.FullDuration != nil {
		fullDuration = *state.FullDuration
	}
	point := telemetry.SessionPoint(event, len(state.Videos), bookmarks, fullDuration)
	if err := s.deps.Telemetry.WritePoint(context.Background(), point); err != nil {
		s.deps.Logger.Error("failed to write session point", "event", event, "error", err)
	}
}
