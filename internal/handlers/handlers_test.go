package handlers

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rodeoclash/vodon-pro-sub000/internal/bridge"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/library"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/playback"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/probe"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/project"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/store"
)

type stubProber struct{}

func (stubProber) Probe(ctx context.Context, filePath string) (*probe.Metadata, error) {
	if filepath.Ext(filePath) != ".mp4" {
		return nil, probe.ErrNoVideoStream
	}
	return &probe.Metadata{
		Duration:    30,
		FrameRate:   60,
		CodedWidth:  1920,
		CodedHeight: 1080,
	}, nil
}

func newTestService(t *testing.T) (*Service, *store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	st := store.NewStore(zerolog.Nop())
	provider := playback.NewMemoryProvider()
	svc := NewService(Dependencies{
		Store:       st,
		Provider:    provider,
		Prober:      stubProber{},
		Reconciler:  project.NewReconciler(provider, zerolog.Nop()),
		ProjectsDir: dir,
	}, NewSessionContext())
	return svc, st, dir
}

func writeRecording(t *testing.T, dir string, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("stub"), 0644))
	return path
}

func payload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestAddVideo(t *testing.T) {
	svc, st, dir := newTestService(t)
	path := writeRecording(t, dir, "a.mp4")

	id, err := svc.AddVideo(payload(t, addVideoPayload{Path: path}))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	state := st.State()
	require.Len(t, state.Videos, 1)
	assert.Equal(t, "a", state.Videos[0].Name)
	assert.Equal(t, 60, state.Videos[0].FrameRate)
	assert.NotNil(t, state.Videos[0].Handle)
	assert.Equal(t, id, state.ActiveVideoID)
}

func TestAddVideoProbeFailure(t *testing.T) {
	svc, _, dir := newTestService(t)
	path := writeRecording(t, dir, "a.txt")

	_, err := svc.AddVideo(payload(t, addVideoPayload{Path: path}))
	require.Error(t, err)
	assert.ErrorIs(t, err, probe.ErrNoVideoStream)
}

func TestSaveAndLoadProject(t *testing.T) {
	svc, st, dir := newTestService(t)
	path := writeRecording(t, dir, "a.mp4")

	_, err := svc.AddVideo(payload(t, addVideoPayload{Path: path}))
	require.NoError(t, err)
	_, err = st.CreateBookmark(st.State().Videos[0].ID, "note", 3, 1.0, nil)
	require.NoError(t, err)

	savedPath, err := svc.SaveProject(payload(t, saveProjectPayload{Name: "scrim"}))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "scrim.vodon"), savedPath)
	assert.Equal(t, "scrim", svc.GetSessionContext().GetName())

	// Wipe the session and bring it back from disk.
	_, err = svc.NewProject()
	require.NoError(t, err)
	assert.Empty(t, st.State().Videos)

	count, err := svc.LoadProject(payload(t, loadProjectPayload{Path: savedPath}))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	state := st.State()
	require.Len(t, state.Videos, 1)
	assert.Equal(t, "a", state.Videos[0].Name)
	require.Len(t, state.Videos[0].Bookmarks, 1)
	assert.NotNil(t, state.Videos[0].Handle)
}

func TestSaveProjectDefaults(t *testing.T) {
	svc, _, dir := newTestService(t)

	savedPath, err := svc.SaveProject(nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "untitled.vodon"), savedPath)

	// A second save reuses the remembered name and path.
	again, err := svc.SaveProject(payload(t, saveProjectPayload{}))
	require.NoError(t, err)
	assert.Equal(t, savedPath, again)
}

func TestLoadProjectMissingPath(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.LoadProject(payload(t, loadProjectPayload{}))
	require.Error(t, err)
}

func TestSaveRecordsInLibrary(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("library.driver", "sqlite")
	viper.Set("library.path", filepath.Join(t.TempDir(), "library.db"))

	lib := library.NewManager(zerolog.Nop())
	require.NoError(t, lib.Connect())
	t.Cleanup(func() { lib.Close() })

	svc, _, dir := newTestService(t)
	svc.deps.Library = lib
	path := writeRecording(t, dir, "a.mp4")

	_, err := svc.AddVideo(payload(t, addVideoPayload{Path: path}))
	require.NoError(t, err)
	_, err = svc.SaveProject(payload(t, saveProjectPayload{Name: "scrim"}))
	require.NoError(t, err)

	records, err := lib.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "scrim", records[0].Name)
	assert.Equal(t, 1, records[0].VideoCount)
}

func TestRegisterWiresCommands(t *testing.T) {
	svc, st, dir := newTestService(t)

	b, err := bridge.New(noopLogger{})
	require.NoError(t, err)
	svc.Register(b)

	for _, cmd := range []string{"project.new", "project.save", "project.load", "video.add"} {
		assert.True(t, b.HasHandler(cmd), "missing handler for %s", cmd)
	}

	path := writeRecording(t, dir, "a.mp4")
	_, err = b.Dispatch(bridge.Request{
		Command: "video.add",
		Payload: payload(t, addVideoPayload{Path: path}),
	})
	require.NoError(t, err)
	assert.Len(t, st.State().Videos, 1)
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, keysAndValues ...any) {}
func (noopLogger) Info(msg string, keysAndValues ...any)  {}
func (noopLogger) Error(msg string, keysAndValues ...any) {}
