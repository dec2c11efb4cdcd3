package project

import (
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Rodeoclash/vodon-pro-sub000/internal/model"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/playback"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/store"
)

// Reconciler rebuilds a live session from a saved document. Files are
// re-checked on disk concurrently, videos whose file has gone missing are
// dropped, and the surviving videos get fresh playback handles.
type Reconciler struct {
	provider playback.Provider
	stat     func(string) (os.FileInfo, error)
	logger   zerolog.Logger
}

func NewReconciler(provider playback.Provider, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		provider: provider,
		stat:     os.Stat,
		logger:   logger.With().Str("component", "reconciler").Logger(),
	}
}

// Reconcile turns a document into live videos. The returned active id is
// empty when the previously active video's file is gone.
func (r *Reconciler) Reconcile(doc *Document) ([]*model.Video, string) {
	records := doc.State.Videos
	exists := make([]bool, len(records))

	var wg sync.WaitGroup
	for i := range records {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.stat(records[i].FilePath)
			exists[i] = err == nil
		}(i)
	}
	wg.Wait()

	videos := make([]*model.Video, 0, len(records))
	for i, record := range records {
		if !exists[i] {
			r.logger.Warn().Str("video", record.ID).Str("path", record.FilePath).Msg("dropping video, file no longer exists")
			continue
		}
		v := recordToVideo(record)
		if v.Bookmarks == nil {
			v.Bookmarks = []model.Bookmark{}
		}
		if r.provider != nil {
			handle, err := r.provider.Open(v.FilePath)
			if err != nil {
				r.logger.Warn().Err(err).Str("video", v.ID).Msg("failed to open playback handle")
			} else {
				handle.SetVolume(v.Volume)
				v.Handle = handle
			}
		}
		videos = append(videos, v)
	}

	activeID := ""
	for _, v := range videos {
		if v.ID == doc.State.ActiveVideoID {
			activeID = v.ID
			break
		}
	}
	return videos, activeID
}

// Restore reconciles a document and swaps the session over in one step.
// The store is untouched until every file check and handle open has
// finished.
func (r *Reconciler) Restore(doc *Document, st *store.Store) {
	videos, activeID := r.Reconcile(doc)
	st.Install(videos, activeID, doc.State.CurrentTime, doc.State.PlaybackSpeed)
}
