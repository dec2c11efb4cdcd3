// Package project turns a live review session into a durable document and
// back. Saved documents never contain playback handles; loading a document
// re-checks every referenced file on disk and opens fresh handles before
// the session is installed.
package project

import (
	"encoding/json"
	"time"

	"github.com/Rodeoclash/vodon-pro-sub000/internal/model"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/store"
)

// CurrentVersion is bumped whenever the document layout changes in a way
// that needs a migration on load.
const CurrentVersion = 2

// Document is the root structure written to a project file.
type Document struct {
	Version int           `json:"version"`
	SavedAt time.Time     `json:"savedAt"`
	State   DocumentState `json:"state"`
}

type DocumentState struct {
	Videos        []VideoRecord `json:"videos"`
	ActiveVideoID string        `json:"activeVideoId"`
	CurrentTime   float64       `json:"currentTime"`
	PlaybackSpeed float64       `json:"playbackSpeed"`
	FullDuration  *float64      `json:"fullDuration"`
}

// VideoRecord is the durable shape of a video. Runtime-only fields, the
// playback handle above all, are deliberately absent.
type VideoRecord struct {
	ID                 string           `json:"id"`
	FilePath           string           `json:"filePath"`
	Name               string           `json:"name"`
	FrameRate          int              `json:"frameRate"`
	Duration           *float64         `json:"duration"`
	SyncTime           float64          `json:"syncTime"`
	Offset             *float64         `json:"offset"`
	DurationNormalised *float64         `json:"durationNormalised"`
	Volume             float64          `json:"volume"`
	DisplayAspectRatio string           `json:"displayAspectRatio"`
	CodedWidth         int              `json:"codedWidth"`
	CodedHeight        int              `json:"codedHeight"`
	CreatedAt          time.Time        `json:"createdAt"`
	Bookmarks          []BookmarkRecord `json:"bookmarks"`
}

type BookmarkRecord struct {
	ID       string          `json:"id"`
	Content  string          `json:"content"`
	Time     float64         `json:"time"`
	Position *model.Position `json:"position"`
	Scale    float64         `json:"scale"`
	Drawing  json.RawMessage `json:"drawing,omitempty"`
}

// Serialize builds a document from a session snapshot.
func Serialize(state store.State) *Document {
	videos := make([]VideoRecord, 0, len(state.Videos))
	for _, v := range state.Videos {
		videos = append(videos, videoToRecord(v))
	}
	return &Document{
		Version: CurrentVersion,
		SavedAt: time.Now().UTC(),
		State: DocumentState{
			Videos:        videos,
			ActiveVideoID: state.ActiveVideoID,
			CurrentTime:   state.CurrentTime,
			PlaybackSpeed: state.PlaybackSpeed,
			FullDuration:  state.FullDuration,
		},
	}
}

func videoToRecord(v *model.Video) VideoRecord {
	bookmarks := make([]BookmarkRecord, 0, len(v.Bookmarks))
	for _, b := range v.Bookmarks {
		bookmarks = append(bookmarks, BookmarkRecord{
			ID:       b.ID,
			Content:  b.Content,
			Time:     b.Time,
			Position: b.Position,
			Scale:    b.Scale,
			Drawing:  b.Drawing,
		})
	}
	return VideoRecord{
		ID:                 v.ID,
		FilePath:           v.FilePath,
		Name:               v.Name,
		FrameRate:          v.FrameRate,
		Duration:           v.Duration,
		SyncTime:           v.SyncTime,
		Offset:             v.Offset,
		DurationNormalised: v.DurationNormalised,
		Volume:             v.Volume,
		DisplayAspectRatio: v.DisplayAspectRatio,
		CodedWidth:         v.CodedWidth,
		CodedHeight:        v.CodedHeight,
		CreatedAt:          v.CreatedAt,
		Bookmarks:          bookmarks,
	}
}

func recordToVideo(r VideoRecord) *model.Video {
	bookmarks := make([]model.Bookmark, 0, len(r.Bookmarks))
	for _, b := range r.Bookmarks {
		bookmarks = append(bookmarks, model.Bookmark{
			ID:       b.ID,
			Content:  b.Content,
			Time:     b.Time,
			Position: b.Position,
			Scale:    b.Scale,
			Drawing:  b.Drawing,
		})
	}
	return &model.Video{
		ID:                 r.ID,
		FilePath:           r.FilePath,
		Name:               r.Name,
		FrameRate:          r.FrameRate,
		Duration:           r.Duration,
		SyncTime:           r.SyncTime,
		Offset:             r.Offset,
		DurationNormalised: r.DurationNormalised,
		Volume:             r.Volume,
		DisplayAspectRatio: r.DisplayAspectRatio,
		CodedWidth:         r.CodedWidth,
		CodedHeight:        r.CodedHeight,
		CreatedAt:          r.CreatedAt,
		Bookmarks:          bookmarks,
	}
}

// migrate upgrades older documents in place. Version 1 predates bookmark
// scale tracking; cards saved then are assumed to have been placed at a
// scale of 1.
func migrate(doc *Document) {
	if doc.Version >= 2 {
		return
	}
	for i := range doc.State.Videos {
		for j := range doc.State.Videos[i].Bookmarks {
			if doc.State.Videos[i].Bookmarks[j].Scale == 0 {
				doc.State.Videos[i].Bookmarks[j].Scale = 1.0
			}
		}
	}
	doc.Version = CurrentVersion
}
