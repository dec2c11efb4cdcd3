// Package model defines the entities of a review project, videos and their
// bookmarks, together with the pure functions that align independently
// recorded videos onto one shared timeline.
package model

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Rodeoclash/vodon-pro-sub000/internal/playback"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/probe"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/util"
)

// Video is one loaded recording of the reviewed event.
//
// Duration is nil until metadata probing completes. Offset and
// DurationNormalised are nil until offsets have been recalculated;
// DurationNormalised is set iff both Duration and Offset are set.
type Video struct {
	ID                 string    `json:"id"`
	FilePath           string    `json:"filePath"`
	Name               string    `json:"name"`
	FrameRate          int       `json:"frameRate"`
	Duration           *float64  `json:"duration"`
	SyncTime           float64   `json:"syncTime"`
	Offset             *float64  `json:"offset"`
	DurationNormalised *float64  `json:"durationNormalised"`
	Volume             float64   `json:"volume"`
	DisplayAspectRatio string    `json:"displayAspectRatio"`
	CodedWidth         int       `json:"codedWidth"`
	CodedHeight        int       `json:"codedHeight"`
	CreatedAt          time.Time `json:"createdAt"`

	Bookmarks []Bookmark `json:"bookmarks"`

	// Handle is the host playback resource. Runtime only: stripped on
	// serialization and rebuilt from FilePath on load.
	Handle playback.Handle `json:"-"`
}

// CreateFromPath probes the file at path and builds a fresh Video. The
// probe must report a video stream; its absence fails the add operation.
// Offset and normalised duration stay unset until offsets are
// recalculated.
func CreateFromPath(ctx context.Context, prober probe.Prober, path string) (*Video, error) {
	meta, err := prober.Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("creating video from %s: %w", path, err)
	}

	var duration *float64
	if meta.Duration > 0 {
		d := meta.Duration
		duration = &d
	}

	return &Video{
		ID:                 uuid.NewString(),
		FilePath:           path,
		Name:               util.Basename(filepath.Base(path)),
		FrameRate:          meta.FrameRate,
		Duration:           duration,
		SyncTime:           0,
		Volume:             1.0,
		DisplayAspectRatio: meta.DisplayAspectRatio,
		CodedWidth:         meta.CodedWidth,
		CodedHeight:        meta.CodedHeight,
		CreatedAt:          time.Now(),
		Bookmarks:          []Bookmark{},
	}, nil
}

// Clone returns a deep copy of the video. The playback handle is shared;
// it is a runtime resource, not state.
func (v *Video) Clone() *Video {
	out := *v

	if v.Duration != nil {
		d := *v.Duration
		out.Duration = &d
	}
	if v.Offset != nil {
		o := *v.Offset
		out.Offset = &o
	}
	if v.DurationNormalised != nil {
		dn := *v.DurationNormalised
		out.DurationNormalised = &dn
	}

	out.Bookmarks = make([]Bookmark, len(v.Bookmarks))
	for i := range v.Bookmarks {
		out.Bookmarks[i] = v.Bookmarks[i].Clone()
	}

	return &out
}

// FindMaxNormalisedDuration returns the largest normalised duration across
// the videos, or nil when the collection is empty or no video has one yet.
func FindMaxNormalisedDuration(videos []*Video) *float64 {
	var max *float64
	for _, v := range videos {
		if v.DurationNormalised == nil {
			continue
		}
		if max == nil || *v.DurationNormalised > *max {
			dn := *v.DurationNormalised
			max = &dn
		}
	}
	return max
}
