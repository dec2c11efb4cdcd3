package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Position is a bookmark card's location on screen, in view coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bookmark is an annotation pinned to a moment on the shared timeline of
// one video. Position is nil until the card has been placed; Scale records
// the view scale at placement time so the position can be corrected when
// the viewport resizes. Drawing is an opaque document owned by the host's
// whiteboard library.
type Bookmark struct {
	ID       string          `json:"id"`
	Content  string          `json:"content"`
	Time     float64         `json:"time"`
	Position *Position       `json:"position"`
	Scale    float64         `json:"scale"`
	Drawing  json.RawMessage `json:"drawing,omitempty"`
}

// NewBookmark builds a bookmark at the given shared-timeline moment. The
// drawing document is copied; the whiteboard editor keeps mutating its own
// copy and must never share backing storage with the stored bookmark.
func NewBookmark(content string, time float64, scale float64, drawing json.RawMessage) Bookmark {
	return Bookmark{
		ID:      uuid.NewString(),
		Content: content,
		Time:    time,
		Scale:   scale,
		Drawing: cloneDrawing(drawing),
	}
}

// Clone returns a deep copy of the bookmark.
func (b Bookmark) Clone() Bookmark {
	out := b
	if b.Position != nil {
		pos := *b.Position
		out.Position = &pos
	}
	out.Drawing = cloneDrawing(b.Drawing)
	return out
}

func cloneDrawing(drawing json.RawMessage) json.RawMessage {
	if drawing == nil {
		return nil
	}
	out := make(json.RawMessage, len(drawing))
	copy(out, drawing)
	return out
}
