package model

// FindNextBookmark returns the bookmark with the smallest time strictly
// greater than ref's, searching across every video, along with the video
// that owns it. Both results are nil when ref is already the last bookmark.
func FindNextBookmark(videos []*Video, ref *Bookmark) (*Video, *Bookmark) {
	var (
		bestVideo    *Video
		bestBookmark *Bookmark
	)
	for _, v := range videos {
		for i := range v.Bookmarks {
			b := &v.Bookmarks[i]
			if b.Time <= ref.Time {
				continue
			}
			if bestBookmark == nil || b.Time < bestBookmark.Time {
				bestVideo = v
				bestBookmark = b
			}
		}
	}
	return bestVideo, bestBookmark
}

// FindPreviousBookmark is the mirror of FindNextBookmark: the bookmark with
// the largest time strictly less than ref's.
func FindPreviousBookmark(videos []*Video, ref *Bookmark) (*Video, *Bookmark) {
	var (
		bestVideo    *Video
		bestBookmark *Bookmark
	)
	for _, v := range videos {
		for i := range v.Bookmarks {
			b := &v.Bookmarks[i]
			if b.Time >= ref.Time {
				continue
			}
			if bestBookmark == nil || b.Time > bestBookmark.Time {
				bestVideo = v
				bestBookmark = b
			}
		}
	}
	return bestVideo, bestBookmark
}
