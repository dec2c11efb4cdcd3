package model

import "sort"

// RecalculateOffsets aligns every video onto a shared timeline. The video
// with the shortest duration anchors the timeline at offset 0; every other
// video is shifted so that its sync time lands on the anchor's sync time.
// Durations that have not been probed yet sort as zero and leave the
// normalised duration unset. The slice is restored to creation order before
// returning, so callers can treat it as display order.
func RecalculateOffsets(videos []*Video) {
	if len(videos) == 0 {
		return
	}

	scratch := make([]*Video, len(videos))
	copy(scratch, videos)
	sort.SliceStable(scratch, func(i, j int) bool {
		return durationOrZero(scratch[i]) < durationOrZero(scratch[j])
	})

	anchor := scratch[0]
	zero := 0.0
	anchor.Offset = &zero
	if anchor.Duration != nil {
		dn := *anchor.Duration
		anchor.DurationNormalised = &dn
	} else {
		anchor.DurationNormalised = nil
	}

	for _, v := range scratch[1:] {
		offset := anchor.SyncTime - v.SyncTime
		v.Offset = &offset
		if v.Duration != nil {
			dn := offset + *v.Duration
			v.DurationNormalised = &dn
		} else {
			v.DurationNormalised = nil
		}
	}

	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].CreatedAt.Before(videos[j].CreatedAt)
	})
}

func durationOrZero(v *Video) float64 {
	if v.Duration == nil {
		return 0
	}
	return *v.Duration
}
