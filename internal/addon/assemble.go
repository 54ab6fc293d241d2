package addon

import (
	"trailer-addon/internal/meta"
	"trailer-addon/internal/stream"
)

const (
	streamType   = "trailer"
	streamSource = "youtube"
)

// Assemble maps ranked candidates into the wire response. The returned
// Streams slice is always non-nil.
func Assemble(ref meta.MovieRef, videoID string, candidates []stream.Candidate) StreamResponse {
	items := make([]StreamItem, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, StreamItem{
			Name:   streamName(c),
			Title:  ref.Title,
			URL:    c.URL,
			Type:   streamType,
			Source: streamSource,
			BehaviorHints: BehaviorHints{
				NotWebReady: c.Fallback,
				BingeGroup:  "trailer-" + videoID,
				IOSSupports: iosSupports(c),
			},
		})
	}
	return StreamResponse{Streams: items}
}

func streamName(c stream.Candidate) string {
	switch {
	case c.Adaptive:
		return "Trailer (HLS)"
	case c.Fallback:
		return "Trailer (YouTube)"
	default:
		return "Trailer (" + c.Label + ")"
	}
}

// iosSupports reports whether the candidate plays on iOS clients: adaptive
// playlists always do, discrete files only in mp4 containers (or when the
// backend reported no container at all).
func iosSupports(c stream.Candidate) bool {
	if c.Adaptive {
		return true
	}
	if c.Fallback {
		return false
	}
	return c.Format == "" || c.Format == "mp4"
}
