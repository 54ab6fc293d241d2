package stream

import (
	"fmt"
	"strings"
)

// Shape tags the JSON response shape a backend mirror speaks.
type Shape string

const (
	// ShapeInvidious responses carry an optional master playlist URL plus
	// discrete format streams with container information.
	ShapeInvidious Shape = "invidious"
	// ShapePiped responses carry discrete quality streams only.
	ShapePiped Shape = "piped"
)

// Backend describes one configured stream mirror. Static configuration,
// read-only after startup.
type Backend struct {
	BaseURL string
	Shape   Shape
}

// ParseBackends parses "shape=url" entries (e.g.
// "invidious=https://iv.example.org") into Backend descriptors, preserving
// declaration order. Malformed entries yield an error.
func ParseBackends(entries []string) ([]Backend, error) {
	backends := make([]Backend, 0, len(entries))
	for _, e := range entries {
		shape, rawURL, ok := strings.Cut(e, "=")
		if !ok {
			return nil, fmt.Errorf("backend entry %q: want shape=url", e)
		}
		shape = strings.TrimSpace(shape)
		rawURL = strings.TrimRight(strings.TrimSpace(rawURL), "/")
		if rawURL == "" {
			return nil, fmt.Errorf("backend entry %q: empty url", e)
		}
		switch Shape(shape) {
		case ShapeInvidious, ShapePiped:
		default:
			return nil, fmt.Errorf("backend entry %q: unknown shape %q", e, shape)
		}
		backends = append(backends, Backend{BaseURL: rawURL, Shape: Shape(shape)})
	}
	return backends, nil
}

// streamPath returns the backend-relative path that resolves a video id.
func (b Backend) streamPath(videoID string) string {
	switch b.Shape {
	case ShapePiped:
		return "/streams/" + videoID
	default:
		return "/api/v1/videos/" + videoID
	}
}
