package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ErrNoSearchBackend is returned when no configured mirror exposes a search
// capability.
var ErrNoSearchBackend = errors.New("no search-capable backend configured")

type searchResult struct {
	Type    string `json:"type"`
	VideoID string `json:"videoId"`
}

// SearchVideo issues a free-text video search against the first
// search-capable mirror and returns the first result's video id, or "" when
// nothing matched. Single attempt, bounded by the resolver's backend timeout.
func (r *Resolver) SearchVideo(ctx context.Context, query string) (string, error) {
	var backend *Backend
	for i := range r.backends {
		if r.backends[i].Shape == ShapeInvidious {
			backend = &r.backends[i]
			break
		}
	}
	if backend == nil {
		return "", ErrNoSearchBackend
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	q := url.Values{"q": {query}, "type": {"video"}}
	req, err := http.NewRequestWithContext(callCtx, http.MethodGet,
		backend.BaseURL+"/api/v1/search?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search backend returned status %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", err
	}
	for _, res := range results {
		if res.VideoID != "" {
			return res.VideoID, nil
		}
	}
	return "", nil
}
