package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"trailer-addon/internal/platform/metrics"
)

// DefaultTimeout bounds each individual backend call.
const DefaultTimeout = 5 * time.Second

// WebPlayerURL builds the indirect web-player URL used as the synthetic
// fallback when no direct stream survives filtering.
func WebPlayerURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(videoID)
}

// Resolver queries every configured backend mirror for a video id and merges
// the responses into one ranked candidate list. Resolver is safe for
// concurrent use; each Resolve call is fully request-local.
type Resolver struct {
	backends    []Backend
	timeout     time.Duration
	maxStreams  int  // 0 = uncapped
	fallbackWeb bool // emit a synthetic web-player candidate when empty
	client      *http.Client
	log         *slog.Logger
	metrics     *metrics.Metrics
}

// NewResolver returns a Resolver over the given backends. timeout <= 0 falls
// back to DefaultTimeout. Metrics may be nil to disable metric recording.
func NewResolver(backends []Backend, timeout time.Duration, maxStreams int, fallbackWeb bool, log *slog.Logger, m *metrics.Metrics) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		backends:    backends,
		timeout:     timeout,
		maxStreams:  maxStreams,
		fallbackWeb: fallbackWeb,
		client:      &http.Client{}, // per-call deadlines come from context
		log:         log,
		metrics:     m,
	}
}

// Resolve fans out to every backend concurrently, waits for all of them to
// settle, and returns the filtered, ranked candidate list. A backend that
// errors, times out, or returns non-success contributes nothing and never
// fails the call. An empty post-filter list yields exactly one synthetic
// web-player candidate when the fallback policy is on.
func (r *Resolver) Resolve(ctx context.Context, videoID string) []Candidate {
	if r.metrics != nil {
		r.metrics.ResolutionStarted()
		defer r.metrics.ResolutionFinished()
	}

	// Settle-all join: one result slot per backend, indexed so merge order
	// matches backend declaration order regardless of completion order.
	results := make([][]Candidate, len(r.backends))
	var g errgroup.Group
	for i, b := range r.backends {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()
			cands, err := r.fetch(callCtx, b, videoID)
			if err != nil {
				r.log.Info("backend failed",
					slog.String("backend", b.BaseURL),
					slog.String("video_id", videoID),
					slog.String("error", err.Error()))
				if r.metrics != nil {
					r.metrics.IncBackendFailures()
				}
				return nil
			}
			results[i] = cands
			return nil
		})
	}
	_ = g.Wait()

	// Mirrors often serve the same upstream file; collapse duplicates by
	// URL, keeping the first occurrence in backend declaration order.
	var merged []Candidate
	seen := make(map[string]bool)
	for _, cands := range results {
		for _, c := range cands {
			if seen[c.URL] {
				continue
			}
			seen[c.URL] = true
			merged = append(merged, c)
		}
	}

	ranked := rankCandidates(filterCandidates(merged))
	if r.maxStreams > 0 && len(ranked) > r.maxStreams {
		ranked = ranked[:r.maxStreams]
	}

	if len(ranked) == 0 && r.fallbackWeb {
		if r.metrics != nil {
			r.metrics.IncFallbacksServed()
		}
		return []Candidate{{URL: WebPlayerURL(videoID), Fallback: true}}
	}
	return ranked
}

// invidiousPayload is the mirror shape that exposes an optional master
// playlist alongside discrete format streams.
type invidiousPayload struct {
	HLSURL        string `json:"hlsUrl"`
	FormatStreams []struct {
		URL          string `json:"url"`
		Container    string `json:"container"`
		QualityLabel string `json:"qualityLabel"`
	} `json:"formatStreams"`
}

// pipedPayload is the mirror shape with discrete quality streams only.
type pipedPayload struct {
	VideoStreams []struct {
		URL     string `json:"url"`
		Quality string `json:"quality"`
	} `json:"videoStreams"`
}

func (r *Resolver) fetch(ctx context.Context, b Backend, videoID string) ([]Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.BaseURL+b.streamPath(videoID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	switch b.Shape {
	case ShapePiped:
		var payload pipedPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, err
		}
		cands := make([]Candidate, 0, len(payload.VideoStreams))
		for _, s := range payload.VideoStreams {
			cands = append(cands, Candidate{
				Label: s.Quality,
				Rank:  qualityRank(s.Quality),
				URL:   s.URL,
			})
		}
		return cands, nil

	default:
		var payload invidiousPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, err
		}
		var cands []Candidate
		if payload.HLSURL != "" {
			cands = append(cands, Candidate{URL: payload.HLSURL, Adaptive: true})
		}
		for _, s := range payload.FormatStreams {
			cands = append(cands, Candidate{
				Label:  s.QualityLabel,
				Rank:   qualityRank(s.QualityLabel),
				URL:    s.URL,
				Format: s.Container,
			})
		}
		return cands, nil
	}
}
