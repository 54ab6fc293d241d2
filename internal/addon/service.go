package addon

import (
	"context"
	"errors"
	"log/slog"

	"trailer-addon/internal/meta"
	"trailer-addon/internal/platform/metrics"
	"trailer-addon/internal/stream"
	"trailer-addon/internal/trailer"
)

// ErrMisconfigured is returned by Meta when the metadata provider credential
// is absent; /meta cannot degrade to best effort.
var ErrMisconfigured = errors.New("metadata provider credential required but not configured")

// ErrNotFound is returned by Meta when the provider does not know the id.
var ErrNotFound = errors.New("title not found")

// MetaAPI is the slice of the metadata client the service calls directly.
type MetaAPI interface {
	meta.Lookup
	HasAPIKey() bool
}

// Service runs the resolution pipeline: identifier -> trailer video id ->
// ranked stream candidates -> wire response. All state is request-scoped.
type Service struct {
	api      MetaAPI
	resolver *meta.Resolver
	locator  trailer.Strategy
	streams  *stream.Resolver
	log      *slog.Logger
	metrics  *metrics.Metrics
}

// NewService wires the pipeline components. Metrics may be nil.
func NewService(api MetaAPI, locator trailer.Strategy, streams *stream.Resolver, log *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		api:      api,
		resolver: meta.NewResolver(api, log),
		locator:  locator,
		streams:  streams,
		log:      log,
		metrics:  m,
	}
}

// Streams resolves rawID end to end. It never fails for upstream reasons: an
// unresolvable id or missing trailer yields an empty stream list.
func (s *Service) Streams(ctx context.Context, rawID string) StreamResponse {
	id := meta.ParseCatalogID(rawID)
	ref, resolved := s.resolver.Resolve(ctx, id)
	if !resolved && ref.ExternalID == "" {
		s.log.Debug("identifier not resolvable", slog.String("id", rawID))
		return StreamResponse{Streams: []StreamItem{}}
	}

	videoID, found := s.locator.Locate(ctx, ref)
	if !found {
		s.log.Debug("no trailer located",
			slog.String("id", rawID),
			slog.String("native_id", ref.NativeID))
		return StreamResponse{Streams: []StreamItem{}}
	}

	candidates := s.streams.Resolve(ctx, videoID)
	resp := Assemble(ref, videoID, candidates)
	if s.metrics != nil {
		s.metrics.AddStreamsResolved(len(resp.Streams))
	}
	return resp
}

// Meta fetches the detail record for rawID. Unlike Streams, this endpoint
// strictly requires the provider credential.
func (s *Service) Meta(ctx context.Context, mediaType, rawID string) (MetaResponse, error) {
	if !s.api.HasAPIKey() {
		return MetaResponse{}, ErrMisconfigured
	}

	id := meta.ParseCatalogID(rawID)
	ref, resolved := s.resolver.Resolve(ctx, id)
	if !resolved || ref.NativeID == "" {
		return MetaResponse{}, ErrNotFound
	}

	movie, err := s.api.Movie(ctx, ref.NativeID)
	if err != nil {
		return MetaResponse{}, err
	}

	return MetaResponse{Meta: MetaItem{
		ID:          rawID,
		Type:        mediaType,
		Name:        movie.Title,
		Description: movie.Overview,
	}}, nil
}
