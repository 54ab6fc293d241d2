package meta

import (
	"context"
	"log/slog"
	"strings"
)

// CatalogIDKind tags how an inbound catalog identifier was recognized.
type CatalogIDKind int

const (
	// KindUnknown marks an identifier in no recognized format.
	KindUnknown CatalogIDKind = iota
	// KindExternal marks an IMDb-style "tt"-prefixed identifier.
	KindExternal
	// KindNative marks a provider-native "tmdb:"-prefixed identifier.
	KindNative
)

// CatalogID is an inbound identifier parsed from the request path.
// Immutable once parsed.
type CatalogID struct {
	Kind  CatalogIDKind
	Value string
}

// ParseCatalogID classifies a raw path identifier. Series identifiers carry a
// ":season:episode" suffix which is stripped; only the title id matters for
// trailer lookup.
func ParseCatalogID(raw string) CatalogID {
	switch {
	case strings.HasPrefix(raw, "tt"):
		id := raw
		if i := strings.IndexByte(id, ':'); i >= 0 {
			id = id[:i]
		}
		return CatalogID{Kind: KindExternal, Value: id}
	case strings.HasPrefix(raw, "tmdb:"):
		id := strings.TrimPrefix(raw, "tmdb:")
		if i := strings.IndexByte(id, ':'); i >= 0 {
			id = id[:i]
		}
		if id == "" {
			return CatalogID{Kind: KindUnknown, Value: raw}
		}
		return CatalogID{Kind: KindNative, Value: id}
	default:
		return CatalogID{Kind: KindUnknown, Value: raw}
	}
}

// MovieRef is a canonical reference produced by Resolve. NativeID or Title may
// be empty individually; ExternalID keeps the original external identifier so
// downstream search can still build a query for an unresolved title.
type MovieRef struct {
	NativeID   string
	Title      string
	ExternalID string
}

// Lookup is the slice of the provider client that Resolve needs.
type Lookup interface {
	FindByExternalID(ctx context.Context, externalID string) (nativeID, title string, err error)
	Movie(ctx context.Context, nativeID string) (Movie, error)
}

// Resolver maps a CatalogID to a MovieRef via the metadata provider.
type Resolver struct {
	lookup Lookup
	log    *slog.Logger
}

// NewResolver returns a Resolver backed by the given provider lookup.
func NewResolver(lookup Lookup, log *slog.Logger) *Resolver {
	return &Resolver{lookup: lookup, log: log}
}

// Resolve maps id to a canonical MovieRef. ok is false when the identifier
// could not be mapped; provider failures are logged and reported as
// unresolved, never as errors. Single attempt per call, no retries.
func (r *Resolver) Resolve(ctx context.Context, id CatalogID) (ref MovieRef, ok bool) {
	switch id.Kind {
	case KindNative:
		ref = MovieRef{NativeID: id.Value}
		// Best effort: fill the title so search and response assembly
		// have something human readable.
		if movie, err := r.lookup.Movie(ctx, id.Value); err != nil {
			r.log.Debug("native id detail lookup failed",
				slog.String("native_id", id.Value),
				slog.String("error", err.Error()))
		} else {
			ref.Title = movie.Title
			ref.ExternalID = movie.ExternalID
		}
		return ref, true

	case KindExternal:
		nativeID, title, err := r.lookup.FindByExternalID(ctx, id.Value)
		if err != nil {
			r.log.Info("external id lookup failed",
				slog.String("external_id", id.Value),
				slog.String("error", err.Error()))
			return MovieRef{ExternalID: id.Value}, false
		}
		if nativeID == "" {
			r.log.Debug("external id unknown to provider", slog.String("external_id", id.Value))
			return MovieRef{ExternalID: id.Value}, false
		}
		return MovieRef{NativeID: nativeID, Title: title, ExternalID: id.Value}, true

	default:
		return MovieRef{}, false
	}
}
