package trailer

import (
	"context"
	"log/slog"
	"strings"

	"trailer-addon/internal/meta"
)

// Platform is the video platform trailers are located on.
const Platform = "YouTube"

// Strategy locates a trailer video id for a resolved movie reference.
// ok is false when no candidate exists; that is a terminal outcome, not an
// error.
type Strategy interface {
	Locate(ctx context.Context, ref meta.MovieRef) (videoID string, ok bool)
}

// VideosAPI is the slice of the metadata client the cross-reference strategy
// needs.
type VideosAPI interface {
	MovieVideos(ctx context.Context, nativeID string) ([]meta.Video, error)
}

// ProviderVideos locates a trailer through the metadata provider's videos
// sub-resource.
type ProviderVideos struct {
	api VideosAPI
	log *slog.Logger
}

// NewProviderVideos returns the provider cross-reference strategy.
func NewProviderVideos(api VideosAPI, log *slog.Logger) *ProviderVideos {
	return &ProviderVideos{api: api, log: log}
}

// Locate picks a trailer-tagged YouTube entry for ref. Selection order:
// entries marked official, then entries whose name contains "official",
// then any trailer-tagged entry.
func (p *ProviderVideos) Locate(ctx context.Context, ref meta.MovieRef) (string, bool) {
	if ref.NativeID == "" {
		return "", false
	}

	videos, err := p.api.MovieVideos(ctx, ref.NativeID)
	if err != nil {
		p.log.Info("videos lookup failed",
			slog.String("native_id", ref.NativeID),
			slog.String("error", err.Error()))
		return "", false
	}

	var official, named, any string
	for _, v := range videos {
		if !strings.EqualFold(v.Platform, Platform) || !strings.EqualFold(v.Kind, "Trailer") || v.Key == "" {
			continue
		}
		if any == "" {
			any = v.Key
		}
		if named == "" && strings.Contains(strings.ToLower(v.Name), "official") {
			named = v.Key
		}
		if v.Official {
			official = v.Key
			break
		}
	}

	switch {
	case official != "":
		return official, true
	case named != "":
		return named, true
	case any != "":
		return any, true
	}
	return "", false
}

// SearchAPI is a free-text video search capability, typically served by one of
// the configured stream backend mirrors.
type SearchAPI interface {
	SearchVideo(ctx context.Context, query string) (videoID string, err error)
}

// PlatformSearch locates a trailer through a platform search query of the form
// "<title-or-external-id> official trailer".
type PlatformSearch struct {
	api SearchAPI
	log *slog.Logger
}

// NewPlatformSearch returns the search-based strategy.
func NewPlatformSearch(api SearchAPI, log *slog.Logger) *PlatformSearch {
	return &PlatformSearch{api: api, log: log}
}

// Locate issues the search query and takes the first result.
func (p *PlatformSearch) Locate(ctx context.Context, ref meta.MovieRef) (string, bool) {
	term := ref.Title
	if term == "" {
		term = ref.ExternalID
	}
	if term == "" {
		return "", false
	}

	videoID, err := p.api.SearchVideo(ctx, term+" official trailer")
	if err != nil {
		p.log.Info("platform search failed",
			slog.String("query", term),
			slog.String("error", err.Error()))
		return "", false
	}
	return videoID, videoID != ""
}
