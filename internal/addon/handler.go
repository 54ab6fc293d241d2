package addon

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const jsonContentType = "application/json; charset=utf-8"

// Handler exposes the addon HTTP endpoints using go-chi.
type Handler struct {
	svc      *Service
	manifest Manifest
	types    map[string]bool
	log      *slog.Logger
}

// NewHandler returns a Handler serving the given manifest. catalogTypes lists
// the accepted {type} path parameters (e.g. "movie", "series").
func NewHandler(svc *Service, manifest Manifest, catalogTypes []string, log *slog.Logger) *Handler {
	types := make(map[string]bool, len(catalogTypes))
	for _, t := range catalogTypes {
		types[t] = true
	}
	return &Handler{svc: svc, manifest: manifest, types: types, log: log}
}

// Routes mounts all addon endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/manifest.json", h.GetManifest)
	r.Get("/health", h.GetHealth)
	r.Get("/meta/{type}/{id}", h.GetMeta)
	r.Get("/stream/{type}/{id}", h.GetStream)
}

// GetManifest handles GET /manifest.json.
func (h *Handler) GetManifest(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.manifest)
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetStream handles GET /stream/{type}/{id}.json. Well-formed requests always
// get HTTP 200 with a streams array, even when every upstream is down.
func (h *Handler) GetStream(w http.ResponseWriter, r *http.Request) {
	mediaType, rawID, ok := h.pathParams(w, r)
	if !ok {
		return
	}

	resp := h.svc.Streams(r.Context(), rawID)
	h.log.Debug("stream request served",
		slog.String("type", mediaType),
		slog.String("id", rawID),
		slog.Int("streams", len(resp.Streams)))
	h.writeJSON(w, http.StatusOK, resp)
}

// GetMeta handles GET /meta/{type}/{id}.json.
func (h *Handler) GetMeta(w http.ResponseWriter, r *http.Request) {
	mediaType, rawID, ok := h.pathParams(w, r)
	if !ok {
		return
	}

	resp, err := h.svc.Meta(r.Context(), mediaType, rawID)
	switch {
	case errors.Is(err, ErrMisconfigured):
		h.log.Error("meta request rejected", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "title not found"})
	case err != nil:
		h.log.Error("meta request failed", slog.String("id", rawID), slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "metadata lookup failed"})
	default:
		h.writeJSON(w, http.StatusOK, resp)
	}
}

// pathParams validates the {type} and {id} path parameters. The ".json"
// suffix on {id} is stripped. An unsupported type is rejected before any
// upstream call is made.
func (h *Handler) pathParams(w http.ResponseWriter, r *http.Request) (mediaType, rawID string, ok bool) {
	mediaType = chi.URLParam(r, "type")
	rawID = strings.TrimSuffix(chi.URLParam(r, "id"), ".json")

	if !h.types[mediaType] {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "unsupported type: " + mediaType})
		return "", "", false
	}
	if rawID == "" {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing id"})
		return "", "", false
	}
	return mediaType, rawID, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("response encode failed", slog.String("error", err.Error()))
	}
}

// Recoverer returns middleware that converts a panic in any handler into a
// generic 500 JSON error so no fault leaks partial state to the client.
func Recoverer(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("handler panic",
						slog.String("path", r.URL.Path),
						slog.Any("panic", rec))
					w.Header().Set("Content-Type", jsonContentType)
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "internal error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
