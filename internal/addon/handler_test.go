package addon

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"trailer-addon/internal/meta"
	"trailer-addon/internal/stream"
	"trailer-addon/internal/trailer"

	"github.com/go-chi/chi/v5"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeProvider serves the TMDB-shaped endpoints the pipeline touches.
func fakeProvider(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		switch {
		case strings.HasPrefix(r.URL.Path, "/find/tt1234567"):
			w.Write([]byte(`{"movie_results":[{"id":42,"title":"Some Movie"}]}`))
		case r.URL.Path == "/movie/42/videos":
			w.Write([]byte(`{"results":[{"site":"YouTube","type":"Trailer","official":true,"name":"Official Trailer","key":"abc123"}]}`))
		case r.URL.Path == "/movie/42":
			w.Write([]byte(`{"id":42,"title":"Some Movie","overview":"A movie.","imdb_id":"tt1234567"}`))
		case strings.HasPrefix(r.URL.Path, "/find/"):
			w.Write([]byte(`{"movie_results":[],"tv_results":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func fakeBackend(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
}

func newTestRouter(t *testing.T, providerURL string, backends []stream.Backend) *chi.Mux {
	t.Helper()
	log := testLogger()
	client := meta.NewClient(providerURL, "test-key", log)
	streams := stream.NewResolver(backends, time.Second, 0, true, log, nil)
	svc := NewService(client, trailer.NewProviderVideos(client, log), streams, log, nil)
	manifest := Manifest{
		ID:         "org.trailer.addon",
		Version:    "0.0.0-test",
		Name:       "Trailer Streams",
		Resources:  []string{"meta", "stream"},
		Types:      []string{"movie", "series"},
		IDPrefixes: []string{"tt", "tmdb:"},
		Catalogs:   []CatalogItem{},
	}
	h := NewHandler(svc, manifest, []string{"movie", "series"}, log)

	r := chi.NewRouter()
	r.Use(Recoverer(log))
	h.Routes(r)
	return r
}

func TestHandler_stream_end_to_end(t *testing.T) {
	provider := fakeProvider(t, nil)
	defer provider.Close()
	backendBody := `{"formatStreams":[{"url":"https://iv.example.org/abc-480.mp4","container":"mp4","qualityLabel":"480p"}]}`
	b1 := fakeBackend(t, backendBody)
	defer b1.Close()
	b2 := fakeBackend(t, backendBody)
	defer b2.Close()

	r := newTestRouter(t, provider.URL, []stream.Backend{
		{BaseURL: b1.URL, Shape: stream.ShapeInvidious},
		{BaseURL: b2.URL, Shape: stream.ShapeInvidious},
	})

	req := httptest.NewRequest(http.MethodGet, "/stream/movie/tt1234567.json", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp StreamResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Streams) != 1 {
		t.Fatalf("mirrors returning the same stream must collapse to one descriptor, got %+v", resp.Streams)
	}
	s := resp.Streams[0]
	if s.Name != "Trailer (480p)" || s.URL != "https://iv.example.org/abc-480.mp4" {
		t.Errorf("unexpected first stream: %+v", s)
	}
	if s.Source != "youtube" || s.Title != "Some Movie" {
		t.Errorf("unexpected stream attribution: %+v", s)
	}
}

func TestHandler_stream_unknown_id_empty_200(t *testing.T) {
	provider := fakeProvider(t, nil)
	defer provider.Close()

	r := newTestRouter(t, provider.URL, nil)

	req := httptest.NewRequest(http.MethodGet, "/stream/movie/tt0000000.json", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := strings.TrimSpace(rec.Body.String())
	if body != `{"streams":[]}` {
		t.Errorf("expected empty streams array, got %s", body)
	}
}

func TestHandler_stream_unsupported_type(t *testing.T) {
	var hits atomic.Int64
	provider := fakeProvider(t, &hits)
	defer provider.Close()

	r := newTestRouter(t, provider.URL, nil)

	req := httptest.NewRequest(http.MethodGet, "/stream/channel/tt1234567.json", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil || errResp.Error == "" {
		t.Errorf("expected structured error body, got %s", rec.Body.String())
	}
	if hits.Load() != 0 {
		t.Errorf("no upstream call should be attempted for a bad type, got %d", hits.Load())
	}
}

func TestHandler_stream_all_backends_down_falls_back(t *testing.T) {
	provider := fakeProvider(t, nil)
	defer provider.Close()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()

	r := newTestRouter(t, provider.URL, []stream.Backend{
		{BaseURL: down.URL, Shape: stream.ShapeInvidious},
	})

	req := httptest.NewRequest(http.MethodGet, "/stream/movie/tt1234567.json", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp StreamResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Streams) != 1 || resp.Streams[0].URL != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("expected the synthetic web-player stream, got %+v", resp.Streams)
	}
}

func TestHandler_manifest(t *testing.T) {
	provider := fakeProvider(t, nil)
	defer provider.Close()
	r := newTestRouter(t, provider.URL, nil)

	req := httptest.NewRequest(http.MethodGet, "/manifest.json", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"catalogs":[]`) {
		t.Errorf("catalogs must serialize as an empty array, got %s", body)
	}
	if !strings.Contains(body, `"idPrefixes":["tt","tmdb:"]`) {
		t.Errorf("unexpected manifest body: %s", body)
	}
}

func TestHandler_health(t *testing.T) {
	provider := fakeProvider(t, nil)
	defer provider.Close()
	r := newTestRouter(t, provider.URL, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("unexpected health response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_meta(t *testing.T) {
	provider := fakeProvider(t, nil)
	defer provider.Close()
	r := newTestRouter(t, provider.URL, nil)

	req := httptest.NewRequest(http.MethodGet, "/meta/movie/tt1234567.json", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp MetaResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Meta.Name != "Some Movie" || resp.Meta.Type != "movie" || resp.Meta.ID != "tt1234567" {
		t.Errorf("unexpected meta: %+v", resp.Meta)
	}
}

func TestHandler_meta_missing_credential(t *testing.T) {
	log := testLogger()
	client := meta.NewClient("http://unused.invalid", "", log)
	streams := stream.NewResolver(nil, time.Second, 0, true, log, nil)
	svc := NewService(client, trailer.NewPlatformSearch(streams, log), streams, log, nil)
	h := NewHandler(svc, Manifest{Catalogs: []CatalogItem{}}, []string{"movie"}, log)

	r := chi.NewRouter()
	h.Routes(r)

	req := httptest.NewRequest(http.MethodGet, "/meta/movie/tt1234567.json", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for missing credential, got %d", rec.Code)
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil || errResp.Error == "" {
		t.Errorf("expected structured error body, got %s", rec.Body.String())
	}
}

func TestHandler_meta_not_found(t *testing.T) {
	provider := fakeProvider(t, nil)
	defer provider.Close()
	r := newTestRouter(t, provider.URL, nil)

	req := httptest.NewRequest(http.MethodGet, "/meta/movie/tt0000000.json", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestRecoverer(t *testing.T) {
	log := testLogger()
	r := chi.NewRouter()
	r.Use(Recoverer(log))
	r.Get("/boom", func(w http.ResponseWriter, req *http.Request) {
		panic("unexpected fault")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil || errResp.Error == "" {
		t.Errorf("expected structured error body, got %s", rec.Body.String())
	}
}
