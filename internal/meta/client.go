package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the metadata provider's API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// ErrNoAPIKey is returned when a provider call is attempted without a
// configured API key. Callers decide whether that is a misconfiguration
// (strictly required) or a best-effort lookup to skip.
var ErrNoAPIKey = errors.New("metadata provider api key not configured")

// Movie is the provider's detail record for a single title.
type Movie struct {
	ID         string
	Title      string
	Overview   string
	ExternalID string
}

// Video is one entry of the provider's videos sub-resource.
type Video struct {
	Platform string
	Kind     string
	Official bool
	Name     string
	Key      string
}

// Client talks to a TMDB-shaped metadata provider. All calls are single
// attempt, context bound, and safe to share across requests.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *slog.Logger
}

// NewClient returns a Client for the provider at baseURL. An empty apiKey is
// allowed; calls will then fail with ErrNoAPIKey.
func NewClient(baseURL, apiKey string, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// HasAPIKey reports whether the client was configured with a credential.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

type findResponse struct {
	MovieResults []struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	} `json:"movie_results"`
	TVResults []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"tv_results"`
}

// FindByExternalID reverse-looks-up an external (IMDb-style) id and returns
// the provider's native id and display title. Both are empty when the
// provider knows nothing about the id.
func (c *Client) FindByExternalID(ctx context.Context, externalID string) (nativeID, title string, err error) {
	var out findResponse
	q := url.Values{"external_source": {"imdb_id"}}
	if err := c.get(ctx, "/find/"+url.PathEscape(externalID), q, &out); err != nil {
		return "", "", err
	}
	if len(out.MovieResults) > 0 {
		m := out.MovieResults[0]
		return strconv.FormatInt(m.ID, 10), m.Title, nil
	}
	if len(out.TVResults) > 0 {
		tv := out.TVResults[0]
		return strconv.FormatInt(tv.ID, 10), tv.Name, nil
	}
	return "", "", nil
}

type movieResponse struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Overview string `json:"overview"`
	IMDBID   string `json:"imdb_id"`
}

// Movie fetches the detail record for a native id.
func (c *Client) Movie(ctx context.Context, nativeID string) (Movie, error) {
	var out movieResponse
	if err := c.get(ctx, "/movie/"+url.PathEscape(nativeID), nil, &out); err != nil {
		return Movie{}, err
	}
	return Movie{
		ID:         strconv.FormatInt(out.ID, 10),
		Title:      out.Title,
		Overview:   out.Overview,
		ExternalID: out.IMDBID,
	}, nil
}

type videosResponse struct {
	Results []struct {
		Site     string `json:"site"`
		Type     string `json:"type"`
		Official bool   `json:"official"`
		Name     string `json:"name"`
		Key      string `json:"key"`
	} `json:"results"`
}

// MovieVideos fetches the videos sub-resource for a native id.
func (c *Client) MovieVideos(ctx context.Context, nativeID string) ([]Video, error) {
	var out videosResponse
	if err := c.get(ctx, "/movie/"+url.PathEscape(nativeID)+"/videos", nil, &out); err != nil {
		return nil, err
	}
	videos := make([]Video, 0, len(out.Results))
	for _, r := range out.Results {
		videos = append(videos, Video{
			Platform: r.Site,
			Kind:     r.Type,
			Official: r.Official,
			Name:     r.Name,
			Key:      r.Key,
		})
	}
	return videos, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}
	c.log.Debug("metadata request", slog.String("path", path))
	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("metadata provider returned status %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
