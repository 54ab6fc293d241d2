package addon

// Manifest is the addon descriptor served at /manifest.json.
type Manifest struct {
	ID          string        `json:"id"`
	Version     string        `json:"version"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Resources   []string      `json:"resources"`
	Types       []string      `json:"types"`
	IDPrefixes  []string      `json:"idPrefixes"`
	Catalogs    []CatalogItem `json:"catalogs"`
}

// CatalogItem is one catalog entry of the manifest. The addon serves no
// catalogs, but the field must serialize as an empty array, not null.
type CatalogItem struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BehaviorHints carries playback hints for the consuming client.
type BehaviorHints struct {
	NotWebReady bool   `json:"notWebReady"`
	BingeGroup  string `json:"bingeGroup"`
	IOSSupports bool   `json:"ios_supports"`
}

// StreamItem is one playable stream in the wire response.
type StreamItem struct {
	Name          string        `json:"name"`
	Title         string        `json:"title"`
	URL           string        `json:"url"`
	Type          string        `json:"type"`
	Source        string        `json:"source"`
	BehaviorHints BehaviorHints `json:"behaviorHints"`
}

// StreamResponse is the body of /stream responses. Streams is never nil; an
// empty array is the success-with-no-result case.
type StreamResponse struct {
	Streams []StreamItem `json:"streams"`
}

// MetaItem is the detail object of /meta responses.
type MetaItem struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// MetaResponse is the body of /meta responses.
type MetaResponse struct {
	Meta MetaItem `json:"meta"`
}

// ErrorResponse is the structured body of non-success responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
