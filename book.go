package kindle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"
)

const (
	startReadingURL = "https://read.amazon.com/service/mobile/reader/startReading"

	// DefaultClientVersion is the web reader version sent with detail requests.
	DefaultClientVersion = "20026010"
)

// BookData is one entry of the library listing as Amazon returns it.
type BookData struct {
	ASIN             string   `json:"asin" yaml:"asin"`
	WebReaderURL     string   `json:"webReaderUrl" yaml:"webReaderUrl"`
	ProductURL       string   `json:"productUrl" yaml:"productUrl"`
	Title            string   `json:"title" yaml:"title"`
	PercentageRead   float64  `json:"percentageRead" yaml:"percentageRead"`
	Authors          []string `json:"authors" yaml:"authors"`
	ResourceType     string   `json:"resourceType" yaml:"resourceType"`
	OriginType       string   `json:"originType" yaml:"originType"`
	MangaOrComicASIN bool     `json:"mangaOrComicAsin" yaml:"mangaOrComicAsin"`
}

// Book is a library entry that can lazily load its details. It keeps the
// library session id that was current when it was listed.
type Book struct {
	BookData

	api       *api
	sessionID string
	version   string
}

func newBook(data BookData, a *api, sessionID, version string) *Book {
	if version == "" {
		version = DefaultClientVersion
	}
	return &Book{BookData: data, api: a, sessionID: sessionID, version: version}
}

// SessionID returns the library session id the book was listed with.
func (b *Book) SessionID() string {
	return b.sessionID
}

// ReadingProgress is where the book was last read.
type ReadingProgress struct {
	ReportedOnDevice string    `json:"reportedOnDevice" yaml:"reportedOnDevice"`
	Position         int       `json:"position" yaml:"position"`
	SyncDate         time.Time `json:"syncDate" yaml:"syncDate"`
}

// BookLightDetails is what the startReading endpoint reveals about a book.
type BookLightDetails struct {
	ASIN        string          `json:"asin" yaml:"asin"`
	Title       string          `json:"title" yaml:"title"`
	Cover       string          `json:"cover" yaml:"cover"`
	ContentType string          `json:"contentType" yaml:"contentType"`
	IsOwned     bool            `json:"isOwned" yaml:"isOwned"`
	IsSample    bool            `json:"isSample" yaml:"isSample"`
	Progress    ReadingProgress `json:"progress" yaml:"progress"`
	MetadataURL string          `json:"metadataUrl" yaml:"metadataUrl"`
}

// BookDetails combines the light details with the book's metadata file.
type BookDetails struct {
	BookLightDetails `yaml:",inline"`

	Authors        []string `json:"authors" yaml:"authors"`
	Publisher      string   `json:"publisher" yaml:"publisher"`
	ReleaseDate    string   `json:"releaseDate" yaml:"releaseDate"`
	StartPosition  int      `json:"startPosition" yaml:"startPosition"`
	EndPosition    int      `json:"endPosition" yaml:"endPosition"`
	PercentageRead float64  `json:"percentageRead" yaml:"percentageRead"`
}

type startReadingResponse struct {
	ContentType      string `json:"contentType"`
	DeliveredASIN    string `json:"deliveredAsin"`
	IsOwned          bool   `json:"isOwned"`
	IsSample         bool   `json:"isSample"`
	KindleSessionID  string `json:"kindleSessionId"`
	MetadataURL      string `json:"metadataUrl"`
	LastPageReadData struct {
		DeviceName string `json:"deviceName"`
		Position   int    `json:"position"`
		SyncTime   int64  `json:"syncTime"`
	} `json:"lastPageReadData"`
	KaramelToken struct {
		Token     string `json:"token"`
		ExpiresAt int64  `json:"expiresAt"`
	} `json:"karamelToken"`
}

type metadataResponse struct {
	ASIN          string   `json:"asin"`
	Title         string   `json:"title"`
	AuthorList    []string `json:"authorList"`
	Publisher     string   `json:"publisher"`
	ReleaseDate   string   `json:"releaseDate"`
	StartPosition int      `json:"startPosition"`
	EndPosition   int      `json:"endPosition"`
}

// Details fetches the reading state of the book.
func (b *Book) Details(ctx context.Context) (*BookLightDetails, error) {
	params := url.Values{
		"asin":          {b.ASIN},
		"clientVersion": {b.version},
	}
	resp, err := b.api.get(ctx, startReadingURL+"?"+params.Encode(), b.api.session.HeadersFor(b.sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch details for %s: %w", b.ASIN, err)
	}

	var info startReadingResponse
	if err := json.Unmarshal([]byte(resp.Body), &info); err != nil {
		return nil, fmt.Errorf("failed to parse details for %s: %w", b.ASIN, err)
	}

	details := &BookLightDetails{
		ASIN:        b.ASIN,
		Title:       b.Title,
		Cover:       b.ProductURL,
		ContentType: info.ContentType,
		IsOwned:     info.IsOwned,
		IsSample:    info.IsSample,
		MetadataURL: info.MetadataURL,
		Progress: ReadingProgress{
			ReportedOnDevice: info.LastPageReadData.DeviceName,
			Position:         info.LastPageReadData.Position,
		},
	}
	if info.LastPageReadData.SyncTime > 0 {
		details.Progress.SyncDate = time.UnixMilli(info.LastPageReadData.SyncTime).UTC()
	}
	return details, nil
}

// FullDetails fetches the reading state and the book's metadata.
func (b *Book) FullDetails(ctx context.Context) (*BookDetails, error) {
	light, err := b.Details(ctx)
	if err != nil {
		return nil, err
	}
	if light.MetadataURL == "" {
		return nil, fmt.Errorf("no metadata url for %s", b.ASIN)
	}

	resp, err := b.api.get(ctx, light.MetadataURL, b.api.session.HeadersFor(b.sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata for %s: %w", b.ASIN, err)
	}

	var meta metadataResponse
	if err := ParseJSONP(resp.Body, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata for %s: %w", b.ASIN, err)
	}

	details := &BookDetails{
		BookLightDetails: *light,
		Authors:          meta.AuthorList,
		Publisher:        meta.Publisher,
		ReleaseDate:      meta.ReleaseDate,
		StartPosition:    meta.StartPosition,
		EndPosition:      meta.EndPosition,
		PercentageRead:   percentageRead(light.Progress.Position, meta.StartPosition, meta.EndPosition),
	}
	if meta.Title != "" {
		details.Title = meta.Title
	}
	return details, nil
}

func percentageRead(position, start, end int) float64 {
	if end <= start {
		return 0
	}
	pct := float64(position-start) / float64(end-start) * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

var jsonpRegex = regexp.MustCompile(`(?s)\((\{.*\})\)`)

var ErrNotJSONP = errors.New("response is not a jsonp payload")

// ParseJSONP decodes the object wrapped in a JSONP callback such as
// loadMetadata({...}).
func ParseJSONP(body string, v any) error {
	m := jsonpRegex.FindStringSubmatch(body)
	if m == nil {
		return ErrNotJSONP
	}
	return json.Unmarshal([]byte(m[1]), v)
}
