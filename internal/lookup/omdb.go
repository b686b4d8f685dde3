package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const omdbBaseURL = "https://www.omdbapi.com/"

// OMDBClient queries the OMDb API for film metadata. An empty API key is not
// an error: lookups degrade to empty results so the rest of the app keeps
// working without a key.
type OMDBClient struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
}

func NewOMDBClient(apiKey string) *OMDBClient {
	return &OMDBClient{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    omdbBaseURL,
		APIKey:     strings.TrimSpace(apiKey),
	}
}

// FilmSearchResult is one candidate from a title search.
type FilmSearchResult struct {
	Title     string `json:"title"`
	Year      string `json:"year"`
	IMDBID    string `json:"imdb_id"`
	PosterURL string `json:"poster_url,omitempty"`
}

// FilmDetails is the full metadata record for one title.
type FilmDetails struct {
	Title          string `json:"title"`
	Year           *int   `json:"year,omitempty"`
	RuntimeMinutes *int   `json:"runtime_minutes,omitempty"`
	Rated          string `json:"rated,omitempty"`
	Genre          string `json:"genre,omitempty"`
	Language       string `json:"language,omitempty"`
	Country        string `json:"country,omitempty"`
	Plot           string `json:"plot,omitempty"`
	PosterURL      string `json:"poster_url,omitempty"`
	IMDBID         string `json:"imdb_id"`
}

// Search looks up candidate films by title, optionally narrowed by year.
// Returns an empty slice when no API key is configured or nothing matched.
func (c *OMDBClient) Search(ctx context.Context, title, year string) ([]FilmSearchResult, error) {
	if c.APIKey == "" {
		return []FilmSearchResult{}, nil
	}

	q := url.Values{}
	q.Set("apikey", c.APIKey)
	q.Set("type", "movie")
	q.Set("s", title)
	if year != "" {
		q.Set("y", year)
	}

	var apiResp struct {
		Response string `json:"Response"`
		Search   []struct {
			Title  string `json:"Title"`
			Year   string `json:"Year"`
			IMDBID string `json:"imdbID"`
			Poster string `json:"Poster"`
		} `json:"Search"`
	}
	if err := c.get(ctx, q, &apiResp); err != nil {
		return nil, err
	}
	if apiResp.Response != "True" {
		return []FilmSearchResult{}, nil
	}

	results := make([]FilmSearchResult, 0, len(apiResp.Search))
	for _, s := range apiResp.Search {
		results = append(results, FilmSearchResult{
			Title:     s.Title,
			Year:      s.Year,
			IMDBID:    s.IMDBID,
			PosterURL: omdbField(s.Poster),
		})
	}
	return results, nil
}

// Details fetches the full record for an IMDb id. Returns (nil, nil) when no
// API key is configured or OMDb has no record for the id.
func (c *OMDBClient) Details(ctx context.Context, imdbID string) (*FilmDetails, error) {
	if c.APIKey == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("apikey", c.APIKey)
	q.Set("i", imdbID)
	q.Set("plot", "short")

	var apiResp struct {
		Response string `json:"Response"`
		Title    string `json:"Title"`
		Year     string `json:"Year"`
		Runtime  string `json:"Runtime"`
		Rated    string `json:"Rated"`
		Genre    string `json:"Genre"`
		Language string `json:"Language"`
		Country  string `json:"Country"`
		Plot     string `json:"Plot"`
		Poster   string `json:"Poster"`
		IMDBID   string `json:"imdbID"`
	}
	if err := c.get(ctx, q, &apiResp); err != nil {
		return nil, err
	}
	if apiResp.Response != "True" {
		return nil, nil
	}

	return &FilmDetails{
		Title:          apiResp.Title,
		Year:           parseOMDBYear(apiResp.Year),
		RuntimeMinutes: parseOMDBRuntime(apiResp.Runtime),
		Rated:          omdbField(apiResp.Rated),
		Genre:          omdbField(apiResp.Genre),
		Language:       omdbField(apiResp.Language),
		Country:        omdbField(apiResp.Country),
		Plot:           omdbField(apiResp.Plot),
		PosterURL:      omdbField(apiResp.Poster),
		IMDBID:         apiResp.IMDBID,
	}, nil
}

func (c *OMDBClient) get(ctx context.Context, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build omdb request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("omdb request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("omdb responded %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode omdb response: %w", err)
	}
	return nil
}

// omdbField maps OMDb's "N/A" placeholder to an empty string.
func omdbField(v string) string {
	if v == "N/A" {
		return ""
	}
	return v
}

func parseOMDBYear(v string) *int {
	// Series years come back as ranges like "2019–2021"; take the first part.
	if i := strings.IndexAny(v, "–-"); i > 0 {
		v = v[:i]
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil
	}
	return &n
}

func parseOMDBRuntime(v string) *int {
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "min"))
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}
