// Package gmaps provides a client for the Google Maps Geocoding and Places
// web service APIs used by the structured acquisition path.
package gmaps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

// Client performs Google Maps API operations.
type Client interface {
	// Geocode resolves a free-form address to a coordinate. A nil result
	// with a nil error means the provider matched nothing.
	Geocode(ctx context.Context, address string) (*LatLng, error)
	// NearbySearch returns establishment stubs around a coordinate.
	NearbySearch(ctx context.Context, loc LatLng, radiusMeters int, keyword string) ([]PlaceStub, error)
	// PlaceDetails fetches the extended record for one place.
	PlaceDetails(ctx context.Context, placeID string, fields []string) (*PlaceDetail, error)
	// PhotoURL builds a photo fetch URL for a photo reference.
	PhotoURL(photoReference string, maxWidth int) string
}

// LatLng is a geographic coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceStub is the abbreviated record returned by Nearby Search.
type PlaceStub struct {
	PlaceID string `json:"place_id"`
	Name    string `json:"name"`
}

// PlaceDetail is the extended record returned by Place Details.
type PlaceDetail struct {
	Name            string       `json:"name"`
	Address         string       `json:"formatted_address"`
	Phone           string       `json:"formatted_phone_number"`
	Website         string       `json:"website"`
	Rating          float64      `json:"rating"`
	UserRatingCount int          `json:"user_ratings_total"`
	OpeningHours    OpeningHours `json:"opening_hours"`
	Geometry        Geometry     `json:"geometry"`
	Types           []string     `json:"types"`
	Photos          []Photo      `json:"photos"`
}

// OpeningHours holds the per-weekday hour strings.
type OpeningHours struct {
	WeekdayText []string `json:"weekday_text"`
}

// Geometry holds the place coordinate.
type Geometry struct {
	Location LatLng `json:"location"`
}

// Photo is a photo reference stub.
type Photo struct {
	PhotoReference string `json:"photo_reference"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request rate limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Google Maps API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(10, 10),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// get performs a rate-limited GET against path with the given query params
// and decodes the JSON response body into out.
func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "gmaps: rate limit")
	}

	params.Set("key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "gmaps: build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "gmaps: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "gmaps: read body")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("gmaps: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "gmaps: parse response")
	}
	return nil
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry Geometry `json:"geometry"`
	} `json:"results"`
}

func (c *httpClient) Geocode(ctx context.Context, address string) (*LatLng, error) {
	var resp geocodeResponse
	params := url.Values{"address": {address}}
	if err := c.get(ctx, "/geocode/json", params, &resp); err != nil {
		return nil, err
	}

	if resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
		return nil, eris.Errorf("gmaps: geocode status %s", resp.Status)
	}
	if resp.Status == "ZERO_RESULTS" || len(resp.Results) == 0 {
		return nil, nil
	}

	loc := resp.Results[0].Geometry.Location
	return &loc, nil
}

type nearbyResponse struct {
	Status  string      `json:"status"`
	Results []PlaceStub `json:"results"`
}

func (c *httpClient) NearbySearch(ctx context.Context, loc LatLng, radiusMeters int, keyword string) ([]PlaceStub, error) {
	params := url.Values{
		"location": {fmt.Sprintf("%g,%g", loc.Lat, loc.Lng)},
		"radius":   {strconv.Itoa(radiusMeters)},
		"keyword":  {keyword},
		"type":     {"establishment"},
	}

	var resp nearbyResponse
	if err := c.get(ctx, "/place/nearbysearch/json", params, &resp); err != nil {
		return nil, err
	}

	if resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
		return nil, eris.Errorf("gmaps: nearby search status %s", resp.Status)
	}
	return resp.Results, nil
}

type detailsResponse struct {
	Status string      `json:"status"`
	Result PlaceDetail `json:"result"`
}

func (c *httpClient) PlaceDetails(ctx context.Context, placeID string, fields []string) (*PlaceDetail, error) {
	params := url.Values{
		"place_id": {placeID},
	}
	if len(fields) > 0 {
		params.Set("fields", strings.Join(fields, ","))
	}

	var resp detailsResponse
	if err := c.get(ctx, "/place/details/json", params, &resp); err != nil {
		return nil, err
	}

	if resp.Status != "OK" {
		return nil, eris.Errorf("gmaps: place details status %s", resp.Status)
	}
	return &resp.Result, nil
}

func (c *httpClient) PhotoURL(photoReference string, maxWidth int) string {
	params := url.Values{
		"maxwidth":       {strconv.Itoa(maxWidth)},
		"photoreference": {photoReference},
		"key":            {c.apiKey},
	}
	return c.baseURL + "/place/photo?" + params.Encode()
}
