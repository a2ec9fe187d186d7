// Package geocode talks to the MapQuest geocoding API: a reverse geocode for
// the street-level hit and a radius search for nearby points of interest.
// Both calls return lists of LocationCandidate records that the naming
// aggregator merges into one display name.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"postcard/internal/models"
)

// ErrUnavailable means the geocoding service returned a non-2xx status or an
// unparseable body. It is fatal for the photo being processed; there is no
// implicit retry.
var ErrUnavailable = errors.New("geocode: service unavailable")

// LocationCandidate is one geocoder result. Admin areas 1 and 3 arrive as
// ISO codes (country, subdivision) and are resolved to display names by the
// aggregator; the other fields are already display strings. Empty fields
// were absent from the response.
type LocationCandidate struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	AdminArea6 string `json:"adminArea6"`
	AdminArea5 string `json:"adminArea5"`
	AdminArea4 string `json:"adminArea4"`
	AdminArea3 string `json:"adminArea3"`
	AdminArea2 string `json:"adminArea2"`
	AdminArea1 string `json:"adminArea1"`
}

type reverseResponse struct {
	Results []struct {
		Locations []LocationCandidate `json:"locations"`
	} `json:"results"`
}

type radiusResponse struct {
	ResultsCount  int                 `json:"resultsCount"`
	SearchResults []LocationCandidate `json:"searchResults"`
}

// Client calls the MapQuest reverse-geocoding and radius-search endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        string

	// Retries is how many times a failed call is re-attempted. The
	// reference behavior is no retry; it exists as a knob only.
	Retries int
}

// NewClient returns a Client using the given API key.
func NewClient(key string) *Client {
	return &Client{
		httpClient: http.DefaultClient,
		baseURL:    "http://www.mapquestapi.com",
		key:        key,
	}
}

// ReverseGeocode asks for the street-level address of a coordinate and
// returns the locations of the first result.
func (c *Client) ReverseGeocode(ctx context.Context, coord models.Coordinate) ([]LocationCandidate, error) {
	params := url.Values{}
	params.Set("key", c.key)
	params.Set("location", coord.String())
	params.Set("includeNearestIntersection", "true")

	var resp reverseResponse
	if err := c.get(ctx, "/geocoding/v1/reverse", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return resp.Results[0].Locations, nil
}

// NearbySearch returns up to maxMatches points of interest within radius
// walking minutes of the coordinate. No results is not an error.
func (c *Client) NearbySearch(ctx context.Context, coord models.Coordinate, radius, maxMatches int) ([]LocationCandidate, error) {
	params := url.Values{}
	params.Set("key", c.key)
	params.Set("origin", coord.String())
	params.Set("radius", fmt.Sprintf("%d", radius))
	params.Set("units", "wmin")
	params.Set("maxMatches", fmt.Sprintf("%d", maxMatches))
	params.Set("hostedData", "mqap.ntpois")

	var resp radiusResponse
	if err := c.get(ctx, "/search/v2/radius", params, &resp); err != nil {
		return nil, err
	}
	if resp.ResultsCount == 0 {
		return nil, nil
	}
	return resp.SearchResults, nil
}

// Lookup performs both calls and concatenates their candidates. The reverse
// result comes first; deduplication happens later in the candidate sets.
func (c *Client) Lookup(ctx context.Context, coord models.Coordinate, radius, maxMatches int) ([]LocationCandidate, error) {
	primary, err := c.ReverseGeocode(ctx, coord)
	if err != nil {
		return nil, err
	}
	nearby, err := c.NearbySearch(ctx, coord, radius, maxMatches)
	if err != nil {
		return nil, err
	}
	return append(primary, nearby...), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.Retries; attempt++ {
		if attempt > 0 {
			log.Printf("Retrying geocoding call %s (attempt %d of %d)", path, attempt, c.Retries)
		}
		if lastErr = c.getOnce(ctx, path, params, out); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (c *Client) getOnce(ctx context.Context, path string, params url.Values, out any) error {
	u := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %s", ErrUnavailable, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	return nil
}
