package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postcard/internal/models"
)

const reverseBody = `{
	"results": [{
		"locations": [
			{"street": "Bridge Street", "adminArea5": "London", "adminArea1": "GB"},
			{"street": "", "adminArea5": "London", "adminArea1": "GB"}
		]
	}]
}`

const radiusBody = `{
	"resultsCount": 2,
	"searchResults": [
		{"name": "Big Ben"},
		{"name": "Westminster Abbey"}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key")
	c.baseURL = srv.URL
	c.httpClient = srv.Client()
	return c
}

func TestLookupConcatenatesBothCalls(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		switch r.URL.Path {
		case "/geocoding/v1/reverse":
			w.Write([]byte(reverseBody))
		case "/search/v2/radius":
			w.Write([]byte(radiusBody))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	got, err := client.Lookup(context.Background(), models.Coordinate{Lat: 51.5074, Lng: -0.1278}, 3, 5)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "Bridge Street", got[0].Street)
	assert.Equal(t, "Big Ben", got[2].Name)
}

func TestNearbySearchNoResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resultsCount": 0, "searchResults": []}`))
	})

	got, err := client.NearbySearch(context.Background(), models.Coordinate{}, 3, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReverseGeocodeServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.ReverseGeocode(context.Background(), models.Coordinate{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestReverseGeocodeMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := client.ReverseGeocode(context.Background(), models.Coordinate{})
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestRetriesAreOffByDefault(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := client.ReverseGeocode(context.Background(), models.Coordinate{})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetriesWhenConfigured(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		w.Write([]byte(reverseBody))
	})
	client.Retries = 2

	got, err := client.ReverseGeocode(context.Background(), models.Coordinate{})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, got, 2)
}
