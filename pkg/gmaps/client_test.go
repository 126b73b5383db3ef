package gmaps

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/json", r.URL.Path)
		assert.Equal(t, "Curitiba, PR", r.URL.Query().Get("address"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{"geometry": {"location": {"lat": -25.43, "lng": -49.27}}}]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	loc, err := client.Geocode(context.Background(), "Curitiba, PR")

	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.InDelta(t, -25.43, loc.Lat, 0.001)
	assert.InDelta(t, -49.27, loc.Lng, 0.001)
}

func TestGeocode_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	loc, err := client.Geocode(context.Background(), "Lugar Nenhum, XX")

	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestGeocode_APIError(t *testing.T) {
	// Error statuses carry empty results; they must surface as errors,
	// never as a no-match nil result.
	for _, status := range []string{"REQUEST_DENIED", "OVER_QUERY_LIMIT", "INVALID_REQUEST"} {
		t.Run(status, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"status": "` + status + `", "results": []}`))
			}))
			defer srv.Close()

			client := NewClient("bad-key", WithBaseURL(srv.URL))
			loc, err := client.Geocode(context.Background(), "Curitiba, PR")

			require.Error(t, err)
			assert.Nil(t, loc)
			assert.Contains(t, err.Error(), status)
		})
	}
}

func TestNearbySearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/nearbysearch/json", r.URL.Path)
		assert.Equal(t, "-25.43,-49.27", r.URL.Query().Get("location"))
		assert.Equal(t, "5000", r.URL.Query().Get("radius"))
		assert.Equal(t, "padaria", r.URL.Query().Get("keyword"))
		assert.Equal(t, "establishment", r.URL.Query().Get("type"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(nearbyResponse{
			Status: "OK",
			Results: []PlaceStub{
				{PlaceID: "pid-1", Name: "Padaria A"},
				{PlaceID: "pid-2", Name: "Padaria B"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	stubs, err := client.NearbySearch(context.Background(), LatLng{Lat: -25.43, Lng: -49.27}, 5000, "padaria")

	require.NoError(t, err)
	require.Len(t, stubs, 2)
	assert.Equal(t, "pid-1", stubs[0].PlaceID)
	assert.Equal(t, "Padaria B", stubs[1].Name)
}

func TestNearbySearch_ZeroResultsIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	stubs, err := client.NearbySearch(context.Background(), LatLng{}, 1000, "padaria")

	require.NoError(t, err)
	assert.Empty(t, stubs)
}

func TestPlaceDetails_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/details/json", r.URL.Path)
		assert.Equal(t, "pid-1", r.URL.Query().Get("place_id"))
		assert.Contains(t, r.URL.Query().Get("fields"), "formatted_phone_number")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"result": {
				"name": "Padaria A",
				"formatted_address": "Rua XV de Novembro, 100 - Curitiba",
				"formatted_phone_number": "(41) 3333-4444",
				"website": "https://padaria-a.com.br",
				"rating": 4.6,
				"user_ratings_total": 212,
				"opening_hours": {"weekday_text": ["Monday: 7AM-7PM", "Tuesday: 7AM-7PM"]},
				"geometry": {"location": {"lat": -25.42, "lng": -49.26}},
				"types": ["bakery", "food"],
				"photos": [{"photo_reference": "ref-1"}]
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	detail, err := client.PlaceDetails(context.Background(), "pid-1", []string{"name", "formatted_phone_number"})

	require.NoError(t, err)
	assert.Equal(t, "Padaria A", detail.Name)
	assert.Equal(t, "(41) 3333-4444", detail.Phone)
	assert.Equal(t, 212, detail.UserRatingCount)
	assert.Len(t, detail.OpeningHours.WeekdayText, 2)
	assert.InDelta(t, -25.42, detail.Geometry.Location.Lat, 0.001)
	require.Len(t, detail.Photos, 1)
	assert.Equal(t, "ref-1", detail.Photos[0].PhotoReference)
}

func TestPlaceDetails_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "NOT_FOUND", "result": {}}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	detail, err := client.PlaceDetails(context.Background(), "gone", nil)

	assert.Error(t, err)
	assert.Nil(t, detail)
}

func TestPlaceDetails_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.PlaceDetails(context.Background(), "pid-1", nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestPhotoURL(t *testing.T) {
	client := NewClient("test-key")
	u := client.PhotoURL("ref-abc", 400)

	assert.Contains(t, u, "/place/photo?")
	assert.Contains(t, u, "maxwidth=400")
	assert.Contains(t, u, "photoreference=ref-abc")
	assert.Contains(t, u, "key=test-key")
}

func TestContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Geocode(ctx, "Curitiba, PR")

	assert.Error(t, err)
}
