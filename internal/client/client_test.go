package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexivanou/geoweather-api/internal/model"
	"github.com/alexivanou/geoweather-api/internal/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Client drives suggest sessions directly
var _ suggest.Provider = (*Client)(nil)

func TestClient_Suggest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/suggest", r.URL.Path)
		assert.Equal(t, "Franc", r.URL.Query().Get("q"))
		assert.Equal(t, "fr", r.URL.Query().Get("lang"))
		json.NewEncoder(w).Encode(model.SuggestResponse{Results: []model.PlaceSuggestion{{Name: "Paris", Country: "France"}}})
	}))
	defer srv.Close()

	got, err := New(srv.URL, "", time.Second).Suggest(context.Background(), "Franc", "fr")
	require.NoError(t, err)
	assert.Equal(t, []model.PlaceSuggestion{{Name: "Paris", Country: "France"}}, got)
}

func TestClient_ForecastErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(model.ErrorResponse{
			Error:     "not_found",
			ErrorCode: model.CodeCityNotFound,
			Message:   "City not found.",
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", time.Second).ForecastByName(context.Background(), "Qqqq", "en")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, model.CodeCityNotFound, apiErr.Code)
	assert.Equal(t, "City not found.", apiErr.Message)
}

func TestClient_ForecastByCoords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/geolocation", r.URL.Path)
		assert.Equal(t, "48.85", r.URL.Query().Get("lat"))
		assert.Equal(t, "2.35", r.URL.Query().Get("lon"))
		json.NewEncoder(w).Encode(model.ForecastResponse{City: "Paris", Country: "France", WindUnit: model.WindUnitKmh})
	}))
	defer srv.Close()

	got, err := New(srv.URL, "", time.Second).ForecastByCoords(context.Background(), 48.85, 2.35, "en")
	require.NoError(t, err)
	assert.Equal(t, "Paris", got.City)
}

func TestClient_Recent(t *testing.T) {
	var stored []model.RecentPlace
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cli-1", r.Header.Get("X-Client-ID"))
		if r.Method == http.MethodPost {
			var p model.RecentPlace
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			stored = append([]model.RecentPlace{p}, stored...)
		}
		json.NewEncoder(w).Encode(model.RecentResponse{Lang: r.URL.Query().Get("lang"), Results: stored})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "cli-1", time.Second)
	ctx := context.Background()

	got, err := c.AddRecent(ctx, "en", model.RecentPlace{Name: "Oslo", Country: "Norway", Lat: 59.9, Lon: 10.7})
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = c.Recent(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, "Oslo", got[0].Name)
}

func TestClient_PlainErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", time.Second).Languages(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Empty(t, apiErr.Code)
}
