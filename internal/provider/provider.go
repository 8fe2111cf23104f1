// Package provider talks to the upstream geocoding, forecast and reverse geocoding services.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alexivanou/geoweather-api/internal/config"
	"github.com/alexivanou/geoweather-api/internal/metrics"
	"github.com/alexivanou/geoweather-api/internal/model"
	"go.uber.org/zap"
)

const maxBodyBytes = 2 << 20

// Geocoder resolves a place name into candidate places
type Geocoder interface {
	Search(ctx context.Context, name, lang string, count int) ([]model.GeocodingResult, error)
}

// Forecaster fetches current conditions and the daily forecast for a coordinate
type Forecaster interface {
	Forecast(ctx context.Context, lat, lon float64, timezone string) (*model.ForecastPayload, error)
}

// ReverseGeocoder resolves a coordinate into a city/country label
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64, lang string) (model.PlaceLabel, error)
}

// Container holds all upstream clients
type Container struct {
	Geocoder   Geocoder
	Forecaster Forecaster
	Reverse    ReverseGeocoder
}

// New creates the upstream clients described by cfg
func New(cfg config.UpstreamConfig, logger *zap.Logger) *Container {
	client := &http.Client{Timeout: cfg.Timeout}
	meteo := NewOpenMeteo(cfg.GeocodingURL, cfg.ForecastURL, client, logger)
	return &Container{
		Geocoder:   meteo,
		Forecaster: meteo,
		Reverse:    NewNominatim(cfg.ReverseURL, cfg.UserAgent, cfg.ReverseRPS, client, logger),
	}
}

// getBody performs a GET and returns the body of a 200 response. Every call is counted
// and timed under the provider label.
func getBody(ctx context.Context, client *http.Client, name, reqURL string, header http.Header) ([]byte, error) {
	metrics.UpstreamRequestsTotal.WithLabelValues(name).Inc()
	start := time.Now()
	defer func() {
		metrics.UpstreamDurationMs.WithLabelValues(name).Observe(float64(time.Since(start).Milliseconds()))
	}()

	body, err := doGet(ctx, client, reqURL, header)
	if err != nil {
		metrics.UpstreamFailTotal.WithLabelValues(name).Inc()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return body, nil
}

func doGet(ctx context.Context, client *http.Client, reqURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
