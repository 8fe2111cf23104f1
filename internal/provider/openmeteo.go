package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alexivanou/geoweather-api/internal/model"
	"go.uber.org/zap"
)

const (
	currentFields = "temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m"
	dailyFields   = "weather_code,temperature_2m_max,temperature_2m_min"
)

// OpenMeteo is the geocoding and forecast client
type OpenMeteo struct {
	geocodingURL string
	forecastURL  string
	client       *http.Client
	logger       *zap.Logger
}

// NewOpenMeteo creates a client for the given geocoding and forecast endpoints
func NewOpenMeteo(geocodingURL, forecastURL string, client *http.Client, logger *zap.Logger) *OpenMeteo {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenMeteo{
		geocodingURL: geocodingURL,
		forecastURL:  forecastURL,
		client:       client,
		logger:       logger,
	}
}

// Search returns up to count places matching name, labelled in lang.
// No match is an empty slice, not an error.
func (o *OpenMeteo) Search(ctx context.Context, name, lang string, count int) ([]model.GeocodingResult, error) {
	params := url.Values{
		"name":     {name},
		"count":    {strconv.Itoa(count)},
		"language": {lang},
		"format":   {"json"},
	}

	body, err := getBody(ctx, o.client, "geocoding", o.geocodingURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Results []model.GeocodingResult `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("geocoding: decode: %w", err)
	}
	if payload.Results == nil {
		payload.Results = []model.GeocodingResult{}
	}

	o.logger.Debug("Geocoding search",
		zap.String("name", name),
		zap.String("lang", lang),
		zap.Int("results", len(payload.Results)),
	)
	return payload.Results, nil
}

// Forecast returns current conditions and the daily series in Celsius and km/h.
// An empty timezone asks the provider to pick one.
func (o *OpenMeteo) Forecast(ctx context.Context, lat, lon float64, timezone string) (*model.ForecastPayload, error) {
	if timezone == "" {
		timezone = "auto"
	}
	params := url.Values{
		"latitude":         {formatCoord(lat)},
		"longitude":        {formatCoord(lon)},
		"current":          {currentFields},
		"daily":            {dailyFields},
		"timezone":         {timezone},
		"temperature_unit": {"celsius"},
		"wind_speed_unit":  {"kmh"},
	}

	body, err := getBody(ctx, o.client, "forecast", o.forecastURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var payload model.ForecastPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("forecast: decode: %w", err)
	}
	return &payload, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
