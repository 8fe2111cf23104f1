package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alexivanou/geoweather-api/internal/metrics"
	"github.com/alexivanou/geoweather-api/internal/model"
	"github.com/alexivanou/geoweather-api/internal/provider"
	"go.uber.org/zap"
)

const forecastGeocodeCount = 5

// errNoDailySeries marks a forecast payload without any usable day
var errNoDailySeries = errors.New("forecast has no daily series")

// ParseCoords validates raw lat/lon query values
func ParseCoords(latRaw, lonRaw string) (float64, float64, error) {
	latRaw, lonRaw = strings.TrimSpace(latRaw), strings.TrimSpace(lonRaw)
	if latRaw == "" || lonRaw == "" {
		return 0, 0, model.NewError(model.CodeCoordsRequired, nil)
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return 0, 0, model.NewError(model.CodeInvalidCoords, err)
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return 0, 0, model.NewError(model.CodeInvalidCoords, err)
	}
	if err := validateCoords(lat, lon); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

func validateCoords(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return model.NewError(model.CodeInvalidCoords, fmt.Errorf("coordinate out of range: %v,%v", lat, lon))
	}
	return nil
}

// ForecastByName geocodes city and returns the forecast of its best match
func (s *Service) ForecastByName(ctx context.Context, city, lang string) (*model.ForecastResponse, error) {
	lang = s.ResolveLang(lang)
	city = strings.TrimSpace(city)
	if utf8.RuneCountInString(city) < minQueryLength {
		return nil, s.fail(model.CodeCityTooShort, nil)
	}

	name, country := splitPlace(city)
	if utf8.RuneCountInString(name) < minQueryLength {
		return nil, s.fail(model.CodeCityTooShort, nil)
	}

	found, err := s.geocoder.Search(ctx, name, lang, forecastGeocodeCount)
	if err != nil {
		return nil, s.fail(model.CodeFetchFailed, fmt.Errorf("failed to geocode %q: %w", city, err))
	}
	if len(found) == 0 {
		return nil, s.fail(model.CodeCityNotFound, nil)
	}
	best := bestMatch(found, country)

	payload, err := s.forecaster.Forecast(ctx, best.Latitude, best.Longitude, best.Timezone)
	if err != nil {
		return nil, s.fail(model.CodeFetchFailed, fmt.Errorf("failed to fetch forecast: %w", err))
	}

	resp, err := s.buildForecast(payload, lang)
	if err != nil {
		return nil, s.fail(model.CodeFetchFailed, err)
	}
	resp.City = best.Name
	resp.Country = best.Country
	resp.Latitude = best.Latitude
	resp.Longitude = best.Longitude
	if best.Timezone != "" {
		resp.Timezone = best.Timezone
	}
	return resp, nil
}

// ForecastByCoords returns the forecast of a coordinate labelled by reverse geocoding.
// A reverse geocoding failure only degrades the labels.
func (s *Service) ForecastByCoords(ctx context.Context, lat, lon float64, lang string) (*model.ForecastResponse, error) {
	lang = s.ResolveLang(lang)
	if err := validateCoords(lat, lon); err != nil {
		return nil, s.fail(model.CodeInvalidCoords, errors.Unwrap(err))
	}

	labels := make(chan model.PlaceLabel, 1)
	go func() {
		label, err := s.reverse.Reverse(ctx, lat, lon, lang)
		if err != nil {
			s.logger.Warn("Reverse geocoding failed",
				zap.Float64("lat", lat),
				zap.Float64("lon", lon),
				zap.Error(err),
			)
			label = model.PlaceLabel{City: provider.UnknownPlace, Country: provider.UnknownPlace}
		}
		labels <- label
	}()

	payload, err := s.forecaster.Forecast(ctx, lat, lon, "auto")
	label := <-labels
	if err != nil {
		return nil, s.fail(model.CodeFetchFailed, fmt.Errorf("failed to fetch forecast: %w", err))
	}

	resp, err := s.buildForecast(payload, lang)
	if err != nil {
		return nil, s.fail(model.CodeFetchFailed, err)
	}
	resp.City = label.City
	resp.Country = label.Country
	resp.Latitude = lat
	resp.Longitude = lon
	return resp, nil
}

// splitPlace separates a "name, country" selection into its parts
func splitPlace(city string) (string, string) {
	name, country, ok := strings.Cut(city, ",")
	if !ok {
		return city, ""
	}
	return strings.TrimSpace(name), strings.TrimSpace(country)
}

// bestMatch returns the first result in country, by name or ISO code, or the top result
func bestMatch(found []model.GeocodingResult, country string) model.GeocodingResult {
	if country != "" {
		for _, r := range found {
			if strings.EqualFold(r.Country, country) || strings.EqualFold(r.CountryCode, country) {
				return r
			}
		}
	}
	return found[0]
}

func (s *Service) fail(code model.ErrorCode, err error) error {
	metrics.ForecastErrorsTotal.WithLabelValues(string(code)).Inc()
	return model.NewError(code, err)
}

func (s *Service) buildForecast(p *model.ForecastPayload, lang string) (*model.ForecastResponse, error) {
	d := p.Daily
	days := min(len(d.Time), len(d.WeatherCode), len(d.TemperatureMax), len(d.TemperatureMin), model.ForecastDays)
	if days == 0 {
		return nil, errNoDailySeries
	}

	resp := &model.ForecastResponse{
		Timezone:            p.Timezone,
		Temperature:         p.Current.Temperature,
		ApparentTemperature: p.Current.ApparentTemperature,
		Humidity:            p.Current.RelativeHumidity,
		WindSpeed:           math.Round(p.Current.WindSpeed),
		WindUnit:            model.WindUnitKmh,
		WeatherCode:         p.Current.WeatherCode,
		Condition:           s.conditions.Describe(lang, p.Current.WeatherCode).Label,
	}

	resp.DailyForecast = make([]model.DailyForecast, 0, days)
	for i := 0; i < days; i++ {
		resp.DailyForecast = append(resp.DailyForecast, model.DailyForecast{
			Date:        d.Time[i],
			WeatherCode: d.WeatherCode[i],
			TempMax:     d.TemperatureMax[i],
			TempMin:     d.TemperatureMin[i],
			Condition:   s.conditions.Describe(lang, d.WeatherCode[i]).Label,
		})
	}
	return resp, nil
}
