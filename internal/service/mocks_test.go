package service

import (
	"context"
	"testing"

	"github.com/alexivanou/geoweather-api/internal/capital"
	"github.com/alexivanou/geoweather-api/internal/i18n"
	"github.com/alexivanou/geoweather-api/internal/model"
	"github.com/alexivanou/geoweather-api/internal/provider"
	"github.com/alexivanou/geoweather-api/internal/recent"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGeocoder implements provider.Geocoder
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Search(ctx context.Context, name, lang string, count int) ([]model.GeocodingResult, error) {
	args := m.Called(ctx, name, lang, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GeocodingResult), args.Error(1)
}

// MockForecaster implements provider.Forecaster
type MockForecaster struct {
	mock.Mock
}

func (m *MockForecaster) Forecast(ctx context.Context, lat, lon float64, timezone string) (*model.ForecastPayload, error) {
	args := m.Called(ctx, lat, lon, timezone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ForecastPayload), args.Error(1)
}

// MockReverseGeocoder implements provider.ReverseGeocoder
type MockReverseGeocoder struct {
	mock.Mock
}

func (m *MockReverseGeocoder) Reverse(ctx context.Context, lat, lon float64, lang string) (model.PlaceLabel, error) {
	args := m.Called(ctx, lat, lon, lang)
	return args.Get(0).(model.PlaceLabel), args.Error(1)
}

type fixture struct {
	svc        *Service
	geocoder   *MockGeocoder
	forecaster *MockForecaster
	reverse    *MockReverseGeocoder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	capitals, err := capital.Default()
	require.NoError(t, err)
	registry, err := i18n.DefaultRegistry()
	require.NoError(t, err)

	f := &fixture{
		geocoder:   new(MockGeocoder),
		forecaster: new(MockForecaster),
		reverse:    new(MockReverseGeocoder),
	}
	f.svc = NewService(Deps{
		Providers: &provider.Container{
			Geocoder:   f.geocoder,
			Forecaster: f.forecaster,
			Reverse:    f.reverse,
		},
		Capitals:   capitals,
		Registry:   registry,
		Translator: i18n.NewTranslator(i18n.NewCache("strings", registry.StringLoader(), nil), nil),
		Conditions: i18n.NewConditions(i18n.NewCache("conditions", registry.ConditionLoader(), nil)),
		Recent:     recent.NewStore(recent.NewMemorySlot(), nil),
	})
	return f
}
