package service

import (
	"context"

	"github.com/alexivanou/geoweather-api/internal/i18n"
	"github.com/alexivanou/geoweather-api/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	SuggestPlaces(ctx context.Context, req model.SuggestRequest) (*model.SuggestResponse, error)
	ForecastByName(ctx context.Context, city, lang string) (*model.ForecastResponse, error)
	ForecastByCoords(ctx context.Context, lat, lon float64, lang string) (*model.ForecastResponse, error)
	GetRecent(ctx context.Context, namespace, lang string) []model.RecentPlace
	AddRecent(ctx context.Context, namespace, lang string, place model.RecentPlace) ([]model.RecentPlace, error)
	GetLanguages() []model.Language
	GetTranslations(lang string) map[string]string
	GetConditions(lang string) map[string]i18n.Condition
	LocalizedMessage(lang string, code model.ErrorCode) string
	ResolveLang(lang string) string
}
