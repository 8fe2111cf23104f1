package service

import (
	"strings"

	"github.com/alexivanou/geoweather-api/internal/capital"
	"github.com/alexivanou/geoweather-api/internal/i18n"
	"github.com/alexivanou/geoweather-api/internal/model"
	"github.com/alexivanou/geoweather-api/internal/provider"
	"github.com/alexivanou/geoweather-api/internal/recent"
	"go.uber.org/zap"
)

const (
	defaultLang    = i18n.FallbackLang
	minQueryLength = 2
)

var messageKeys = map[model.ErrorCode]string{
	model.CodeCityTooShort:   "errorCityTooShort",
	model.CodeCityNotFound:   "errorCityNotFound",
	model.CodeCoordsRequired: "errorCoordsRequired",
	model.CodeFetchFailed:    "errorFetchFailed",
}

// Deps groups the collaborators of Service
type Deps struct {
	Providers  *provider.Container
	Capitals   *capital.Matcher
	Registry   *i18n.Registry
	Translator *i18n.Translator
	Conditions *i18n.Conditions
	Recent     *recent.Store
	Logger     *zap.Logger
}

// Service provides business logic for the API
type Service struct {
	geocoder   provider.Geocoder
	forecaster provider.Forecaster
	reverse    provider.ReverseGeocoder
	capitals   *capital.Matcher
	registry   *i18n.Registry
	translator *i18n.Translator
	conditions *i18n.Conditions
	recent     *recent.Store
	logger     *zap.Logger
}

// NewService creates a new service instance
func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		geocoder:   deps.Providers.Geocoder,
		forecaster: deps.Providers.Forecaster,
		reverse:    deps.Providers.Reverse,
		capitals:   deps.Capitals,
		registry:   deps.Registry,
		translator: deps.Translator,
		conditions: deps.Conditions,
		recent:     deps.Recent,
		logger:     logger,
	}
}

// ResolveLang normalizes a requested language code. Unknown or empty codes resolve to English.
func (s *Service) ResolveLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" || !s.registry.Supported(lang) {
		return defaultLang
	}
	return lang
}

// GetLanguages returns the supported languages
func (s *Service) GetLanguages() []model.Language {
	return s.registry.Languages()
}

// GetTranslations returns the effective UI strings of lang
func (s *Service) GetTranslations(lang string) map[string]string {
	return s.translator.Effective(s.ResolveLang(lang))
}

// GetConditions returns the effective weather-condition labels of lang
func (s *Service) GetConditions(lang string) map[string]i18n.Condition {
	return s.conditions.Effective(s.ResolveLang(lang))
}

// LocalizedMessage returns the user-facing text of an error code
func (s *Service) LocalizedMessage(lang string, code model.ErrorCode) string {
	key, ok := messageKeys[code]
	if !ok {
		key = "errorDefault"
	}
	return s.translator.T(s.ResolveLang(lang), key)
}
