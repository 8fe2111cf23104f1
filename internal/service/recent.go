package service

import (
	"context"
	"strings"

	"github.com/alexivanou/geoweather-api/internal/model"
)

// GetRecent returns the recent places of a client namespace in lang
func (s *Service) GetRecent(ctx context.Context, namespace, lang string) []model.RecentPlace {
	return s.recent.WithNamespace(namespace).Load(ctx, s.ResolveLang(lang))
}

// AddRecent records a selected place and returns the updated list
func (s *Service) AddRecent(ctx context.Context, namespace, lang string, place model.RecentPlace) ([]model.RecentPlace, error) {
	place.Name = strings.TrimSpace(place.Name)
	place.Country = strings.TrimSpace(place.Country)
	if !place.Valid() {
		return nil, model.NewError(model.CodeInvalidPlace, nil)
	}
	if err := validateCoords(place.Lat, place.Lon); err != nil {
		return nil, err
	}
	return s.recent.WithNamespace(namespace).Add(ctx, s.ResolveLang(lang), place), nil
}
