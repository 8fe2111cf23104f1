package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/alexivanou/geoweather-api/internal/metrics"
	"github.com/alexivanou/geoweather-api/internal/model"
	"go.uber.org/zap"
)

// MaxSuggestions bounds the suggestion list
const MaxSuggestions = 8

// SuggestPlaces returns up to MaxSuggestions places for a partial query. A capital whose
// country matches the query comes first. Short queries and provider failures yield an
// empty list, never an error.
func (s *Service) SuggestPlaces(ctx context.Context, req model.SuggestRequest) (*model.SuggestResponse, error) {
	query := strings.TrimSpace(req.Query)
	lang := s.ResolveLang(req.Lang)
	empty := &model.SuggestResponse{Results: []model.PlaceSuggestion{}}

	if utf8.RuneCountInString(query) < minQueryLength {
		return empty, nil
	}

	metrics.SuggestRequestsTotal.Inc()
	found, err := s.geocoder.Search(ctx, query, lang, MaxSuggestions)
	if err != nil {
		metrics.SuggestProviderErrorsTotal.Inc()
		s.logger.Warn("Suggestion lookup failed", zap.String("query", query), zap.Error(err))
		return empty, nil
	}

	results := make([]model.PlaceSuggestion, 0, MaxSuggestions)
	seen := make(map[string]struct{}, len(found)+1)
	for _, r := range found {
		p := model.PlaceSuggestion{Name: strings.TrimSpace(r.Name), Country: strings.TrimSpace(r.Country)}
		if _, dup := seen[p.Key()]; dup {
			continue
		}
		seen[p.Key()] = struct{}{}
		results = append(results, p)
	}

	if c, ok := s.capitals.Match(query, lang); ok {
		if _, present := seen[c.Key()]; !present {
			metrics.SuggestCapitalMatchTotal.Inc()
			results = append([]model.PlaceSuggestion{c}, results...)
		}
	}

	if len(results) > MaxSuggestions {
		results = results[:MaxSuggestions]
	}
	return &model.SuggestResponse{Results: results}, nil
}
