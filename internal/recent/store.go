// Package recent keeps the most recently selected places of each language.
package recent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexivanou/geoweather-api/internal/metrics"
	"github.com/alexivanou/geoweather-api/internal/model"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// MaxItems is the capacity of one language's list
const MaxItems = 5

const keyPrefix = "recentSearches_"

// Slot is a durable key -> payload store. Read returns nil, nil for an absent key.
type Slot interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, payload []byte) error
}

// Updater is implemented by slots that can run a read-modify-write under one lock
type Updater interface {
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
}

// Store is a per-language MRU list of places on top of a Slot. Storage failures are
// logged and absorbed: callers always get a usable list back.
type Store struct {
	slot      Slot
	namespace string
	logger    *zap.Logger
}

// NewStore creates a store over slot
func NewStore(slot Slot, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{slot: slot, logger: logger}
}

// WithNamespace returns a store whose keys are isolated under namespace
func (s *Store) WithNamespace(namespace string) *Store {
	cp := *s
	cp.namespace = namespace
	return &cp
}

// Key returns the slot key of lang
func (s *Store) Key(lang string) string {
	if s.namespace == "" {
		return keyPrefix + lang
	}
	return s.namespace + ":" + keyPrefix + lang
}

// Load returns the list of lang, most recent first
func (s *Store) Load(ctx context.Context, lang string) []model.RecentPlace {
	raw, err := s.slot.Read(ctx, s.Key(lang))
	if err != nil {
		s.logger.Warn("Failed to read recent places", zap.String("key", s.Key(lang)), zap.Error(err))
		return []model.RecentPlace{}
	}
	return Decode(raw)
}

// Add moves place to the front of lang's list, persists the list and returns it
func (s *Store) Add(ctx context.Context, lang string, place model.RecentPlace) []model.RecentPlace {
	key := s.Key(lang)

	if u, ok := s.slot.(Updater); ok {
		var updated []model.RecentPlace
		err := u.Update(ctx, key, func(current []byte) ([]byte, error) {
			updated = prepend(Decode(current), place)
			return json.Marshal(updated)
		})
		if err != nil {
			s.writeFailed(key, err)
			if updated == nil {
				updated = prepend(s.Load(ctx, lang), place)
			}
		}
		return updated
	}

	updated := prepend(s.Load(ctx, lang), place)
	payload, err := json.Marshal(updated)
	if err == nil {
		err = s.slot.Write(ctx, key, payload)
	}
	if err != nil {
		s.writeFailed(key, err)
	}
	return updated
}

func (s *Store) writeFailed(key string, err error) {
	metrics.RecentWriteFailTotal.Inc()
	s.logger.Warn("Failed to persist recent places", zap.String("key", key), zap.Error(err))
}

func prepend(current []model.RecentPlace, place model.RecentPlace) []model.RecentPlace {
	updated := make([]model.RecentPlace, 0, MaxItems)
	updated = append(updated, place)
	for _, p := range current {
		if len(updated) == MaxItems {
			break
		}
		if p.SameIdentity(place) {
			continue
		}
		updated = append(updated, p)
	}
	return updated
}

// Decode parses a persisted list. Payloads that are not a JSON array yield an empty list;
// entries without a string name and country and numeric lat and lon are dropped.
func Decode(raw []byte) []model.RecentPlace {
	places := []model.RecentPlace{}
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return places
	}
	list := gjson.ParseBytes(raw)
	if !list.IsArray() {
		return places
	}
	list.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		name, country := item.Get("name"), item.Get("country")
		lat, lon := item.Get("lat"), item.Get("lon")
		if name.Type != gjson.String || country.Type != gjson.String ||
			lat.Type != gjson.Number || lon.Type != gjson.Number {
			return true
		}
		place := model.RecentPlace{
			Name:    name.String(),
			Country: country.String(),
			Lat:     lat.Float(),
			Lon:     lon.Float(),
		}
		for _, p := range places {
			if p.SameIdentity(place) {
				return true
			}
		}
		places = append(places, place)
		return len(places) < MaxItems
	})
	return places
}

// ErrSlotClosed is returned by slots used after Close
var ErrSlotClosed = fmt.Errorf("recent slot closed")
