// Package capital matches free text against known countries and suggests their capitals.
package capital

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alexivanou/geoweather-api/internal/model"
	"github.com/tidwall/gjson"
)

//go:embed data/country-capitals.json
var defaultDataset []byte

const fallbackLang = "en"

// Entry is one country of the dataset. Names and Capital are keyed by language code.
type Entry struct {
	Code    string
	Lat     float64
	Lon     float64
	Names   map[string]string
	Capital map[string]string

	// localized names in declaration order, used for matching
	nameOrder []string
}

// Matcher is an immutable, order-preserving view over the dataset
type Matcher struct {
	entries []Entry
	index   map[string]int
}

// Default returns a matcher over the embedded dataset
func Default() (*Matcher, error) {
	return Load(defaultDataset)
}

// LoadFile reads a dataset from disk
func LoadFile(path string) (*Matcher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read capitals dataset: %w", err)
	}
	return Load(data)
}

// Load parses a dataset document of the form {"CODE": {lat, lon, names, capital}, ...}.
// Object order is kept: it decides which country wins an ambiguous match.
func Load(data []byte) (*Matcher, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("capitals dataset is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.New("capitals dataset must be an object keyed by country code")
	}

	m := &Matcher{index: make(map[string]int)}
	var parseErr error
	root.ForEach(func(key, value gjson.Result) bool {
		code := strings.TrimSpace(key.String())
		if code == "" || !value.IsObject() {
			parseErr = fmt.Errorf("invalid dataset entry %q", key.String())
			return false
		}
		entry := Entry{
			Code:    code,
			Lat:     value.Get("lat").Float(),
			Lon:     value.Get("lon").Float(),
			Names:   make(map[string]string),
			Capital: make(map[string]string),
		}
		value.Get("names").ForEach(func(lang, name gjson.Result) bool {
			if name.Type != gjson.String {
				return true
			}
			entry.Names[lang.String()] = name.String()
			entry.nameOrder = append(entry.nameOrder, name.String())
			return true
		})
		value.Get("capital").ForEach(func(lang, name gjson.Result) bool {
			if name.Type == gjson.String {
				entry.Capital[lang.String()] = name.String()
			}
			return true
		})
		if _, dup := m.index[code]; dup {
			parseErr = fmt.Errorf("duplicate dataset entry %q", code)
			return false
		}
		m.index[code] = len(m.entries)
		m.entries = append(m.entries, entry)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return m, nil
}

// Len returns the number of countries in the dataset
func (m *Matcher) Len() int {
	return len(m.entries)
}

// Entries returns the dataset in declaration order
func (m *Matcher) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// FindMatchingCountry returns the first country, in dataset order, whose localized name in
// any language equals the query, contains it, or is contained in it (case-insensitive).
func (m *Matcher) FindMatchingCountry(query string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", false
	}
	for _, entry := range m.entries {
		for _, name := range entry.nameOrder {
			n := strings.ToLower(strings.TrimSpace(name))
			if n == "" {
				continue
			}
			if q == n || strings.Contains(n, q) || strings.Contains(q, n) {
				return entry.Code, true
			}
		}
	}
	return "", false
}

// CapitalFor returns the capital of the country in lang, falling back to English values
func (m *Matcher) CapitalFor(code, lang string) (model.PlaceSuggestion, bool) {
	i, ok := m.index[code]
	if !ok {
		return model.PlaceSuggestion{}, false
	}
	entry := m.entries[i]
	capitalName := localized(entry.Capital, lang)
	countryName := localized(entry.Names, lang)
	if capitalName == "" || countryName == "" {
		return model.PlaceSuggestion{}, false
	}
	return model.PlaceSuggestion{Name: capitalName, Country: countryName}, true
}

// Match combines FindMatchingCountry and CapitalFor
func (m *Matcher) Match(query, lang string) (model.PlaceSuggestion, bool) {
	code, ok := m.FindMatchingCountry(query)
	if !ok {
		return model.PlaceSuggestion{}, false
	}
	return m.CapitalFor(code, lang)
}

func localized(values map[string]string, lang string) string {
	if v, ok := values[lang]; ok {
		return v
	}
	return values[fallbackLang]
}
