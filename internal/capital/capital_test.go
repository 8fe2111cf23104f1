package capital

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexivanou/geoweather-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDataset(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)
	assert.Greater(t, m.Len(), 30)

	entries := m.Entries()
	assert.Equal(t, "AE", entries[0].Code)
	assert.Equal(t, "Paris", entries[m.index["FR"]].Capital["en"])
}

func TestMatcher_FindMatchingCountry(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	tests := []struct {
		name     string
		query    string
		wantCode string
		wantOK   bool
	}{
		{name: "empty", query: "", wantOK: false},
		{name: "whitespace only", query: "   ", wantOK: false},
		{name: "exact", query: "France", wantCode: "FR", wantOK: true},
		{name: "prefix of a name", query: "Franc", wantCode: "FR", wantOK: true},
		{name: "case insensitive", query: "gERMANY", wantCode: "DE", wantOK: true},
		{name: "name of another language", query: "Deutsch", wantCode: "DE", wantOK: true},
		{name: "arabic name", query: "ألمانيا", wantCode: "DE", wantOK: true},
		{name: "query contains the name", query: "weather in Japan today", wantCode: "JP", wantOK: true},
		{name: "first country in dataset order wins", query: "Ind", wantCode: "ID", wantOK: true},
		{name: "trimmed", query: "  Spain  ", wantCode: "ES", wantOK: true},
		{name: "no match", query: "Lond", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := m.FindMatchingCountry(tt.query)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestMatcher_CapitalFor(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	tests := []struct {
		name   string
		code   string
		lang   string
		want   model.PlaceSuggestion
		wantOK bool
	}{
		{name: "english", code: "FR", lang: "en", want: model.PlaceSuggestion{Name: "Paris", Country: "France"}, wantOK: true},
		{name: "german", code: "DE", lang: "de", want: model.PlaceSuggestion{Name: "Berlin", Country: "Deutschland"}, wantOK: true},
		{name: "arabic", code: "EG", lang: "ar", want: model.PlaceSuggestion{Name: "القاهرة", Country: "مصر"}, wantOK: true},
		{name: "missing language falls back to english", code: "JP", lang: "ja", want: model.PlaceSuggestion{Name: "Tokyo", Country: "Japan"}, wantOK: true},
		{name: "unknown country", code: "XX", lang: "en", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.CapitalFor(tt.code, tt.lang)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatcher_MissingEnglishCapital(t *testing.T) {
	m, err := Load([]byte(`{"ZZ": {"lat": 1, "lon": 2, "names": {"en": "Zedland"}, "capital": {"fr": "Zedville"}}}`))
	require.NoError(t, err)

	_, ok := m.CapitalFor("ZZ", "de")
	assert.False(t, ok)

	got, ok := m.CapitalFor("ZZ", "fr")
	assert.True(t, ok)
	assert.Equal(t, model.PlaceSuggestion{Name: "Zedville", Country: "Zedland"}, got)
}

func TestLoad_PreservesDeclarationOrder(t *testing.T) {
	data := []byte(`{
		"BB": {"names": {"en": "Bravoland"}, "capital": {"en": "B City"}},
		"AA": {"names": {"en": "Bravoland North"}, "capital": {"en": "A City"}}
	}`)
	m, err := Load(data)
	require.NoError(t, err)

	code, ok := m.FindMatchingCountry("bravo")
	require.True(t, ok)
	assert.Equal(t, "BB", code)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load([]byte(`not json`))
	assert.Error(t, err)

	_, err = Load([]byte(`[1, 2]`))
	assert.Error(t, err)

	_, err = Load([]byte(`{"AA": 5}`))
	assert.Error(t, err)
}

func TestMatcher_Match(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	got, ok := m.Match("Franc", "en")
	require.True(t, ok)
	assert.Equal(t, model.PlaceSuggestion{Name: "Paris", Country: "France"}, got)

	_, ok = m.Match("Lond", "en")
	assert.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capitals.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"FR": {"lat": 48.85, "lon": 2.35, "names": {"en": "France"}, "capital": {"en": "Paris"}}}`), 0644))

	m, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
