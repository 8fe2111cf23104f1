package model

import "strings"

// PlaceSuggestion is a single candidate shown while the user types
type PlaceSuggestion struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// Key returns the identity of the suggestion
func (p PlaceSuggestion) Key() string {
	return p.Name + "|" + p.Country
}

// SuggestRequest represents the request parameters for place suggestions
type SuggestRequest struct {
	Query string
	Lang  string
}

// SuggestResponse represents the response for place suggestions
type SuggestResponse struct {
	Results []PlaceSuggestion `json:"results"`
}

// RecentPlace is a previously selected place
type RecentPlace struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// SameIdentity reports whether both records point at the same (name, country)
func (r RecentPlace) SameIdentity(other RecentPlace) bool {
	return r.Name == other.Name && r.Country == other.Country
}

// Valid reports whether the record carries a usable identity
func (r RecentPlace) Valid() bool {
	return strings.TrimSpace(r.Name) != "" && strings.TrimSpace(r.Country) != ""
}

// RecentResponse represents the recent places of one language
type RecentResponse struct {
	Lang    string        `json:"lang"`
	Results []RecentPlace `json:"results"`
}

// Language is an entry of the supported-language registry
type Language struct {
	Code   string `json:"code" yaml:"code"`
	Name   string `json:"name" yaml:"name"`
	Native string `json:"native" yaml:"native"`
	RTL    bool   `json:"rtl" yaml:"rtl"`
}

// GeocodingResult is a single match returned by the geocoding provider
type GeocodingResult struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Admin1      string  `json:"admin1,omitempty"`
	Timezone    string  `json:"timezone"`
}

// PlaceLabel is the city/country label resolved for a coordinate
type PlaceLabel struct {
	City    string `json:"city"`
	Country string `json:"country"`
}
