package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/alexivanou/geoweather-api/internal/metrics"
	"github.com/alexivanou/geoweather-api/internal/model"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// UnknownPlace labels a coordinate the reverse geocoder could not name
const UnknownPlace = "Unknown"

const (
	// about 150m cells
	labelPrecision = 7
	maxLabels      = 4096
)

var cityFields = []string{"address.city", "address.town", "address.village", "address.county"}

// Nominatim is the reverse geocoding client. Requests are rate limited and
// successful labels are cached per geohash cell and language.
type Nominatim struct {
	reverseURL string
	userAgent  string
	client     *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger

	mu     sync.RWMutex
	labels map[string]model.PlaceLabel
}

// NewNominatim creates a reverse geocoder allowing rps requests per second
func NewNominatim(reverseURL, userAgent string, rps float64, client *http.Client, logger *zap.Logger) *Nominatim {
	if rps <= 0 {
		rps = 1
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Nominatim{
		reverseURL: reverseURL,
		userAgent:  userAgent,
		client:     client,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
		labels:     make(map[string]model.PlaceLabel),
	}
}

// Reverse names the place at lat, lon in lang
func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64, lang string) (model.PlaceLabel, error) {
	key := geohash.EncodeWithPrecision(lat, lon, labelPrecision) + "|" + lang
	if label, ok := n.cached(key); ok {
		metrics.ReverseCacheHitsTotal.Inc()
		return label, nil
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return model.PlaceLabel{}, fmt.Errorf("reverse: %w", err)
	}

	params := url.Values{
		"lat":    {formatCoord(lat)},
		"lon":    {formatCoord(lon)},
		"format": {"json"},
	}
	header := http.Header{}
	header.Set("User-Agent", n.userAgent)
	header.Set("Accept-Language", lang)

	body, err := getBody(ctx, n.client, "reverse", n.reverseURL+"?"+params.Encode(), header)
	if err != nil {
		return model.PlaceLabel{}, err
	}
	if !gjson.ValidBytes(body) {
		return model.PlaceLabel{}, fmt.Errorf("reverse: invalid JSON")
	}

	label := ParseAddress(body)
	n.store(key, label)
	return label, nil
}

// ParseAddress extracts the label from a reverse geocoding response. The city is
// the first present of city, town, village and county.
func ParseAddress(body []byte) model.PlaceLabel {
	label := model.PlaceLabel{City: UnknownPlace, Country: UnknownPlace}
	for _, res := range gjson.GetManyBytes(body, cityFields...) {
		if res.String() != "" {
			label.City = res.String()
			break
		}
	}
	if country := gjson.GetBytes(body, "address.country").String(); country != "" {
		label.Country = country
	}
	return label
}

func (n *Nominatim) cached(key string) (model.PlaceLabel, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	label, ok := n.labels[key]
	return label, ok
}

func (n *Nominatim) store(key string, label model.PlaceLabel) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.labels) >= maxLabels {
		n.labels = make(map[string]model.PlaceLabel)
	}
	n.labels[key] = label
}
