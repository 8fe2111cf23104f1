package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexivanou/geoweather-api/internal/capital"
	"github.com/alexivanou/geoweather-api/internal/config"
	"github.com/alexivanou/geoweather-api/internal/i18n"
	"github.com/alexivanou/geoweather-api/internal/model"
	"github.com/alexivanou/geoweather-api/internal/provider"
	"github.com/alexivanou/geoweather-api/internal/recent"
	"github.com/alexivanou/geoweather-api/internal/service"
	"github.com/alexivanou/geoweather-api/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const forecastBody = `{
	"latitude":51.5,"longitude":-0.12,"timezone":"Europe/London",
	"current":{"temperature_2m":14.2,"relative_humidity_2m":71,"apparent_temperature":12.9,"weather_code":3,"wind_speed_10m":17.4},
	"daily":{
		"time":["2024-05-01","2024-05-02","2024-05-03","2024-05-04","2024-05-05","2024-05-06","2024-05-07"],
		"weather_code":[3,61,0,1,2,3,45],
		"temperature_2m_max":[16,13,15,17,18,19,20],
		"temperature_2m_min":[8,7,6,9,10,11,12]
	}
}`

func fakeUpstream(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("name") {
		case "London":
			w.Write([]byte(`{"results":[{"name":"London","latitude":51.5,"longitude":-0.12,"country":"United Kingdom","timezone":"Europe/London"}]}`))
		case "Franc":
			w.Write([]byte(`{"results":[{"name":"Franca","country":"Brazil"},{"name":"Franca","country":"Brazil"}]}`))
		default:
			w.Write([]byte(`{}`))
		}
	})
	mux.HandleFunc("/v1/forecast", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(forecastBody))
	})
	mux.HandleFunc("/reverse", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"address":{"town":"Potsdam","country":"Deutschland"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setupIntegrationStack(t *testing.T) http.Handler {
	upstream := fakeUpstream(t)

	providers := provider.New(config.UpstreamConfig{
		GeocodingURL: upstream.URL + "/v1/search",
		ForecastURL:  upstream.URL + "/v1/forecast",
		ReverseURL:   upstream.URL + "/reverse",
		UserAgent:    "WeatherApp/1.0",
		Timeout:      2 * time.Second,
		ReverseRPS:   100,
	}, nil)

	capitals, err := capital.Default()
	require.NoError(t, err)
	registry, err := i18n.DefaultRegistry()
	require.NoError(t, err)

	strs := i18n.NewCache("strings", registry.StringLoader(), nil)
	conds := i18n.NewCache("conditions", registry.ConditionLoader(), nil)

	svc := service.NewService(service.Deps{
		Providers:  providers,
		Capitals:   capitals,
		Registry:   registry,
		Translator: i18n.NewTranslator(strs, nil),
		Conditions: i18n.NewConditions(conds),
		Recent:     recent.NewStore(recent.NewMemorySlot(), nil),
	})
	collector := stats.NewCollector(stats.Options{
		Backend:   config.RecentBackendMemory,
		Bundles:   map[string]stats.BundleLister{"strings": strs, "conditions": conds},
		Languages: len(registry.Languages()),
	})

	return NewRouter(svc, collector, nil)
}

func serve(h http.Handler, method, url string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAPI_Integration_WeatherLondon(t *testing.T) {
	handler := setupIntegrationStack(t)

	rr := serve(handler, "GET", "/api/v1/weather?city=London&lang=en", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp model.ForecastResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "London", resp.City)
	assert.Equal(t, "United Kingdom", resp.Country)
	assert.Equal(t, 17.0, resp.WindSpeed)
	assert.Equal(t, "km/h", resp.WindUnit)
	assert.Equal(t, "Overcast", resp.Condition)
	require.Len(t, resp.DailyForecast, 6)
	assert.Equal(t, "2024-05-06", resp.DailyForecast[5].Date)
}

func TestAPI_Integration_WeatherErrors(t *testing.T) {
	handler := setupIntegrationStack(t)

	tests := []struct {
		url     string
		status  int
		code    model.ErrorCode
		message string
	}{
		{url: "/api/v1/weather?city=x", status: http.StatusBadRequest, code: model.CodeCityTooShort, message: "Please enter at least 2 characters."},
		{url: "/api/v1/weather?city=Qqqq&lang=de", status: http.StatusNotFound, code: model.CodeCityNotFound, message: "Stadt nicht gefunden."},
		{url: "/api/v1/geolocation?lat=1", status: http.StatusBadRequest, code: model.CodeCoordsRequired, message: "Location coordinates are required."},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			rr := serve(handler, "GET", tt.url, "")
			require.Equal(t, tt.status, rr.Code)

			var body model.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.ErrorCode)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestAPI_Integration_SuggestCapitalFirst(t *testing.T) {
	handler := setupIntegrationStack(t)

	rr := serve(handler, "GET", "/api/v1/suggest?q=Franc&lang=en", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp model.SuggestResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []model.PlaceSuggestion{
		{Name: "Paris", Country: "France"},
		{Name: "Franca", Country: "Brazil"},
	}, resp.Results)

	rr = serve(handler, "GET", "/api/v1/suggest?q=F", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"results":[]}`, rr.Body.String())
}

func TestAPI_Integration_Geolocation(t *testing.T) {
	handler := setupIntegrationStack(t)

	rr := serve(handler, "GET", "/api/v1/geolocation?lat=52.39&lon=13.06&lang=de", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp model.ForecastResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Potsdam", resp.City)
	assert.Equal(t, "Deutschland", resp.Country)
	assert.Equal(t, "Bedeckt", resp.Condition)
}

func TestAPI_Integration_RecentAndResources(t *testing.T) {
	handler := setupIntegrationStack(t)

	for i, name := range []string{"A", "B", "C", "D", "E", "F"} {
		body := `{"name":"` + name + `","country":"X","lat":1,"lon":` + string(rune('0'+i)) + `}`
		rr := serve(handler, "POST", "/api/v1/recent?lang=en", body)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := serve(handler, "GET", "/api/v1/recent?lang=en", "")
	var recentResp model.RecentResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recentResp))
	require.Len(t, recentResp.Results, 5)
	assert.Equal(t, "F", recentResp.Results[0].Name)
	assert.Equal(t, "B", recentResp.Results[4].Name)

	rr = serve(handler, "GET", "/api/v1/translations?lang=fr", "")
	var tr struct {
		Lang    string            `json:"lang"`
		Strings map[string]string `json:"strings"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tr))
	assert.Equal(t, "fr", tr.Lang)
	assert.Equal(t, "Wind", tr.Strings["wind"])

	rr = serve(handler, "GET", "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var st stats.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	assert.Contains(t, st.Resources.Loaded["strings"], "fr")
	assert.Contains(t, st.Resources.Loaded["strings"], "en")

	rr = serve(handler, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "geoweather_suggest_requests_total")
}
