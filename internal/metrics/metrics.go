// Package metrics holds the prometheus collectors shared by the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoweather_upstream_requests_total",
		Help: "Total upstream provider requests",
	}, []string{"provider"})
	UpstreamFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoweather_upstream_fail_total",
		Help: "Total upstream provider failures (transport, status or decode)",
	}, []string{"provider"})
	UpstreamDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geoweather_upstream_duration_ms",
		Help:    "Upstream call duration in milliseconds",
		Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000},
	}, []string{"provider"})
	ReverseCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geoweather_reverse_cache_hits_total",
		Help: "Reverse geocoding label cache hits",
	})
	SuggestRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geoweather_suggest_requests_total",
		Help: "Total suggestion lookups that reached the provider",
	})
	SuggestCapitalMatchTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geoweather_suggest_capital_match_total",
		Help: "Suggestion lookups where a capital was prepended",
	})
	SuggestProviderErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geoweather_suggest_provider_errors_total",
		Help: "Suggestion lookups degraded to an empty list by a provider failure",
	})
	ForecastErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoweather_forecast_errors_total",
		Help: "Forecast lookups that failed, by error code",
	}, []string{"code"})
	BundleLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoweather_bundle_loads_total",
		Help: "Resource bundle loads by domain and result",
	}, []string{"domain", "result"})
	RecentWriteFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geoweather_recent_write_fail_total",
		Help: "Recent places writes that could not be persisted",
	})
)

func init() {
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamFailTotal)
	prometheus.MustRegister(UpstreamDurationMs)
	prometheus.MustRegister(ReverseCacheHitsTotal)
	prometheus.MustRegister(SuggestRequestsTotal)
	prometheus.MustRegister(SuggestCapitalMatchTotal)
	prometheus.MustRegister(SuggestProviderErrorsTotal)
	prometheus.MustRegister(ForecastErrorsTotal)
	prometheus.MustRegister(BundleLoadsTotal)
	prometheus.MustRegister(RecentWriteFailTotal)
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
