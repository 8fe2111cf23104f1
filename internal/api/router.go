package api

import (
	"github.com/alexivanou/geoweather-api/internal/metrics"
	"github.com/alexivanou/geoweather-api/internal/service"
	"github.com/alexivanou/geoweather-api/internal/stats"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter creates a new HTTP router
func NewRouter(service service.ServiceInterface, statsCollector *stats.Collector, logger *zap.Logger) *mux.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := NewHandler(service, logger)
	statsHandler := NewStatsHandler(statsCollector, logger)

	router := mux.NewRouter()
	router.Use(AccessLog(logger))

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// API v1
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/suggest", handler.SuggestPlaces).Methods("GET")
	v1.HandleFunc("/weather", handler.GetWeather).Methods("GET")
	v1.HandleFunc("/geolocation", handler.GetGeolocation).Methods("GET")
	v1.HandleFunc("/recent", handler.GetRecent).Methods("GET")
	v1.HandleFunc("/recent", handler.AddRecent).Methods("POST")
	v1.HandleFunc("/translations", handler.GetTranslations).Methods("GET")
	v1.HandleFunc("/conditions", handler.GetConditions).Methods("GET")
	v1.HandleFunc("/languages", handler.GetLanguages).Methods("GET")
	v1.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	return router
}
