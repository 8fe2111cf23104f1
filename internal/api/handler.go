package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"

	"github.com/alexivanou/geoweather-api/internal/model"
	"github.com/alexivanou/geoweather-api/internal/service"
	"go.uber.org/zap"
)

const (
	clientIDHeader   = "X-Client-ID"
	anonymousClient  = "anonymous"
	maxRecentBodyLen = 4 << 10
)

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Handler handles HTTP requests
type Handler struct {
	service service.ServiceInterface
	logger  *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// SuggestPlaces handles GET /api/v1/suggest
func (h *Handler) SuggestPlaces(w http.ResponseWriter, r *http.Request) {
	req := model.SuggestRequest{
		Query: r.URL.Query().Get("q"),
		Lang:  r.URL.Query().Get("lang"),
	}

	response, err := h.service.SuggestPlaces(r.Context(), req)
	if err != nil {
		// suggestions never fail loudly
		h.logger.Error("Error suggesting places", zap.Error(err))
		response = &model.SuggestResponse{Results: []model.PlaceSuggestion{}}
	}
	h.writeJSON(w, http.StatusOK, response)
}

// GetWeather handles GET /api/v1/weather
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")

	response, err := h.service.ForecastByName(r.Context(), r.URL.Query().Get("city"), lang)
	if err != nil {
		h.writeError(w, lang, err)
		return
	}
	h.writeJSON(w, http.StatusOK, response)
}

// GetGeolocation handles GET /api/v1/geolocation
func (h *Handler) GetGeolocation(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")

	lat, lon, err := service.ParseCoords(r.URL.Query().Get("lat"), r.URL.Query().Get("lon"))
	if err != nil {
		h.writeError(w, lang, err)
		return
	}

	response, err := h.service.ForecastByCoords(r.Context(), lat, lon, lang)
	if err != nil {
		h.writeError(w, lang, err)
		return
	}
	h.writeJSON(w, http.StatusOK, response)
}

// GetRecent handles GET /api/v1/recent
func (h *Handler) GetRecent(w http.ResponseWriter, r *http.Request) {
	lang := h.service.ResolveLang(r.URL.Query().Get("lang"))
	results := h.service.GetRecent(r.Context(), clientNamespace(r), lang)
	h.writeJSON(w, http.StatusOK, model.RecentResponse{Lang: lang, Results: results})
}

// AddRecent handles POST /api/v1/recent
func (h *Handler) AddRecent(w http.ResponseWriter, r *http.Request) {
	lang := h.service.ResolveLang(r.URL.Query().Get("lang"))

	var place model.RecentPlace
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRecentBodyLen)).Decode(&place); err != nil {
		h.writeError(w, lang, model.NewError(model.CodeInvalidPlace, err))
		return
	}

	results, err := h.service.AddRecent(r.Context(), clientNamespace(r), lang, place)
	if err != nil {
		h.writeError(w, lang, err)
		return
	}
	h.writeJSON(w, http.StatusOK, model.RecentResponse{Lang: lang, Results: results})
}

// GetTranslations handles GET /api/v1/translations
func (h *Handler) GetTranslations(w http.ResponseWriter, r *http.Request) {
	lang := h.service.ResolveLang(r.URL.Query().Get("lang"))
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"lang":    lang,
		"strings": h.service.GetTranslations(lang),
	})
}

// GetConditions handles GET /api/v1/conditions
func (h *Handler) GetConditions(w http.ResponseWriter, r *http.Request) {
	lang := h.service.ResolveLang(r.URL.Query().Get("lang"))
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"lang":       lang,
		"conditions": h.service.GetConditions(lang),
	})
}

// GetLanguages handles GET /api/v1/languages
func (h *Handler) GetLanguages(w http.ResponseWriter, r *http.Request) {
	languages := h.service.GetLanguages()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"languages": languages,
		"count":     len(languages),
	})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// writeError maps err to its status and code. The cause is logged, never returned.
func (h *Handler) writeError(w http.ResponseWriter, lang string, err error) {
	var apiErr *model.Error
	if !errors.As(err, &apiErr) {
		apiErr = model.NewError(model.CodeFetchFailed, err)
	}

	if apiErr.Status() >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("code", string(apiErr.Code)), zap.Error(err))
	} else {
		h.logger.Debug("Rejected request", zap.String("code", string(apiErr.Code)), zap.Error(err))
	}

	h.writeJSON(w, apiErr.Status(), model.ErrorResponse{
		Error:     apiErr.Kind(),
		ErrorCode: apiErr.Code,
		Message:   h.service.LocalizedMessage(lang, apiErr.Code),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
	}
}

func clientNamespace(r *http.Request) string {
	id := r.Header.Get(clientIDHeader)
	if !clientIDPattern.MatchString(id) {
		return anonymousClient
	}
	return id
}
