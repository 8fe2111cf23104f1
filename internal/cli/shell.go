// Package cli is the line-oriented terminal front end of the weather API.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/alexivanou/geoweather-api/internal/client"
	"github.com/alexivanou/geoweather-api/internal/i18n"
	"github.com/alexivanou/geoweather-api/internal/model"
	"github.com/alexivanou/geoweather-api/internal/recent"
	"github.com/alexivanou/geoweather-api/internal/suggest"
	"go.uber.org/zap"
)

// API is the part of the HTTP client the shell talks to
type API interface {
	suggest.Provider
	ForecastByName(ctx context.Context, city, lang string) (*model.ForecastResponse, error)
	ForecastByCoords(ctx context.Context, lat, lon float64, lang string) (*model.ForecastResponse, error)
	Recent(ctx context.Context, lang string) ([]model.RecentPlace, error)
	AddRecent(ctx context.Context, lang string, place model.RecentPlace) ([]model.RecentPlace, error)
	Languages(ctx context.Context) ([]model.Language, error)
}

// Recency keeps the recently selected places of each language
type Recency interface {
	Load(ctx context.Context, lang string) []model.RecentPlace
	Add(ctx context.Context, lang string, place model.RecentPlace) []model.RecentPlace
}

// serverRecency keeps recent places on the API server, under the client id
type serverRecency struct {
	api    API
	logger *zap.Logger
}

func (r serverRecency) Load(ctx context.Context, lang string) []model.RecentPlace {
	places, err := r.api.Recent(ctx, lang)
	if err != nil {
		r.logger.Warn("Failed to load recent places", zap.String("lang", lang), zap.Error(err))
		return []model.RecentPlace{}
	}
	return places
}

func (r serverRecency) Add(ctx context.Context, lang string, place model.RecentPlace) []model.RecentPlace {
	places, err := r.api.AddRecent(ctx, lang, place)
	if err != nil {
		r.logger.Warn("Failed to record recent place", zap.String("name", place.Name), zap.Error(err))
		return []model.RecentPlace{}
	}
	return places
}

// Shell reads commands from in and renders results to out. Plain lines are treated as
// keystrokes of the search field and go through a debounced suggestion session.
type Shell struct {
	api        API
	store      Recency
	registry   *i18n.Registry
	translator *i18n.Translator
	conditions *i18n.Conditions
	logger     *zap.Logger

	outMu sync.Mutex
	out   io.Writer

	mu          sync.Mutex
	lang        string
	suggestions []model.PlaceSuggestion
	recents     []model.RecentPlace
	session     *suggest.Session
}

// Config groups the collaborators of a Shell
type Config struct {
	API API
	// Store keeps recent places locally. When nil, they are kept on the server.
	Store      *recent.Store
	Registry   *i18n.Registry
	Translator *i18n.Translator
	Conditions *i18n.Conditions
	Logger     *zap.Logger
	Lang       string
	Out        io.Writer
	// SessionOptions are appended after the shell's own options
	SessionOptions []suggest.Option
}

// New creates a shell
func New(cfg Config) *Shell {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Shell{
		api:        cfg.API,
		store:      serverRecency{api: cfg.API, logger: logger},
		registry:   cfg.Registry,
		translator: cfg.Translator,
		conditions: cfg.Conditions,
		logger:     logger,
		out:        cfg.Out,
		lang:       i18n.FallbackLang,
	}
	if cfg.Store != nil {
		s.store = cfg.Store
	}
	if cfg.Lang != "" && s.registry.Supported(cfg.Lang) {
		s.lang = cfg.Lang
	}

	opts := append([]suggest.Option{
		suggest.WithLang(s.lang),
		suggest.WithLogger(logger),
	}, cfg.SessionOptions...)
	s.session = suggest.NewSession(cfg.API, s.showSuggestions, opts...)
	return s
}

// Run processes lines until in is exhausted, a quit command or ctx is done
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	defer s.session.Close()

	s.printf("%s\n", s.t("appTitle"))
	s.printf("%s\n", s.t("searchPlaceholder"))
	s.showRecent(ctx)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !s.Handle(ctx, scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

// Handle executes one input line. It returns false when the shell should exit.
func (s *Shell) Handle(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		s.session.Input(line)
		return true
	}

	cmd, arg, _ := strings.Cut(trimmed, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		return false
	case "/w", "/weather":
		s.forecastByName(ctx, arg)
	case "/pick":
		s.pick(ctx, arg)
	case "/here":
		s.forecastByCoords(ctx, arg)
	case "/recent":
		if arg == "" {
			s.showRecent(ctx)
		} else {
			s.selectRecent(ctx, arg)
		}
	case "/lang":
		if arg == "" {
			s.listLanguages(ctx)
		} else {
			s.setLang(arg)
		}
	default:
		s.printf("/w <city> | /pick <n> | /here <lat> <lon> | /recent [n] | /lang [code] | /quit\n")
	}
	return true
}

// Lang returns the active language
func (s *Shell) Lang() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// listLanguages prints the languages the server offers, or the bundled ones when it
// cannot be reached
func (s *Shell) listLanguages(ctx context.Context) {
	languages, err := s.api.Languages(ctx)
	if err != nil || len(languages) == 0 {
		s.logger.Debug("Falling back to bundled languages", zap.Error(err))
		languages = s.registry.Languages()
	}

	active := s.Lang()
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, "%s:\n", s.translator.T(active, "selectLanguage"))
	for _, l := range languages {
		mark := " "
		if l.Code == active {
			mark = "*"
		}
		fmt.Fprintf(s.out, " %s %-3s %s\n", mark, l.Code, l.Native)
	}
}

func (s *Shell) setLang(code string) {
	code = strings.ToLower(code)
	if !s.registry.Supported(code) {
		var codes []string
		for _, l := range s.registry.Languages() {
			codes = append(codes, l.Code)
		}
		s.printf("%s: %s\n", s.t("selectLanguage"), strings.Join(codes, ", "))
		return
	}
	s.mu.Lock()
	s.lang = code
	s.mu.Unlock()
	s.session.SetLang(code)
	s.printf("%s: %s\n", s.t("language"), code)
}

func (s *Shell) showSuggestions(results []model.PlaceSuggestion) {
	s.mu.Lock()
	s.suggestions = results
	s.mu.Unlock()

	if len(results) == 0 {
		return
	}
	s.outMu.Lock()
	defer s.outMu.Unlock()
	for i, r := range results {
		fmt.Fprintf(s.out, "  %d. %s, %s\n", i+1, r.Name, r.Country)
	}
}

func (s *Shell) pick(ctx context.Context, arg string) {
	n, err := strconv.Atoi(arg)
	s.mu.Lock()
	var choice *model.PlaceSuggestion
	if err == nil && n >= 1 && n <= len(s.suggestions) {
		c := s.suggestions[n-1]
		choice = &c
	}
	s.mu.Unlock()

	if choice == nil {
		s.printf("%s\n", s.t("noResults"))
		return
	}
	// the country keeps same-name places apart
	s.forecastByName(ctx, choice.Name+", "+choice.Country)
}

// selectRecent moves the n-th listed recent place to the front and shows its forecast
func (s *Shell) selectRecent(ctx context.Context, arg string) {
	n, err := strconv.Atoi(arg)
	s.mu.Lock()
	var item *model.RecentPlace
	if err == nil && n >= 1 && n <= len(s.recents) {
		r := s.recents[n-1]
		item = &r
	}
	s.mu.Unlock()

	if item == nil {
		s.printf("%s\n", s.t("noResults"))
		return
	}

	lang := s.Lang()
	s.setRecents(s.store.Add(ctx, lang, *item))

	s.printf("%s\n", s.t("loadingWeather"))
	forecast, err := s.api.ForecastByCoords(ctx, item.Lat, item.Lon, lang)
	if err != nil {
		s.showError(err)
		return
	}
	s.showForecast(forecast)
}

func (s *Shell) forecastByName(ctx context.Context, city string) {
	lang := s.Lang()
	s.printf("%s\n", s.t("loadingWeather"))
	forecast, err := s.api.ForecastByName(ctx, city, lang)
	if err != nil {
		s.showError(err)
		return
	}
	s.remember(ctx, forecast)
	s.showForecast(forecast)
}

func (s *Shell) forecastByCoords(ctx context.Context, arg string) {
	fields := strings.Fields(arg)
	if len(fields) != 2 {
		s.printf("%s\n", s.t("errorCoordsRequired"))
		return
	}
	lat, err1 := strconv.ParseFloat(fields[0], 64)
	lon, err2 := strconv.ParseFloat(fields[1], 64)
	if err1 != nil || err2 != nil {
		s.printf("%s\n", s.t("errorCoordsRequired"))
		return
	}

	s.printf("%s\n", s.t("loadingWeather"))
	forecast, err := s.api.ForecastByCoords(ctx, lat, lon, s.Lang())
	if err != nil {
		s.showError(err)
		return
	}
	s.showForecast(forecast)
}

// remember records a successful lookup. Reverse-geocoded places are not recorded.
func (s *Shell) remember(ctx context.Context, f *model.ForecastResponse) {
	place := model.RecentPlace{Name: f.City, Country: f.Country, Lat: f.Latitude, Lon: f.Longitude}
	if !place.Valid() {
		return
	}
	s.setRecents(s.store.Add(ctx, s.Lang(), place))
}

func (s *Shell) setRecents(places []model.RecentPlace) {
	s.mu.Lock()
	s.recents = places
	s.mu.Unlock()
}

func (s *Shell) showRecent(ctx context.Context) {
	places := s.store.Load(ctx, s.Lang())
	s.setRecents(places)
	if len(places) == 0 {
		return
	}
	title := s.t("recentSearches")
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, "%s:\n", title)
	for i, p := range places {
		fmt.Fprintf(s.out, "  %d. %s, %s\n", i+1, p.Name, p.Country)
	}
}

func (s *Shell) showForecast(f *model.ForecastResponse) {
	lang := s.Lang()
	s.outMu.Lock()
	defer s.outMu.Unlock()

	fmt.Fprintf(s.out, "%s, %s\n", f.City, f.Country)
	fmt.Fprintf(s.out, "  %.0f°C  %s\n", f.Temperature, s.conditions.Describe(lang, f.WeatherCode).Label)
	fmt.Fprintf(s.out, "  %s %.0f°C · %s %.0f%% · %s %.0f %s\n",
		s.t("feelsLike"), f.ApparentTemperature,
		s.t("humidity"), f.Humidity,
		s.t("wind"), f.WindSpeed, f.WindUnit,
	)
	fmt.Fprintf(s.out, "%s (%s)\n", s.t("forecastTitle"), s.t("highLow"))
	for i, d := range f.DailyForecast {
		day := d.Date
		if i == 0 {
			day = s.t("today")
		}
		fmt.Fprintf(s.out, "  %-12s %4.0f° / %4.0f°  %s\n",
			day, d.TempMax, d.TempMin, s.conditions.Describe(lang, d.WeatherCode).Label)
	}
}

func (s *Shell) showError(err error) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		s.printf("%s\n", apiErr.Message)
		return
	}
	s.logger.Debug("Forecast request failed", zap.Error(err))
	s.printf("%s\n", s.t("errorFetchFailed"))
}

func (s *Shell) t(key string) string {
	return s.translator.T(s.Lang(), key)
}

func (s *Shell) printf(format string, args ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}
