// Package suggest runs the type-ahead lookup of one input field: it debounces keystrokes,
// cancels superseded lookups and publishes only the answer of the latest request.
package suggest

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/alexivanou/geoweather-api/internal/model"
	"go.uber.org/zap"
)

const (
	// DefaultDelay is the trailing debounce window
	DefaultDelay = 400 * time.Millisecond
	// MinQueryLength is the shortest trimmed query that reaches the provider
	MinQueryLength = 2
)

// Provider returns suggestions for a query
type Provider interface {
	Suggest(ctx context.Context, query, lang string) ([]model.PlaceSuggestion, error)
}

// ProviderFunc adapts a function to Provider
type ProviderFunc func(ctx context.Context, query, lang string) ([]model.PlaceSuggestion, error)

func (f ProviderFunc) Suggest(ctx context.Context, query, lang string) ([]model.PlaceSuggestion, error) {
	return f(ctx, query, lang)
}

// Timer is a scheduled callback
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// State of a session
type State int

const (
	StateIdle State = iota
	StateDebouncing
	StateInFlight
	StateResolved
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateInFlight:
		return "in_flight"
	case StateResolved:
		return "resolved"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stats counts what happened to issued requests
type Stats struct {
	Issued    int
	Published int
	Dropped   int
	Failed    int
}

// Option configures a Session
type Option func(*Session)

// WithDelay sets the debounce window
func WithDelay(d time.Duration) Option {
	return func(s *Session) { s.delay = d }
}

// WithAfterFunc replaces the timer factory
func WithAfterFunc(fn AfterFunc) Option {
	return func(s *Session) { s.afterFunc = fn }
}

// WithLang sets the initial language
func WithLang(lang string) Option {
	return func(s *Session) { s.lang = lang }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithContext sets the parent of every request context
func WithContext(ctx context.Context) Option {
	return func(s *Session) { s.parent = ctx }
}

// Session is the suggestion state of one input field. Publish is called with every
// list the field should show; it must not call back into the session.
type Session struct {
	provider  Provider
	publish   func([]model.PlaceSuggestion)
	delay     time.Duration
	afterFunc AfterFunc
	parent    context.Context
	logger    *zap.Logger

	// serializes publish calls with the token check
	pubMu sync.Mutex

	mu       sync.Mutex
	lang     string
	query    string
	timer    Timer
	timerGen uint64
	token    uint64
	cancel   context.CancelFunc
	state    State
	stats    Stats
}

// NewSession creates an idle session
func NewSession(provider Provider, publish func([]model.PlaceSuggestion), opts ...Option) *Session {
	s := &Session{
		provider:  provider,
		publish:   publish,
		delay:     DefaultDelay,
		afterFunc: realAfterFunc,
		parent:    context.Background(),
		lang:      "en",
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.publish == nil {
		s.publish = func([]model.PlaceSuggestion) {}
	}
	return s
}

// SetLang changes the language of subsequent requests
func (s *Session) SetLang(lang string) {
	s.mu.Lock()
	s.lang = lang
	s.mu.Unlock()
}

// Input handles a change of the field's text
func (s *Session) Input(query string) {
	q := strings.TrimSpace(query)

	s.mu.Lock()
	s.query = q
	s.stopTimerLocked()

	if utf8.RuneCountInString(q) < MinQueryLength {
		s.invalidateLocked()
		s.state = StateIdle
		token := s.token
		s.mu.Unlock()
		s.deliver(token, []model.PlaceSuggestion{})
		return
	}

	s.state = StateDebouncing
	s.timerGen++
	gen := s.timerGen
	s.timer = s.afterFunc(s.delay, func() { s.fire(gen) })
	s.mu.Unlock()
}

// Close stops the timer and abandons any in-flight request
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.invalidateLocked()
	s.state = StateCancelled
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns request counters
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Session) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.timerGen || s.timer == nil {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.invalidateLocked()
	token := s.token
	ctx, cancel := context.WithCancel(s.parent)
	s.cancel = cancel
	s.state = StateInFlight
	s.stats.Issued++
	query, lang := s.query, s.lang
	s.mu.Unlock()

	results, err := s.provider.Suggest(ctx, query, lang)
	cancel()

	s.mu.Lock()
	if token != s.token {
		s.stats.Dropped++
		s.mu.Unlock()
		s.logger.Debug("Dropped superseded suggestions", zap.String("query", query))
		return
	}
	s.cancel = nil
	if err != nil {
		s.state = StateFailed
		s.stats.Failed++
		results = []model.PlaceSuggestion{}
		s.logger.Debug("Suggestion lookup failed", zap.String("query", query), zap.Error(err))
	} else {
		s.state = StateResolved
	}
	if results == nil {
		results = []model.PlaceSuggestion{}
	}
	s.mu.Unlock()

	if s.deliver(token, results) {
		s.mu.Lock()
		s.stats.Published++
		s.mu.Unlock()
	}
}

// deliver publishes results unless token has been superseded meanwhile
func (s *Session) deliver(token uint64, results []model.PlaceSuggestion) bool {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	current := token == s.token
	s.mu.Unlock()
	if !current {
		return false
	}
	s.publish(results)
	return true
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// invalidateLocked supersedes and cancels the in-flight request, if any
func (s *Session) invalidateLocked() {
	s.token++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
