package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"time"
	"unicode/utf8"

	"daily-report/internal/observability"
	"daily-report/internal/security"
	"daily-report/internal/session"
)

// Handler executes one command of a named handler.
type Handler interface {
	Process(a *Action) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(a *Action) error

// Process calls f(a)
func (f HandlerFunc) Process(a *Action) error {
	return f(a)
}

// HandlerFactory builds a fresh handler for every request.
type HandlerFactory func() Handler

// Registry maps handler names to factories. It is filled at startup and
// only read afterwards.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]HandlerFactory
	fallback  HandlerFactory
}

// NewRegistry creates a registry whose misses resolve to fallback
func NewRegistry(fallback HandlerFactory) *Registry {
	if fallback == nil {
		fallback = func() Handler { return ErrorHandler{Status: http.StatusNotFound} }
	}
	return &Registry{
		factories: make(map[string]HandlerFactory),
		fallback:  fallback,
	}
}

// Register binds a handler name to its factory
func (reg *Registry) Register(name string, factory HandlerFactory) error {
	if name == "" {
		return errors.New("handler name is required")
	}
	if factory == nil {
		return fmt.Errorf("handler %q has no factory", name)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.factories[name]; exists {
		return fmt.Errorf("handler %q already registered", name)
	}
	reg.factories[name] = factory
	return nil
}

// MustRegister is Register for startup code; it panics on error
func (reg *Registry) MustRegister(name string, factory HandlerFactory) {
	if err := reg.Register(name, factory); err != nil {
		panic(err)
	}
}

// Lookup returns the factory for name and whether it was registered. A miss
// returns the fallback factory.
func (reg *Registry) Lookup(name string) (HandlerFactory, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	if factory, ok := reg.factories[name]; ok {
		return factory, true
	}
	return reg.fallback, false
}

// ErrorHandler renders the generic error view.
type ErrorHandler struct {
	Status int
}

// Process renders the error page
func (h ErrorHandler) Process(a *Action) error {
	status := h.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return a.ForwardStatus(status, ViewErrorUnknown)
}

// SessionStore loads and persists session scopes.
type SessionStore interface {
	SessionSaver
	Load(r *http.Request) (*session.Session, error)
}

// FrontController is the single dispatch entry point. It resolves the
// handler from the request parameters, prepares the action and converts
// every failure into the generic error view.
type FrontController struct {
	registry *Registry
	sessions SessionStore
	renderer Renderer
	tokens   *security.TokenManager
	now      func() time.Time
}

// NewFrontController creates the dispatcher
func NewFrontController(registry *Registry, sessions SessionStore, renderer Renderer, tokens *security.TokenManager) *FrontController {
	return &FrontController{
		registry: registry,
		sessions: sessions,
		renderer: renderer,
		tokens:   tokens,
		now:      time.Now,
	}
}

// SetClock replaces the time source handed to actions
func (fc *FrontController) SetClock(now func() time.Time) {
	fc.now = now
}

// ServeHTTP dispatches GET and POST requests alike
func (fc *FrontController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := observability.FromContext(r.Context())

	sess, ok := session.FromContext(r.Context())
	if !ok {
		var err error
		sess, err = fc.sessions.Load(r)
		if err != nil {
			logger.Warn("discarding unreadable session", slog.String("error", err.Error()))
		}
	}

	route := RouteFrom(r)
	factory, found := fc.registry.Lookup(route.Handler)

	action := &Action{
		w:        w,
		r:        r,
		route:    route,
		request:  RequestScope{},
		session:  sess,
		saver:    fc.sessions,
		renderer: fc.renderer,
		tokens:   fc.tokens,
		logger:   logger.With(slog.String("handler", route.Handler), slog.String("command", route.Command)),
		now:      fc.now,
	}

	err := fc.process(action, factory)
	if err != nil {
		fc.fail(action, err)
	}

	outcome := action.outcome
	switch {
	case err != nil:
		outcome = observability.OutcomeFault
	case !found:
		outcome = observability.OutcomeFallback
	}

	handlerLabel, commandLabel := "unknown", "unknown"
	if found {
		handlerLabel = metricLabel(route.Handler)
		if action.routed {
			commandLabel = metricLabel(route.Command)
		}
	}
	observability.DispatchTotal.WithLabelValues(handlerLabel, commandLabel, outcome).Inc()
	observability.DispatchDuration.WithLabelValues(handlerLabel, commandLabel).Observe(time.Since(start).Seconds())
}

// process runs the handler and turns a panic into an error.
func (fc *FrontController) process(a *Action, factory HandlerFactory) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error("handler panicked",
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()

	handler := factory()
	if handler == nil {
		return fmt.Errorf("factory for %q returned no handler", a.route.Handler)
	}
	return handler.Process(a)
}

// fail renders the generic error view for err unless a response exists.
func (fc *FrontController) fail(a *Action, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", slog.String("error", err.Error()))
	} else {
		a.logger.Info("request rejected",
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}

	if a.written {
		return
	}
	if renderErr := (ErrorHandler{Status: status}).Process(a); renderErr != nil {
		a.logger.Error("failed to render error view", slog.String("error", renderErr.Error()))
		http.Error(a.w, http.StatusText(status), status)
		a.written = true
	}
}

// metricLabel keeps label values bounded and valid.
func metricLabel(v string) string {
	if v == "" {
		return "none"
	}
	if len(v) > 32 || !utf8.ValidString(v) {
		return "invalid"
	}
	return v
}
