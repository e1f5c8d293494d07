package web

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"daily-report/internal/domain"
	"daily-report/internal/observability"
	"daily-report/internal/security"
	"daily-report/internal/session"
)

// SessionSaver persists a session before the response is written
type SessionSaver interface {
	Save(w http.ResponseWriter, r *http.Request, s *session.Session) error
}

// Action is the execution context of one request. It owns the request
// scope, gives access to the session scope and produces exactly one
// response, either a forward or a redirect.
type Action struct {
	w        http.ResponseWriter
	r        *http.Request
	route    Route
	request  RequestScope
	session  *session.Session
	saver    SessionSaver
	renderer Renderer
	tokens   *security.TokenManager
	logger   *slog.Logger
	now      func() time.Time

	written bool
	routed  bool
	outcome string
}

// Context returns the request context
func (a *Action) Context() context.Context {
	return a.r.Context()
}

// Route returns the resolved handler and command names
func (a *Action) Route() Route {
	return a.route
}

// Param returns a request parameter from the query or form body
func (a *Action) Param(name string) string {
	return a.r.FormValue(name)
}

// Request returns the request scope
func (a *Action) Request() RequestScope {
	return a.request
}

// Session returns the session scope
func (a *Action) Session() *session.Session {
	return a.session
}

// Employee returns the logged-in employee, if any
func (a *Action) Employee() (*domain.Employee, bool) {
	return a.session.Employee()
}

// Logger returns a logger carrying request metadata
func (a *Action) Logger() *slog.Logger {
	return a.logger
}

// Now returns the current time
func (a *Action) Now() time.Time {
	return a.now()
}

// Today returns the current date at midnight UTC
func (a *Action) Today() time.Time {
	y, m, d := a.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MarkRouted records that the handler recognised the route's command. Only
// recognised commands are used as metric label values.
func (a *Action) MarkRouted() {
	a.routed = true
}

// Written reports whether a response has been produced
func (a *Action) Written() bool {
	return a.written
}

// ResolvePage returns the requested page number, 1 when absent or invalid
func (a *Action) ResolvePage() int {
	return ParsePage(a.Param(ParamPage))
}

// IssueToken mints a CSRF token, makes it the session's current token and
// exposes it to the view.
func (a *Action) IssueToken() (string, error) {
	token, err := a.tokens.Issue(a.session)
	if err != nil {
		return "", fmt.Errorf("failed to issue csrf token: %w", err)
	}
	a.request.Put(ParamToken, token)
	return token, nil
}

// CheckToken validates the submitted token against the session's current token.
func (a *Action) CheckToken() bool {
	if err := a.tokens.Check(a.session, a.Param(ParamToken)); err != nil {
		observability.CSRFFailuresTotal.Inc()
		a.logger.Warn("CSRF validation failed",
			slog.String("method", a.r.Method),
			slog.String("path", a.r.RequestURI),
			slog.String("remote_addr", a.r.RemoteAddr),
		)
		return false
	}
	return true
}

// Forward renders the view with the current request scope
func (a *Action) Forward(view View) error {
	return a.ForwardStatus(http.StatusOK, view)
}

// ForwardStatus renders the view with an explicit status code. The body is
// rendered into a buffer first so a template failure leaves the response
// untouched.
func (a *Action) ForwardStatus(status int, view View) error {
	if a.written {
		return fmt.Errorf("response already written, cannot forward to %s", view)
	}

	var buf bytes.Buffer
	if err := a.renderer.Render(&buf, view, a.request.Snapshot()); err != nil {
		return fmt.Errorf("failed to render %s: %w", view, err)
	}
	if err := a.saveSession(); err != nil {
		return err
	}

	a.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	a.w.Header().Set("Cache-Control", "no-store")
	a.w.WriteHeader(status)
	a.written = true
	a.outcome = observability.OutcomeForward
	if _, err := a.w.Write(buf.Bytes()); err != nil {
		a.logger.Debug("failed to write response", slog.String("error", err.Error()))
	}
	return nil
}

// Redirect makes the client issue a fresh request to the handler and
// command. Used after every successful state change so that a refresh does
// not resubmit the form.
func (a *Action) Redirect(handler, command string) error {
	if a.written {
		return fmt.Errorf("response already written, cannot redirect to %s/%s", handler, command)
	}
	if err := a.saveSession(); err != nil {
		return err
	}

	http.Redirect(a.w, a.r, Route{Handler: handler, Command: command}.URL(), http.StatusFound)
	a.written = true
	a.outcome = observability.OutcomeRedirect
	return nil
}

func (a *Action) saveSession() error {
	if a.saver == nil {
		return nil
	}
	if err := a.saver.Save(a.w, a.r, a.session); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}
