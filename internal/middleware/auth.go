package middleware

import (
	"log/slog"
	"net/http"

	"daily-report/internal/domain"
	"daily-report/internal/observability"
	"daily-report/internal/session"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// SessionLoader reads the session scope of a request
type SessionLoader interface {
	Load(r *http.Request) (*session.Session, error)
}

// Session loads the session scope once per request and attaches it, the
// request id and the logged-in employee to the request context. Login is
// handled by a separate application; devEmployee, when set, stands in for it
// in development and is written to sessions that carry no employee yet.
func Session(store SessionLoader, devEmployee *domain.Employee) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if reqID := chimw.GetReqID(ctx); reqID != "" {
				ctx = observability.WithRequestID(ctx, reqID)
			}

			sess, err := store.Load(r)
			if err != nil {
				observability.FromContext(ctx).Warn("discarding unreadable session",
					slog.String("error", err.Error()))
			}

			employee, ok := sess.Employee()
			if !ok && devEmployee != nil {
				sess.SetEmployee(*devEmployee)
				employee, ok = devEmployee, true
			}
			if ok {
				ctx = observability.WithEmployeeID(ctx, employee.ID)
			}

			ctx = session.WithSession(ctx, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
