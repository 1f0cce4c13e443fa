package middleware

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/opencollab/audittrail/pkg/directory"
	"github.com/opencollab/audittrail/pkg/httputil"
)

const callerKey contextKey = "caller"

// CallerHeader carries the authenticated username. Authentication itself
// happens upstream at the platform gateway; this service only resolves the
// caller's role and affiliation.
const CallerHeader = "X-Authenticated-User"

// CallerResolver resolves the authenticated principal through the directory
type CallerResolver struct {
	dir directory.Service
	log *logrus.Logger
}

// NewCallerResolver creates a caller resolution middleware
func NewCallerResolver(dir directory.Service, log *logrus.Logger) *CallerResolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CallerResolver{dir: dir, log: log}
}

// Middleware resolves the caller header and attaches the caller to the
// request context. Requests without the header pass through unresolved;
// handlers that require a caller reject those themselves.
func (cr *CallerResolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username := r.Header.Get(CallerHeader)
		if username == "" {
			next.ServeHTTP(w, r)
			return
		}

		caller, err := cr.dir.ResolveCaller(r.Context(), username)
		if err != nil {
			cr.log.WithError(err).WithField("username", username).Error("failed to resolve caller")
			httputil.WriteInternalError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

// WithCaller attaches a resolved caller to the context
func WithCaller(ctx context.Context, caller directory.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFrom retrieves the resolved caller from the context
func CallerFrom(ctx context.Context) (directory.Caller, bool) {
	caller, ok := ctx.Value(callerKey).(directory.Caller)
	return caller, ok
}
