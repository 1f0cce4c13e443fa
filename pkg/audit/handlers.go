package audit

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/opencollab/audittrail/pkg/directory"
	"github.com/opencollab/audittrail/pkg/httputil"
	"github.com/opencollab/audittrail/pkg/middleware"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
	suggestLimit    = 20
)

// Handlers provides the HTTP surface of the search and reporting engine
type Handlers struct {
	validator *Validator
	scoper    *Scoper
	engine    *Engine
	exporter  *Exporter
	log       *logrus.Logger
}

// NewHandlers creates the audit trail HTTP handlers
func NewHandlers(validator *Validator, scoper *Scoper, engine *Engine, exporter *Exporter, log *logrus.Logger) *Handlers {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handlers{
		validator: validator,
		scoper:    scoper,
		engine:    engine,
		exporter:  exporter,
		log:       log,
	}
}

// RegisterRoutes registers the audit trail routes
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/audit/events", h.queryEvents).Methods("GET")
	router.HandleFunc("/audit/export", h.exportReport).Methods("GET")
	router.HandleFunc("/audit/domains", h.listDomains).Methods("GET")
	router.HandleFunc("/audit/actions", h.listActions).Methods("GET")
	router.HandleFunc("/audit/usernames", h.suggestUsernames).Methods("GET")
}

// authorize resolves the caller's visibility scope, writing the appropriate
// error response when the caller may not query the audit trail at all
func (h *Handlers) authorize(w http.ResponseWriter, r *http.Request) (VisibilityScope, directory.Caller, bool) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "caller identity required")
		return VisibilityScope{}, directory.Caller{}, false
	}

	scope, err := h.scoper.ScopeFor(r.Context(), caller)
	if err != nil {
		if IsAuthorizationError(err) {
			httputil.WriteForbidden(w, err.Error())
		} else {
			h.log.WithError(err).Error("failed to build visibility scope")
			httputil.WriteInternalError(w, err)
		}
		return VisibilityScope{}, directory.Caller{}, false
	}
	return scope, caller, true
}

// queryEvents handles GET /audit/events
func (h *Handlers) queryEvents(w http.ResponseWriter, r *http.Request) {
	scope, caller, ok := h.authorize(w, r)
	if !ok {
		return
	}

	criteria, ok := h.validateQuery(w, r)
	if !ok {
		return
	}

	page := parsePage(r)
	result, err := h.engine.Query(r.Context(), criteria, scope, page)
	if err != nil {
		switch {
		case errors.Is(err, ErrStorageUnavailable):
			// Degraded but well-formed: an unreadable audit trail answers
			// like an empty one.
			h.log.WithError(err).WithField("caller", caller.Username).Warn("audit log storage unavailable, returning empty result")
			httputil.WriteSuccess(w, &SearchResult{
				Events:     []Event{},
				PageNumber: page.Number,
				PageSize:   page.Size,
			})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			httputil.WriteServiceUnavailable(w, "query cancelled")
		default:
			h.log.WithError(err).Error("audit query failed")
			httputil.WriteInternalError(w, err)
		}
		return
	}

	httputil.WriteSuccess(w, result)
}

// exportReport handles GET /audit/export
func (h *Handlers) exportReport(w http.ResponseWriter, r *http.Request) {
	scope, caller, ok := h.authorize(w, r)
	if !ok {
		return
	}

	criteria, ok := h.validateQuery(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", ReportContentType)
	w.Header().Set("Content-Disposition", ReportContentDisposition)

	if err := h.exporter.WriteCSV(r.Context(), criteria, scope, w); err != nil {
		// Headers and possibly rows are already on the wire; all that is
		// left is to log and cut the stream short.
		h.log.WithError(err).WithField("caller", caller.Username).Error("audit report export aborted")
	}
}

// listDomains handles GET /audit/domains
func (h *Handlers) listDomains(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string][]Domain{"domains": Domains()})
}

// listActions handles GET /audit/actions
func (h *Handlers) listActions(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string][]Action{"actions": Actions()})
}

// suggestUsernames handles GET /audit/usernames
func (h *Handlers) suggestUsernames(w http.ResponseWriter, r *http.Request) {
	scope, _, ok := h.authorize(w, r)
	if !ok {
		return
	}

	term := r.URL.Query().Get("term")
	names, err := h.engine.SuggestUsernames(r.Context(), term, scope, suggestLimit)
	if err != nil {
		h.log.WithError(err).Error("username suggestion failed")
		httputil.WriteInternalError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	httputil.WriteSuccess(w, map[string][]string{"usernames": names})
}

// validateQuery parses and validates the raw query parameters. Validation
// failures are part of normal interactive use, so they are answered with a
// 200 and a structured error payload rather than a client-error status.
func (h *Handlers) validateQuery(w http.ResponseWriter, r *http.Request) (SearchCriteria, bool) {
	raw := parseRawQuery(r)
	criteria, err := h.validator.Validate(r.Context(), raw)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			httputil.WriteSuccess(w, map[string]interface{}{
				"validation_errors": verr.Violations,
			})
		} else {
			h.log.WithError(err).Error("criteria validation failed")
			httputil.WriteInternalError(w, err)
		}
		return SearchCriteria{}, false
	}
	return criteria, true
}

// parseRawQuery lifts the query string into the untyped parameter struct.
// No interpretation happens here; every shape check belongs to the validator.
func parseRawQuery(r *http.Request) RawQuery {
	q := r.URL.Query()
	return RawQuery{
		DateFrom:  q.Get("date_from"),
		DateTo:    q.Get("date_to"),
		Domains:   splitMulti(q["domains"]),
		Actions:   splitMulti(q["actions"]),
		Username:  q.Get("username"),
		GlobalID:  q.Get("global_id"),
		Groups:    splitMulti(q["groups"]),
		Community: q.Get("community"),
	}
}

// splitMulti accepts both repeated parameters and comma-separated values
func splitMulti(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parsePage reads pagination parameters, falling back to sane defaults for
// anything absent or unparseable; page size is capped to protect the server
func parsePage(r *http.Request) Page {
	q := r.URL.Query()
	page := Page{Number: 1, Size: defaultPageSize}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		page.Number = n
	}
	if s, err := strconv.Atoi(q.Get("page_size")); err == nil && s > 0 {
		page.Size = s
	}
	if page.Size > maxPageSize {
		page.Size = maxPageSize
	}
	return page
}
