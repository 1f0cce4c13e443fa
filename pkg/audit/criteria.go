package audit

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/opencollab/audittrail/pkg/directory"
)

// DateFormat is the only accepted calendar date format for query bounds.
// Anything else, including reordered separators, is rejected outright rather
// than silently reinterpreted.
const DateFormat = "2006-01-02"

var (
	globalIDPattern       = regexp.MustCompile(`^[A-Z]{2}\d+$`)
	communityTokenPattern = regexp.MustCompile(`^(.*)<<(\d+)>>$`)
)

// RawQuery holds untyped request parameters exactly as received from the
// interactive caller (date pickers, autocomplete text fields). Every shape
// check happens in Validator.Validate; nothing downstream touches raw strings.
type RawQuery struct {
	DateFrom  string
	DateTo    string
	Domains   []string
	Actions   []string
	Username  string
	GlobalID  string
	Groups    []string
	Community string
}

// Validator turns raw query parameters into a typed SearchCriteria
type Validator struct {
	dir Directory
}

// NewValidator creates a validator resolving group tokens through dir
func NewValidator(dir Directory) *Validator {
	return &Validator{dir: dir}
}

// Validate checks every parameter independently and reports all violations
// together as a *ValidationError. A non-validation failure (directory lookup
// infrastructure error) is returned as a plain error.
//
// Dates are interpreted as UTC calendar days. An inverted range (from after
// to) is valid criteria that simply matches nothing.
func (v *Validator) Validate(ctx context.Context, raw RawQuery) (SearchCriteria, error) {
	var criteria SearchCriteria
	verr := &ValidationError{}

	if raw.DateFrom != "" {
		if t, err := time.ParseInLocation(DateFormat, raw.DateFrom, time.UTC); err != nil {
			verr.Add("date_from", "invalid date %q, expected format %s", raw.DateFrom, DateFormat)
		} else {
			criteria.DateFrom = &t
		}
	}
	if raw.DateTo != "" {
		if t, err := time.ParseInLocation(DateFormat, raw.DateTo, time.UTC); err != nil {
			verr.Add("date_to", "invalid date %q, expected format %s", raw.DateTo, DateFormat)
		} else {
			criteria.DateTo = &t
		}
	}

	for _, d := range raw.Domains {
		if !knownDomain(Domain(d)) {
			verr.Add("domains", "unknown domain %q", d)
			continue
		}
		criteria.Domains = append(criteria.Domains, Domain(d))
	}
	for _, a := range raw.Actions {
		if !knownAction(Action(a)) {
			verr.Add("actions", "unknown action %q", a)
			continue
		}
		criteria.Actions = append(criteria.Actions, Action(a))
	}

	criteria.Username = strings.TrimSpace(raw.Username)

	if raw.GlobalID != "" {
		if !globalIDPattern.MatchString(raw.GlobalID) {
			verr.Add("global_id", "invalid global identifier %q, expected two uppercase letters followed by digits", raw.GlobalID)
		} else {
			criteria.GlobalID = raw.GlobalID
		}
	}

	for _, token := range raw.Groups {
		group, err := v.dir.GroupByToken(ctx, token)
		if errors.Is(err, directory.ErrNotFound) {
			verr.Add("groups", "unknown group %q", token)
			continue
		}
		if err != nil {
			return SearchCriteria{}, fmt.Errorf("resolving group token %q: %w", token, err)
		}
		criteria.Groups = append(criteria.Groups, group.ID)
	}

	if raw.Community != "" {
		id, ok := parseCommunityToken(raw.Community)
		if !ok {
			verr.Add("community", "invalid community token %q, expected name<<id>>", raw.Community)
		} else {
			criteria.Community = &id
		}
	}

	if verr.HasViolations() {
		return SearchCriteria{}, verr
	}
	return criteria, nil
}

// parseCommunityToken extracts the numeric id from the display form
// "<name><<id>>". Only the id is used for filtering.
func parseCommunityToken(token string) (int64, bool) {
	m := communityTokenPattern.FindStringSubmatch(token)
	if m == nil {
		return 0, false
	}
	var id int64
	if _, err := fmt.Sscanf(m[2], "%d", &id); err != nil {
		return 0, false
	}
	return id, true
}

func knownDomain(d Domain) bool {
	for _, known := range Domains() {
		if d == known {
			return true
		}
	}
	return false
}

func knownAction(a Action) bool {
	for _, known := range Actions() {
		if a == known {
			return true
		}
	}
	return false
}
