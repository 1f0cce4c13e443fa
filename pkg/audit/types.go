package audit

import (
	"time"
)

// Domain categorizes the subject of an audited action
type Domain string

const (
	DomainRecord    Domain = "record"
	DomainUser      Domain = "user"
	DomainGroup     Domain = "group"
	DomainCommunity Domain = "community"
	DomainSharing   Domain = "sharing"
	DomainSystem    Domain = "system"
)

// Action is the verb describing what happened to the subject
type Action string

const (
	ActionCreate  Action = "CREATE"
	ActionRead    Action = "READ"
	ActionUpdate  Action = "UPDATE"
	ActionDelete  Action = "DELETE"
	ActionShare   Action = "SHARE"
	ActionUnshare Action = "UNSHARE"
	ActionLogin   Action = "LOGIN"
	ActionLogout  Action = "LOGOUT"
)

// Domains returns the fixed set of known domains, for building query UIs
func Domains() []Domain {
	return []Domain{
		DomainRecord,
		DomainUser,
		DomainGroup,
		DomainCommunity,
		DomainSharing,
		DomainSystem,
	}
}

// Actions returns the fixed set of known actions, for building query UIs
func Actions() []Action {
	return []Action{
		ActionCreate,
		ActionRead,
		ActionUpdate,
		ActionDelete,
		ActionShare,
		ActionUnshare,
		ActionLogin,
		ActionLogout,
	}
}

// Event is one recorded audit entry, a read-only projection of a single log line.
// Timestamp, Domain and Action are always present on a parsed event; every other
// field may be empty.
type Event struct {
	Timestamp   time.Time `json:"timestamp"`
	Domain      Domain    `json:"domain"`
	Action      Action    `json:"action"`
	Username    string    `json:"username,omitempty"`
	GlobalID    string    `json:"global_id,omitempty"`
	Description string    `json:"description,omitempty"`
	// Group and Community carry the numeric identifier of the group or
	// community the action happened in, when it happened in one.
	Group     string `json:"group,omitempty"`
	Community string `json:"community,omitempty"`
}

// SearchCriteria is a fully validated query. Zero values mean "no restriction":
// nil date bounds are open-ended, empty sets match every domain/action/group.
type SearchCriteria struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Domains  []Domain
	Actions  []Action
	// Username matches the actor exactly or as a prefix
	Username  string
	GlobalID  string
	Groups    []int64
	Community *int64
}

// VisibilityScope narrows what a caller may see. A nil set means unrestricted
// on that axis. Scopes are derived per request and never persisted.
type VisibilityScope struct {
	Usernames    map[string]struct{}
	GroupIDs     map[int64]struct{}
	CommunityIDs map[int64]struct{}
}

// Unrestricted reports whether the scope imposes no restriction at all
func (s VisibilityScope) Unrestricted() bool {
	return s.Usernames == nil && s.GroupIDs == nil && s.CommunityIDs == nil
}

// Page selects one page of results. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// SearchResult is one page of matching events plus the total match count
type SearchResult struct {
	Events     []Event `json:"events"`
	TotalHits  int     `json:"total_hits"`
	PageNumber int     `json:"page_number"`
	PageSize   int     `json:"page_size"`
}
