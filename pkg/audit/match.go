package audit

import (
	"strconv"
	"strings"
	"time"
)

// matcher is a SearchCriteria plus VisibilityScope compiled into cheap set
// lookups for one query. The scope is intersected silently: events outside it
// simply do not match, they never cause an error.
type matcher struct {
	domains map[Domain]struct{}
	actions map[Action]struct{}
	// from is the inclusive lower bound; toExclusive is the day after the
	// inclusive upper bound, so the whole DateTo day matches
	from        *time.Time
	toExclusive *time.Time
	username    string
	globalID    string
	groups      map[string]struct{}
	community   string

	scopeUsers       map[string]struct{}
	scopeGroups      map[string]struct{}
	scopeCommunities map[string]struct{}
}

func newMatcher(criteria SearchCriteria, scope VisibilityScope) *matcher {
	m := &matcher{
		from:     criteria.DateFrom,
		username: criteria.Username,
		globalID: criteria.GlobalID,
	}
	if criteria.DateTo != nil {
		to := criteria.DateTo.AddDate(0, 0, 1)
		m.toExclusive = &to
	}
	if len(criteria.Domains) > 0 {
		m.domains = make(map[Domain]struct{}, len(criteria.Domains))
		for _, d := range criteria.Domains {
			m.domains[d] = struct{}{}
		}
	}
	if len(criteria.Actions) > 0 {
		m.actions = make(map[Action]struct{}, len(criteria.Actions))
		for _, a := range criteria.Actions {
			m.actions[a] = struct{}{}
		}
	}
	if len(criteria.Groups) > 0 {
		m.groups = make(map[string]struct{}, len(criteria.Groups))
		for _, g := range criteria.Groups {
			m.groups[strconv.FormatInt(g, 10)] = struct{}{}
		}
	}
	if criteria.Community != nil {
		m.community = strconv.FormatInt(*criteria.Community, 10)
	}

	m.scopeUsers = scope.Usernames
	if scope.GroupIDs != nil {
		m.scopeGroups = make(map[string]struct{}, len(scope.GroupIDs))
		for g := range scope.GroupIDs {
			m.scopeGroups[strconv.FormatInt(g, 10)] = struct{}{}
		}
	}
	if scope.CommunityIDs != nil {
		m.scopeCommunities = make(map[string]struct{}, len(scope.CommunityIDs))
		for c := range scope.CommunityIDs {
			m.scopeCommunities[strconv.FormatInt(c, 10)] = struct{}{}
		}
	}
	return m
}

// matches tests the active predicates cheapest first; an event matches only if
// every active predicate passes
func (m *matcher) matches(ev Event) bool {
	if m.domains != nil {
		if _, ok := m.domains[ev.Domain]; !ok {
			return false
		}
	}
	if m.actions != nil {
		if _, ok := m.actions[ev.Action]; !ok {
			return false
		}
	}
	if m.from != nil && ev.Timestamp.Before(*m.from) {
		return false
	}
	if m.toExclusive != nil && !ev.Timestamp.Before(*m.toExclusive) {
		return false
	}
	if m.username != "" && !strings.HasPrefix(ev.Username, m.username) {
		return false
	}
	if m.globalID != "" && ev.GlobalID != m.globalID {
		return false
	}
	if m.groups != nil {
		if _, ok := m.groups[ev.Group]; !ok {
			return false
		}
	}
	if m.community != "" && ev.Community != m.community {
		return false
	}

	// Scope intersection: a restricted axis must be satisfied for the event
	// to be visible at all.
	if m.scopeUsers != nil {
		if _, ok := m.scopeUsers[ev.Username]; !ok {
			return false
		}
	}
	if m.scopeGroups != nil && ev.Group != "" {
		if _, ok := m.scopeGroups[ev.Group]; !ok {
			return false
		}
	}
	if m.scopeCommunities != nil && ev.Community != "" {
		if _, ok := m.scopeCommunities[ev.Community]; !ok {
			return false
		}
	}
	return true
}

// match is one matching event tagged with its origin for deterministic ordering
type match struct {
	ev      Event
	fileIdx int
	lineIdx int
}

// before reports whether a ranks ahead of b in result order: most recent
// first, then original file-then-line order for equal timestamps
func (a match) before(b match) bool {
	if !a.ev.Timestamp.Equal(b.ev.Timestamp) {
		return a.ev.Timestamp.After(b.ev.Timestamp)
	}
	if a.fileIdx != b.fileIdx {
		return a.fileIdx < b.fileIdx
	}
	return a.lineIdx < b.lineIdx
}

// matchHeap is a min-heap keeping the lowest-ranked retained match at the
// root, so the worst match can be evicted in O(log n) when capacity is hit
type matchHeap []match

func (h matchHeap) Len() int            { return len(h) }
func (h matchHeap) Less(i, j int) bool  { return h[j].before(h[i]) }
func (h matchHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *matchHeap) Push(x interface{}) { *h = append(*h, x.(match)) }
func (h *matchHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
