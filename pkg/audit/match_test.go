package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcherDateToIsInclusive(t *testing.T) {
	m := newMatcher(SearchCriteria{
		DateFrom: datePtr("2014-05-16"),
		DateTo:   datePtr("2014-05-19"),
	}, VisibilityScope{})

	assert.True(t, m.matches(ev("2014-05-16T00:00:00Z", DomainSystem, ActionUpdate, "", "", "", "", "")))
	assert.True(t, m.matches(ev("2014-05-19T23:59:59Z", DomainSystem, ActionUpdate, "", "", "", "", "")))
	assert.False(t, m.matches(ev("2014-05-15T23:59:59Z", DomainSystem, ActionUpdate, "", "", "", "", "")))
	assert.False(t, m.matches(ev("2014-05-20T00:00:00Z", DomainSystem, ActionUpdate, "", "", "", "", "")))
}

func TestMatcherUsernameIsPrefix(t *testing.T) {
	m := newMatcher(SearchCriteria{Username: "u-pi"}, VisibilityScope{})

	assert.True(t, m.matches(ev("2014-05-16T08:00:00Z", DomainUser, ActionLogin, "u-pi1", "", "", "", "")))
	assert.True(t, m.matches(ev("2014-05-16T08:00:00Z", DomainUser, ActionLogin, "u-pi", "", "", "", "")))
	assert.False(t, m.matches(ev("2014-05-16T08:00:00Z", DomainUser, ActionLogin, "x-u-pi1", "", "", "", "")))
}

func TestMatcherGlobalIDIsExact(t *testing.T) {
	m := newMatcher(SearchCriteria{GlobalID: "SD10001"}, VisibilityScope{})

	assert.True(t, m.matches(ev("2014-05-16T08:00:00Z", DomainRecord, ActionRead, "", "SD10001", "", "", "")))
	assert.False(t, m.matches(ev("2014-05-16T08:00:00Z", DomainRecord, ActionRead, "", "SD100010", "", "", "")))
	assert.False(t, m.matches(ev("2014-05-16T08:00:00Z", DomainRecord, ActionRead, "", "", "", "", "")))
}

func TestMatcherScopeAppliesByAxis(t *testing.T) {
	scope := VisibilityScope{
		Usernames:    map[string]struct{}{"u-pi1": {}},
		GroupIDs:     map[int64]struct{}{101: {}},
		CommunityIDs: map[int64]struct{}{7: {}},
	}
	m := newMatcher(SearchCriteria{}, scope)

	// Actor in scope, group and community in scope
	assert.True(t, m.matches(ev("2014-05-16T08:00:00Z", DomainRecord, ActionCreate, "u-pi1", "", "", "101", "7")))
	// Actor in scope, event carries no group or community context at all
	assert.True(t, m.matches(ev("2014-05-16T08:00:00Z", DomainUser, ActionLogin, "u-pi1", "", "", "", "")))
	// Actor outside the scoped usernames
	assert.False(t, m.matches(ev("2014-05-16T08:00:00Z", DomainUser, ActionLogin, "outsider", "", "", "", "")))
	// Actor in scope but the event happened in a foreign group
	assert.False(t, m.matches(ev("2014-05-16T08:00:00Z", DomainRecord, ActionCreate, "u-pi1", "", "", "202", "7")))
	// Actor in scope but the event happened in a foreign community
	assert.False(t, m.matches(ev("2014-05-16T08:00:00Z", DomainRecord, ActionCreate, "u-pi1", "", "", "101", "9")))
}

func TestMatcherUnrestrictedScopeMatchesEverything(t *testing.T) {
	m := newMatcher(SearchCriteria{}, VisibilityScope{})

	for _, event := range inRangeEvents() {
		assert.True(t, m.matches(event))
	}
}

func TestMatchBeforeOrdersMostRecentFirst(t *testing.T) {
	a := match{ev: ev("2014-05-17T13:00:00Z", DomainUser, ActionCreate, "", "", "", "", ""), fileIdx: 1, lineIdx: 10}
	b := match{ev: ev("2014-05-16T13:00:00Z", DomainUser, ActionCreate, "", "", "", "", ""), fileIdx: 0, lineIdx: 0}
	assert.True(t, a.before(b))
	assert.False(t, b.before(a))
}

func TestMatchBeforeBreaksTiesByFileThenLine(t *testing.T) {
	ts := "2014-05-17T13:00:00Z"
	newer := match{ev: ev(ts, DomainUser, ActionCreate, "", "", "", "", ""), fileIdx: 0, lineIdx: 5}
	older := match{ev: ev(ts, DomainUser, ActionCreate, "", "", "", "", ""), fileIdx: 1, lineIdx: 0}
	assert.True(t, newer.before(older))

	first := match{ev: ev(ts, DomainUser, ActionCreate, "", "", "", "", ""), fileIdx: 1, lineIdx: 3}
	second := match{ev: ev(ts, DomainUser, ActionCreate, "", "", "", "", ""), fileIdx: 1, lineIdx: 4}
	assert.True(t, first.before(second))
	assert.False(t, second.before(first))
}
