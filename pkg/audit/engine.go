package audit

import (
	"container/heap"
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// Engine answers filtered, paginated queries over the audit trail. It is
// stateless across requests: criteria, scope, and the event sequence are built
// per call, so concurrent queries cannot interfere.
type Engine struct {
	locator *Locator
	dir     Directory
	cache   *ParseCache
	metrics *Metrics
	log     *logrus.Logger
}

// NewEngine creates a query engine. cache and metrics may be nil.
func NewEngine(locator *Locator, dir Directory, cache *ParseCache, metrics *Metrics, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{
		locator: locator,
		dir:     dir,
		cache:   cache,
		metrics: metrics,
		log:     log,
	}
}

// Query applies validated criteria and a visibility scope to the audit trail
// and returns one page of matches plus the total hit count.
//
// Matches are ordered most-recent-first; equal timestamps fall back to
// file-then-line order. Only the top pageNumber*pageSize matches are buffered,
// never the full result set. A missing log folder yields ErrStorageUnavailable;
// an empty or fully-unreadable folder yields an empty result, which is a
// valid, unremarkable outcome for an audit trail.
func (e *Engine) Query(ctx context.Context, criteria SearchCriteria, scope VisibilityScope, page Page) (*SearchResult, error) {
	if page.Size <= 0 {
		return nil, ErrInvalidPageSize
	}
	if page.Number < 1 {
		page.Number = 1
	}

	start := time.Now()
	result, err := e.query(ctx, criteria, scope, page)
	if e.metrics != nil {
		e.metrics.QueryDuration.Observe(time.Since(start).Seconds())
		e.metrics.QueriesTotal.WithLabelValues(queryOutcome(err)).Inc()
	}
	return result, err
}

func (e *Engine) query(ctx context.Context, criteria SearchCriteria, scope VisibilityScope, page Page) (*SearchResult, error) {
	files, err := e.locator.Locate()
	if err != nil {
		return nil, err
	}
	files = pruneFiles(files, criteria)

	src := NewSource(files, e.cache, e.metrics, e.log)
	m := newMatcher(criteria, scope)

	// Retain only the top-K matches, K = page upper edge. The heap evicts the
	// lowest-ranked retained match, so memory is bounded by the smaller of the
	// page offset and the total hit count.
	keep, start := pageWindow(page)
	var h matchHeap
	totalHits := 0

	err = src.Stream(ctx, func(ev Event, fileIdx, lineIdx int) bool {
		if !m.matches(ev) {
			return true
		}
		totalHits++
		heap.Push(&h, match{ev: ev, fileIdx: fileIdx, lineIdx: lineIdx})
		if len(h) > keep {
			heap.Pop(&h)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(h, func(i, j int) bool { return h[i].before(h[j]) })

	events := []Event{}
	if start < len(h) {
		end := start + page.Size
		if end > len(h) {
			end = len(h)
		}
		for _, mt := range h[start:end] {
			events = append(events, mt.ev)
		}
	}

	return &SearchResult{
		Events:     events,
		TotalHits:  totalHits,
		PageNumber: page.Number,
		PageSize:   page.Size,
	}, nil
}

// SuggestUsernames returns up to limit usernames starting with term, narrowed
// to the caller's visibility scope
func (e *Engine) SuggestUsernames(ctx context.Context, term string, scope VisibilityScope, limit int) ([]string, error) {
	names, err := e.dir.SearchUsernames(ctx, term, limit)
	if err != nil {
		return nil, err
	}
	if scope.Usernames == nil {
		return names, nil
	}
	scoped := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := scope.Usernames[name]; ok {
			scoped = append(scoped, name)
		}
	}
	return scoped, nil
}

// pageWindow returns how many top matches the page requires and the page's
// offset within them. Page numbers are not bounded by the caller, so the
// multiplication is guarded: a window past the int range starts past any
// representable match count and degenerates to an empty page, while the
// total count is still produced.
func pageWindow(page Page) (keep, start int) {
	if page.Number > math.MaxInt/page.Size {
		return math.MaxInt, math.MaxInt
	}
	keep = page.Number * page.Size
	return keep, keep - page.Size
}

// pruneFiles drops files that cannot contain events inside the requested
// window. The producer only appends, so a file's mtime bounds its newest
// event: a file last written before the window opens holds nothing in range.
func pruneFiles(files []LogFile, criteria SearchCriteria) []LogFile {
	if criteria.DateFrom == nil {
		return files
	}
	pruned := files[:0:0]
	for _, f := range files {
		if f.ModTime.Before(*criteria.DateFrom) {
			continue
		}
		pruned = append(pruned, f)
	}
	return pruned
}

func queryOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
