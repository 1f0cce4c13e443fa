package audit

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// ReportFilename is the fixed attachment filename for CSV reports
	ReportFilename = "audit-report.csv"
	// ReportContentType is the content type of CSV reports
	ReportContentType = "text/csv"
	// ReportContentDisposition marks the report as a downloadable attachment
	ReportContentDisposition = `attachment; filename="` + ReportFilename + `"`
)

// reportHeader is the fixed CSV column order, one column per event field
var reportHeader = []string{
	"Timestamp",
	"Domain",
	"Action",
	"Username",
	"GlobalID",
	"Description",
	"Group",
	"Community",
}

// Exporter renders the full, unpaginated result of a query as a CSV report.
// For N matching events the report is exactly N+2 lines: one leading comment
// line describing the query, one header row, then one row per event,
// most-recent-first.
type Exporter struct {
	locator *Locator
	cache   *ParseCache
	metrics *Metrics
	log     *logrus.Logger
	// maxConcurrent bounds how many files are scanned at once, which also
	// bounds open descriptors under concurrent exports
	maxConcurrent int
}

// NewExporter creates a CSV exporter. maxConcurrent values below 1 disable
// concurrent scanning.
func NewExporter(locator *Locator, cache *ParseCache, metrics *Metrics, log *logrus.Logger, maxConcurrent int) *Exporter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Exporter{
		locator:       locator,
		cache:         cache,
		metrics:       metrics,
		log:           log,
		maxConcurrent: maxConcurrent,
	}
}

// WriteCSV streams the report for the given criteria and scope to w. Rows are
// written as they are encoded, never buffered as one document. A missing log
// folder degrades to an empty report (comment and header only) with a logged
// warning, since partial or absent data must still produce a well-formed
// report.
func (x *Exporter) WriteCSV(ctx context.Context, criteria SearchCriteria, scope VisibilityScope, w io.Writer) error {
	err := x.writeCSV(ctx, criteria, scope, w)
	if x.metrics != nil {
		x.metrics.ExportsTotal.WithLabelValues(queryOutcome(err)).Inc()
	}
	return err
}

func (x *Exporter) writeCSV(ctx context.Context, criteria SearchCriteria, scope VisibilityScope, w io.Writer) error {
	files, err := x.locator.Locate()
	if err != nil {
		if !errors.Is(err, ErrStorageUnavailable) {
			return err
		}
		x.log.WithError(err).Warn("exporting empty report, audit log storage unavailable")
		files = nil
	}
	files = pruneFiles(files, criteria)

	matches, err := x.collect(ctx, files, criteria, scope)
	if err != nil {
		return err
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].before(matches[j]) })

	if _, err := fmt.Fprintf(w, "# audit trail report; range=%s..%s; events=%d\n",
		formatBound(criteria.DateFrom), formatBound(criteria.DateTo), len(matches)); err != nil {
		return fmt.Errorf("writing report comment line: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return fmt.Errorf("writing report header: %w", err)
	}
	for i, m := range matches {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Flush periodically so large reports stream instead of
			// accumulating in the csv writer
			cw.Flush()
			if err := cw.Error(); err != nil {
				return fmt.Errorf("writing report rows: %w", err)
			}
		}
		if err := cw.Write(eventRow(m.ev)); err != nil {
			return fmt.Errorf("writing report row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing report: %w", err)
	}
	return nil
}

// collect scans the given files concurrently (bounded) and returns every
// matching event. Per-file order is preserved by collecting into per-file
// slices and flattening in locator order.
func (x *Exporter) collect(ctx context.Context, files []LogFile, criteria SearchCriteria, scope VisibilityScope) ([]match, error) {
	m := newMatcher(criteria, scope)
	src := NewSource(files, x.cache, x.metrics, x.log)

	perFile := make([][]match, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.maxConcurrent)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			events, err := src.ReadFile(gctx, file)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				src.skipFile(file, err)
				return nil
			}
			var matches []match
			for j, ev := range events {
				if m.matches(ev) {
					matches = append(matches, match{ev: ev, fileIdx: i, lineIdx: j})
				}
			}
			perFile[i] = matches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []match
	for _, matches := range perFile {
		all = append(all, matches...)
	}
	return all, nil
}

// eventRow renders one event in reportHeader column order. encoding/csv
// handles quoting of embedded delimiters, quotes, and newlines.
func eventRow(ev Event) []string {
	return []string{
		ev.Timestamp.UTC().Format(time.RFC3339),
		string(ev.Domain),
		string(ev.Action),
		ev.Username,
		ev.GlobalID,
		ev.Description,
		ev.Group,
		ev.Community,
	}
}

func formatBound(t *time.Time) string {
	if t == nil {
		return "*"
	}
	return t.Format(DateFormat)
}
