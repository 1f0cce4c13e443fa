package audit

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// maxLineBytes bounds a single log line. Descriptions are free text but the
// producer truncates them well below this.
const maxLineBytes = 1024 * 1024

// Source streams events across a set of located log files as one continuous
// sequence. Files are visited in the order given (the locator's newest-first
// order); within a file, lines are read in file order, which is chronological
// ascending per file. The composite sequence is therefore not globally sorted
// and consumers must not assume it is.
//
// A Source carries no cursor state between calls; build one per request.
type Source struct {
	files   []LogFile
	cache   *ParseCache
	metrics *Metrics
	log     *logrus.Logger
}

// NewSource creates a source over the given files. cache and metrics may be
// nil to disable memoization and instrumentation.
func NewSource(files []LogFile, cache *ParseCache, metrics *Metrics, log *logrus.Logger) *Source {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Source{files: files, cache: cache, metrics: metrics, log: log}
}

// Files returns the files this source reads, in visit order
func (s *Source) Files() []LogFile {
	return s.files
}

// Stream invokes fn for every event in the composite sequence, passing the
// file index (locator order) and line index within the file. fn returns false
// to stop early. Unreadable files are skipped with a warning so that partial
// results are still produced. Returns ctx.Err() when cancelled.
func (s *Source) Stream(ctx context.Context, fn func(ev Event, fileIdx, lineIdx int) bool) error {
	for i, file := range s.files {
		events, err := s.ReadFile(ctx, file)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.skipFile(file, err)
			continue
		}
		for j, ev := range events {
			if !fn(ev, i, j) {
				return nil
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// ReadFile parses one whole log file, consulting the parse cache when enabled.
// Malformed lines are dropped and counted, never surfaced as errors.
func (s *Source) ReadFile(ctx context.Context, file LogFile) ([]Event, error) {
	if s.cache != nil {
		if events, ok := s.cache.Get(file); ok {
			return events, nil
		}
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", file.Path, err)
	}
	defer f.Close()

	var (
		events    []Event
		malformed int
		lineNo    int
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		lineNo++
		if lineNo%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if s.metrics != nil {
			s.metrics.LinesScanned.Inc()
		}
		ev, ok := ParseLine(line)
		if !ok {
			malformed++
			if s.metrics != nil {
				s.metrics.LinesMalformed.Inc()
			}
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log file %s: %w", file.Path, err)
	}

	if malformed > 0 {
		s.log.WithFields(logrus.Fields{
			"file":  file.Path,
			"count": malformed,
		}).Warn("dropped malformed audit log lines")
	}

	if s.cache != nil {
		s.cache.Put(file, events)
	}
	return events, nil
}

func (s *Source) skipFile(file LogFile, err error) {
	if s.metrics != nil {
		s.metrics.FilesSkipped.Inc()
	}
	s.log.WithError(err).WithField("file", file.Path).Warn("skipping unreadable audit log file")
}
