package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LogFile describes one located audit log file. ModTime doubles as an upper
// bound on the newest event the file can contain, since the producer only
// appends.
type LogFile struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Locator discovers audit log files under a configured folder. The live log
// and its rotated siblings share a common filename prefix.
type Locator struct {
	folder string
	prefix string
}

// NewLocator creates a locator for the given folder and filename prefix
func NewLocator(folder, prefix string) *Locator {
	return &Locator{folder: folder, prefix: prefix}
}

// Locate enumerates every file whose name starts with the configured prefix,
// newest first (by modification time, then name descending for a stable order).
// Visiting recent files first lets bounded queries skip older files entirely.
// A missing or unreadable folder yields ErrStorageUnavailable.
func (l *Locator) Locate() ([]LogFile, error) {
	entries, err := os.ReadDir(l.folder)
	if err != nil {
		return nil, fmt.Errorf("%w: reading folder %s: %v", ErrStorageUnavailable, l.folder, err)
	}

	var files []LogFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), l.prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Stat raced with a rotation or cleanup; the file is gone.
			continue
		}
		files = append(files, LogFile{
			Path:    filepath.Join(l.folder, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Path > files[j].Path
	})

	return files, nil
}
