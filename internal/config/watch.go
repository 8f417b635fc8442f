package config

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// FileWatcher polls file modification times and triggers a callback on change.
// Files are re-listed on every tick, so new and deleted files are reported too.
type FileWatcher struct {
	List     func() ([]string, error)
	Interval time.Duration
	Logger   *log.Logger

	onChange  func(path string) // called with the path that changed
	lastMTime map[string]time.Time
}

// NewFileWatcher watches the files list returns.
func NewFileWatcher(list func() ([]string, error), interval time.Duration, onChange func(string)) *FileWatcher {
	return &FileWatcher{
		List:      list,
		Interval:  interval,
		onChange:  onChange,
		lastMTime: make(map[string]time.Time),
	}
}

// WatchLoader invalidates l whenever a file under its data directory changes.
func WatchLoader(l *Loader, interval time.Duration, logger *log.Logger) *FileWatcher {
	w := NewFileWatcher(l.Files, interval, func(string) { l.Invalidate() })
	w.Logger = logger
	return w
}

// Run polls until ctx is done.
func (w *FileWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	// prime cache
	w.Scan(true)
	for {
		select {
		case <-ticker.C:
			w.Scan(false)
		case <-ctx.Done():
			return nil
		}
	}
}

// Scan checks mtimes and returns the paths that changed since the last scan.
// A priming scan only records mtimes.
func (w *FileWatcher) Scan(prime bool) []string {
	paths, err := w.List()
	if err != nil {
		if w.Logger != nil {
			w.Logger.Warn("list watched files", "err", err)
		}
		return nil
	}
	var changed []string
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			continue
		}
		seen[p] = true
		mt := fi.ModTime()
		last, ok := w.lastMTime[p]
		w.lastMTime[p] = mt
		if !ok && prime {
			continue
		}
		if !ok || mt.After(last) {
			changed = append(changed, p)
		}
	}
	for p := range w.lastMTime {
		if !seen[p] {
			delete(w.lastMTime, p)
			changed = append(changed, p)
		}
	}
	if prime {
		return nil
	}
	for _, p := range changed {
		if w.Logger != nil {
			w.Logger.Info("config changed", "path", p)
		}
		if w.onChange != nil {
			w.onChange(p)
		}
	}
	return changed
}
