package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 250 * time.Millisecond

// addWatchDirs registers dir and every non-ignored directory below it.
// fsnotify watches are not recursive. A directory created later under an
// ignored parent is skipped too.
func addWatchDirs(watcher *fsnotify.Watcher, dir string, policy *Policy, isRoot bool) error {
	if !isRoot && (MatchesPathOrParents(dir, true, policy.PathMatchers) || IsModuleDir(dir)) {
		return nil
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := addWatchDirs(watcher, filepath.Join(dir, entry.Name()), policy, false); err != nil {
			return err
		}
	}
	return nil
}

// Watch calls run once and again after every burst of file system changes
// under the policy directory, until ctx is done.
func Watch(ctx context.Context, policy *Policy, logger *slog.Logger, run func(ctx context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, policy.Directory, policy, true); err != nil {
		return err
	}

	if err := run(ctx); err != nil {
		return err
	}

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addWatchDirs(watcher, event.Name, policy, false); err != nil {
						logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
					}
				}
			}
			logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			debounce = time.After(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-debounce:
			debounce = nil
			if err := run(ctx); err != nil {
				// e.g. a half-written package.json; keep watching
				logger.Error("check failed", "error", err)
			}
		}
	}
}
