package cmd

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// defaultWatchDebounce is the quiet period after a change of the watched file before it is acted upon, so that the
// several events of a single save trigger one run.
const defaultWatchDebounce = 300 * time.Millisecond

// watchFile calls onChange every time the file at the provided path is written, created or replaced, until the
// context is cancelled. The parent directory is watched rather than the file itself, since editors often save by
// replacing the file. onChange runs on the calling goroutine, and changes made while it runs are coalesced into one
// further call.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.WithStack(err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WithStack(err)
	}
	defer watcher.Close()
	if err = watcher.Add(filepath.Dir(absPath)); err != nil {
		return errors.Wrapf(err, "could not watch %v", filepath.Dir(absPath))
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmdLogger.Warn("Error while watching the target", err)
		case <-timer.C:
			onChange()
		}
	}
}
