package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// debounceWindow coalesces the bursts of write events editors produce
// when saving a file.
const debounceWindow = 100 * time.Millisecond

// watchCompile compiles the pipeline once, then recompiles on every
// change to the file until the command's context is cancelled.
//
// The watch is on the containing directory, not the file: editors that
// save via rename-and-replace would otherwise silently detach the
// watcher on the first save.
func watchCompile(cmd *cobra.Command, path string, opts *CompileOptions, formatter *OutputFormatter) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return reportError(formatter, &LoadError{Code: ErrCodeWatch, Message: err.Error()})
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return reportError(formatter, &LoadError{Code: ErrCodeWatch, Message: fmt.Sprintf("cannot start watcher: %v", err)})
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return reportError(formatter, &LoadError{Code: ErrCodeWatch, Message: fmt.Sprintf("cannot watch %s: %v", filepath.Dir(abs), err)})
	}

	// Failures inside the loop are reported but do not stop the watch;
	// a broken intermediate save should not kill the session.
	if err := runCompile(path, opts, formatter); err != nil {
		formatter.VerboseLog("compile failed: %v", err)
	}

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-cmd.Context().Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			evAbs, err := filepath.Abs(event.Name)
			if err != nil || evAbs != abs {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceWindow, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			formatter.VerboseLog("change detected, recompiling %s", path)
			if err := runCompile(path, opts, formatter); err != nil {
				formatter.VerboseLog("compile failed: %v", err)
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return reportError(formatter, &LoadError{Code: ErrCodeWatch, Message: werr.Error()})
		}
	}
}
