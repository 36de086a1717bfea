// Package signals implements the file-based stop signal. Writing
// .futuresdesk/signals/kill under the project root cancels a running analysis.
package signals

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrKilled is the cancellation cause when the kill file appears.
var ErrKilled = errors.New("stop signal received")

// pollInterval backs up the watcher on filesystems where events are unreliable.
const pollInterval = 500 * time.Millisecond

// Dir returns the signals directory under root.
func Dir(root string) string {
	return filepath.Join(root, ".futuresdesk", "signals")
}

func killPath(root string) string {
	return filepath.Join(Dir(root), "kill")
}

// SendKill creates the kill signal file.
func SendKill(root string) error {
	if err := os.MkdirAll(Dir(root), 0755); err != nil {
		return err
	}
	return os.WriteFile(killPath(root), []byte(time.Now().Format(time.RFC3339)), 0644)
}

// Clear removes the kill signal file if present.
func Clear(root string) error {
	err := os.Remove(killPath(root))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Watch returns a context that is cancelled with ErrKilled once the kill file
// appears under root. A kill file left by an earlier run is removed first. The
// returned stop function releases the watcher; it is safe to call more than once.
func Watch(ctx context.Context, root string) (context.Context, func(), error) {
	if err := os.MkdirAll(Dir(root), 0755); err != nil {
		return nil, nil, err
	}
	if err := Clear(root); err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancelCause(ctx)
	done := make(chan struct{})

	// Continue without watcher - the poll still catches the file.
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		if err := watcher.Add(Dir(root)); err != nil {
			watcher.Close()
			watcher = nil
		}
	} else {
		watcher = nil
	}

	go watch(ctx, root, watcher, cancel, done)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel(nil)
			<-done
		})
	}
	return ctx, stop, nil
}

func watch(ctx context.Context, root string, w *fsnotify.Watcher, cancel context.CancelCauseFunc, done chan<- struct{}) {
	defer close(done)

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if w != nil {
		defer w.Close()
		events, errs = w.Events, w.Errors
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	kill := killPath(root)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Name == kill && ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				cancel(ErrKilled)
				return
			}
		case _, ok := <-errs:
			// Ignore errors, keep watching.
			if !ok {
				errs = nil
			}
		case <-ticker.C:
			if _, err := os.Stat(kill); err == nil {
				cancel(ErrKilled)
				return
			}
		}
	}
}
