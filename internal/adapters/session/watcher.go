package session

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
)

// DefaultDebounce coalesces the burst of events an atomic rename produces
const DefaultDebounce = 150 * time.Millisecond

// Change reports the session found on disk after the file changed.
// Session is nil after a logout.
type Change struct {
	Session *domain.Session
	Err     error
}

// Watch emits a Change every time the session file is written or removed.
// The channel is closed when ctx is cancelled.
func Watch(ctx context.Context, store *FileStore, debounce time.Duration, logger *logrus.Logger) (<-chan Change, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create session watcher: %w", err)
	}

	// Watch the directory so the file can be created and removed freely
	dir := filepath.Dir(store.Path())
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	log := logrus.NewEntry(logrus.StandardLogger())
	if logger != nil {
		log = logger.WithField("component", "session-watcher")
	}

	out := make(chan Change, 1)
	fire := make(chan struct{}, 1)
	name := filepath.Base(store.Path())

	go func() {
		defer close(out)
		defer func() { _ = watcher.Close() }()

		var debounceTimer *time.Timer
		defer func() {
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
		}()

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				if event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Write) ||
					event.Has(fsnotify.Remove) ||
					event.Has(fsnotify.Rename) {
					log.WithField("op", event.Op.String()).Debug("session file changed")
					if debounceTimer != nil {
						debounceTimer.Stop()
					}
					debounceTimer = time.AfterFunc(debounce, func() {
						select {
						case fire <- struct{}{}:
						default:
						}
					})
				}

			case <-fire:
				sess, err := store.Load()
				select {
				case out <- Change{Session: sess, Err: err}:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("session watcher error")

			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
