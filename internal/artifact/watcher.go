package artifact

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch starts an fsnotify watcher on the store's folder and resyncs the
// index when files are added, removed, or renamed outside the service
// (administrative cleanups must not poison dedup lookups or sequence
// allocation). Events are debounced so a burst of changes triggers a single
// resync. Watch blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(s.root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("folder", s.label), slog.String("root", s.root))

	var resyncTimer *time.Timer
	var resyncCh <-chan time.Time

	scheduleResync := func() {
		if resyncTimer == nil {
			resyncTimer = time.NewTimer(200 * time.Millisecond)
			resyncCh = resyncTimer.C
		} else {
			resyncTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if resyncTimer != nil {
				resyncTimer.Stop()
			}
			logger.Info("watcher: stopped", slog.String("folder", s.label))
			return nil

		case <-resyncCh:
			if err := s.Resync(); err != nil {
				logger.Warn("watcher: resync failed",
					slog.String("folder", s.label),
					slog.String("error", err.Error()))
			} else {
				logger.Debug("watcher: resynced", slog.String("folder", s.label))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// Our own atomic writes surface as a rename of a tmp file; the
			// index is already current for those, but a resync is harmless
			// and keeps the logic uniform. Skip tmp-file create/write noise.
			if strings.Contains(ev.Name, tmpPrefix) && ev.Op&fsnotify.Rename == 0 {
				continue
			}
			scheduleResync()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("folder", s.label), slog.String("error", err.Error()))
		}
	}
}
