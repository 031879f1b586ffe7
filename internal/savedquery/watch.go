package savedquery

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/logger"
)

const reloadDebounce = 100 * time.Millisecond

// Watch reloads the store whenever its file is written, created or renamed
// into place by another process, until ctx is cancelled. The containing
// directory is watched because editors replace files on save.
func (s *Store) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target, err := filepath.Abs(s.path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if name, _ := filepath.Abs(ev.Name); name != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				if err := s.Reload(); err != nil {
					log.WarnWith("saved queries reload failed", err, map[string]any{"path": s.path})
					return
				}
				log.InfoWith("saved queries reloaded", map[string]any{"path": s.path, "count": len(s.List())})
			})
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.WarnWith("saved queries watcher error", err, map[string]any{"path": s.path})
		}
	}
}
