package prefs

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/ngrash/tsconv/internal/debounce"
)

// Watch reloads the preferences whenever the file changes until ctx is
// cancelled. Bursts of events within quiet of each other cause one reload.
// onChange, if non-nil, is called with the new preferences after a reload
// that changed them.
//
// The parent directory is watched rather than the file, so editors that
// replace the file by renaming keep being noticed.
func (s *Store) Watch(ctx context.Context, quiet time.Duration, log zerolog.Logger, onChange func(Preferences)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Info().Str("path", s.path).Msg("prefs: watching")

	reload := debounce.New(quiet, func() {
		changed, err := s.Load()
		if err != nil {
			log.Warn().Err(err).Msg("prefs: reload failed, keeping current")
			return
		}
		if !changed {
			return
		}
		p := s.Current()
		log.Info().Stringer("date_format", p.DateFormat).Str("timezone", p.Timezone).Msg("prefs: reloaded")
		if onChange != nil {
			onChange(p)
		}
	})
	defer reload.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("prefs: stopped watching")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != s.path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				log.Debug().Str("op", ev.Op.String()).Msg("prefs: file event")
				reload.Trigger()
			}

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(werr).Msg("prefs: watcher error")
		}
	}
}
