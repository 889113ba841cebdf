package server

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// watchConfig starts an fsnotify watcher on the config file's directory
// and applies log-level changes without a restart. Editors replace files
// rather than writing in place, so the parent directory is watched and
// events are filtered by name.
func (d *Daemon) watchConfig(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}
	go d.watchLoop(ctx, watcher, path)
	return nil
}

func (d *Daemon) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string) {
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			d.applyLogLevel(path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			d.logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}

func (d *Daemon) applyLogLevel(path string) {
	cfg, err := LoadConfig(path)
	if err != nil {
		d.logger.Warn().Err(err).Msg("config reload failed, keeping current log level")
		return
	}
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		d.logger.Warn().Str("level", cfg.Log.Level).Msg("invalid log level in config")
		return
	}
	zerolog.SetGlobalLevel(level)
	d.logger.Info().Str("level", level.String()).Msg("log level updated")
}
