// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	xglog "github.com/ManuGH/snippets/internal/log"
	"github.com/ManuGH/snippets/internal/metrics"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// LoadFunc produces a fresh snapshot, typically by re-reading the env file.
type LoadFunc func() (*Snapshot, error)

const reloadDebounce = 500 * time.Millisecond

// Holder publishes the current Snapshot. Reloads build a complete new
// snapshot and swap the pointer; a published snapshot is never modified.
type Holder struct {
	current atomic.Pointer[Snapshot]
	load    LoadFunc
	envFile string
	logger  zerolog.Logger

	reloadMu sync.Mutex

	listenersMu sync.RWMutex
	listeners   []chan<- *Snapshot
}

// NewHolder creates a holder publishing initial. envFile may be empty, in
// which case Watch is a no-op.
func NewHolder(initial *Snapshot, load LoadFunc, envFile string) *Holder {
	h := &Holder{
		load:    load,
		envFile: envFile,
		logger:  xglog.WithComponent("config"),
	}
	h.current.Store(initial)
	return h
}

// Current returns the published snapshot.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Reload loads and validates a new snapshot. On failure the published
// snapshot is kept and the error is returned.
func (h *Holder) Reload(_ context.Context) error {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()

	h.logger.Info().Str("event", "config.reload_start").Msg("reloading configuration")

	if h.load == nil {
		return errors.New("config holder has no loader")
	}
	next, err := h.load()
	if err != nil {
		metrics.RecordConfigReload("failure")
		h.logger.Error().
			Err(err).
			Str("event", "config.reload_failed").
			Msg("new configuration rejected, keeping current")
		return fmt.Errorf("reload config: %w", err)
	}

	old := h.current.Swap(next)
	metrics.RecordConfigReload("success")

	for _, c := range Diff(old, next) {
		h.logger.Info().
			Str("path", c.Path).
			Str("old", c.Old).
			Str("new", c.New).
			Msg("config changed")
	}
	h.notify(next)

	h.logger.Info().Str("event", "config.reload_success").Msg("configuration reloaded")
	return nil
}

// Subscribe registers ch to receive each successfully reloaded snapshot.
// Sends are non-blocking; a full channel misses the notification.
func (h *Holder) Subscribe(ch chan<- *Snapshot) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *Holder) notify(s *Snapshot) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, ch := range h.listeners {
		select {
		case ch <- s:
		default:
			h.logger.Warn().
				Str("event", "config.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}

// Watch reloads whenever the env file changes, until ctx is done. The parent
// directory is watched so that editors replacing the file are noticed.
func (h *Holder) Watch(ctx context.Context) error {
	if h.envFile == "" {
		h.logger.Info().
			Str("event", "config.watcher_disabled").
			Msg("env file watcher disabled")
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(h.envFile)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch env file dir: %w", err)
	}
	target := filepath.Clean(h.envFile)

	h.logger.Info().
		Str("event", "config.watcher_started").
		Str("path", h.envFile).
		Msg("watching env file for changes")

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str("event", "config.watcher_stopped").Msg("env file watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			h.logger.Debug().
				Str("event", "config.file_changed").
				Str("op", event.Op.String()).
				Msg("env file changed")

			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(reloadDebounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			if err := h.Reload(ctx); err != nil {
				h.logger.Error().
					Err(err).
					Str("event", "config.auto_reload_failed").
					Msg("automatic config reload failed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			h.logger.Error().
				Err(err).
				Str("event", "config.watcher_error").
				Msg("env file watcher error")
		}
	}
}
