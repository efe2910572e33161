// Package watcher watches inbox directories with fsnotify and forwards settled file
// changes to the ingestion pipeline.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hyperjump/wali/internal/extract"
	"github.com/hyperjump/wali/internal/fileid"
)

const defaultDebounce = 400 * time.Millisecond

// Handler receives settled file events. Both methods run on timer or walker
// goroutines and must be safe for concurrent use.
type Handler interface {
	FileChanged(ctx context.Context, path string) error
	FileRemoved(ctx context.Context, path string) error
}

// Inbox watches a set of directories and calls its Handler for matching files.
type Inbox struct {
	roots      []string
	extensions []string
	recursive  bool
	handler    Handler
	debounce   time.Duration
	logger     *zap.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	pending map[string]*time.Timer
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures an Inbox.
type Option func(*Inbox)

// WithLogger sets a logger for watcher events and handler failures.
func WithLogger(l *zap.Logger) Option {
	return func(in *Inbox) { in.logger = l }
}

// WithDebounce sets how long a path must stay quiet before FileChanged runs.
func WithDebounce(d time.Duration) Option {
	return func(in *Inbox) { in.debounce = d }
}

// NewInbox creates an inbox over roots. extensions filters files (empty = all).
func NewInbox(roots, extensions []string, recursive bool, handler Handler, opts ...Option) *Inbox {
	in := &Inbox{
		roots:      roots,
		extensions: extensions,
		recursive:  recursive,
		handler:    handler,
		debounce:   defaultDebounce,
		pending:    make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Start creates missing roots, registers them with fsnotify and begins dispatching
// events. It returns once watching is set up; Stop or cancelling ctx ends it.
func (in *Inbox) Start(ctx context.Context) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.fsw != nil {
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, root := range in.roots {
		if err := in.watchTree(fsw, root); err != nil {
			_ = fsw.Close()
			return err
		}
	}
	in.fsw = fsw
	runCtx, cancel := context.WithCancel(ctx)
	in.cancel = cancel
	in.wg.Add(1)
	go in.run(runCtx, fsw)
	if in.logger != nil {
		in.logger.Info("watching inbox", zap.Strings("roots", in.roots), zap.Bool("recursive", in.recursive))
	}
	return nil
}

// Sync hands every existing matching file under the roots to FileChanged, in walk order.
func (in *Inbox) Sync(ctx context.Context) int {
	n := 0
	for _, root := range in.roots {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() {
				if path != root && !in.recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || !extract.Allowed(path, in.extensions) {
				return nil
			}
			in.dispatchChanged(ctx, path)
			n++
			return nil
		})
	}
	return n
}

// Stop cancels pending events, closes the fsnotify watcher and waits for the loop.
func (in *Inbox) Stop() {
	in.mu.Lock()
	if in.fsw == nil {
		in.mu.Unlock()
		return
	}
	for path, t := range in.pending {
		t.Stop()
		delete(in.pending, path)
	}
	in.cancel()
	_ = in.fsw.Close()
	in.fsw = nil
	in.mu.Unlock()
	in.wg.Wait()
}

func (in *Inbox) run(ctx context.Context, fsw *fsnotify.Watcher) {
	defer in.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			in.handleEvent(ctx, fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			if in.logger != nil {
				in.logger.Warn("watcher error", zap.Error(err))
			}
		}
	}
}

func (in *Inbox) handleEvent(ctx context.Context, fsw *fsnotify.Watcher, ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	if in.logger != nil {
		in.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	}
	switch {
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.IsDir() {
			if ev.Has(fsnotify.Create) && in.recursive {
				in.mu.Lock()
				err := in.watchTree(fsw, path)
				in.mu.Unlock()
				if err != nil && in.logger != nil {
					in.logger.Warn("watcher failed to add directory", zap.String("path", path), zap.Error(err))
				}
				in.scheduleTree(ctx, path)
			}
			return
		}
		if extract.Allowed(path, in.extensions) {
			in.schedule(ctx, path)
		}
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		in.unschedule(path)
		if !extract.Allowed(path, in.extensions) {
			return
		}
		if err := in.handler.FileRemoved(ctx, path); err != nil && in.logger != nil {
			in.logger.Warn("watcher remove failed", zap.String("path", path), zap.Error(err))
		}
	}
}

// watchTree registers root, and its subdirectories when recursive. Callers hold in.mu
// or own fsw exclusively.
func (in *Inbox) watchTree(fsw *fsnotify.Watcher, root string) error {
	if err := os.MkdirAll(root, 0755); err != nil {
		return err
	}
	if !in.recursive {
		return fsw.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return fsw.Add(path)
		}
		return nil
	})
}

func (in *Inbox) schedule(ctx context.Context, path string) {
	key := fileid.Key(path)
	in.mu.Lock()
	defer in.mu.Unlock()
	if t, ok := in.pending[key]; ok {
		t.Stop()
	}
	in.pending[key] = time.AfterFunc(in.debounce, func() {
		in.mu.Lock()
		delete(in.pending, key)
		in.mu.Unlock()
		in.dispatchChanged(ctx, path)
	})
}

// scheduleTree queues files of a directory that was moved or copied in whole.
func (in *Inbox) scheduleTree(ctx context.Context, dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && d.Type().IsRegular() && extract.Allowed(path, in.extensions) {
			in.schedule(ctx, path)
		}
		return nil
	})
}

func (in *Inbox) unschedule(path string) {
	key := fileid.Key(path)
	in.mu.Lock()
	defer in.mu.Unlock()
	if t, ok := in.pending[key]; ok {
		t.Stop()
		delete(in.pending, key)
	}
}

func (in *Inbox) dispatchChanged(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	err := in.handler.FileChanged(ctx, path)
	if in.logger == nil {
		return
	}
	switch {
	case err == nil:
		in.logger.Info("ingested file", zap.String("path", path))
	case errors.Is(err, context.Canceled):
	default:
		in.logger.Warn("ingest failed", zap.String("path", path), zap.Error(err))
	}
}
