// Package watcher feeds rent roll files dropped into a directory through the
// analysis pipeline without an upload request.
package watcher

import (
	"context"
	"os"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/rpattn/rentroll/internal/analysis"
	"github.com/rpattn/rentroll/internal/domain"
	"github.com/rpattn/rentroll/internal/sheet"
)

// Processor runs one document through the pipeline.
type Processor interface {
	Process(ctx context.Context, doc domain.Document) analysis.Outcome
}

// Watcher monitors a drop folder and processes created or rewritten files.
type Watcher struct {
	watcher   *fsnotify.Watcher
	processor Processor
	logger    *zap.Logger
}

// New builds a watcher around the given processor.
func New(processor Processor, logger *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		watcher:   w,
		processor: processor,
		logger:    logger.Named("watcher"),
	}, nil
}

// Watch starts monitoring dir until the context is cancelled. It returns
// after the monitoring goroutine has been started.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				if !sheet.Supported(event.Name) {
					continue
				}
				w.handle(ctx, event.Name)
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watch error", zap.Error(err))
			}
		}
	}()

	return nil
}

func (w *Watcher) handle(ctx context.Context, path string) {
	payload, err := os.ReadFile(path)
	if err != nil {
		w.logger.Warn("failed to read dropped file", zap.String("path", path), zap.Error(err))
		return
	}

	doc := domain.NewDocument(path, payload)
	outcome := w.processor.Process(ctx, doc)
	if !outcome.Success {
		w.logger.Warn("dropped file failed analysis",
			zap.String("path", path),
			zap.String("reason", outcome.Error),
		)
		return
	}
	w.logger.Info("dropped file processed",
		zap.String("path", path),
		zap.Int("rows", len(outcome.Rows)),
		zap.Bool("cache_hit", outcome.CacheHit),
	)
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
