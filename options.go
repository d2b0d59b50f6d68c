package zarchive

import (
	"log/slog"

	"github.com/exzap/zarchive/internal/progress"
)

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithWriterLogger sets the logger used for diagnostic output during
// writing. If unset, logging is discarded.
func WithWriterLogger(logger *slog.Logger) WriterOption {
	return func(w *Writer) {
		w.logger = logger
	}
}

// WithWriterProgress registers a callback invoked as PackDir walks and
// writes files. It is never called by the primitive Writer methods.
func WithWriterProgress(fn progress.Func) WriterOption {
	return func(w *Writer) {
		w.progress = fn
	}
}

func (w *Writer) log() *slog.Logger {
	if w.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.logger
}

func (w *Writer) reportProgress(ev progress.Event) {
	if w.progress != nil {
		w.progress(ev)
	}
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithReaderLogger sets the logger used for diagnostic output while
// reading. If unset, logging is discarded.
func WithReaderLogger(logger *slog.Logger) ReaderOption {
	return func(r *Reader) {
		r.logger = logger
	}
}

// WithCacheSize overrides the block cache's total byte budget. The
// default is 4 MiB, giving 64 cached 64 KiB blocks.
func WithCacheSize(bytes int) ReaderOption {
	return func(r *Reader) {
		r.cacheSize = bytes
	}
}

// WithReaderProgress registers a callback invoked as ExtractDir reads and
// writes files. It is never called by the primitive Reader methods.
func WithReaderProgress(fn progress.Func) ReaderOption {
	return func(r *Reader) {
		r.progress = fn
	}
}

func (r *Reader) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

func (r *Reader) reportProgress(ev progress.Event) {
	if r.progress != nil {
		r.progress(ev)
	}
}
