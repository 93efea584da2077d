// Package jsonfile stores each collection as one flat file, rewritten whole
// on every mutation. Mutations are serialised through a queue.Writer and
// land atomically through a temp file and rename.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/agencia-oeste/viajes-api/internal/infrastructure/queue"
	"github.com/agencia-oeste/viajes-api/internal/pkg/metrics"
)

// errSkipWrite aborts an update without rewriting the file or failing.
var errSkipWrite = errors.New("skip write")

// ErrCorrupt reports a collection file that exists but cannot be decoded.
var ErrCorrupt = errors.New("collection file is corrupt")

// Collection is a file holding a slice of T.
type Collection[T any] struct {
	name   string
	path   string
	codec  Codec
	writer *queue.Writer
	log    zerolog.Logger
}

func newCollection[T any](dir, name string, codec Codec, log zerolog.Logger) *Collection[T] {
	return &Collection[T]{
		name:   name,
		path:   filepath.Join(dir, name+codec.Ext()),
		codec:  codec,
		writer: queue.NewWriter(name, log),
		log:    log.With().Str("collection", name).Logger(),
	}
}

// Path is the file backing the collection.
func (c *Collection[T]) Path() string { return c.path }

// Load reads the whole collection. A missing file is an empty collection; so
// is a corrupt one, which is logged.
func (c *Collection[T]) Load(context.Context) ([]T, error) {
	items, err := c.read()
	if errors.Is(err, ErrCorrupt) {
		c.log.Warn().Err(err).Str("path", c.path).Msg("reading corrupt collection as empty")
		return []T{}, nil
	}
	return items, err
}

// Update runs fn against the current contents on the collection's writer
// and persists what it returns. A corrupt file is never overwritten.
func (c *Collection[T]) Update(ctx context.Context, fn func(items []T) ([]T, error)) error {
	return c.writer.Do(ctx, func(ctx context.Context) error {
		items, err := c.read()
		if err != nil {
			return err
		}
		next, err := fn(items)
		if errors.Is(err, errSkipWrite) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := c.write(next); err != nil {
			metrics.StoreWritesTotal.WithLabelValues(c.name, "error").Inc()
			return err
		}
		metrics.StoreWritesTotal.WithLabelValues(c.name, "ok").Inc()
		return nil
	})
}

// Ping reports whether the collection directory is usable.
func (c *Collection[T]) Ping(context.Context) error {
	info, err := os.Stat(filepath.Dir(c.path))
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(c.path))
	}
	return nil
}

// Close stops the writer once the job in progress finishes.
func (c *Collection[T]) Close() { c.writer.Close() }

func (c *Collection[T]) read() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.path, err)
	}
	if len(data) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := c.codec.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, c.path, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *Collection[T]) write(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := c.codec.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+c.name+"-*"+c.codec.Ext())
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", c.name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", c.name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("replace %s: %w", c.path, err)
	}

	success = true
	return nil
}
