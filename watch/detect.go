package watch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// FileStat versions a file by modification time and size. A missing file
// has version 0.
func FileStat(path string) ChangeDetector {
	return func(context.Context) (int64, error) {
		fi, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("watch: stat %s: %w", path, err)
		}
		return fi.ModTime().UnixNano() ^ fi.Size(), nil
	}
}

// ContentHash versions a file by an FNV-1a hash of its bytes, so touching
// the file without changing it does not trigger a rebuild.
func ContentHash(path string) ChangeDetector {
	return func(context.Context) (int64, error) {
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("watch: open %s: %w", path, err)
		}
		defer f.Close()
		h := fnv.New64a()
		if _, err := io.Copy(h, f); err != nil {
			return 0, fmt.Errorf("watch: read %s: %w", path, err)
		}
		return int64(h.Sum64() >> 1), nil
	}
}

// DataVersion versions an SQLite database with PRAGMA data_version, which
// moves whenever another connection commits.
func DataVersion(db *sql.DB) ChangeDetector {
	return func(ctx context.Context) (int64, error) {
		var v int64
		err := db.QueryRowContext(ctx, "PRAGMA data_version").Scan(&v)
		return v, err
	}
}

// Notifier counts fsnotify events for one file. Its Detector never touches
// the file itself.
type Notifier struct {
	w      *fsnotify.Watcher
	name   string
	events atomic.Int64
	done   chan struct{}
}

// FSNotify starts watching path. The parent directory is watched so that
// editors that replace the file on save are still seen. Close releases the
// watcher.
func FSNotify(path string) (*Notifier, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: fsnotify: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch: add %s: %w", filepath.Dir(abs), err)
	}
	n := &Notifier{w: fw, name: abs, done: make(chan struct{})}
	go n.loop()
	return n, nil
}

func (n *Notifier) loop() {
	defer close(n.done)
	for {
		select {
		case ev, ok := <-n.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) == n.name && !ev.Has(fsnotify.Chmod) {
				n.events.Add(1)
			}
		case _, ok := <-n.w.Errors:
			if !ok {
				return
			}
			n.events.Add(1)
		}
	}
}

// Detector returns the event count as the version.
func (n *Notifier) Detector() ChangeDetector {
	return func(context.Context) (int64, error) { return n.events.Load(), nil }
}

// Close stops the underlying watcher.
func (n *Notifier) Close() error {
	err := n.w.Close()
	<-n.done
	return err
}
