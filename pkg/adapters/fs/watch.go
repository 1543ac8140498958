package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/layout"
)

// DefaultEventBuffer is the capacity of the channel returned by Watch.
const DefaultEventBuffer = 64

// collectionWatcher follows one collection directory and the notebook
// directories inside it. fsnotify is not recursive, so new notebook
// directories are added as they appear.
type collectionWatcher struct {
	repo       *Repository
	ownerID    string
	collection string
	dir        string
	watcher    *fsnotify.Watcher
	events     chan core.Event
	known      map[string]bool
}

// Watch reports notebooks written in a collection until ctx is done.
// The first write of a notebook is reported as EventCreate, later ones as
// EventModify. The returned channel is closed when watching stops.
func (r *Repository) Watch(ctx context.Context, ownerID, collectionID string) (<-chan core.Event, error) {
	if err := core.ValidateToken("owner id", ownerID); err != nil {
		return nil, err
	}
	if err := core.ValidateToken("collection id", collectionID); err != nil {
		return nil, err
	}

	dir := filepath.Join(r.Root, layout.ReposDir, ownerID, collectionID)
	if r.config.ReadOnly {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("cannot watch %s: %w", dir, err)
		}
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create collection directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &collectionWatcher{
		repo:       r,
		ownerID:    ownerID,
		collection: collectionID,
		dir:        dir,
		watcher:    watcher,
		events:     make(chan core.Event, DefaultEventBuffer),
		known:      make(map[string]bool),
	}

	if err := w.addExisting(); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	r.trackWatcher(1)
	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		r.logger.Error("watcher panic", "error", err)
	}))

	return w.events, nil
}

func (w *collectionWatcher) addExisting() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", w.dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub := filepath.Join(w.dir, e.Name())
		if err := w.watcher.Add(sub); err != nil {
			return fmt.Errorf("failed to watch %s: %w", sub, err)
		}
		if _, err := os.Stat(filepath.Join(sub, e.Name()+layout.Extension)); err == nil {
			w.known[e.Name()] = true
		}
	}
	return nil
}

func (w *collectionWatcher) run(ctx context.Context) error {
	defer close(w.events)
	defer w.repo.trackWatcher(-1)
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.repo.logger.Error("fsnotify error", "error", err, "dir", w.dir)
		}
	}
}

func (w *collectionWatcher) handle(ctx context.Context, event fsnotify.Event) {
	w.repo.logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	// A new notebook directory: follow it and catch a blob that landed
	// before the watch was in place.
	if filepath.Dir(event.Name) == w.dir {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				w.repo.logger.Warn("failed to watch notebook directory", "dir", event.Name, "error", err)
				return
			}
			name := filepath.Base(event.Name)
			if _, err := os.Stat(filepath.Join(event.Name, name+layout.Extension)); err == nil {
				w.emit(ctx, name)
			}
		}
		return
	}

	docDir := filepath.Dir(event.Name)
	if filepath.Dir(docDir) != w.dir || filepath.Ext(event.Name) != layout.Extension {
		return
	}
	name := filepath.Base(docDir)
	if layout.NameOf(event.Name) != name {
		return
	}
	w.emit(ctx, name)
}

func (w *collectionWatcher) emit(ctx context.Context, name string) {
	typ := core.EventModify
	if !w.known[name] {
		typ = core.EventCreate
		w.known[name] = true
	}

	e := core.Event{
		Type:      typ,
		Key:       core.Key{OwnerID: w.ownerID, CollectionID: w.collection, Name: name},
		Timestamp: time.Now().Unix(),
	}

	select {
	case w.events <- e:
	case <-ctx.Done():
	}
}

func (r *Repository) trackWatcher(delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchers += delta
}
