package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/history"
	"github.com/aretw0/quire/pkg/layout"
)

// Repository implements core.Repository using the filesystem and one git
// history per notebook.
type Repository struct {
	Root   string
	config Config
	codec  *Codec
	cache  *countCache
	logger *slog.Logger

	mu       sync.RWMutex
	watchers int
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Root            string // directory holding "repos"; defaults to "."
	Logger          *slog.Logger
	AuthorName      string
	AuthorEmail     string
	ListConcurrency int  // parallel metadata lookups in List; defaults to GOMAXPROCS
	CacheSize       int  // memoized commit counts; defaults to DefaultCacheSize
	Strict          bool // decode numbers as json.Number
	ReadOnly        bool
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) (*Repository, error) {
	if config.Root == "" {
		config.Root = "."
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.ListConcurrency <= 0 {
		config.ListConcurrency = runtime.GOMAXPROCS(0)
	}

	cache, err := newCountCache(config.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	return &Repository{
		Root:   config.Root,
		config: config,
		codec:  NewCodec(config.Strict),
		cache:  cache,
		logger: config.Logger,
	}, nil
}

func (r *Repository) historyOptions() []history.Option {
	return []history.Option{
		history.WithAuthor(r.config.AuthorName, r.config.AuthorEmail),
		history.WithLogger(r.logger),
	}
}

// Create persists a new notebook and records its first revision.
//
// Workflow:
//  1. Resolve the value (inline data or source file) and the location.
//  2. Take the notebook lock and make sure its history exists.
//  3. Write the blob in create-exclusive mode.
//  4. Created: stage and commit with no parent.
//     Existed: fall back to the update path with the same data.
func (r *Repository) Create(ctx context.Context, doc core.Document) (core.Document, error) {
	if r.config.ReadOnly {
		return core.Document{}, core.ErrReadOnly
	}

	data, err := r.resolveData(doc)
	if err != nil {
		return core.Document{}, err
	}

	loc, err := layout.Resolve(r.Root, doc.Key)
	if err != nil {
		return core.Document{}, err
	}

	payload, err := r.codec.Encode(data)
	if err != nil {
		return core.Document{}, err
	}

	if err := os.MkdirAll(loc.Dir, 0755); err != nil {
		return core.Document{}, fmt.Errorf("failed to create directories: %w", err)
	}

	unlock, err := history.Lock(ctx, loc.Dir)
	if err != nil {
		return core.Document{}, err
	}
	defer unlock()

	outcome, err := writeFile(loc.Path, ModeCreateExclusive, payload, 0644)
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to write file: %w", err)
	}

	var (
		h   *history.History
		rev string
	)
	if outcome == OutcomeExisted {
		r.logger.Warn("document already exists, saving as update", "key", doc.Key.String())
		if h, err = history.Open(loc.Dir, r.historyOptions()...); err != nil {
			return core.Document{}, err
		}
		rev, err = r.commitUpdate(ctx, h, loc, doc.Key, payload)
	} else {
		h, rev, err = r.commitCreate(ctx, loc, doc.Key)
	}
	if err != nil {
		return core.Document{}, err
	}

	count, err := h.CommitCount()
	if err != nil {
		return core.Document{}, err
	}

	doc.Data = data
	doc.Revision = rev
	doc.RevisionCount = count
	if info, err := os.Stat(loc.Path); err == nil {
		doc.LastModified = info.ModTime()
	}
	return doc, nil
}

// commitCreate initializes the history of a freshly written blob and records
// its first revision. If that fails the blob is removed again so a retry
// starts from scratch.
func (r *Repository) commitCreate(ctx context.Context, loc layout.Location, key core.Key) (*history.History, string, error) {
	defer r.cache.Delete(loc.Path)

	h, err := history.Init(loc.Dir, r.historyOptions()...)
	if err == nil {
		var rev string
		if rev, err = r.stageAndCommit(h, loc, nil, r.changeReason(ctx, "create", key)); err == nil {
			return h, rev, nil
		}
	}

	if rmErr := os.Remove(loc.Path); rmErr != nil {
		r.logger.Error("failed to roll back notebook blob", "path", loc.Path, "error", rmErr)
	}
	return nil, "", err
}

// Update overwrites an existing notebook and commits on top of its head.
//
// A notebook that was never created has no history; the call then fails with
// core.ErrNoHistory before anything is written.
func (r *Repository) Update(ctx context.Context, key core.Key, data any) (string, error) {
	if r.config.ReadOnly {
		return "", core.ErrReadOnly
	}
	if data == nil {
		return "", core.ErrInvalidFormat
	}

	loc, err := layout.Resolve(r.Root, key)
	if err != nil {
		return "", err
	}

	h, err := history.Open(loc.Dir, r.historyOptions()...)
	if err != nil {
		return "", err
	}

	payload, err := r.codec.Encode(data)
	if err != nil {
		return "", err
	}

	unlock, err := h.Lock(ctx)
	if err != nil {
		return "", err
	}
	defer unlock()

	return r.commitUpdate(ctx, h, loc, key, payload)
}

// commitUpdate runs the update sequence; the caller holds the notebook lock.
func (r *Repository) commitUpdate(ctx context.Context, h *history.History, loc layout.Location, key core.Key, payload []byte) (string, error) {
	defer r.cache.Delete(loc.Path)

	parent, err := h.Head()
	if err != nil {
		return "", err
	}

	if _, err := writeFile(loc.Path, ModeOverwrite, payload, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return r.stageAndCommit(h, loc, []string{parent}, r.changeReason(ctx, "update", key))
}

func (r *Repository) stageAndCommit(h *history.History, loc layout.Location, parents []string, msg string) (string, error) {
	content, err := h.Stage(loc.File)
	if err != nil {
		return "", err
	}
	rev, err := h.Commit(content, parents, msg)
	if err != nil {
		return "", err
	}
	r.logger.Debug("notebook committed", "path", loc.Path, "revision", rev)
	return rev, nil
}

func (r *Repository) changeReason(ctx context.Context, verb string, key core.Key) string {
	if val, ok := ctx.Value(core.ChangeReasonKey).(string); ok && val != "" {
		return val
	}
	return verb + " " + key.Name
}

// resolveData picks the notebook value: the decoded source file if one is
// given, the inline data otherwise.
func (r *Repository) resolveData(doc core.Document) (any, error) {
	data := doc.Data
	if doc.SourcePath != "" {
		raw, err := os.ReadFile(doc.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read source %s: %w", doc.SourcePath, err)
		}
		data, err = r.codec.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", doc.SourcePath, err)
		}
	}
	if data == nil {
		return nil, core.ErrInvalidFormat
	}
	return data, nil
}

// Load reads and decodes a notebook.
func (r *Repository) Load(ctx context.Context, key core.Key) (core.Document, error) {
	loc, err := layout.Resolve(r.Root, key)
	if err != nil {
		return core.Document{}, err
	}

	raw, err := os.ReadFile(loc.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return core.Document{}, fmt.Errorf("%w: %s", core.ErrNotFound, key)
		}
		return core.Document{}, fmt.Errorf("failed to read %s: %w", loc.Path, err)
	}

	data, err := r.codec.Decode(raw)
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to parse document %s: %w", key, err)
	}

	doc := core.Document{Key: key, Data: data}
	if info, err := os.Stat(loc.Path); err == nil {
		doc.LastModified = info.ModTime()
	}

	// A blob without a (complete) history still loads; it just has no revision.
	err = r.readHistory(ctx, loc.Dir, func(h *history.History) error {
		head, err := h.Head()
		if err != nil {
			return err
		}
		count, err := h.CommitCount()
		if err != nil {
			return err
		}
		doc.Revision = head
		doc.RevisionCount = count
		return nil
	})
	if err != nil && !errors.Is(err, core.ErrNoHistory) && !errors.Is(err, core.ErrEmptyHistory) {
		return core.Document{}, err
	}
	return doc, nil
}

// readHistory runs fn on the history of dir while holding the notebook lock,
// so it never sees a branch reference half way through an update. Read-only
// repositories never write, the lock file included, and read unlocked.
func (r *Repository) readHistory(ctx context.Context, dir string, fn func(*history.History) error) error {
	h, err := history.Open(dir, r.historyOptions()...)
	if err != nil {
		return err
	}

	if !r.config.ReadOnly {
		unlock, err := history.Lock(ctx, dir)
		if err != nil {
			return err
		}
		defer unlock()
	}
	return fn(h)
}

// List returns a summary of every notebook in a collection.
//
// The per-notebook lookups (mtime, commit count) run concurrently, bounded by
// Config.ListConcurrency. The first failure cancels the rest and fails the
// whole call; no partial list is returned. Results keep glob (lexical) order.
func (r *Repository) List(ctx context.Context, ownerID, collectionID string) ([]core.Summary, error) {
	matches, err := r.glob(layout.CollectionPattern(ownerID, collectionID))
	if err != nil {
		return nil, err
	}

	summaries := make([]core.Summary, len(matches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.ListConcurrency)

	for i, rel := range matches {
		g.Go(func() error {
			s, err := r.summarize(gctx, rel)
			if err != nil {
				return err
			}
			summaries[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *Repository) summarize(ctx context.Context, rel string) (core.Summary, error) {
	if err := ctx.Err(); err != nil {
		return core.Summary{}, err
	}

	path := filepath.Join(r.Root, filepath.FromSlash(rel))
	info, err := os.Stat(path)
	if err != nil {
		return core.Summary{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	mtime := info.ModTime()

	count, hit := r.cache.Get(path, mtime)
	if !hit {
		// Counted under the notebook lock: writers invalidate the cache entry
		// before releasing it, so only settled counts are cached.
		err := r.readHistory(ctx, filepath.Dir(path), func(h *history.History) error {
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", path, err)
			}
			mtime = info.ModTime()

			if count, err = h.CommitCount(); err != nil {
				return fmt.Errorf("failed to count commits of %s: %w", path, err)
			}
			if count == 0 {
				return fmt.Errorf("%w: %s", core.ErrEmptyHistory, path)
			}
			r.cache.Set(path, mtime, count)
			return nil
		})
		if err != nil {
			return core.Summary{}, err
		}
	}

	return core.Summary{
		Name:         layout.NameOf(path),
		LastModified: mtime,
		NumCommits:   count,
	}, nil
}

// MatchingCollectionIDs returns, sorted, the collections of ownerID that hold
// a notebook whose name contains term, ignoring case.
func (r *Repository) MatchingCollectionIDs(ctx context.Context, ownerID, term string) ([]string, error) {
	matches, err := r.glob(layout.OwnerPattern(ownerID))
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(term)
	seen := make(map[string]bool)
	ids := []string{}
	for _, rel := range matches {
		key, ok := layout.Parse(rel)
		if !ok {
			continue
		}
		if !strings.Contains(strings.ToLower(key.Name), needle) || seen[key.CollectionID] {
			continue
		}
		seen[key.CollectionID] = true
		ids = append(ids, key.CollectionID)
	}

	sort.Strings(ids)
	return ids, nil
}

// History returns the revision log of a notebook, newest first.
func (r *Repository) History(ctx context.Context, key core.Key) ([]core.Revision, error) {
	loc, err := layout.Resolve(r.Root, key)
	if err != nil {
		return nil, err
	}

	var revs []core.Revision
	err = r.readHistory(ctx, loc.Dir, func(h *history.History) error {
		revs, err = h.Log()
		return err
	})
	return revs, err
}

// glob matches a root-relative pattern. A missing root matches nothing.
func (r *Repository) glob(pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(r.Root), pattern)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to glob %s: %w", pattern, err)
	}
	return matches, nil
}

var _ core.Repository = (*Repository)(nil)
var _ core.Historian = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
