// Package history binds a notebook directory to its own git repository.
//
// It exposes the small operation set the document store needs (init, open,
// stage, commit, head, commit count) and keeps go-git details out of the
// store. Commits are written with explicitly declared parents so that the
// first revision of a notebook has none and every later one has exactly the
// previous head.
package history

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/aretw0/quire/pkg/core"
)

const (
	// DefaultAuthorName is used when no author is configured.
	DefaultAuthorName  = "quire"
	DefaultAuthorEmail = "quire@localhost"

	gitDir = ".git"
)

// Content identifies a staged file.
type Content struct {
	Name string
	Hash plumbing.Hash
}

// History is the revision history of a single notebook.
type History struct {
	dir         string
	repo        *gogit.Repository
	authorName  string
	authorEmail string
	logger      *slog.Logger
}

// Option configures a History.
type Option func(*History)

// WithAuthor sets the signature used for commits.
func WithAuthor(name, email string) Option {
	return func(h *History) {
		if name != "" {
			h.authorName = name
		}
		if email != "" {
			h.authorEmail = email
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *History) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func newHistory(dir string, opts []Option) *History {
	h := &History{
		dir:         dir,
		authorName:  DefaultAuthorName,
		authorEmail: DefaultAuthorEmail,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Init creates a history rooted at dir, or opens the existing one.
func Init(dir string, opts ...Option) (*History, error) {
	h := newHistory(dir, opts)

	repo, err := gogit.PlainInit(dir, false)
	if errors.Is(err, gogit.ErrRepositoryAlreadyExists) {
		return Open(dir, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to init history at %s: %w", dir, err)
	}

	h.logger.Debug("history initialized", "dir", dir)
	h.repo = repo
	return h, nil
}

// Open attaches to an existing history. It fails with core.ErrNoHistory
// when dir has never been initialized.
func Open(dir string, opts ...Option) (*History, error) {
	h := newHistory(dir, opts)

	if _, err := os.Stat(filepath.Join(dir, gitDir)); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrNoHistory, dir)
		}
		return nil, fmt.Errorf("failed to stat history at %s: %w", dir, err)
	}

	repo, err := gogit.PlainOpen(dir)
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%w: %s", core.ErrNoHistory, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history at %s: %w", dir, err)
	}

	h.repo = repo
	return h, nil
}

// Dir returns the history root.
func (h *History) Dir() string {
	return h.dir
}

// Stage adds the current on-disk content of file (relative to the history
// root) to the index.
func (h *History) Stage(file string) (Content, error) {
	wt, err := h.repo.Worktree()
	if err != nil {
		return Content{}, fmt.Errorf("failed to open worktree: %w", err)
	}

	hash, err := wt.Add(file)
	if err != nil {
		return Content{}, fmt.Errorf("failed to stage %s: %w", file, err)
	}

	h.logger.Debug("staged", "dir", h.dir, "file", file, "blob", hash.String())
	return Content{Name: file, Hash: hash}, nil
}

// Commit records a revision whose tree holds only the staged content, with
// exactly the given parents, and moves the current branch to it.
func (h *History) Commit(content Content, parents []string, message string) (string, error) {
	if len(parents) > 1 {
		return "", fmt.Errorf("a notebook revision has at most one parent, got %d", len(parents))
	}
	if content.Hash.IsZero() {
		return "", errors.New("nothing staged")
	}

	tree := &object.Tree{
		Entries: []object.TreeEntry{
			{Name: content.Name, Mode: filemode.Regular, Hash: content.Hash},
		},
	}
	treeObj := h.repo.Storer.NewEncodedObject()
	if err := tree.Encode(treeObj); err != nil {
		return "", fmt.Errorf("failed to encode tree: %w", err)
	}
	treeHash, err := h.repo.Storer.SetEncodedObject(treeObj)
	if err != nil {
		return "", fmt.Errorf("failed to store tree: %w", err)
	}

	parentHashes := make([]plumbing.Hash, 0, len(parents))
	for _, p := range parents {
		parentHashes = append(parentHashes, plumbing.NewHash(p))
	}

	sig := object.Signature{Name: h.authorName, Email: h.authorEmail, When: time.Now()}
	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      message,
		TreeHash:     treeHash,
		ParentHashes: parentHashes,
	}
	commitObj := h.repo.Storer.NewEncodedObject()
	if err := commit.Encode(commitObj); err != nil {
		return "", fmt.Errorf("failed to encode commit: %w", err)
	}
	commitHash, err := h.repo.Storer.SetEncodedObject(commitObj)
	if err != nil {
		return "", fmt.Errorf("failed to store commit: %w", err)
	}

	if err := h.moveHead(commitHash); err != nil {
		return "", err
	}

	h.logger.Debug("committed", "dir", h.dir, "commit", commitHash.String(), "parents", parents)
	return commitHash.String(), nil
}

// moveHead points the branch HEAD refers to (or HEAD itself when detached)
// at hash.
func (h *History) moveHead(hash plumbing.Hash) error {
	name := plumbing.HEAD
	ref, err := h.repo.Storer.Reference(plumbing.HEAD)
	if err == nil && ref.Type() == plumbing.SymbolicReference {
		name = ref.Target()
	}

	if err := h.repo.Storer.SetReference(plumbing.NewHashReference(name, hash)); err != nil {
		return fmt.Errorf("failed to update %s: %w", name, err)
	}
	return nil
}

// Head resolves the current head revision.
func (h *History) Head() (string, error) {
	ref, err := h.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", fmt.Errorf("%w: %s", core.ErrEmptyHistory, h.dir)
		}
		return "", fmt.Errorf("failed to resolve head: %w", err)
	}
	return ref.Hash().String(), nil
}

// CommitCount returns the number of revisions reachable from head.
func (h *History) CommitCount() (int, error) {
	count := 0
	err := h.walk(func(*object.Commit) error {
		count++
		return nil
	})
	return count, err
}

// Log returns the revisions reachable from head, newest first.
func (h *History) Log() ([]core.Revision, error) {
	var revs []core.Revision
	err := h.walk(func(c *object.Commit) error {
		parents := make([]string, 0, len(c.ParentHashes))
		for _, p := range c.ParentHashes {
			parents = append(parents, p.String())
		}
		revs = append(revs, core.Revision{
			ID:      c.Hash.String(),
			Parents: parents,
			Message: c.Message,
			Author:  c.Author.Name,
			When:    c.Author.When,
		})
		return nil
	})
	return revs, err
}

func (h *History) walk(fn func(*object.Commit) error) error {
	head, err := h.Head()
	if errors.Is(err, core.ErrEmptyHistory) {
		return nil
	}
	if err != nil {
		return err
	}

	iter, err := h.repo.Log(&gogit.LogOptions{From: plumbing.NewHash(head)})
	if err != nil {
		return fmt.Errorf("failed to read log: %w", err)
	}
	defer iter.Close()

	return iter.ForEach(fn)
}
