package modelstore

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/vk/predictgrid/internal/ctxlog"
)

// Loader loads a tagged model set.
type Loader interface {
	Load(ctx context.Context, root, tag string) ([]any, Metadata, error)
}

// Store saves and loads tagged model sets through a Backend.
type Store struct {
	Backend Backend
}

// New creates a Store over backend.
func New(backend Backend) *Store {
	return &Store{Backend: backend}
}

// Save writes models, then meta, then the manifest. It returns the model
// paths in order and the metadata path.
func (s *Store) Save(ctx context.Context, root, tag string, models []any, meta Metadata) ([]string, string, error) {
	logger := ctxlog.FromContext(ctx).With("root", root, "tag", tag)
	_, metaPath, manifestPath := Paths(root, tag)

	if err := s.Backend.MkdirAll(ctx, root); err != nil {
		return nil, "", fmt.Errorf("creating %s: %w", root, err)
	}

	paths := make([]string, 0, len(models))
	manifest := &Manifest{Tag: tag, Models: make([]string, 0, len(models))}
	for i, m := range models {
		p := ModelPath(root, tag, i)
		if err := s.Backend.Dump(ctx, m, p); err != nil {
			return paths, "", fmt.Errorf("saving model %d: %w", i, err)
		}
		paths = append(paths, p)
		manifest.Models = append(manifest.Models, relativeTo(root, p))
	}

	if meta == nil {
		meta = Metadata{}
	}
	if err := s.Backend.Dump(ctx, meta, metaPath); err != nil {
		return paths, "", fmt.Errorf("saving metadata: %w", err)
	}
	if err := s.Backend.Dump(ctx, manifest, manifestPath); err != nil {
		return paths, metaPath, fmt.Errorf("saving manifest: %w", err)
	}

	logger.Info("💾 Saved model set.", "models", len(paths))
	return paths, metaPath, nil
}

// Load reads the model set saved under tag. Metadata is required. Model
// order comes from the manifest when one exists, otherwise from the
// numbered file names.
func (s *Store) Load(ctx context.Context, root, tag string) ([]any, Metadata, error) {
	logger := ctxlog.FromContext(ctx).With("root", root, "tag", tag)
	_, metaPath, manifestPath := Paths(root, tag)

	ok, err := s.Backend.Exists(ctx, metaPath)
	if err != nil {
		return nil, nil, fmt.Errorf("checking metadata: %w", err)
	}
	if !ok {
		return nil, nil, &NotFoundError{Path: metaPath}
	}
	v, err := s.Backend.Load(ctx, metaPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading metadata: %w", err)
	}
	meta, ok := v.(Metadata)
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w: got %T, want metadata", metaPath, ErrUnsupportedValue, v)
	}

	names, err := s.modelNames(ctx, root, tag, manifestPath)
	if err != nil {
		return nil, nil, err
	}

	models := make([]any, 0, len(names))
	for _, name := range names {
		m, err := s.Backend.Load(ctx, path.Join(root, name))
		if err != nil {
			return nil, nil, fmt.Errorf("loading model %s: %w", name, err)
		}
		models = append(models, m)
	}

	logger.Debug("Loaded model set.", "models", len(models))
	return models, meta, nil
}

func (s *Store) modelNames(ctx context.Context, root, tag, manifestPath string) ([]string, error) {
	ok, err := s.Backend.Exists(ctx, manifestPath)
	if err != nil {
		return nil, fmt.Errorf("checking manifest: %w", err)
	}
	if ok {
		v, err := s.Backend.Load(ctx, manifestPath)
		if err != nil {
			return nil, fmt.Errorf("loading manifest: %w", err)
		}
		m, isManifest := v.(*Manifest)
		if !isManifest {
			return nil, fmt.Errorf("%s: %w: got %T, want manifest", manifestPath, ErrUnsupportedValue, v)
		}
		return m.Models, nil
	}

	// A tag may contain separators; its files then live in a subdirectory.
	dir := path.Dir(ModelPath(root, tag, 0))
	entries, err := s.Backend.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	index := modelIndex(path.Base(tag))
	type numbered struct {
		name string
		i    int
	}
	var found []numbered
	for _, name := range entries {
		if i, ok := index(name); ok {
			found = append(found, numbered{name: path.Join(path.Dir(tag), name), i: i})
		}
	}
	sort.Slice(found, func(a, b int) bool { return found[a].i < found[b].i })

	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.name
	}
	return names, nil
}

// relativeTo returns p relative to root, the form manifests store.
func relativeTo(root, p string) string {
	if root == "" {
		return p
	}
	return strings.TrimPrefix(p, path.Clean(root)+"/")
}
