// Package serialize registers the serializers that persist prediction
// artifacts.
package serialize

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vk/predictgrid/internal/config"
	"github.com/vk/predictgrid/internal/ctxlog"
	"github.com/vk/predictgrid/internal/modelstore"
	"github.com/vk/predictgrid/internal/predict"
	"github.com/vk/predictgrid/internal/registry"
	"github.com/vk/predictgrid/internal/sample"
	"github.com/vk/predictgrid/modules/samplers"
)

// AttrOutput is the artifact attribute holding where it was written.
const AttrOutput = "output"

// Module implements the registry.Module interface for this package.
type Module struct {
	// Region is passed to S3 when output_dir is an s3:// URL.
	Region string
}

// Register registers "serialize:msgpack".
func (m *Module) Register(r *registry.Registry) {
	w := NewWriter(m.Region)
	r.RegisterFunc(config.DefaultSerializer, predict.ConfigSerializer(w.Write))
}

// Writer writes artifacts as msgpack files under the configured output_dir,
// one directory per model tag.
type Writer struct {
	region string
	open   func(root, region string) (modelstore.BlobStore, string, error)

	mu    sync.Mutex
	blobs map[string]opened
}

type opened struct {
	store  modelstore.BlobStore
	prefix string
}

// NewWriter creates a Writer.
func NewWriter(region string) *Writer {
	return &Writer{region: region, open: modelstore.OpenBlobStore, blobs: make(map[string]opened)}
}

// Write stores a under <output_dir>/<tag>/<name>.msgpack; see artifactName.
func (w *Writer) Write(ctx context.Context, cfg *config.Model, a *predict.Artifact, s *sample.Sample, tag string) (*predict.Artifact, error) {
	if cfg == nil || cfg.OutputDir == "" {
		return nil, config.Errorf(config.DefaultSerializer, "expected output_dir to be set")
	}
	o, err := w.store(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	key := path.Join(o.prefix, tag, artifactName(a, s)+modelstore.Ext)
	data, err := msgpack.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to encode artifact: %w", err)
	}
	if err := o.store.Put(ctx, key, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, fmt.Errorf("failed to write artifact %s: %w", key, err)
	}

	if a.Attrs == nil {
		a.Attrs = map[string]any{}
	}
	a.Attrs[AttrOutput] = key
	ctxlog.FromContext(ctx).Debug("Wrote artifact.", "tag", tag, "key", key, "bytes", len(data))
	return a, nil
}

func (w *Writer) store(outputDir string) (opened, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if o, ok := w.blobs[outputDir]; ok {
		return o, nil
	}
	store, prefix, err := w.open(outputDir, w.region)
	if err != nil {
		return opened{}, fmt.Errorf("opening output dir %s: %w", outputDir, err)
	}
	o := opened{store: store, prefix: prefix}
	w.blobs[outputDir] = o
	return o, nil
}

// artifactName joins the source file's stem, a stable digest of its full
// path and the producing model. Samples without a source get a random UUID.
func artifactName(a *predict.Artifact, s *sample.Sample) string {
	name := ""
	if s != nil {
		if src, ok := s.Attrs[samplers.AttrSource].(string); ok && src != "" {
			src = path.Clean(strings.ReplaceAll(src, "\\", "/"))
			base := path.Base(src)
			digest := uuid.NewSHA1(uuid.NameSpaceURL, []byte(src)).String()[:8]
			name = strings.TrimSuffix(base, path.Ext(base)) + "-" + digest
		}
	}
	if name == "" {
		name = uuid.NewString()
	}
	if model, ok := a.Attrs[predict.AttrModel].(string); ok && model != "" {
		name += "." + model
	}
	return name
}
