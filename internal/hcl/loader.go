package hcl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/predictgrid/internal/config"
	"github.com/vk/predictgrid/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	env map[string]string
}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a loader whose `env` variable holds env.
func NewLoader(env map[string]string) *Loader {
	return &Loader{env: env}
}

// fileRoot is decoded from every file.
type fileRoot struct {
	TrainPath   string        `hcl:"train_path,optional"`
	OutputDir   string        `hcl:"output_dir,optional"`
	Serializer  string        `hcl:"serializer,optional"`
	DataSources []*dataSource `hcl:"data_source,block"`
	Steps       []*step       `hcl:"step,block"`
}

type dataSource struct {
	Name      string         `hcl:"name,label"`
	Dir       string         `hcl:"dir,optional"`
	Extension string         `hcl:"extension,optional"`
	Files     []string       `hcl:"files,optional"`
	Sampler   string         `hcl:"sampler,optional"`
	Kwargs    hcl.Expression `hcl:"kwargs,optional"`
}

type step struct {
	Name       string   `hcl:"name,label"`
	Predict    string   `hcl:"predict"`
	DataSource string   `hcl:"data_source"`
	Stages     []string `hcl:"stages,optional"`
	Serializer string   `hcl:"serializer,optional"`
	Transform  string   `hcl:"transform,optional"`
	ToCube     bool     `hcl:"to_cube,optional"`
}

// Load parses every .hcl file found under paths and merges them into one
// model. Top-level attributes set in a later file override earlier ones;
// blocks accumulate.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, config.Errorf("config", "no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := &config.Model{DataSources: make(map[string]*config.DataSource)}
	evalCtx := NewEvalContext(l.env)
	parser := hclparse.NewParser()
	stepNames := make(map[string]struct{})

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, config.Wrapf(diags, file, "failed to parse HCL")
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &root); diags.HasErrors() {
			return nil, config.Wrapf(diags, file, "failed to decode HCL")
		}

		mergeString(&model.TrainPath, root.TrainPath)
		mergeString(&model.OutputDir, root.OutputDir)
		mergeString(&model.Serializer, root.Serializer)

		for _, ds := range root.DataSources {
			if _, exists := model.DataSources[ds.Name]; exists {
				return nil, config.Errorf(file, "data_source %q is defined more than once", ds.Name)
			}
			translated, err := translateDataSource(ds, evalCtx)
			if err != nil {
				return nil, config.Wrapf(err, file, "data_source %q", ds.Name)
			}
			model.DataSources[ds.Name] = translated
		}
		for _, s := range root.Steps {
			if _, exists := stepNames[s.Name]; exists {
				return nil, config.Errorf(file, "step %q is defined more than once", s.Name)
			}
			stepNames[s.Name] = struct{}{}
			model.Steps = append(model.Steps, &config.Step{
				Name:       s.Name,
				Predict:    s.Predict,
				DataSource: s.DataSource,
				Stages:     s.Stages,
				Serializer: s.Serializer,
				Transform:  s.Transform,
				ToCube:     s.ToCube,
			})
		}
	}

	for _, s := range model.Steps {
		if _, ok := model.DataSource(s.DataSource); !ok {
			return nil, config.Errorf("step "+s.Name, "data_source %q is not defined", s.DataSource)
		}
	}

	logger.Debug("HCL loading complete.", "data_sources", len(model.DataSources), "steps", len(model.Steps))
	return model, nil
}

func translateDataSource(ds *dataSource, evalCtx *hcl.EvalContext) (*config.DataSource, error) {
	out := &config.DataSource{
		Name:      ds.Name,
		Dir:       ds.Dir,
		Extension: ds.Extension,
		Files:     ds.Files,
		Sampler:   ds.Sampler,
	}
	if !isExprDefined(ds.Kwargs) {
		return out, nil
	}

	val, diags := ds.Kwargs.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	native, err := ctyToNative(val)
	if err != nil {
		return nil, fmt.Errorf("kwargs: %w", err)
	}
	if native == nil {
		return out, nil
	}
	kwargs, ok := native.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("kwargs must be an object, got %s", val.Type().FriendlyName())
	}
	out.Kwargs = kwargs
	return out, nil
}

// isExprDefined reports whether an optional attribute was present in the
// source. Omitted attributes decode to zero-width placeholder expressions.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// findAllHCLFiles walks all given paths and returns every .hcl file found,
// each once, in lexical order per path.
func findAllHCLFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			all = append(all, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, config.Wrapf(err, "config", "path %s does not exist", path)
		}
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}

		var found []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == ".hcl" {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		for _, p := range found {
			add(p)
		}
	}
	return all, nil
}
