package sample

import (
	"maps"

	"github.com/vk/predictgrid/internal/config"
	"github.com/vk/predictgrid/internal/fsutil"
)

// DefaultExtension is used when a data source walks a directory without
// naming an extension.
const DefaultExtension = ".msgpack"

// Pipeline describes how to build one sample: a sampler called with
// Filename and Kwargs, followed by Stages in order.
type Pipeline struct {
	Sampler       string         `msgpack:"sampler"`
	Kwargs        map[string]any `msgpack:"kwargs,omitempty"`
	GeneratedArgs []string       `msgpack:"generated_args,omitempty"`
	Filename      string         `msgpack:"filename,omitempty"`
	Stages        []string       `msgpack:"stages,omitempty"`
}

// Clone returns a copy that can be modified without affecting p.
func (p *Pipeline) Clone() *Pipeline {
	if p == nil {
		return nil
	}
	return &Pipeline{
		Sampler:       p.Sampler,
		Kwargs:        maps.Clone(p.Kwargs),
		GeneratedArgs: append([]string(nil), p.GeneratedArgs...),
		Filename:      p.Filename,
		Stages:        append([]string(nil), p.Stages...),
	}
}

// WithFilename returns a copy of p bound to one argument.
func (p *Pipeline) WithFilename(filename string) *Pipeline {
	out := p.Clone()
	if out == nil {
		out = &Pipeline{}
	}
	out.Filename = filename
	return out
}

// FromDataSource builds a pipeline from a configured data source. Explicit
// files are used verbatim; otherwise the directory is walked and the
// matching files become the generated arguments in lexical order.
func FromDataSource(ds *config.DataSource, stages []string) (*Pipeline, error) {
	if ds == nil {
		return nil, config.Errorf("data source", "expected a data source")
	}
	context := "data source " + ds.Name

	p := &Pipeline{
		Sampler: ds.Sampler,
		Kwargs:  maps.Clone(ds.Kwargs),
		Stages:  append([]string(nil), stages...),
	}
	switch {
	case len(ds.Files) > 0:
		p.GeneratedArgs = append([]string(nil), ds.Files...)
	case ds.Dir != "":
		ext := ds.Extension
		if ext == "" {
			ext = DefaultExtension
		}
		files, err := fsutil.FindFilesByExtension(ds.Dir, ext)
		if err != nil {
			return nil, config.Wrapf(err, context, "failed to list %s", ds.Dir)
		}
		p.GeneratedArgs = files
	default:
		return nil, config.Errorf(context, "expected files or dir to be given")
	}
	return p, nil
}
