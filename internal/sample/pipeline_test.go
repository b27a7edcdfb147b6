package sample

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/predictgrid/internal/config"
	"github.com/vk/predictgrid/internal/registry"
)

type testModule struct{ calls *[]string }

func (m testModule) Register(r *registry.Registry) {
	r.RegisterFunc("sample:fake", SamplerFunc(func(_ context.Context, filename string, kwargs map[string]any) (*Sample, error) {
		*m.calls = append(*m.calls, "sampler:"+filename)
		cube := &Array{Dims: []string{DimBand, "x"}, Shape: []int{1, 2}, Data: []float64{1, 2}}
		return &Sample{Cube: cube, Attrs: map[string]any{"kw": kwargs["kw"]}}, nil
	}))
	r.RegisterFunc("sample:flatten", StageFunc(func(_ context.Context, s *Sample) (*Sample, error) {
		*m.calls = append(*m.calls, "flatten")
		return Flatten(s)
	}))
	r.RegisterFunc("sample:broken", StageFunc(func(context.Context, *Sample) (*Sample, error) {
		return nil, errors.New("broken stage")
	}))
}

func TestPipelineClone(t *testing.T) {
	p := &Pipeline{Sampler: "sample:fake", Kwargs: map[string]any{"kw": 1}, Stages: []string{"sample:flatten"}}

	c := p.WithFilename("a.msgpack")
	c.Kwargs["kw"] = 2
	c.Stages[0] = "changed"

	assert.Equal(t, "", p.Filename)
	assert.Equal(t, "a.msgpack", c.Filename)
	assert.Equal(t, 1, p.Kwargs["kw"])
	assert.Equal(t, "sample:flatten", p.Stages[0])
}

func TestFromDataSource(t *testing.T) {
	t.Run("explicit files", func(t *testing.T) {
		p, err := FromDataSource(&config.DataSource{Name: "ds", Files: []string{"b", "a"}, Sampler: "sample:fake"}, []string{"sample:flatten"})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, p.GeneratedArgs)
		assert.Equal(t, "sample:fake", p.Sampler)
		assert.Equal(t, []string{"sample:flatten"}, p.Stages)
	})

	t.Run("directory walk", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"t2.msgpack", "t1.msgpack", "notes.txt"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
		}

		p, err := FromDataSource(&config.DataSource{Name: "ds", Dir: dir}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "t1.msgpack"), filepath.Join(dir, "t2.msgpack")}, p.GeneratedArgs)
	})

	t.Run("nothing to generate from", func(t *testing.T) {
		_, err := FromDataSource(&config.DataSource{Name: "ds"}, nil)
		assert.ErrorIs(t, err, config.ErrInvalid)

		_, err = FromDataSource(nil, nil)
		assert.ErrorIs(t, err, config.ErrInvalid)
	})
}

func TestRunner_Run(t *testing.T) {
	var calls []string
	r := &Runner{Registry: registry.New(testModule{calls: &calls})}
	p := &Pipeline{Sampler: "sample:fake", Kwargs: map[string]any{"kw": "v"}, Stages: []string{"sample:flatten"}}

	s, err := r.Run(context.Background(), p.WithFilename("f1"), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, s.Flat)
	assert.Equal(t, "v", s.Attrs["kw"])
	assert.Equal(t, []string{"sampler:f1", "flatten"}, calls)
}

func TestRunner_PreSuppliedSampleSkipsSampler(t *testing.T) {
	var calls []string
	r := &Runner{Registry: registry.New(testModule{calls: &calls})}
	pre := &Sample{Cube: &Array{Shape: []int{1, 1}, Data: []float64{7}}}

	var transformed bool
	tr := TransformFunc(func(_ context.Context, s *Sample) (*Sample, error) {
		transformed = true
		return s, nil
	})

	s, err := r.Run(context.Background(), &Pipeline{Stages: []string{"sample:flatten"}}, pre, tr)
	require.NoError(t, err)
	assert.NotNil(t, s.Flat)
	assert.True(t, transformed)
	assert.Equal(t, []string{"flatten"}, calls)
}

func TestRunner_Errors(t *testing.T) {
	var calls []string
	r := &Runner{Registry: registry.New(testModule{calls: &calls})}

	_, err := r.Run(context.Background(), nil, nil, nil)
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = r.Run(context.Background(), &Pipeline{}, nil, nil)
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = r.Run(context.Background(), &Pipeline{Sampler: "sample:fake", Stages: []string{"nope"}}, nil, nil)
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = r.Run(context.Background(), &Pipeline{Sampler: "sample:fake", Stages: []string{"sample:broken"}}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage sample:broken: broken stage")
}
