package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/predictgrid/internal/config"
)

type stageFunc func(ctx context.Context, in int) (int, error)

type testModule struct{}

func (testModule) Register(r *Registry) {
	r.RegisterFunc("sample:double", stageFunc(func(_ context.Context, in int) (int, error) { return in * 2, nil }))
	r.RegisterFunc("sample:name", "not a func")
}

func TestResolve_PassesThroughTypedValue(t *testing.T) {
	r := New()
	fn := stageFunc(func(_ context.Context, in int) (int, error) { return in + 1, nil })

	got, err := Resolve[stageFunc](r, fn, true, "")
	require.NoError(t, err)
	out, err := got(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, out)
}

func TestResolve_ResolvesRegisteredReference(t *testing.T) {
	r := New(testModule{})

	first, err := Resolve[stageFunc](r, "sample:double", true, "")
	require.NoError(t, err)
	second, err := Resolve[stageFunc](r, "sample:double", true, "")
	require.NoError(t, err)

	a, _ := first(context.Background(), 3)
	b, _ := second(context.Background(), 3)
	assert.Equal(t, 6, a)
	assert.Equal(t, a, b, "repeated resolution must yield the same behaviour")
}

func TestResolve_EmptyReference(t *testing.T) {
	r := New(testModule{})

	t.Run("optional", func(t *testing.T) {
		for _, ref := range []any{nil, "", stageFunc(nil)} {
			got, err := Resolve[stageFunc](r, ref, false, "")
			require.NoError(t, err)
			assert.Nil(t, got)
		}
	})

	t.Run("required", func(t *testing.T) {
		_, err := Resolve[stageFunc](r, nil, true, "Step 1")
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrInvalid)
		assert.Contains(t, err.Error(), "Step 1: ")
		assert.Contains(t, err.Error(), ExampleCallable)
	})
}

func TestResolve_MalformedReference(t *testing.T) {
	r := New(testModule{})

	testCases := []struct {
		name string
		ref  any
		want string
	}{
		{name: "no separator", ref: "sampledouble", want: `"sampledouble"`},
		{name: "two separators", ref: "a:b:c", want: `"a:b:c"`},
		{name: "empty module", ref: ":double", want: `":double"`},
		{name: "empty function", ref: "sample:", want: `"sample:"`},
		{name: "not a string", ref: 42, want: "42"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve[stageFunc](r, tc.ref, false, "ctx")

			var cfgErr *config.Error
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "ctx", cfgErr.Context)
			assert.Contains(t, cfgErr.Msg, tc.want)
			assert.Contains(t, cfgErr.Msg, ExampleCallable)
		})
	}
}

func TestResolve_UnknownModule(t *testing.T) {
	r := New(testModule{})

	_, err := Resolve[stageFunc](r, "missing:double", true, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalid)
	assert.ErrorIs(t, err, ErrUnknownModule)
	assert.Contains(t, err.Error(), "expected module missing:double to be imported but failed")
}

func TestResolve_FunctionNotRegistered(t *testing.T) {
	r := New(testModule{})

	_, err := Resolve[stageFunc](r, "sample:triple", true, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "imported but it is not callable")
}

func TestResolve_WrongType(t *testing.T) {
	r := New(testModule{})

	_, err := Resolve[stageFunc](r, "sample:name", true, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalid)
	assert.Contains(t, err.Error(), "registry.stageFunc")
	assert.Contains(t, err.Error(), "string")
}

func TestResolve_ModuleInit(t *testing.T) {
	t.Run("runs once", func(t *testing.T) {
		r := New(testModule{})
		calls := 0
		r.RegisterInit("sample", func() error {
			calls++
			return nil
		})

		for i := 0; i < 3; i++ {
			_, err := Resolve[stageFunc](r, "sample:double", true, "")
			require.NoError(t, err)
		}
		assert.Equal(t, 1, calls)
	})

	t.Run("failure is a config error", func(t *testing.T) {
		r := New(testModule{})
		boom := errors.New("boom")
		r.RegisterInit("sample", func() error { return boom })

		_, err := Resolve[stageFunc](r, "sample:double", true, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrInvalid)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("panic carries a stack trace", func(t *testing.T) {
		r := New(testModule{})
		r.RegisterInit("sample", func() error { panic("kaboom") })

		_, err := Resolve[stageFunc](r, "sample:double", true, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrModulePanic)
		assert.Contains(t, err.Error(), "kaboom")
		assert.Contains(t, err.Error(), "goroutine")
	})
}

func TestRegisterFunc_Panics(t *testing.T) {
	r := New(testModule{})

	assert.Panics(t, func() { r.RegisterFunc("sample:double", stageFunc(nil)) })
	assert.Panics(t, func() {
		r.RegisterFunc("sample:double", stageFunc(func(context.Context, int) (int, error) { return 0, nil }))
	})
	assert.Panics(t, func() { r.RegisterFunc("bad", func() {}) })
	assert.Panics(t, func() { r.RegisterInit("", func() error { return nil }) })
}

func TestRefsAndValidate(t *testing.T) {
	r := New(testModule{})

	assert.Equal(t, []string{"sample:double", "sample:name"}, r.Refs())
	require.NoError(t, r.ValidateRefs("", "sample:double", ""))

	err := r.ValidateRefs("Step landcover", "sample:double", "missing:x", "sample:nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Step landcover: registry validation failed")
	assert.Contains(t, err.Error(), "missing:x")
	assert.Contains(t, err.Error(), "sample:nope")
}
