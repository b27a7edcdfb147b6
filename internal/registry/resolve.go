package registry

import (
	"reflect"
	"strings"

	"github.com/vk/predictgrid/internal/config"
)

// Resolve turns ref into a value of type F.
//
// A non-nil F is returned unchanged. An empty ref yields the zero F when not
// required and a configuration error when required. A string ref must have
// the exact shape "module:function"; anything else is a configuration error
// quoting the offending value. context prefixes every error message.
func Resolve[F any](r *Registry, ref any, required bool, context string) (F, error) {
	var zero F
	if isEmpty(ref) {
		if !required {
			return zero, nil
		}
		return zero, config.Errorf(context, "expected a callable, e.g. %s but got %#v", ExampleCallable, ref)
	}
	if fn, ok := ref.(F); ok {
		return fn, nil
	}

	s, ok := ref.(string)
	if !ok {
		return zero, shapeError(ref, context)
	}
	value, err := r.Lookup(s, context)
	if err != nil {
		return zero, err
	}
	fn, ok := value.(F)
	if !ok {
		return zero, config.Errorf(context, "expected %s to be a %s but it is registered as %T", s, typeName[F](), value)
	}
	return fn, nil
}

// Lookup returns the raw value registered under ref, loading its module if
// needed.
func (r *Registry) Lookup(ref, context string) (any, error) {
	modName, funcName, ok := splitRef(ref)
	if !ok {
		return nil, shapeError(ref, context)
	}
	if r == nil {
		return nil, config.Wrapf(ErrUnknownModule, context, "expected module %s to be imported but failed", ref)
	}

	r.mu.RLock()
	m, ok := r.modules[modName]
	r.mu.RUnlock()
	if !ok {
		return nil, config.Wrapf(ErrUnknownModule, context, "expected module %s to be imported but failed", ref)
	}
	if err := m.load(); err != nil {
		return nil, config.Wrapf(err, context, "expected module %s to be imported but failed", ref)
	}

	r.mu.RLock()
	fn, ok := m.funcs[funcName]
	r.mu.RUnlock()
	if !ok || isNil(fn) {
		return nil, config.Errorf(context, "expected %s to be callable - it was imported but it is not callable", ref)
	}
	return fn, nil
}

// ValidateRefs checks that every non-empty reference resolves to a
// registered callable, reporting all failures at once.
func (r *Registry) ValidateRefs(context string, refs ...string) error {
	var errs []string
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if _, err := r.Lookup(ref, ""); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return config.Errorf(context, "registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func shapeError(ref any, context string) error {
	return config.Errorf(context, "expected %#v to be a module:callable if given, e.g. %s", ref, ExampleCallable)
}

func isEmpty(ref any) bool {
	if ref == nil {
		return true
	}
	if s, ok := ref.(string); ok {
		return s == ""
	}
	return isNil(ref)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func typeName[F any]() string {
	return reflect.TypeOf((*F)(nil)).Elem().String()
}
