package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
)

// ExampleCallable is the canonical reference shown in error messages.
const ExampleCallable = "sample:flatten"

var (
	// ErrUnknownModule indicates a reference names a module nothing registered.
	ErrUnknownModule = errors.New("registry: unknown module")
	// ErrModulePanic indicates a module initializer panicked.
	ErrModulePanic = errors.New("registry: module initializer panicked")
)

// Module is the interface that all modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds every registered callable for a single application instance.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*module
}

type module struct {
	funcs map[string]any
	init  func() error
	once  sync.Once
	err   error
}

// New creates and initializes a new Registry instance.
func New(modules ...Module) *Registry {
	r := &Registry{modules: make(map[string]*module)}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterFunc registers a Go value under a "module:function" reference.
// Registration mistakes are programmer errors and panic.
func (r *Registry) RegisterFunc(ref string, fn any) {
	modName, funcName, ok := splitRef(ref)
	if !ok {
		panic(fmt.Sprintf("callable reference '%s' must have the form module:function", ref))
	}
	if isNil(fn) {
		panic(fmt.Sprintf("callable '%s' must not be nil", ref))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.moduleLocked(modName)
	if _, exists := m.funcs[funcName]; exists {
		panic(fmt.Sprintf("callable with reference '%s' already registered", ref))
	}
	slog.Debug("Registering callable.", "ref", ref)
	m.funcs[funcName] = fn
}

// RegisterInit attaches an initializer to a module. It runs at most once,
// the first time one of the module's callables is resolved.
func (r *Registry) RegisterInit(modName string, init func() error) {
	if modName == "" || strings.Contains(modName, ":") {
		panic(fmt.Sprintf("invalid module name '%s'", modName))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.moduleLocked(modName)
	if m.init != nil {
		panic(fmt.Sprintf("initializer for module '%s' already registered", modName))
	}
	m.init = init
}

// Refs returns every registered reference in sorted order.
func (r *Registry) Refs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var refs []string
	for modName, m := range r.modules {
		for funcName := range m.funcs {
			refs = append(refs, modName+":"+funcName)
		}
	}
	sort.Strings(refs)
	return refs
}

func (r *Registry) moduleLocked(name string) *module {
	m, ok := r.modules[name]
	if !ok {
		m = &module{funcs: make(map[string]any)}
		r.modules[name] = m
	}
	return m
}

func (m *module) load() error {
	m.once.Do(func() {
		if m.init == nil {
			return
		}
		defer func() {
			if rec := recover(); rec != nil {
				m.err = fmt.Errorf("%w: %v\n%s", ErrModulePanic, rec, debug.Stack())
			}
		}()
		m.err = m.init()
	})
	return m.err
}

func splitRef(ref string) (string, string, bool) {
	if strings.Count(ref, ":") != 1 {
		return "", "", false
	}
	modName, funcName, _ := strings.Cut(ref, ":")
	if modName == "" || funcName == "" {
		return "", "", false
	}
	return modName, funcName, true
}
