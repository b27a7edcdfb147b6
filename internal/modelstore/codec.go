package modelstore

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vk/predictgrid/internal/registry"
)

const (
	kindMeta     = "meta"
	kindManifest = "manifest"
)

// Metadata is the free-form mapping saved alongside a model set.
type Metadata map[string]any

// Manifest lists a model set's files, relative to the store root, in load
// order.
type Manifest struct {
	Tag    string   `msgpack:"tag"`
	Models []string `msgpack:"models"`
}

// Kinded is implemented by every storable model. The kind selects the
// factory used to rebuild it.
type Kinded interface {
	Kind() string
}

// ModelFactory returns a new, empty model to decode into.
type ModelFactory func() any

// Factory maps a kind to a new, empty model.
type Factory func(kind string) (any, error)

// RegistryFactory resolves kinds through registry references
// "model:<kind>".
func RegistryFactory(r *registry.Registry) Factory {
	return func(kind string) (any, error) {
		newModel, err := registry.Resolve[ModelFactory](r, "model:"+kind, true, "model kind "+kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnknownKind, err)
		}
		return newModel(), nil
	}
}

type envelope struct {
	Kind string             `msgpack:"kind"`
	Body msgpack.RawMessage `msgpack:"body"`
}

// Codec encodes values as msgpack envelopes tagged with their kind.
type Codec struct {
	Factory Factory
}

// Encode serializes v.
func (c *Codec) Encode(v any) ([]byte, error) {
	var kind string
	switch x := v.(type) {
	case Metadata:
		kind = kindMeta
	case *Manifest:
		kind = kindManifest
	case Kinded:
		kind = x.Kind()
	default:
		return nil, fmt.Errorf("%w: %T does not implement Kind()", ErrUnsupportedValue, v)
	}
	if kind == kindMeta && !isMeta(v) || kind == kindManifest && !isManifest(v) {
		return nil, fmt.Errorf("%w: model kind %q is reserved", ErrUnsupportedValue, kind)
	}

	body, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", kind, err)
	}
	return msgpack.Marshal(&envelope{Kind: kind, Body: body})
}

// Decode rebuilds a value written by Encode.
func (c *Codec) Decode(data []byte) (any, error) {
	var env envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}

	switch env.Kind {
	case kindMeta:
		meta := Metadata{}
		if err := msgpack.Unmarshal(env.Body, &meta); err != nil {
			return nil, fmt.Errorf("decoding metadata: %w", err)
		}
		return meta, nil
	case kindManifest:
		m := &Manifest{}
		if err := msgpack.Unmarshal(env.Body, m); err != nil {
			return nil, fmt.Errorf("decoding manifest: %w", err)
		}
		return m, nil
	}

	if c.Factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, env.Kind)
	}
	target, err := c.Factory(env.Kind)
	if err != nil {
		return nil, err
	}
	if err := msgpack.Unmarshal(env.Body, target); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", env.Kind, err)
	}
	return target, nil
}

func isMeta(v any) bool {
	_, ok := v.(Metadata)
	return ok
}

func isManifest(v any) bool {
	_, ok := v.(*Manifest)
	return ok
}
