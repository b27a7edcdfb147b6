package predict

import (
	"github.com/vk/predictgrid/internal/config"
	"github.com/vk/predictgrid/internal/sample"
)

// Descriptor captures everything one task needs. The tagged fields travel
// to remote workers; the rest are resolved values that only exist in the
// building process. A Descriptor is never modified after Build returns it.
type Descriptor struct {
	Name          string           `msgpack:"name"`
	Pipeline      *sample.Pipeline `msgpack:"pipeline"`
	TransformRef  string           `msgpack:"transform,omitempty"`
	SerializerRef string           `msgpack:"serializer,omitempty"`
	ToCube        bool             `msgpack:"to_cube"`
	Tag           string           `msgpack:"tag"`
	Argument      string           `msgpack:"argument"`
	Sample        *sample.Sample   `msgpack:"sample,omitempty"`

	Models     Ensemble           `msgpack:"-"`
	Transform  sample.Transformer `msgpack:"-"`
	Serializer Serializer         `msgpack:"-"`

	// ModelsGiven marks an ensemble supplied by the caller rather than
	// loaded by tag.
	ModelsGiven bool `msgpack:"-"`
}

// Shippable reports whether a worker that only sees the encoded fields
// would run the same computation. Function values and caller-supplied
// ensembles cannot be encoded.
func (d *Descriptor) Shippable() error {
	switch {
	case d.ModelsGiven:
		return config.Errorf(d.Name, "expected models to be loaded by tag %q to run remotely, but they were passed in directly", d.Tag)
	case d.Transform != nil && d.TransformRef == "":
		return config.Errorf(d.Name, "expected the transform to be a module:callable reference to run remotely")
	case d.Serializer != nil && d.SerializerRef == "":
		return config.Errorf(d.Name, "expected the serializer to be a module:callable reference to run remotely, e.g. %s", config.DefaultSerializer)
	}
	return nil
}
