package config

// DefaultSerializer is the registry reference used when a run has a
// configuration but names no serializer of its own.
const DefaultSerializer = "serialize:msgpack"

// TrainPathEnv names the environment variable that points at the model
// store root when no configuration supplies one.
const TrainPathEnv = "ELM_TRAIN_PATH"

// Model is the unified, format-agnostic representation of a prediction run.
type Model struct {
	// TrainPath is the model store root. It may be a local directory or an
	// s3://bucket/prefix URL.
	TrainPath string
	// OutputDir is where the default serializer writes artifacts.
	OutputDir string
	// Serializer is the registry reference of the config-bound serializer.
	Serializer string

	DataSources map[string]*DataSource
	// Steps are kept in declaration order.
	Steps []*Step
}

// DataSource describes where per-sample arguments come from.
type DataSource struct {
	Name string
	// Dir and Extension select files by walking a directory.
	Dir       string
	Extension string
	// Files, when set, is used verbatim instead of walking Dir.
	Files []string
	// Sampler is the registry reference of the function that turns one
	// argument into a sample.
	Sampler string
	Kwargs  map[string]any
}

// Step is a single prediction step: one tag, one data source, one
// sample pipeline.
type Step struct {
	Name string
	// Predict is the model tag the step predicts with.
	Predict    string
	DataSource string
	Stages     []string
	Serializer string
	Transform  string
	ToCube     bool
}

// DataSource looks up a data source by name.
func (m *Model) DataSource(name string) (*DataSource, bool) {
	if m == nil || m.DataSources == nil {
		return nil, false
	}
	ds, ok := m.DataSources[name]
	return ds, ok
}

// SerializerRef returns the configured serializer reference or the default.
func (m *Model) SerializerRef() string {
	if m == nil || m.Serializer == "" {
		return DefaultSerializer
	}
	return m.Serializer
}
