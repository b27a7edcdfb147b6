package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/predictgrid/internal/hcl"
	"github.com/vk/predictgrid/internal/modelstore"
	"github.com/vk/predictgrid/internal/registry"
	"github.com/vk/predictgrid/internal/sample"
	"github.com/vk/predictgrid/modules/linear"
	"github.com/vk/predictgrid/modules/samplers"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// setupAppTest creates a new app instance for system testing.
func setupAppTest(t *testing.T, appConfig *Config, modules ...registry.Module) (*App, *SafeBuffer) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	appConfig.LogLevel = "debug"
	if appConfig.Env == nil {
		appConfig.Env = map[string]string{}
	}
	testApp := NewApp(logBuffer, appConfig, hcl.NewLoader(appConfig.Env), modules...)

	t.Cleanup(func() {
		if os.Getenv("PREDICTGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}

// workspace is an on-disk run: two sample tiles, a saved two-model ensemble
// tagged "ndvi" and an output directory.
type workspace struct {
	dir    string
	tiles  string
	models string
	out    string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()
	w := &workspace{
		dir:    dir,
		tiles:  filepath.Join(dir, "tiles"),
		models: filepath.Join(dir, "models"),
		out:    filepath.Join(dir, "out"),
	}
	require.NoError(t, os.MkdirAll(w.tiles, 0o755))

	for name, data := range map[string][]float64{"a": {1, 2, 10, 20}, "b": {3, 4, 30, 40}} {
		s := &sample.Sample{
			Cube:  &sample.Array{Dims: []string{sample.DimBand, "y", "x"}, Shape: []int{2, 1, 2}, Data: data},
			Bands: []string{"red", "nir"},
		}
		require.NoError(t, samplers.WriteMsgpack(filepath.Join(w.tiles, name+".msgpack"), s))
	}

	store := modelstore.NewRootLoader(modelstore.RegistryFactory(registry.New(&linear.Module{})), "")
	_, _, err := store.Save(context.Background(), w.models, "ndvi", []any{
		&linear.Model{Weights: []float64{1, 1}},
		&linear.Model{Weights: []float64{0, 1}, Bias: 1},
	}, modelstore.Metadata{"bands": "red,nir"})
	require.NoError(t, err)
	return w
}

// writeConfig writes body to main.hcl and returns its path.
func (w *workspace) writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(w.dir, "main.hcl")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func (w *workspace) defaultConfig(t *testing.T) string {
	return w.writeConfig(t, fmt.Sprintf(`
train_path = %q
output_dir = %q

data_source "tiles" {
  dir     = %q
  sampler = "sample:msgpack"
}

step "ndvi" {
  predict     = "ndvi"
  data_source = "tiles"
  stages      = ["sample:flatten"]
  to_cube     = true
}
`, w.models, w.out, w.tiles))
}
