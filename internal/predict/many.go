package predict

import (
	"context"

	"github.com/vk/predictgrid/internal/executor"
)

// Many builds the graph for in, executes every task and flattens the
// results: one artifact per (argument, model), arguments outermost.
func Many(ctx context.Context, b *Builder, exec executor.Executor[[]*Artifact], in BuildInput) ([]*Artifact, error) {
	g, err := b.Build(ctx, in)
	if err != nil {
		return nil, err
	}
	results, err := exec.Execute(ctx, g, g.Names())
	if err != nil {
		return nil, err
	}

	var out []*Artifact
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}
