package memory_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/portscope/pkg/adapters/memory"
	"github.com/aretw0/portscope/pkg/domain"
	"github.com/aretw0/portscope/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryHost_Contract(t *testing.T) {
	host, err := memory.ParseScene([]byte(ports.ContractSceneYAML))
	require.NoError(t, err)
	ports.RunGraphHostContract(t, host)
}

func TestMemoryHost_EvalErrorOnlyOnPlainRead(t *testing.T) {
	host := memory.NewHost()
	host.AddNode("g", memory.Attribute{
		Name:      "out",
		Type:      "long",
		Multi:     true,
		EvalError: "compute failed",
		Elements:  []memory.Element{{Value: 4}},
	})
	ctx := context.Background()

	_, err := host.AttributeValue(ctx, "g", "out")
	assert.ErrorIs(t, err, domain.ErrEvaluation)

	v, err := host.AttributeValue(ctx, "g", "out[0]")
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}

func TestMemoryHost_ValuesAreCopies(t *testing.T) {
	host := memory.NewHost()
	host.AddNode("g", memory.Attribute{Name: "v", Type: "float3", Value: []any{[]any{1.0, 2.0, 3.0}}})
	ctx := context.Background()

	v, err := host.AttributeValue(ctx, "g", "v")
	require.NoError(t, err)
	v.([]any)[0].([]any)[0] = 99.0

	again, err := host.AttributeValue(ctx, "g", "v")
	require.NoError(t, err)
	assert.Equal(t, 1.0, again.([]any)[0].([]any)[0])
}

func TestMemoryHost_BadPaths(t *testing.T) {
	host, err := memory.ParseScene([]byte(ports.ContractSceneYAML))
	require.NoError(t, err)
	ctx := context.Background()

	for _, path := range []string{"ids[7]", "weight[0]", "nested_values", "ids[0].nested_values", "nested[0].weight", "missing"} {
		_, err := host.AttributeType(ctx, ports.ContractNode, path)
		assert.ErrorIs(t, err, domain.ErrHost, path)
	}

	_, err = host.ArraySize(ctx, ports.ContractNode, "weight")
	assert.ErrorIs(t, err, domain.ErrHost)
}

func TestMemoryHost_MarkersAndSelection(t *testing.T) {
	host := memory.NewHost()
	host.AddNode("bifrostGraphShape1")
	host.SetSelection("bifrostGraphShape1", "deletedGraph")
	ctx := context.Background()

	name, err := host.CreateMarker(ctx, domain.Placement{Kind: domain.MarkerPosition, Translation: [3]float64{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, "locator1", name)
	require.Len(t, host.Markers(), 1)

	require.NoError(t, host.Select(ctx, []string{name}))
	assert.Equal(t, []string{"locator1"}, host.Selected())

	graphs, err := host.SelectedGraphs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bifrostGraphShape1"}, graphs)
}

func TestLoadScene(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(ports.ContractSceneYAML), 0o644))

	host, err := memory.LoadScene(path)
	require.NoError(t, err)
	ok, err := host.AttributeExists(context.Background(), ports.ContractNode, "points")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = memory.LoadScene(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = memory.ParseScene([]byte("nodes:\n  g:\n    attributes:\n      - type: float\n"))
	assert.Error(t, err)
}
