package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/portscope"
	"github.com/aretw0/portscope/internal/presentation/table"
	"github.com/aretw0/portscope/pkg/domain"
	"github.com/aretw0/portscope/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command against the contract scene.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	scene := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(scene, []byte(ports.ContractSceneYAML), 0o644))

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append(args, "--scene", scene))
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "portscope version "+portscope.Version+"\n", out)
}

func TestPortsCommand(t *testing.T) {
	out, err := runCLI(t, "ports", "-n", ports.ContractNode, "-o", "json")
	require.NoError(t, err)

	var got struct {
		Node  string   `json:"node"`
		Ports []string `json:"ports"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, ports.ContractNode, got.Node)
	assert.Equal(t, []string{"ids", "nested", "points", "weight"}, got.Ports)
}

func TestPortsCommand_NoSelection(t *testing.T) {
	_, err := runCLI(t, "ports")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestShowCommand(t *testing.T) {
	out, err := runCLI(t, "show", "points", "-n", ports.ContractNode, "-o", "json")
	require.NoError(t, err)

	var got struct {
		Port   string                   `json:"port"`
		Result *domain.ExtractionResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, "points", got.Port)
	require.NotNil(t, got.Result)
	assert.Equal(t, "float3", got.Result.PlugType)
	assert.Equal(t, "(4.0, 5.0, 9.0)", got.Result.MaxValue.String())
}

func TestShowCommand_Table(t *testing.T) {
	out, err := runCLI(t, "show", "ids", "-n", ports.ContractNode)
	require.NoError(t, err)
	assert.Contains(t, out, "Port:   ids")
	assert.Contains(t, out, "Type:   long")
	assert.Contains(t, out, "Length: 3")
	assert.Contains(t, out, "Min:    1")
	assert.Contains(t, out, "Max:    3")
}

func TestShowCommand_NoData(t *testing.T) {
	out, err := runCLI(t, "show", "payload", "-n", ports.ContractNode)
	require.NoError(t, err)
	assert.Contains(t, out, table.NoDataMessage)
}

func TestShowCommand_BadOutput(t *testing.T) {
	_, err := runCLI(t, "show", "ids", "-n", ports.ContractNode, "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestDumpCommand(t *testing.T) {
	out, err := runCLI(t, "dump", "-n", ports.ContractNode, "-o", "json")
	require.NoError(t, err)

	var got struct {
		Results map[string]json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Len(t, got.Results, 4)
	assert.Contains(t, got.Results, "nested")
}

func TestDumpCommand_SelectedPorts(t *testing.T) {
	out, err := runCLI(t, "dump", "weight", "ids", "-n", ports.ContractNode)
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Port:   weight"), strings.Index(out, "Port:   ids"))
	assert.NotContains(t, out, "Port:   points")
}

func TestMarkersCommand(t *testing.T) {
	out, err := runCLI(t, "markers", "points", "-n", ports.ContractNode)
	require.NoError(t, err)
	assert.Equal(t, "locator1\nlocator2\n", out)

	out, err = runCLI(t, "markers", "points", "-n", ports.ContractNode, "--rows", "1")
	require.NoError(t, err)
	assert.Equal(t, "locator1\n", out)
}

func TestMarkersCommand_Errors(t *testing.T) {
	_, err := runCLI(t, "markers", "weight", "-n", ports.ContractNode)
	assert.ErrorIs(t, err, domain.ErrMarkerUnsupported)

	_, err = runCLI(t, "markers", "payload", "-n", ports.ContractNode)
	assert.ErrorIs(t, err, domain.ErrNoSelection)
}

func TestSessionCommands(t *testing.T) {
	out, err := runCLI(t, "session", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "No active sessions found.")

	_, err = runCLI(t, "session", "rm")
	assert.ErrorContains(t, err, "--all")

	_, err = runCLI(t, "session", "inspect", "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestCellRefs(t *testing.T) {
	result := &domain.ExtractionResult{Data: [][]domain.Value{
		{domain.Scalar(1.0), domain.Scalar(2.0)},
		{domain.Scalar(3.0)},
	}}

	assert.Equal(t, []domain.CellRef{{Row: 0, Column: 0}, {Row: 1, Column: 0}}, cellRefs(result, nil, 0))
	assert.Equal(t, []domain.CellRef{{Row: 0, Column: 1}}, cellRefs(result, nil, 1))
	assert.Equal(t, []domain.CellRef{{Row: 5, Column: 0}}, cellRefs(result, []int{5}, 0))
	assert.Empty(t, cellRefs(result, nil, 7))
}
