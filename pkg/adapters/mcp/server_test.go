package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/portscope"
	"github.com/aretw0/portscope/internal/testutils"
	"github.com/aretw0/portscope/pkg/adapters/memory"
	"github.com/aretw0/portscope/pkg/domain"
	"github.com/aretw0/portscope/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*Server, *memory.Host) {
	t.Helper()
	host := testutils.ContractHost(t)
	insp, err := portscope.New("", portscope.WithHost(host))
	require.NoError(t, err)
	return NewServer(insp), host
}

func TestNewServer(t *testing.T) {
	s, _ := newServer(t)
	assert.NotNil(t, s.MCPServer())
}

func TestListPorts(t *testing.T) {
	s, host := newServer(t)
	ctx := context.Background()

	resp, err := s.HandleListPorts(ctx, mcp.CallToolRequest{}, map[string]any{"node": ports.ContractNode})
	require.NoError(t, err)
	assert.Equal(t, ports.ContractNode, resp.Node)
	assert.Equal(t, []string{"ids", "nested", "points", "weight"}, resp.Ports)

	_, err = s.HandleListPorts(ctx, mcp.CallToolRequest{}, map[string]any{})
	assert.ErrorIs(t, err, domain.ErrNodeNotFound, "no node and nothing selected")

	host.SetSelection(ports.ContractNode)
	resp, err = s.HandleListPorts(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, ports.ContractNode, resp.Node)

	_, err = s.HandleListPorts(ctx, mcp.CallToolRequest{}, map[string]any{"node": "ghost"})
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestExtractPort(t *testing.T) {
	s, _ := newServer(t)
	ctx := context.Background()

	resp, err := s.HandleExtractPort(ctx, mcp.CallToolRequest{}, map[string]any{
		"node": ports.ContractNode,
		"port": "nested",
	})
	require.NoError(t, err)
	assert.True(t, resp.Present)
	assert.Equal(t, 3, resp.Rows)
	assert.False(t, resp.Truncated)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "float", resp.Result.PlugType)
	assert.Equal(t, 2, resp.Result.Columns())
}

func TestExtractPort_MaxRows(t *testing.T) {
	s, _ := newServer(t)

	// JSON numbers arrive as float64.
	resp, err := s.HandleExtractPort(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"node":     ports.ContractNode,
		"port":     "ids",
		"max_rows": float64(2),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Rows)
	assert.True(t, resp.Truncated)
	require.Len(t, resp.Result.Data, 1)
	assert.Len(t, resp.Result.Data[0], 2)
	assert.Equal(t, 3, resp.Result.DataLength, "stats describe the full port")
}

func TestExtractPort_Absent(t *testing.T) {
	s, _ := newServer(t)

	resp, err := s.HandleExtractPort(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"node": ports.ContractNode,
		"port": "payload",
	})
	require.NoError(t, err)
	assert.False(t, resp.Present)
	assert.Nil(t, resp.Result)

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"result"`)
}

func TestExtractPort_RequiresPort(t *testing.T) {
	s, _ := newServer(t)
	_, err := s.HandleExtractPort(context.Background(), mcp.CallToolRequest{}, map[string]any{"node": ports.ContractNode})
	assert.ErrorContains(t, err, "port is required")
}

func TestCreateMarkers_Values(t *testing.T) {
	s, host := newServer(t)

	resp, err := s.HandleCreateMarkers(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"plug_type": "float3",
		"values":    []any{[]any{1.0, 2.0, 3.0}, "garbage", []any{4.0, 5.0, 6.0}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"locator1", "locator2"}, resp.Markers)
	require.Len(t, host.Markers(), 2)
	assert.Equal(t, [3]float64{4, 5, 6}, host.Markers()[1].Translation)
}

func TestCreateMarkers_Cells(t *testing.T) {
	s, host := newServer(t)

	resp, err := s.HandleCreateMarkers(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"node": ports.ContractNode,
		"port": "points",
		"cells": []any{
			map[string]any{"row": float64(1), "column": float64(0)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"locator1"}, resp.Markers)
	assert.Equal(t, [3]float64{4, 0, 9}, host.Markers()[0].Translation)
}

func TestCreateMarkers_Errors(t *testing.T) {
	s, _ := newServer(t)
	ctx := context.Background()

	_, err := s.HandleCreateMarkers(ctx, mcp.CallToolRequest{}, map[string]any{})
	assert.Error(t, err)

	_, err = s.HandleCreateMarkers(ctx, mcp.CallToolRequest{}, map[string]any{
		"plug_type": "string",
		"values":    []any{"a"},
	})
	assert.ErrorIs(t, err, domain.ErrMarkerUnsupported)

	_, err = s.HandleCreateMarkers(ctx, mcp.CallToolRequest{}, map[string]any{
		"node": ports.ContractNode,
		"port": "payload",
		"cells": []any{
			map[string]any{"row": 0, "column": 0},
		},
	})
	assert.ErrorIs(t, err, domain.ErrNoSelection)
}

func TestSelectionResource(t *testing.T) {
	s, host := newServer(t)
	host.SetSelection(ports.ContractNode)

	contents, err := s.HandleSelection(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, SelectionURI, text.URI)
	assert.JSONEq(t, `{"graphs":["contractGraph"]}`, text.Text)
}

func TestDecodeArgs_Invalid(t *testing.T) {
	var out struct {
		MaxRows int `mapstructure:"max_rows"`
	}
	err := decodeArgs(map[string]any{"max_rows": "lots"}, &out)
	assert.ErrorContains(t, err, "invalid arguments")
}
