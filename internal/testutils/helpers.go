package testutils

import (
	"testing"

	"github.com/aretw0/portscope/pkg/adapters/memory"
	"github.com/aretw0/portscope/pkg/ports"
	"github.com/stretchr/testify/require"
)

// ContractHost returns a memory host serving ports.ContractSceneYAML.
// It fails the test immediately on error.
func ContractHost(t *testing.T) *memory.Host {
	t.Helper()

	host, err := memory.ParseScene([]byte(ports.ContractSceneYAML))
	require.NoError(t, err, "Failed to parse contract scene")
	return host
}

// FlatPort builds a multi attribute whose elements all carry elemType.
func FlatPort(name, elemType string, values ...any) memory.Attribute {
	elems := make([]memory.Element, len(values))
	for i, v := range values {
		elems[i] = memory.Element{Type: elemType, Value: v}
	}
	return memory.Attribute{Name: name, Type: elemType, Multi: true, Elements: elems}
}

// NestedPort builds a compound multi attribute "name" whose child "child" is itself
// multi-indexed, one inner array per column. The child attribute is returned too.
func NestedPort(name, child, elemType string, columns ...[]any) (memory.Attribute, memory.Attribute) {
	elems := make([]memory.Element, len(columns))
	for i, col := range columns {
		inner := make([]memory.Element, len(col))
		for j, v := range col {
			inner[j] = memory.Element{Type: elemType, Value: v}
		}
		elems[i] = memory.Element{Children: map[string][]memory.Element{child: inner}}
	}
	parent := memory.Attribute{Name: name, Type: "TdataCompound", Multi: true, Children: []string{child}, Elements: elems}
	childAttr := memory.Attribute{Name: child, Type: elemType, Parent: name, Multi: true}
	return parent, childAttr
}
