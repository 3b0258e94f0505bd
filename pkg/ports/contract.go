package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/portscope/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractNode is the graph node described by ContractSceneYAML.
const ContractNode = "contractGraph"

// ContractSceneYAML is the scene every GraphHost under RunGraphHostContract must serve.
const ContractSceneYAML = `
nodes:
  contractGraph:
    attributes:
      - name: weight
        type: float
        value: 0.5
      - name: ids
        type: long
        multi: true
        elements:
          - value: 3
          - value: 1
          - value: 2
      - name: points
        type: TdataCompound
        multi: true
        elements:
          - type: float3
            value: [[1.0, 5.0, 2.0]]
          - type: float3
            value: [[4.0, 0.0, 9.0]]
      - name: nested
        type: TdataCompound
        multi: true
        children: [nested_values]
        elements:
          - children:
              nested_values:
                - {type: float, value: 1.5}
                - {type: float, value: 2.5}
          - children:
              nested_values:
                - {type: float, value: 3.5}
                - {type: float, value: 4.5}
                - {type: float, value: 5.5}
      - name: nested_values
        type: float
        parent: nested
        multi: true
      - name: payload
        type: bifData
      - name: message
        type: message
      - name: input_weight
        type: float
        read_only: false
        value: 1.0
`

// RunGraphHostContract verifies that a GraphHost serving ContractSceneYAML
// answers every query the inspector relies on.
func RunGraphHostContract(t *testing.T, host GraphHost) {
	ctx := context.Background()
	node := ContractNode

	t.Run("AttributeExists", func(t *testing.T) {
		ok, err := host.AttributeExists(ctx, node, "weight")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = host.AttributeExists(ctx, node, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ListAttributes filters writable attributes", func(t *testing.T) {
		names, err := host.ListAttributes(ctx, node, AttributeFilter{UserDefined: true, ReadOnly: true, HasData: true})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"weight", "ids", "points", "nested", "nested_values", "payload", "message"}, names)
	})

	t.Run("Parents and multis", func(t *testing.T) {
		parent, err := host.AttributeHasParent(ctx, node, "nested_values")
		require.NoError(t, err)
		assert.True(t, parent)

		parent, err = host.AttributeHasParent(ctx, node, "nested")
		require.NoError(t, err)
		assert.False(t, parent)

		multi, err := host.AttributeIsMulti(ctx, node, "ids")
		require.NoError(t, err)
		assert.True(t, multi)

		multi, err = host.AttributeIsMulti(ctx, node, "weight")
		require.NoError(t, err)
		assert.False(t, multi)
	})

	t.Run("Types", func(t *testing.T) {
		typ, err := host.AttributeType(ctx, node, "payload")
		require.NoError(t, err)
		assert.Equal(t, "bifData", typ)

		typ, err = host.AttributeType(ctx, node, domain.NewPath("points").Index(1).String())
		require.NoError(t, err)
		assert.Equal(t, "float3", typ)

		typ, err = host.AttributeType(ctx, node, domain.NewPath("nested").Index(0).Child("nested_values").Index(1).String())
		require.NoError(t, err)
		assert.Equal(t, "float", typ)
	})

	t.Run("Values", func(t *testing.T) {
		v, err := host.AttributeValue(ctx, node, "weight")
		require.NoError(t, err)
		assert.True(t, domain.Scalar(0.5).Equal(domain.FromRaw(v)))

		v, err = host.AttributeValue(ctx, node, "ids[1]")
		require.NoError(t, err)
		assert.True(t, domain.Scalar(1).Equal(domain.FromRaw(v)))

		v, err = host.AttributeValue(ctx, node, "points[0]")
		require.NoError(t, err)
		wrapper, ok := v.([]any)
		require.True(t, ok, "wrapped tuple should be a sequence, got %T", v)
		require.Len(t, wrapper, 1)
		assert.True(t, domain.Tuple(1.0, 5.0, 2.0).Equal(domain.FromRaw(wrapper[0])))
	})

	t.Run("Sizes and children", func(t *testing.T) {
		n, err := host.ArraySize(ctx, node, "ids")
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		n, err = host.ArraySize(ctx, node, domain.NewPath("nested").Index(1).Child("nested_values").String())
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		children, err := host.ListChildAttributes(ctx, node, "nested")
		require.NoError(t, err)
		assert.Equal(t, []string{"nested_values"}, children)

		children, err = host.ListChildAttributes(ctx, node, "ids")
		require.NoError(t, err)
		assert.Empty(t, children)
	})

	t.Run("Missing node", func(t *testing.T) {
		_, err := host.AttributeExists(ctx, "ghostGraph", "weight")
		assert.True(t, errors.Is(err, domain.ErrNodeNotFound), "got %v", err)
	})
}

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(sessionID, "bifrostGraphShape1")
		session.Port = "points"
		session.Result = &domain.ExtractionResult{
			Data:       [][]domain.Value{{domain.Tuple(1.0, 5.0, 2.0), domain.Tuple(4.0, 0.0, 9.0)}},
			PlugType:   "float3",
			DataLength: 2,
			MinValue:   domain.Tuple(1.0, 0.0, 2.0),
			MaxValue:   domain.Tuple(4.0, 5.0, 9.0),
		}

		err := store.Save(ctx, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, session.Node, loaded.Node)
		assert.Equal(t, session.Port, loaded.Port)
		require.NotNil(t, loaded.Result)
		assert.Equal(t, "float3", loaded.Result.PlugType)
		assert.Equal(t, 2, loaded.Result.DataLength)
		assert.True(t, session.Result.MinValue.Equal(loaded.Result.MinValue))
		assert.True(t, session.Result.Data[0][1].Equal(loaded.Result.Data[0][1]))
	})

	t.Run("Load is isolated from later mutation", func(t *testing.T) {
		session := domain.NewSession(sessionID+"-iso", "graph")
		require.NoError(t, store.Save(ctx, session))
		session.Port = "changed"

		loaded, err := store.Load(ctx, session.ID)
		require.NoError(t, err)
		assert.Empty(t, loaded.Port)
		_ = store.Delete(ctx, session.ID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, domain.NewSession(sessionID, "graph"))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, domain.NewSession(id1, "graph"))
		_ = store.Save(ctx, domain.NewSession(id2, "graph"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
