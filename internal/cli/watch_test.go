package cli

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/portscope/internal/inspect"
	"github.com/aretw0/portscope/pkg/adapters/memory"
	"github.com/aretw0/portscope/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weightNode(host *memory.Host, v float64) {
	host.AddNode("g", memory.Attribute{Name: "weight", Type: "float", Value: v})
}

func TestWatch_RendersOnChange(t *testing.T) {
	host := memory.NewHost()
	weightNode(host, 1.0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renders := make(chan *domain.ExtractionResult, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, inspect.New(host), WatchOptions{Node: "g", Port: "weight", Interval: 10 * time.Millisecond},
			func(r *domain.ExtractionResult) error {
				renders <- r
				return nil
			})
	}()

	next := func() *domain.ExtractionResult {
		t.Helper()
		select {
		case r := <-renders:
			return r
		case <-time.After(2 * time.Second):
			t.Fatal("no render")
			return nil
		}
	}

	first := next()
	require.NotNil(t, first)
	assert.Equal(t, "1.0", first.MinValue.String())

	// Unchanged data is not rendered again.
	select {
	case r := <-renders:
		t.Fatalf("unexpected render: %v", r.MinValue)
	case <-time.After(60 * time.Millisecond):
	}

	weightNode(host, 2.0)
	second := next()
	assert.Equal(t, "2.0", second.MinValue.String())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatch_StopsWhenNodeDisappears(t *testing.T) {
	host := memory.NewHost()
	weightNode(host, 1.0)

	renders := 0
	done := make(chan error, 1)
	go func() {
		done <- Watch(context.Background(), inspect.New(host), WatchOptions{Node: "g", Port: "weight", Interval: 5 * time.Millisecond},
			func(r *domain.ExtractionResult) error {
				renders++
				host.RemoveNode("g")
				return nil
			})
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)
		assert.Equal(t, 1, renders)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatch_RenderErrorStops(t *testing.T) {
	host := memory.NewHost()
	weightNode(host, 1.0)

	err := Watch(context.Background(), inspect.New(host), WatchOptions{Node: "g", Port: "weight"},
		func(r *domain.ExtractionResult) error {
			return assert.AnError
		})
	assert.ErrorIs(t, err, assert.AnError)
}
