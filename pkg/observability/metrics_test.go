package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/aretw0/portscope"
	"github.com/aretw0/portscope/internal/testutils"
	"github.com/aretw0/portscope/pkg/domain"
	"github.com/aretw0/portscope/pkg/observability"
	"github.com/aretw0/portscope/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordInspectorEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	host := testutils.ContractHost(t)
	insp, err := portscope.New("", portscope.WithHost(host), portscope.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, err)
	ctx := context.Background()

	_, _ = insp.Extract(ctx, ports.ContractNode, "ids")
	_, _ = insp.Extract(ctx, ports.ContractNode, "points")
	_, _ = insp.Extract(ctx, ports.ContractNode, "missing")
	_, _ = insp.Extract(ctx, ports.ContractNode, "payload")
	_, _ = insp.Extract(ctx, "ghost", "ids")

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Extractions.WithLabelValues("data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Extractions.WithLabelValues("missing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Extractions.WithLabelValues("unsupported")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Extractions.WithLabelValues("error")))

	_, err = insp.CreateMarkers(ctx, []domain.Value{domain.Tuple(1, 2, 3), domain.Scalar("x")}, "float3")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MarkersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MarkersSkipped))

	expected := `
# HELP portscope_extracted_values Number of values read per extraction
# TYPE portscope_extracted_values histogram
portscope_extracted_values_bucket{le="1"} 0
portscope_extracted_values_bucket{le="10"} 2
portscope_extracted_values_bucket{le="100"} 2
portscope_extracted_values_bucket{le="1000"} 2
portscope_extracted_values_bucket{le="10000"} 2
portscope_extracted_values_bucket{le="100000"} 2
portscope_extracted_values_bucket{le="1e+06"} 2
portscope_extracted_values_bucket{le="+Inf"} 2
portscope_extracted_values_sum 5
portscope_extracted_values_count 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "portscope_extracted_values"))
}

func TestCombine(t *testing.T) {
	var order []string
	a := domain.LifecycleHooks{OnExtract: func(ctx context.Context, e *domain.ExtractEvent) { order = append(order, "a") }}
	b := domain.LifecycleHooks{
		OnExtract: func(ctx context.Context, e *domain.ExtractEvent) { order = append(order, "b") },
		OnMarker:  func(ctx context.Context, e *domain.MarkerEvent) { order = append(order, "marker") },
	}

	hooks := observability.Combine(a, domain.LifecycleHooks{}, b)
	hooks.OnExtract(context.Background(), &domain.ExtractEvent{})
	hooks.OnMarker(context.Background(), &domain.MarkerEvent{})
	assert.Equal(t, []string{"a", "b", "marker"}, order)

	empty := observability.Combine()
	assert.Nil(t, empty.OnExtract)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	hooks := observability.LoggingHooks(logger)
	hooks.OnExtract(context.Background(), &domain.ExtractEvent{Node: "g", Port: "ids", Outcome: domain.OutcomeData, Values: 3})

	out := buf.String()
	assert.Contains(t, out, "msg=extract")
	assert.Contains(t, out, "port=ids")
	assert.Contains(t, out, "outcome=data")
}
