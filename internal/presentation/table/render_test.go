package table_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/portscope/internal/presentation/table"
	"github.com/aretw0/portscope/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nestedResult() *domain.ExtractionResult {
	return &domain.ExtractionResult{
		Data: [][]domain.Value{
			{domain.Scalar(1.5), domain.Scalar(2.5)},
			{domain.Scalar(3.5), domain.Scalar(4.5), domain.Scalar(5.5)},
		},
		PlugType:   "float",
		DataLength: 2,
		MinValue:   domain.Scalar(1.5),
		MaxValue:   domain.Scalar(2.5),
	}
}

func pointsResult() *domain.ExtractionResult {
	return &domain.ExtractionResult{
		Data:       [][]domain.Value{{domain.Tuple(1.0, 5.0, 2.0), domain.Tuple(4.0, 0.0, 9.0)}},
		PlugType:   "float3",
		DataLength: 2,
		MinValue:   domain.Tuple(1.0, 0.0, 2.0),
		MaxValue:   domain.Tuple(4.0, 5.0, 9.0),
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]table.Format{
		"":         table.FormatTable,
		"TABLE":    table.FormatTable,
		"csv":      table.FormatCSV,
		"md":       table.FormatMarkdown,
		"markdown": table.FormatMarkdown,
		"json":     table.FormatJSON,
	} {
		got, err := table.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := table.ParseFormat("xml")
	assert.Error(t, err)
}

func TestHeaders(t *testing.T) {
	assert.Equal(t, []string{"Array 0", "Array 1"}, table.Headers(nestedResult()))
}

func TestRenderer_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, table.New(&buf).Result("nested", nestedResult()))

	out := buf.String()
	assert.Contains(t, out, "Type:   float\n")
	assert.Contains(t, out, "Length: 2\n")
	assert.Contains(t, out, "Min:    1.5\n")
	assert.Contains(t, out, "Max:    2.5\n")
	assert.Contains(t, out, "ARRAY 0")
	assert.Contains(t, out, "ARRAY 1")
	assert.Contains(t, out, "5.5")
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderer_TableTruncates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, table.New(&buf, table.WithMaxRows(2)).Result("nested", nestedResult()))

	out := buf.String()
	assert.NotContains(t, out, "5.5")
	assert.Contains(t, out, "(2 of 3 rows)")
}

func TestRenderer_EmptyStates(t *testing.T) {
	var buf bytes.Buffer
	r := table.New(&buf)

	require.NoError(t, r.Result("points", nil))
	assert.Contains(t, buf.String(), "Type:   n/a")
	assert.Contains(t, buf.String(), "Min:    0")
	assert.Contains(t, buf.String(), table.NoDataMessage)

	buf.Reset()
	empty := &domain.ExtractionResult{Data: [][]domain.Value{{}}, PlugType: "long", MinValue: domain.Scalar(0), MaxValue: domain.Scalar(0)}
	require.NoError(t, r.Result("ids", empty))
	assert.Contains(t, buf.String(), table.EmptyDataMessage)
}

func TestRenderer_Color(t *testing.T) {
	var buf bytes.Buffer
	r := table.New(&buf, table.WithColorProfile(termenv.TrueColor))
	require.NoError(t, r.Result("points", pointsResult()))

	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "float3")
}

func TestRenderer_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, table.New(&buf, table.WithFormat(table.FormatCSV)).Result("points", pointsResult()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, ",array 0", strings.ToLower(lines[0]))
	assert.True(t, strings.HasPrefix(lines[1], "0,"), lines[1])
	assert.Contains(t, lines[1], "(1.0, 5.0, 2.0)")
}

func TestRenderer_Markdown(t *testing.T) {
	var buf bytes.Buffer
	var seen string
	r := table.New(&buf,
		table.WithFormat(table.FormatMarkdown),
		table.WithMarkdownRenderer(func(md string) (string, error) {
			seen = md
			return "rendered\n", nil
		}),
	)
	require.NoError(t, r.Result("points", pointsResult()))

	assert.Equal(t, "rendered\n", buf.String())
	assert.Contains(t, seen, "## points")
	assert.Contains(t, seen, "**Type:** `float3`")
	assert.Contains(t, strings.ToLower(seen), "| array 0 |")
}

func TestRenderer_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, table.New(&buf, table.WithFormat(table.FormatJSON)).Result("points", pointsResult()))

	var decoded struct {
		Port   string                  `json:"port"`
		Result domain.ExtractionResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "points", decoded.Port)
	assert.Equal(t, "float3", decoded.Result.PlugType)
	assert.True(t, domain.Tuple(4.0, 5.0, 9.0).Equal(decoded.Result.MaxValue))
}

func TestRenderer_Ports(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, table.New(&buf).Ports("g", []string{"ids", "points"}))
	assert.Contains(t, buf.String(), "points")

	buf.Reset()
	require.NoError(t, table.New(&buf).Ports("g", []string{}))
	assert.Contains(t, buf.String(), "g has no inspectable ports")

	buf.Reset()
	require.NoError(t, table.New(&buf, table.WithFormat(table.FormatJSON)).Ports("g", []string{"ids"}))
	assert.JSONEq(t, `{"node":"g","ports":["ids"]}`, buf.String())
}

func TestRenderer_Dump(t *testing.T) {
	var buf bytes.Buffer
	results := map[string]*domain.ExtractionResult{"points": pointsResult(), "nested": nestedResult()}
	require.NoError(t, table.New(&buf, table.WithFormat(table.FormatCSV)).Dump("g", []string{"nested", "missing", "points"}, results))

	out := buf.String()
	assert.Less(t, strings.Index(out, "# nested"), strings.Index(out, "# points"))
	assert.NotContains(t, out, "# missing")
}
