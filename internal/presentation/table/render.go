package table

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/portscope/pkg/domain"
	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
)

// Empty-state messages, shown in place of a table.
const (
	NoDataMessage    = "Load ports from the selected graph"
	EmptyDataMessage = "This port has empty data"
)

// Format selects how a result is written.
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts the --output values of the CLI.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use table, csv, markdown or json)", s)
	}
}

// Renderer writes extraction results and port lists.
type Renderer struct {
	w        io.Writer
	format   Format
	profile  termenv.Profile
	markdown func(string) (string, error)
	maxRows  int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithFormat sets the output format (default table).
func WithFormat(f Format) Option {
	return func(r *Renderer) {
		r.format = f
	}
}

// WithColorProfile colours plug types; termenv.Ascii disables colour.
func WithColorProfile(p termenv.Profile) Option {
	return func(r *Renderer) {
		r.profile = p
	}
}

// WithMarkdownRenderer post-processes markdown output, e.g. through glamour.
func WithMarkdownRenderer(fn func(string) (string, error)) Option {
	return func(r *Renderer) {
		r.markdown = fn
	}
}

// WithMaxRows truncates tables; 0 prints every row.
func WithMaxRows(n int) Option {
	return func(r *Renderer) {
		r.maxRows = n
	}
}

// New creates a Renderer writing to w.
func New(w io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		w:       w,
		format:  FormatTable,
		profile: termenv.Ascii,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Summary is the header block shown above a table.
type Summary struct {
	Port     string       `json:"port"`
	PlugType string       `json:"plugType"`
	Length   int          `json:"dataLength"`
	Min      domain.Value `json:"minValue"`
	Max      domain.Value `json:"maxValue"`
}

// Summarize describes a result; a nil result reads as n/a with zero stats.
func Summarize(port string, result *domain.ExtractionResult) Summary {
	if result == nil {
		zero := domain.Scalar(0)
		return Summary{Port: port, PlugType: "n/a", Min: zero, Max: zero}
	}
	return Summary{
		Port:     port,
		PlugType: result.PlugType,
		Length:   result.DataLength,
		Min:      result.MinValue,
		Max:      result.MaxValue,
	}
}

// Headers returns the column titles "Array 0", "Array 1", ...
func Headers(result *domain.ExtractionResult) []string {
	headers := make([]string, result.Columns())
	for i := range headers {
		headers[i] = "Array " + strconv.Itoa(i)
	}
	return headers
}

// Result writes one port's data.
func (r *Renderer) Result(port string, result *domain.ExtractionResult) error {
	switch r.format {
	case FormatJSON:
		return r.json(struct {
			Port   string                   `json:"port"`
			Result *domain.ExtractionResult `json:"result"`
		}{port, result})
	case FormatCSV:
		return r.csv(result)
	case FormatMarkdown:
		return r.markdownResult(port, result)
	default:
		return r.tableResult(port, result)
	}
}

// Ports writes a node's port list.
func (r *Renderer) Ports(node string, ports []string) error {
	switch r.format {
	case FormatJSON:
		return r.json(struct {
			Node  string   `json:"node"`
			Ports []string `json:"ports"`
		}{node, ports})
	case FormatCSV:
		_, _ = fmt.Fprintln(r.w, "port")
		for _, p := range ports {
			_, _ = fmt.Fprintln(r.w, escapeCSV(p))
		}
		return nil
	}

	if len(ports) == 0 {
		_, _ = fmt.Fprintf(r.w, "%s has no inspectable ports\n", node)
		return nil
	}
	t := prettytable.NewWriter()
	t.SetStyle(prettytable.StyleLight)
	t.AppendHeader(prettytable.Row{"#", "Port"})
	for i, p := range ports {
		t.AppendRow(prettytable.Row{i, p})
	}
	if r.format == FormatMarkdown {
		return r.emitMarkdown(t.RenderMarkdown())
	}
	_, _ = fmt.Fprintln(r.w, t.Render())
	return nil
}

// Dump writes several ports, in the given order, skipping ports without data.
func (r *Renderer) Dump(node string, order []string, results map[string]*domain.ExtractionResult) error {
	if r.format == FormatJSON {
		return r.json(struct {
			Node    string                              `json:"node"`
			Results map[string]*domain.ExtractionResult `json:"results"`
		}{node, results})
	}
	first := true
	for _, port := range order {
		result, ok := results[port]
		if !ok {
			continue
		}
		if !first {
			_, _ = fmt.Fprintln(r.w)
		}
		first = false
		if r.format == FormatCSV {
			_, _ = fmt.Fprintf(r.w, "# %s\n", port)
		}
		if err := r.Result(port, result); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) json(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *Renderer) colorType(plugType string) string {
	hex := domain.ParsePlugType(plugType).Color()
	if hex == "" || r.profile == termenv.Ascii {
		return plugType
	}
	return termenv.String(plugType).Foreground(r.profile.Color(hex)).String()
}

func (r *Renderer) writeSummary(s Summary) {
	_, _ = fmt.Fprintf(r.w, "Port:   %s\n", s.Port)
	_, _ = fmt.Fprintf(r.w, "Type:   %s\n", r.colorType(s.PlugType))
	_, _ = fmt.Fprintf(r.w, "Length: %d\n", s.Length)
	_, _ = fmt.Fprintf(r.w, "Min:    %s\n", s.Min)
	_, _ = fmt.Fprintf(r.w, "Max:    %s\n", s.Max)
}

// emptyMessage returns the empty-state text, or "" when there is a table to show.
func emptyMessage(result *domain.ExtractionResult) string {
	switch {
	case result == nil:
		return NoDataMessage
	case result.Rows() == 0:
		return EmptyDataMessage
	default:
		return ""
	}
}

func (r *Renderer) tableResult(port string, result *domain.ExtractionResult) error {
	r.writeSummary(Summarize(port, result))
	if msg := emptyMessage(result); msg != "" {
		_, _ = fmt.Fprintln(r.w, msg)
		return nil
	}

	t := r.build(result)
	t.SetStyle(prettytable.StyleLight)
	_, _ = fmt.Fprintln(r.w, t.Render())
	r.writeTruncation(result)
	return nil
}

func (r *Renderer) markdownResult(port string, result *domain.ExtractionResult) error {
	s := Summarize(port, result)
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", port)
	fmt.Fprintf(&sb, "- **Type:** `%s`\n- **Length:** %d\n- **Min:** `%s`\n- **Max:** `%s`\n\n",
		s.PlugType, s.Length, s.Min, s.Max)
	if msg := emptyMessage(result); msg != "" {
		sb.WriteString("_" + msg + "_\n")
		return r.emitMarkdown(sb.String())
	}
	sb.WriteString(r.build(result).RenderMarkdown())
	sb.WriteString("\n")
	return r.emitMarkdown(sb.String())
}

func (r *Renderer) emitMarkdown(md string) error {
	if r.markdown != nil {
		out, err := r.markdown(md)
		if err != nil {
			return fmt.Errorf("failed to render markdown: %w", err)
		}
		md = out
	}
	_, err := fmt.Fprint(r.w, md)
	if err == nil && !strings.HasSuffix(md, "\n") {
		_, err = fmt.Fprintln(r.w)
	}
	return err
}

func (r *Renderer) csv(result *domain.ExtractionResult) error {
	if result == nil {
		return nil
	}
	t := r.build(result)
	_, _ = fmt.Fprintln(r.w, t.RenderCSV())
	return nil
}

// build lays the columns out side by side; short columns leave blank cells.
func (r *Renderer) build(result *domain.ExtractionResult) prettytable.Writer {
	t := prettytable.NewWriter()

	header := prettytable.Row{""}
	for _, h := range Headers(result) {
		header = append(header, h)
	}
	t.AppendHeader(header)

	rows := result.Rows()
	if r.maxRows > 0 && rows > r.maxRows {
		rows = r.maxRows
	}
	for row := 0; row < rows; row++ {
		line := prettytable.Row{row}
		for _, cell := range result.Row(row) {
			if cell.Present {
				line = append(line, cell.Value.String())
			} else {
				line = append(line, "")
			}
		}
		t.AppendRow(line)
	}
	return t
}

func (r *Renderer) writeTruncation(result *domain.ExtractionResult) {
	if r.maxRows > 0 && result.Rows() > r.maxRows {
		_, _ = fmt.Fprintf(r.w, "(%d of %d rows)\n", r.maxRows, result.Rows())
	}
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
