package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/storeadmin/internal/codec"
)

// Format selects how command results are written.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// parseFormat resolves the --output flag, with --json as a shorthand.
func parseFormat(output string, jsonMode bool) (Format, error) {
	if jsonMode {
		return FormatJSON, nil
	}
	switch f := Format(strings.ToLower(output)); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", usageErrorf("unsupported output format %q (table, json, yaml)", output)
	}
}

// grid is a rendered result: headers, their machine names, and one row of
// display values per record.
type grid struct {
	Columns []string
	Headers []string
	Rows    [][]any
}

// Printer writes command results in the selected format.
type Printer struct {
	writer io.Writer
	format Format
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{writer: w, format: format}
}

// Message prints a confirmation line. Structured formats stay silent so
// their output remains parseable.
func (p *Printer) Message(format string, args ...any) {
	if p.format != FormatTable {
		return
	}
	fmt.Fprintf(p.writer, format+"\n", args...)
}

// PrintGrid prints rows as a table, or as a list of objects keyed by
// column name.
func (p *Printer) PrintGrid(g grid) error {
	switch p.format {
	case FormatJSON, FormatYAML:
		objs := make([]map[string]any, len(g.Rows))
		for i, row := range g.Rows {
			objs[i] = g.object(row)
		}
		return p.printStructured(objs)
	default:
		if len(g.Rows) == 0 {
			fmt.Fprintln(p.writer, "No records found")
			return nil
		}
		w := tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, strings.Join(g.Headers, "\t"))
		for _, row := range g.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = codec.FormatCell(v)
			}
			fmt.Fprintln(w, strings.Join(cells, "\t"))
		}
		return w.Flush()
	}
}

// PrintRecord prints one record as label/value lines, or as one object.
func (p *Printer) PrintRecord(g grid) error {
	if len(g.Rows) != 1 {
		return fmt.Errorf("expected one record, got %d", len(g.Rows))
	}
	row := g.Rows[0]
	switch p.format {
	case FormatJSON, FormatYAML:
		return p.printStructured(g.object(row))
	default:
		w := tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', 0)
		for i, h := range g.Headers {
			fmt.Fprintf(w, "%s:\t%s\n", h, codec.FormatCell(row[i]))
		}
		return w.Flush()
	}
}

// PrintValue prints any value in a structured format. Table format falls
// back to JSON.
func (p *Printer) PrintValue(v any) error {
	return p.printStructured(v)
}

func (p *Printer) printStructured(v any) error {
	if p.format == FormatYAML {
		enc := yaml.NewEncoder(p.writer)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (g grid) object(row []any) map[string]any {
	obj := make(map[string]any, len(g.Columns))
	for i, col := range g.Columns {
		obj[col] = row[i]
	}
	return obj
}
