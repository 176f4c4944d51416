package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/storeadmin/internal/browser"
	"github.com/mesh-intelligence/storeadmin/internal/catalog"
	"github.com/mesh-intelligence/storeadmin/internal/form"
	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

// validTableNames is a comma-separated list of table names for help text.
var validTableNames = strings.Join(catalog.Names(), ", ")

// tableInfo describes one table for the tables command.
type tableInfo struct {
	Name       string   `json:"name" yaml:"name"`
	Title      string   `json:"title" yaml:"title"`
	Key        []string `json:"key" yaml:"key"`
	Searchable []string `json:"searchable" yaml:"searchable"`
	Columns    []string `json:"columns" yaml:"columns"`
}

func newTablesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables storeadmin manages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.printer(cmd)
			if err != nil {
				return err
			}
			all := catalog.All()
			infos := make([]tableInfo, len(all))
			g := grid{Headers: []string{"TABLE", "TITLE", "KEY", "SEARCHABLE"}}
			for i, s := range all {
				infos[i] = tableInfo{
					Name:       s.Table,
					Title:      s.Title,
					Key:        append([]string{}, s.PrimaryKey...),
					Searchable: append([]string{}, s.Searchable...),
					Columns:    s.ColumnNames(),
				}
				g.Rows = append(g.Rows, []any{
					s.Table, s.Title,
					strings.Join(s.PrimaryKey, ","),
					strings.Join(s.Searchable, ","),
				})
			}
			if p.format != FormatTable {
				return p.PrintValue(infos)
			}
			return p.PrintGrid(g)
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list <table>",
		Short: "List the records of a table",
		Long: `List prints every record of a table in key order, with passwords masked
and references shown as "id - label".

--search keeps the records whose searchable columns contain the term,
ignoring case. % and _ in the term match literally.

Valid table names: ` + validTableNames,
		Example: `  storeadmin list users
  storeadmin list products --search phone
  storeadmin list categories --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(cmd, args[0], func(ctx context.Context, p *Printer, br *browser.Browser) error {
				if err := br.ApplySearch(ctx, search); err != nil {
					return err
				}
				return p.PrintGrid(pageGrid(br.Page()))
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "substring to search for")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <key>",
		Short: "Show one record",
		Long: `Get prints one record by primary key. Composite keys are written
comma-separated in key column order, e.g. "3,7" for product_tags.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(cmd, args[0], func(ctx context.Context, p *Printer, br *browser.Browser) error {
				key, err := types.ParseKey(br.Schema(), args[1])
				if err != nil {
					return err
				}
				if err := br.Select(key); err != nil {
					return err
				}
				return p.PrintRecord(selectedGrid(br.Page(), key))
			})
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <table> [column=value...]",
		Short: "Add a record",
		Long: `Add inserts a record. Values are entered as they appear in the shell:
yes/no for flags, one of the listed options for choices, and the id (or
"id - label") for references. Passwords are hashed before they are stored.
Columns left out take their defaults.`,
		Example: `  storeadmin add users username=alice email=alice@example.com password_hash=secret
  storeadmin add products name=Phone category_id=2 price=599.99`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			return a.withTable(cmd, args[0], func(ctx context.Context, p *Printer, br *browser.Browser) error {
				f, err := br.Add(ctx)
				if err != nil {
					return err
				}
				return a.saveForm(ctx, p, br, f, entries, "Added")
			})
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <table> <key> column=value...",
		Short: "Change fields of a record",
		Long: `Edit updates the named columns of one record and leaves the others as
they are. An empty value clears an optional column.`,
		Example: `  storeadmin edit products 3 price=549 stock_quantity=8
  storeadmin edit users 1 password_hash=new-secret`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := parseAssignments(args[2:])
			if err != nil {
				return err
			}
			return a.withTable(cmd, args[0], func(ctx context.Context, p *Printer, br *browser.Browser) error {
				key, err := types.ParseKey(br.Schema(), args[1])
				if err != nil {
					return err
				}
				if err := br.Select(key); err != nil {
					return err
				}
				f, err := br.Edit(ctx)
				if err != nil {
					return err
				}
				return a.saveForm(ctx, p, br, f, entries, "Updated")
			})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <table> <key>",
		Short: "Delete a record",
		Long: `Delete removes one record after confirmation. Records that others still
reference are refused by the database; dependent order items, tags and
reviews go with their parent.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(cmd, args[0], func(ctx context.Context, p *Printer, br *browser.Browser) error {
				key, err := types.ParseKey(br.Schema(), args[1])
				if err != nil {
					return err
				}
				if err := br.Select(key); err != nil {
					return err
				}
				confirmed := false
				err = br.Remove(ctx, func(prompt string) bool {
					confirmed = yes || ask(cmd, prompt)
					return confirmed
				})
				if err != nil {
					return err
				}
				if !confirmed {
					p.Message("Cancelled")
					return nil
				}
				p.Message("Deleted %s %s", br.Schema().Table, key)
				if p.format != FormatTable {
					return p.PrintValue(map[string]string{"table": br.Schema().Table, "key": key.String(), "action": "deleted"})
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

// withTable attaches the database, renders the named table and runs fn.
func (a *app) withTable(cmd *cobra.Command, table string, fn func(context.Context, *Printer, *browser.Browser) error) error {
	p, err := a.printer(cmd)
	if err != nil {
		return err
	}
	s, err := catalog.Lookup(table)
	if err != nil {
		return fmt.Errorf("%w (valid: %s)", err, validTableNames)
	}
	b, deps, err := a.attach()
	if err != nil {
		return err
	}
	defer b.Detach()

	ctx := cmd.Context()
	br := browser.New(deps, s)
	if err := br.Render(ctx); err != nil {
		return err
	}
	return fn(ctx, p, br)
}

// saveForm enters entries into f, saves it and reports the saved key.
func (a *app) saveForm(ctx context.Context, p *Printer, br *browser.Browser, f *form.Form, entries []assignment, verb string) error {
	for _, e := range entries {
		if err := f.Set(e.column, e.value); err != nil {
			return err
		}
	}
	res, err := f.Save(ctx)
	if err != nil {
		return err
	}
	if err := br.Complete(ctx, res); err != nil {
		return err
	}
	p.Message("%s %s %s", verb, br.Schema().Table, res.Key)
	if p.format == FormatTable {
		return nil
	}
	if err := br.Select(res.Key); err != nil {
		return err
	}
	return p.PrintRecord(selectedGrid(br.Page(), res.Key))
}

// assignment is one column=value argument.
type assignment struct {
	column string
	value  string
}

func parseAssignments(args []string) ([]assignment, error) {
	out := make([]assignment, 0, len(args))
	for _, arg := range args {
		col, val, ok := strings.Cut(arg, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, usageErrorf("invalid assignment %q (expected column=value)", arg)
		}
		out = append(out, assignment{column: col, value: val})
	}
	return out, nil
}

// ask prints prompt and reads a yes/no answer from the command's input.
func ask(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func pageGrid(page browser.Page) grid {
	return grid{Columns: page.Columns, Headers: page.Headers, Rows: page.Values}
}

// selectedGrid narrows page to the row with key. Callers select key first,
// so the row is on the page.
func selectedGrid(page browser.Page, key types.Key) grid {
	g := grid{Columns: page.Columns, Headers: page.Headers}
	for i, k := range page.Keys {
		if k.Equal(key) {
			g.Rows = [][]any{page.Values[i]}
			break
		}
	}
	return g
}
