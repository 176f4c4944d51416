// Package browser implements the generic table browser: it lists or
// searches one table, holds at most one selected row, and opens record
// forms for adding and editing.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/storeadmin/internal/codec"
	"github.com/mesh-intelligence/storeadmin/internal/form"
	"github.com/mesh-intelligence/storeadmin/internal/logging"
	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

// Page is the last rendered result set.
type Page struct {
	Table   string
	Title   string
	Columns []string
	Headers []string
	// Values holds the presentation values of each row; Cells holds their
	// text.
	Values [][]any
	Cells  [][]string
	Keys   []types.Key
	Term   string
}

// Len returns the number of rows on the page.
func (p Page) Len() int { return len(p.Keys) }

// Browser is the list/search view of one table. Rows are re-fetched on every
// render and never cached between renders.
type Browser struct {
	deps     form.Deps
	schema   *types.EntitySchema
	page     Page
	selected types.Key
	log      *slog.Logger
}

// New returns a browser over s. Call Render before reading the page.
func New(deps form.Deps, s *types.EntitySchema) *Browser {
	headers := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		headers[i] = c.Header()
	}
	return &Browser{
		deps:   deps,
		schema: s,
		page: Page{
			Table:   s.Table,
			Title:   s.Title,
			Columns: s.ColumnNames(),
			Headers: headers,
		},
		log: logging.For("browser"),
	}
}

// Schema returns the browsed table's schema.
func (b *Browser) Schema() *types.EntitySchema { return b.schema }

// Page returns the last rendered result set.
func (b *Browser) Page() Page { return b.page }

// Searchable reports whether the table has searchable columns.
func (b *Browser) Searchable() bool { return len(b.schema.Searchable) > 0 }

// Render lists every row of the table and clears the selection.
func (b *Browser) Render(ctx context.Context) error {
	return b.ApplySearch(ctx, "")
}

// ApplySearch renders the rows whose searchable columns contain term and
// clears the selection. An empty term renders every row.
func (b *Browser) ApplySearch(ctx context.Context, term string) error {
	rows, err := b.deps.Store.Search(ctx, b.schema, term)
	if err != nil {
		return err
	}

	display := b.deps.Codec.WithLabels(newLabelCache(b.deps.Store))
	page := b.page
	page.Term = term
	page.Values = make([][]any, len(rows))
	page.Cells = make([][]string, len(rows))
	page.Keys = make([]types.Key, len(rows))
	for i, r := range rows {
		key, err := b.schema.KeyOf(r)
		if err != nil {
			return err
		}
		values := make([]any, len(b.schema.Columns))
		cells := make([]string, len(b.schema.Columns))
		for j, col := range b.schema.Columns {
			v, err := display.ToDisplay(ctx, col, r[j])
			if err != nil {
				return err
			}
			values[j] = v
			cells[j] = codec.FormatCell(v)
		}
		page.Values[i] = values
		page.Cells[i] = cells
		page.Keys[i] = key
	}
	b.selected = nil
	b.page = page
	b.log.DebugContext(ctx, "rendered", "table", b.schema.Table, "rows", len(rows), "filtered", term != "")
	return nil
}

// Reset renders every row and clears the selection.
func (b *Browser) Reset(ctx context.Context) error {
	return b.Render(ctx)
}

// Select makes the row with key the selection, replacing any previous one.
// The key must be on the last rendered page.
func (b *Browser) Select(key types.Key) error {
	for _, k := range b.page.Keys {
		if k.Equal(key) {
			b.selected = k
			return nil
		}
	}
	return fmt.Errorf("%s %s is not on the page: %w", b.schema.Table, key, types.ErrNotFound)
}

// Selection returns the selected key.
func (b *Browser) Selection() (types.Key, bool) {
	return b.selected, b.selected != nil
}

// ClearSelection drops the selection.
func (b *Browser) ClearSelection() { b.selected = nil }

// Add opens an add-mode form for the table.
func (b *Browser) Add(ctx context.Context) (*form.Form, error) {
	return form.NewAdd(ctx, b.deps, b.schema)
}

// Edit opens an edit-mode form for the selected row, fetched fresh.
// Returns ErrNoSelection without a selection. If the row has been deleted
// the page is re-rendered and ErrNotFound returned.
func (b *Browser) Edit(ctx context.Context) (*form.Form, error) {
	if b.selected == nil {
		return nil, types.ErrNoSelection
	}
	f, err := form.NewEdit(ctx, b.deps, b.schema, b.selected)
	if errors.Is(err, types.ErrNotFound) {
		if rerr := b.Render(ctx); rerr != nil {
			return nil, errors.Join(err, rerr)
		}
	}
	return f, err
}

// Complete handles a finished form. A saved form re-renders the page,
// which also clears the selection; a cancelled form changes nothing.
func (b *Browser) Complete(ctx context.Context, res form.Result) error {
	if res.Cancelled || !res.Refresh {
		return nil
	}
	return b.Render(ctx)
}

// DeletePrompt returns the confirmation question for deleting the
// selection, or false without a selection.
func (b *Browser) DeletePrompt() (string, bool) {
	if b.selected == nil {
		return "", false
	}
	return fmt.Sprintf("Delete %s %s?", b.schema.Title, b.selected), true
}

// Remove deletes the selected row after confirm approves the prompt.
// Returns ErrNoSelection without a selection. A declined prompt makes no
// store call. After a delete, or a NotFound from a row already gone, the
// page is re-rendered.
func (b *Browser) Remove(ctx context.Context, confirm func(prompt string) bool) error {
	prompt, ok := b.DeletePrompt()
	if !ok {
		return types.ErrNoSelection
	}
	if confirm != nil && !confirm(prompt) {
		return nil
	}

	err := b.deps.Store.Delete(ctx, b.schema, b.selected)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return err
	}
	if rerr := b.Render(ctx); rerr != nil {
		return errors.Join(err, rerr)
	}
	return err
}

// labelCache memoises foreign-key labels for one render.
type labelCache struct {
	labels codec.Labeler
	seen   map[labelKey]labelEntry
}

type labelKey struct {
	ref types.ForeignRef
	key string
}

type labelEntry struct {
	label string
	err   error
}

func newLabelCache(labels codec.Labeler) *labelCache {
	return &labelCache{labels: labels, seen: make(map[labelKey]labelEntry)}
}

func (c *labelCache) LookupLabel(ctx context.Context, ref types.ForeignRef, key any) (string, error) {
	k := labelKey{ref: ref, key: fmt.Sprint(key)}
	if e, ok := c.seen[k]; ok {
		return e.label, e.err
	}
	label, err := c.labels.LookupLabel(ctx, ref, key)
	if err == nil || errors.Is(err, types.ErrNotFound) {
		c.seen[k] = labelEntry{label: label, err: err}
	}
	return label, err
}
