// Package form implements the generic add/edit record form. A Form is built
// from an EntitySchema, holds one text entry per editable column, and on
// Save converts the entries to stored values through the codec, applies the
// required-field policy, and writes through the record store.
//
// A form moves through these states:
//
//	Building -> AwaitingInput -> Validating -> Saving -> Closed
//	                 ^               |           |
//	                 +---------------+-----------+  (validation or store error)
//	AwaitingInput -> Cancelled
//
// Closed and Cancelled are terminal.
package form

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/storeadmin/internal/codec"
	"github.com/mesh-intelligence/storeadmin/internal/logging"
	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

// Mode distinguishes forms that insert from forms that update.
type Mode int

const (
	AddMode Mode = iota
	EditMode
)

func (m Mode) String() string {
	if m == EditMode {
		return "edit"
	}
	return "add"
}

// State is the lifecycle state of a Form.
type State int

const (
	Building State = iota
	AwaitingInput
	Validating
	Saving
	Closed
	Cancelled
)

var stateNames = [...]string{"building", "awaiting_input", "validating", "saving", "closed", "cancelled"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Deps are the collaborators a form reads and writes through.
type Deps struct {
	Store types.RecordStore
	Codec *codec.Codec
}

// Field is one input of the form.
type Field struct {
	Column types.ColumnSpec
	// Value is the presented text of the entry.
	Value string
	// Options lists the accepted entries of a choice column, in display
	// form. An empty first option means "none".
	Options  []string
	Required bool
}

// Result is handed back to the browser when a form finishes.
type Result struct {
	Mode      Mode
	Key       types.Key
	Refresh   bool
	Cancelled bool
}

// Form is a single add or edit session over one table.
type Form struct {
	deps   Deps
	schema *types.EntitySchema
	mode   Mode
	key    types.Key
	fields []Field
	state  State
	err    error
	log    *slog.Logger
}

// NewAdd builds an add-mode form with every field at its default.
func NewAdd(ctx context.Context, deps Deps, s *types.EntitySchema) (*Form, error) {
	f := newForm(deps, s, AddMode, nil)
	for i := range f.fields {
		f.fields[i].Value = codec.FormatCell(codec.Default(f.fields[i].Column))
	}
	if err := f.loadOptions(ctx); err != nil {
		return nil, err
	}
	f.state = AwaitingInput
	return f, nil
}

// NewEdit builds an edit-mode form prefilled from the row with key, fetched
// fresh from the store. Masked secrets are prefilled with the placeholder
// so an untouched secret is kept. Returns ErrNotFound if the row is gone.
func NewEdit(ctx context.Context, deps Deps, s *types.EntitySchema, key types.Key) (*Form, error) {
	row, err := deps.Store.FetchOne(ctx, s, key)
	if err != nil {
		return nil, err
	}
	f := newForm(deps, s, EditMode, key)
	for i := range f.fields {
		col := f.fields[i].Column
		shown, err := deps.Codec.ToDisplay(ctx, col, row[s.ColumnIndex(col.Name)])
		if err != nil {
			return nil, err
		}
		f.fields[i].Value = codec.FormatCell(shown)
	}
	if err := f.loadOptions(ctx); err != nil {
		return nil, err
	}
	f.state = AwaitingInput
	return f, nil
}

func newForm(deps Deps, s *types.EntitySchema, mode Mode, key types.Key) *Form {
	editable := s.Editable()
	fields := make([]Field, len(editable))
	for i, col := range editable {
		fields[i] = Field{Column: col, Required: s.IsRequired(col.Name)}
	}
	return &Form{
		deps:   deps,
		schema: s,
		mode:   mode,
		key:    key,
		fields: fields,
		state:  Building,
		log:    logging.For("form"),
	}
}

// loadOptions fills the option list of every choice field. Foreign-key
// options are read from the referenced table.
func (f *Form) loadOptions(ctx context.Context) error {
	for i := range f.fields {
		fld := &f.fields[i]
		var opts []string
		switch fld.Column.Kind {
		case types.FixedChoice, types.NumericChoice:
			opts = append(opts, fld.Column.Options...)
		case types.ForeignKeyChoice:
			choices, err := f.deps.Store.Choices(ctx, *fld.Column.Ref)
			if err != nil {
				return fmt.Errorf("loading %s options: %w", fld.Column.Name, err)
			}
			for _, c := range choices {
				opts = append(opts, c.String())
			}
		case types.BooleanFlag:
			opts = []string{"yes", "no"}
		default:
			continue
		}
		if !fld.Required && fld.Column.Kind != types.BooleanFlag {
			opts = append([]string{""}, opts...)
		}
		fld.Options = opts
	}
	return nil
}

// Schema returns the schema the form edits.
func (f *Form) Schema() *types.EntitySchema { return f.schema }

// Mode returns whether the form adds or edits.
func (f *Form) Mode() Mode { return f.mode }

// Key returns the key of the row being edited, or nil in add mode.
func (f *Form) Key() types.Key { return f.key }

// State returns the current lifecycle state.
func (f *Form) State() State { return f.state }

// Err returns the error that sent the form back to AwaitingInput on the last
// Save, or nil.
func (f *Form) Err() error { return f.err }

// Fields returns a copy of the form's fields in declared column order.
func (f *Form) Fields() []Field {
	out := make([]Field, len(f.fields))
	copy(out, f.fields)
	return out
}

// Set replaces the presented text of column.
func (f *Form) Set(column, value string) error {
	if f.done() {
		return types.ErrFormClosed
	}
	for i := range f.fields {
		if f.fields[i].Column.Name == column {
			f.fields[i].Value = value
			return nil
		}
	}
	return fmt.Errorf("%s.%s: %w", f.schema.Table, column, types.ErrUnknownColumn)
}

// Save validates the entries and writes them. On any validation or store
// error the form returns to AwaitingInput with its entries intact and the
// error is returned. On success the form is Closed.
func (f *Form) Save(ctx context.Context) (Result, error) {
	if f.done() {
		return Result{}, types.ErrFormClosed
	}

	f.state = Validating
	values, err := f.collect()
	if err != nil {
		return Result{}, f.fail(ctx, err)
	}

	f.state = Saving
	var key types.Key
	switch f.mode {
	case AddMode:
		key, err = f.deps.Store.Insert(ctx, f.schema, values)
	case EditMode:
		err = f.deps.Store.Update(ctx, f.schema, f.key, values)
		key = f.editedKey(values)
	}
	if err != nil {
		return Result{}, f.fail(ctx, err)
	}

	f.state = Closed
	f.err = nil
	f.log.DebugContext(ctx, "form saved", "table", f.schema.Table, "mode", f.mode.String(), "key", key.String())
	return Result{Mode: f.mode, Key: key, Refresh: true}, nil
}

// Cancel discards all entries without touching the store.
func (f *Form) Cancel() Result {
	if !f.done() {
		f.state = Cancelled
		f.log.Debug("form cancelled", "table", f.schema.Table, "mode", f.mode.String())
	}
	return Result{Mode: f.mode, Key: f.key, Cancelled: true}
}

// collect parses every field in column order and applies the required
// policy. The first violation is returned.
func (f *Form) collect() ([]types.ColumnValue, error) {
	values := make([]types.ColumnValue, 0, len(f.fields))
	for _, fld := range f.fields {
		v, err := f.deps.Codec.FromInput(fld.Column, fld.Value)
		if err != nil {
			return nil, err
		}
		if v.Keep {
			if f.mode == AddMode {
				return nil, &types.ValidationError{Column: fld.Column.Name, Reason: "enter a value"}
			}
			continue
		}
		if err := codec.CheckRequired(f.schema, fld.Column.Name, v.Stored); err != nil {
			return nil, err
		}
		values = append(values, types.ColumnValue{Column: fld.Column.Name, Value: v.Stored})
	}
	return values, nil
}

// editedKey returns the row's key after an update that may have rewritten
// key columns.
func (f *Form) editedKey(values []types.ColumnValue) types.Key {
	key := make(types.Key, len(f.key))
	copy(key, f.key)
	for i, col := range f.schema.PrimaryKey {
		for _, v := range values {
			if v.Column == col {
				key[i] = v.Value
			}
		}
	}
	return key
}

func (f *Form) fail(ctx context.Context, err error) error {
	f.state = AwaitingInput
	f.err = err
	f.log.DebugContext(ctx, "form save failed", "table", f.schema.Table, "mode", f.mode.String(), "error", err)
	return err
}

func (f *Form) done() bool {
	return f.state == Closed || f.state == Cancelled
}
