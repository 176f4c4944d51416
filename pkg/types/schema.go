package types

import (
	"fmt"
	"slices"
)

// PresentationKind tags how a column is rendered, edited and parsed.
type PresentationKind int

// Presentation kinds.
const (
	PlainText PresentationKind = iota
	BooleanFlag
	FixedChoice
	ForeignKeyChoice
	MaskedSecret
	NumericChoice
)

var kindNames = map[PresentationKind]string{
	PlainText:        "plain_text",
	BooleanFlag:      "boolean_flag",
	FixedChoice:      "fixed_choice",
	ForeignKeyChoice: "foreign_key_choice",
	MaskedSecret:     "masked_secret",
	NumericChoice:    "numeric_choice",
}

// String returns the snake_case name of the kind.
func (k PresentationKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k PresentationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ForeignRef points a foreign_key_choice column at the referenced table, its
// key column, and the column used as a human-readable label.
type ForeignRef struct {
	Table       string `json:"table" yaml:"table"`
	Column      string `json:"column" yaml:"column"`
	LabelColumn string `json:"label_column" yaml:"label_column"`
}

// ColumnSpec describes one column of an entity schema.
type ColumnSpec struct {
	Name  string           `json:"name" yaml:"name"`
	Label string           `json:"label" yaml:"label"`
	Kind  PresentationKind `json:"kind" yaml:"kind"`

	// Options is the closed set of values for FixedChoice and NumericChoice.
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`

	// Ref is set for ForeignKeyChoice columns.
	Ref *ForeignRef `json:"ref,omitempty" yaml:"ref,omitempty"`

	// ReadOnly columns are displayed but never offered for input
	// (autoincrement keys, server-assigned timestamps).
	ReadOnly bool `json:"read_only,omitempty" yaml:"read_only,omitempty"`
}

// Header returns the column label, falling back to the column name.
func (c ColumnSpec) Header() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Name
}

// EntitySchema is the static description of one table. Schemas are defined
// once at startup and never mutated.
type EntitySchema struct {
	Table      string       `json:"table" yaml:"table"`
	Title      string       `json:"title" yaml:"title"`
	Columns    []ColumnSpec `json:"columns" yaml:"columns"`
	PrimaryKey []string     `json:"primary_key" yaml:"primary_key"`
	Searchable []string     `json:"searchable,omitempty" yaml:"searchable,omitempty"`
	Required   []string     `json:"required,omitempty" yaml:"required,omitempty"`
}

// ColumnNames returns the declared column names in order.
func (s *EntitySchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the ColumnSpec named name.
func (s *EntitySchema) Column(name string) (ColumnSpec, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// ColumnIndex returns the position of name in the declared column order, or -1.
func (s *EntitySchema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Editable returns the columns offered for input, in declared order.
func (s *EntitySchema) Editable() []ColumnSpec {
	var out []ColumnSpec
	for _, c := range s.Columns {
		if !c.ReadOnly {
			out = append(out, c)
		}
	}
	return out
}

// IsRequired reports whether column must be non-empty on save.
func (s *EntitySchema) IsRequired(column string) bool {
	return slices.Contains(s.Required, column)
}

// KeyOf extracts the primary key of a record laid out in declared column order.
func (s *EntitySchema) KeyOf(r Record) (Key, error) {
	key := make(Key, len(s.PrimaryKey))
	for i, name := range s.PrimaryKey {
		idx := s.ColumnIndex(name)
		if idx < 0 || idx >= len(r) {
			return nil, fmt.Errorf("%s: key column %q: %w", s.Table, name, ErrUnknownColumn)
		}
		key[i] = r[idx]
	}
	return key, nil
}

// Validate checks the structural invariants of the schema: a table name and
// at least one column, unique column names, key, searchable and required
// columns drawn from the declared columns, and options or a reference for
// every choice column.
func (s *EntitySchema) Validate() error {
	if s.Table == "" {
		return fmt.Errorf("schema: %w", ErrTableNotFound)
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("%s: no columns: %w", s.Table, ErrUnknownColumn)
	}
	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name == "" || seen[c.Name] {
			return fmt.Errorf("%s: duplicate or empty column %q: %w", s.Table, c.Name, ErrUnknownColumn)
		}
		seen[c.Name] = true
		switch c.Kind {
		case FixedChoice, NumericChoice:
			if len(c.Options) == 0 {
				return fmt.Errorf("%s.%s: %s without options", s.Table, c.Name, c.Kind)
			}
		case ForeignKeyChoice:
			if c.Ref == nil || c.Ref.Table == "" || c.Ref.Column == "" || c.Ref.LabelColumn == "" {
				return fmt.Errorf("%s.%s: foreign_key_choice without reference", s.Table, c.Name)
			}
		}
	}
	if len(s.PrimaryKey) == 0 {
		return fmt.Errorf("%s: empty primary key: %w", s.Table, ErrInvalidKey)
	}
	for _, name := range s.PrimaryKey {
		if !seen[name] {
			return fmt.Errorf("%s: key column %q: %w", s.Table, name, ErrUnknownColumn)
		}
	}
	for _, name := range s.Searchable {
		if !seen[name] {
			return fmt.Errorf("%s: searchable column %q: %w", s.Table, name, ErrUnknownColumn)
		}
	}
	for _, name := range s.Required {
		c, ok := s.Column(name)
		if !ok || c.ReadOnly {
			return fmt.Errorf("%s: required column %q is not editable: %w", s.Table, name, ErrUnknownColumn)
		}
	}
	return nil
}
