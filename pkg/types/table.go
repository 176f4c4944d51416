package types

import (
	"context"
	"errors"
)

// RecordStore provides uniform CRUD and search over any table described by an
// EntitySchema. Table and column identifiers come only from the schema; values
// are always bound as parameters.
type RecordStore interface {
	// List returns every row of the table in declared column order, ordered
	// by primary key.
	List(ctx context.Context, s *EntitySchema) ([]Record, error)

	// ListColumns returns every row projected onto columns, which must be
	// declared by the schema.
	ListColumns(ctx context.Context, s *EntitySchema, columns []string) ([]Record, error)

	// Search returns rows where any searchable column contains term as a
	// substring. An empty term is equivalent to List.
	Search(ctx context.Context, s *EntitySchema, term string) ([]Record, error)

	// FetchOne returns the row with the given key.
	// Returns ErrNotFound if no row matches.
	FetchOne(ctx context.Context, s *EntitySchema, key Key) (Record, error)

	// Insert writes a new row and returns its key.
	// Returns a ConstraintError if the engine rejects the row.
	Insert(ctx context.Context, s *EntitySchema, values []ColumnValue) (Key, error)

	// Update rewrites the given columns of one row.
	// Returns ErrNotFound if no row matches.
	Update(ctx context.Context, s *EntitySchema, key Key, values []ColumnValue) error

	// Delete removes one row. Cascades are the engine's responsibility.
	// Returns ErrNotFound if no row matches.
	Delete(ctx context.Context, s *EntitySchema, key Key) error

	// LookupLabel returns the label of the referenced row.
	// Returns ErrNotFound if the reference dangles.
	LookupLabel(ctx context.Context, ref ForeignRef, key any) (string, error)

	// Choices returns every row of the referenced table as key/label pairs.
	Choices(ctx context.Context, ref ForeignRef) ([]Choice, error)
}

// Record store errors.
var (
	ErrNotFound            = errors.New("record not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrStorage             = errors.New("storage error")
	ErrTableNotFound       = errors.New("table not found")
	ErrUnknownColumn       = errors.New("unknown column")
	ErrNotSearchable       = errors.New("table has no searchable columns")
	ErrInvalidKey          = errors.New("invalid primary key")
	ErrDetached            = errors.New("store is not attached")
	ErrAlreadyAttached     = errors.New("store is already attached")
)

// Form and browser errors.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNoSelection = errors.New("no record selected")
	ErrFormClosed  = errors.New("form is closed")
)

// ValidationError names the column that failed a form check.
type ValidationError struct {
	Column string
	Reason string
}

func (e *ValidationError) Error() string {
	return "field " + e.Column + ": " + e.Reason
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConstraintError carries the raw message of a uniqueness, foreign-key,
// not-null or check failure reported by the engine.
type ConstraintError struct {
	Message string
}

func (e *ConstraintError) Error() string {
	return "constraint violation: " + e.Message
}

// Is matches ErrConstraintViolation.
func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraintViolation
}
