// Package codec converts column values between their stored form and the
// form presented to the user, according to each column's presentation kind.
//
// Stored values are the scalars a Record carries (int64, float64, string or
// nil). Presented values are what a browser shows or a form field holds:
// placeholders for secrets, "{id} - {label}" for foreign keys, booleans for
// flags and plain text for everything else.
package codec

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

// Placeholder is shown in place of every masked secret. Submitting it
// unchanged means "keep the stored value".
const Placeholder = "********"

// Labeler resolves the label of a referenced row. types.RecordStore
// satisfies it.
type Labeler interface {
	LookupLabel(ctx context.Context, ref types.ForeignRef, key any) (string, error)
}

// Value is the storage-level result of parsing one presented value. Keep is
// set when a masked secret was submitted unchanged; Stored is then unset and
// the column must be left out of the write.
type Value struct {
	Stored any
	Keep   bool
}

// Codec applies the presentation rules of a schema's columns.
type Codec struct {
	labels Labeler
	hasher Hasher
}

// New returns a Codec resolving foreign-key labels through labels and hashing
// secrets with hasher. A nil hasher uses SHA256.
func New(labels Labeler, hasher Hasher) *Codec {
	if hasher == nil {
		hasher = SHA256{}
	}
	return &Codec{labels: labels, hasher: hasher}
}

// WithLabels returns a copy of c that resolves foreign-key labels through
// labels.
func (c *Codec) WithLabels(labels Labeler) *Codec {
	return &Codec{labels: labels, hasher: c.hasher}
}

// ToDisplay returns the presentation value of a stored value. Masked secrets
// always render as Placeholder, even when nothing is stored. Foreign keys
// render as "{id} - {label}"; a reference whose row is gone renders as the
// bare id and nil stays nil. Boolean flags render as bool.
func (c *Codec) ToDisplay(ctx context.Context, col types.ColumnSpec, stored any) (any, error) {
	switch col.Kind {
	case types.MaskedSecret:
		return Placeholder, nil
	case types.BooleanFlag:
		return truthy(stored), nil
	case types.ForeignKeyChoice:
		if stored == nil {
			return nil, nil
		}
		if col.Ref == nil || c.labels == nil {
			return fmt.Sprint(stored), nil
		}
		label, err := c.labels.LookupLabel(ctx, *col.Ref, stored)
		if errors.Is(err, types.ErrNotFound) {
			return fmt.Sprint(stored), nil
		}
		if err != nil {
			return nil, err
		}
		return types.Choice{Key: stored, Label: label}.String(), nil
	default:
		return stored, nil
	}
}

// FromInput parses a presented value into its stored form. Secrets and plain
// text are stored exactly as entered. Choices, flags and references are
// matched after trimming and NFC normalisation. Blank input becomes nil so
// required checks and NOT NULL constraints apply.
func (c *Codec) FromInput(col types.ColumnSpec, presented any) (Value, error) {
	if b, ok := presented.(bool); ok {
		if col.Kind != types.BooleanFlag {
			return Value{}, invalid(col, "unexpected boolean")
		}
		return Value{Stored: boolInt(b)}, nil
	}

	var raw string
	switch x := presented.(type) {
	case nil:
	case string:
		raw = x
	default:
		raw = fmt.Sprint(x)
	}
	blank := strings.TrimSpace(raw) == ""
	text := strings.TrimSpace(norm.NFC.String(raw))

	switch col.Kind {
	case types.MaskedSecret:
		if raw == Placeholder {
			return Value{Keep: true}, nil
		}
		if blank {
			return Value{}, nil
		}
		return Value{Stored: c.hasher.Hash(raw)}, nil

	case types.BooleanFlag:
		b, err := parseBool(text)
		if err != nil {
			return Value{}, invalid(col, err.Error())
		}
		return Value{Stored: boolInt(b)}, nil

	case types.FixedChoice:
		if text == "" {
			return Value{}, nil
		}
		if !slices.Contains(col.Options, text) {
			return Value{}, invalid(col, "must be one of "+strings.Join(col.Options, ", "))
		}
		return Value{Stored: text}, nil

	case types.NumericChoice:
		if text == "" {
			return Value{}, nil
		}
		if !slices.Contains(col.Options, text) {
			return Value{}, invalid(col, "must be one of "+strings.Join(col.Options, ", "))
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, invalid(col, "not a number")
		}
		return Value{Stored: n}, nil

	case types.ForeignKeyChoice:
		token, _, _ := strings.Cut(text, types.ChoiceSeparator)
		token = strings.TrimSpace(token)
		if token == "" {
			return Value{}, nil
		}
		if n, err := strconv.ParseInt(token, 10, 64); err == nil {
			return Value{Stored: n}, nil
		}
		return Value{Stored: token}, nil

	default:
		if blank {
			return Value{}, nil
		}
		return Value{Stored: raw}, nil
	}
}

// Default returns the initial presentation value of a field in add mode:
// true for boolean flags and empty text for everything else.
func Default(col types.ColumnSpec) any {
	if col.Kind == types.BooleanFlag {
		return true
	}
	return ""
}

// CheckRequired reports a ValidationError when column is required by s and
// stored is nil or empty text.
func CheckRequired(s *types.EntitySchema, column string, stored any) error {
	if !s.IsRequired(column) {
		return nil
	}
	if stored == nil {
		return &types.ValidationError{Column: column, Reason: "is required"}
	}
	if str, ok := stored.(string); ok && strings.TrimSpace(str) == "" {
		return &types.ValidationError{Column: column, Reason: "is required"}
	}
	return nil
}

// FormatCell returns the text of a presentation value as a grid cell or
// form field shows it.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func invalid(col types.ColumnSpec, reason string) error {
	return &types.ValidationError{Column: col.Name, Reason: reason}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		b, err := parseBool(x)
		return err == nil && b
	default:
		return false
	}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "", "0", "false", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("%q is not yes or no", s)
}
