package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one row snapshot, positionally aligned to its schema's column
// order. Values are int64, float64, string or nil. A Record is never a live
// reference; it is re-fetched for every view.
type Record []any

// Key holds the primary-key values of one row, aligned to
// EntitySchema.PrimaryKey.
type Key []any

// keySeparator joins the parts of a composite key in its text form.
const keySeparator = ","

// String renders the key as it is typed on the command line ("3" or "3,7").
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, v := range k {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, keySeparator)
}

// Equal compares two keys by their text form, so an int64 read from the
// store matches the same value parsed from user input.
func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.String() == other.String()
}

// ParseKey parses the text form of a key. Integer parts become int64; other
// parts stay strings. The number of parts must match the schema's key.
func ParseKey(s *EntitySchema, text string) (Key, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidKey
	}
	parts := strings.Split(text, keySeparator)
	if len(parts) != len(s.PrimaryKey) {
		return nil, fmt.Errorf("%s key needs %d part(s) (%s): %w",
			s.Table, len(s.PrimaryKey), strings.Join(s.PrimaryKey, keySeparator), ErrInvalidKey)
	}
	key := make(Key, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, ErrInvalidKey
		}
		if n, err := strconv.ParseInt(p, 10, 64); err == nil {
			key[i] = n
		} else {
			key[i] = p
		}
	}
	return key, nil
}

// ColumnValue is one column/value pair of a write.
type ColumnValue struct {
	Column string
	Value  any
}

// ChoiceSeparator separates the key from the label in a rendered choice.
const ChoiceSeparator = " - "

// Choice is one selectable option of a foreign_key_choice column.
type Choice struct {
	Key   any
	Label string
}

// String renders the choice the way the selector shows it: "{id} - {label}".
func (c Choice) String() string {
	return fmt.Sprint(c.Key) + ChoiceSeparator + c.Label
}
