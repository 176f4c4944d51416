package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	single := &EntitySchema{Table: "users", PrimaryKey: []string{"user_id"}}
	pair := &EntitySchema{Table: "product_tags", PrimaryKey: []string{"product_id", "tag_id"}}

	tests := []struct {
		name    string
		schema  *EntitySchema
		text    string
		want    Key
		wantErr bool
	}{
		{name: "integer key", schema: single, text: "42", want: Key{int64(42)}},
		{name: "surrounding space", schema: single, text: " 7 ", want: Key{int64(7)}},
		{name: "text key", schema: single, text: "abc", want: Key{"abc"}},
		{name: "composite key", schema: pair, text: "3,5", want: Key{int64(3), int64(5)}},
		{name: "composite key with spaces", schema: pair, text: "3, 5", want: Key{int64(3), int64(5)}},
		{name: "empty text", schema: single, text: "", wantErr: true},
		{name: "too many parts", schema: single, text: "1,2", wantErr: true},
		{name: "too few parts", schema: pair, text: "1", wantErr: true},
		{name: "empty part", schema: pair, text: "1,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKey(tt.schema, tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyEqual(t *testing.T) {
	assert.True(t, Key{int64(3)}.Equal(Key{int64(3)}))
	assert.True(t, Key{int64(3)}.Equal(Key{"3"}))
	assert.False(t, Key{int64(3)}.Equal(Key{int64(4)}))
	assert.False(t, Key{int64(3)}.Equal(Key{int64(3), int64(1)}))
	assert.Equal(t, "3,5", Key{int64(3), int64(5)}.String())
}

func TestChoiceString(t *testing.T) {
	assert.Equal(t, "3 - Electronics", Choice{Key: int64(3), Label: "Electronics"}.String())
}

func TestErrorTypes(t *testing.T) {
	var err error = &ValidationError{Column: "email", Reason: "is required"}
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "field email: is required", err.Error())

	err = &ConstraintError{Message: "UNIQUE constraint failed: users.email"}
	assert.ErrorIs(t, err, ErrConstraintViolation)
	assert.Contains(t, err.Error(), "users.email")
}
