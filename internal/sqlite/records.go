package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

// timestampLayout is the text form of DATETIME values, matching what
// CURRENT_TIMESTAMP stores.
const timestampLayout = "2006-01-02 15:04:05"

// List returns every row of the table in declared column order, ordered by
// primary key.
func (b *Backend) List(ctx context.Context, s *types.EntitySchema) ([]types.Record, error) {
	return b.ListColumns(ctx, s, s.ColumnNames())
}

// ListColumns returns every row projected onto columns, ordered by primary
// key. Every column must be declared by the schema.
func (b *Backend) ListColumns(ctx context.Context, s *types.EntitySchema, columns []string) ([]types.Record, error) {
	if err := checkColumns(s, columns); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		columnList(columns), quoteIdent(s.Table), columnList(s.PrimaryKey))
	b.log.DebugContext(ctx, "list", "table", s.Table)
	return b.query(ctx, "list "+s.Table, query)
}

// Search returns rows where any searchable column contains term, ordered by
// primary key. Matching is a case-insensitive substring match; the
// characters % and _ in term match literally. An empty term is equivalent
// to List. Returns ErrNotSearchable for a non-empty term on a table with no
// searchable columns.
func (b *Backend) Search(ctx context.Context, s *types.EntitySchema, term string) ([]types.Record, error) {
	if term == "" {
		return b.List(ctx, s)
	}
	if len(s.Searchable) == 0 {
		return nil, fmt.Errorf("%s: %w", s.Table, types.ErrNotSearchable)
	}
	if err := checkColumns(s, s.Searchable); err != nil {
		return nil, err
	}

	pattern := "%" + escapeLike(term) + "%"
	conds := make([]string, len(s.Searchable))
	args := make([]any, len(s.Searchable))
	for i, col := range s.Searchable {
		conds[i] = quoteIdent(col) + ` LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s",
		columnList(s.ColumnNames()), quoteIdent(s.Table),
		strings.Join(conds, " OR "), columnList(s.PrimaryKey))
	b.log.DebugContext(ctx, "search", "table", s.Table, "columns", len(s.Searchable))
	return b.query(ctx, "search "+s.Table, query, args...)
}

// FetchOne returns the row with the given key in declared column order.
// Returns ErrNotFound if no row matches.
func (b *Backend) FetchOne(ctx context.Context, s *types.EntitySchema, key types.Key) (types.Record, error) {
	where, args, err := keyClause(s, key)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s",
		columnList(s.ColumnNames()), quoteIdent(s.Table), where)
	b.log.DebugContext(ctx, "fetch", "table", s.Table, "key", key.String())
	rows, err := b.query(ctx, "fetch "+s.Table, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s %s: %w", s.Table, key, types.ErrNotFound)
	}
	return rows[0], nil
}

// Insert writes a new row and returns its key. Columns absent from values
// take their declared defaults. For a single-column key not supplied in
// values, the key is the row id assigned by the engine.
func (b *Backend) Insert(ctx context.Context, s *types.EntitySchema, values []types.ColumnValue) (types.Key, error) {
	cols := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		cols[i] = v.Column
		args[i] = v.Value
	}
	if len(cols) > 0 {
		if err := checkColumns(s, cols); err != nil {
			return nil, err
		}
	}

	var query string
	if len(values) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", quoteIdent(s.Table))
	} else {
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteIdent(s.Table), columnList(cols), placeholders(len(cols)))
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	db, err := b.conn()
	if err != nil {
		return nil, err
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		b.log.WarnContext(ctx, "insert rejected", "table", s.Table, "error", err)
		return nil, classify("insert "+s.Table, err)
	}

	key, ok := keyFromValues(s, values)
	if !ok {
		if len(s.PrimaryKey) != 1 {
			return nil, fmt.Errorf("insert %s: key columns not supplied: %w", s.Table, types.ErrInvalidKey)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, classify("insert "+s.Table, err)
		}
		key = types.Key{id}
	}
	b.log.InfoContext(ctx, "insert", "table", s.Table, "key", key.String())
	return key, nil
}

// Update rewrites the given columns of one row. An empty value set only
// checks that the row exists.
// Returns ErrNotFound if no row matches.
func (b *Backend) Update(ctx context.Context, s *types.EntitySchema, key types.Key, values []types.ColumnValue) error {
	if len(values) == 0 {
		_, err := b.FetchOne(ctx, s, key)
		return err
	}
	where, keyArgs, err := keyClause(s, key)
	if err != nil {
		return err
	}
	sets := make([]string, len(values))
	args := make([]any, 0, len(values)+len(keyArgs))
	for i, v := range values {
		if _, ok := s.Column(v.Column); !ok {
			return fmt.Errorf("%s.%s: %w", s.Table, v.Column, types.ErrUnknownColumn)
		}
		sets[i] = quoteIdent(v.Column) + " = ?"
		args = append(args, v.Value)
	}
	args = append(args, keyArgs...)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		quoteIdent(s.Table), strings.Join(sets, ", "), where)

	if err := b.execOne(ctx, "update "+s.Table, query, args...); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return fmt.Errorf("%s %s: %w", s.Table, key, err)
		}
		b.log.WarnContext(ctx, "update rejected", "table", s.Table, "key", key.String(), "error", err)
		return err
	}
	b.log.InfoContext(ctx, "update", "table", s.Table, "key", key.String(), "columns", len(values))
	return nil
}

// Delete removes one row. Dependent rows are removed or detached by the
// foreign-key actions declared in the schema.
// Returns ErrNotFound if no row matches.
func (b *Backend) Delete(ctx context.Context, s *types.EntitySchema, key types.Key) error {
	where, args, err := keyClause(s, key)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", quoteIdent(s.Table), where)
	if err := b.execOne(ctx, "delete "+s.Table, query, args...); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return fmt.Errorf("%s %s: %w", s.Table, key, err)
		}
		b.log.WarnContext(ctx, "delete rejected", "table", s.Table, "key", key.String(), "error", err)
		return err
	}
	b.log.InfoContext(ctx, "delete", "table", s.Table, "key", key.String())
	return nil
}

// LookupLabel returns the label column of the row ref points at. A NULL
// label is returned as "".
// Returns ErrNotFound if the reference dangles.
func (b *Backend) LookupLabel(ctx context.Context, ref types.ForeignRef, key any) (string, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		quoteIdent(ref.LabelColumn), quoteIdent(ref.Table), quoteIdent(ref.Column))
	rows, err := b.query(ctx, "label "+ref.Table, query, key)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("%s %v: %w", ref.Table, key, types.ErrNotFound)
	}
	if rows[0][0] == nil {
		return "", nil
	}
	return fmt.Sprint(rows[0][0]), nil
}

// Choices returns every row of the referenced table as key/label pairs,
// ordered by key.
func (b *Backend) Choices(ctx context.Context, ref types.ForeignRef) ([]types.Choice, error) {
	query := fmt.Sprintf("SELECT %s, %s FROM %s ORDER BY %s",
		quoteIdent(ref.Column), quoteIdent(ref.LabelColumn), quoteIdent(ref.Table), quoteIdent(ref.Column))
	b.log.DebugContext(ctx, "choices", "table", ref.Table)
	rows, err := b.query(ctx, "choices "+ref.Table, query)
	if err != nil {
		return nil, err
	}
	out := make([]types.Choice, len(rows))
	for i, r := range rows {
		label := ""
		if r[1] != nil {
			label = fmt.Sprint(r[1])
		}
		out[i] = types.Choice{Key: r[0], Label: label}
	}
	return out, nil
}

// query runs a SELECT and materialises every row.
func (b *Backend) query(ctx context.Context, op, query string, args ...any) ([]types.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	db, err := b.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, classify(op, err)
	}
	var out []types.Record
	for rows.Next() {
		dest := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, classify(op, err)
		}
		for i, v := range dest {
			dest[i] = normalize(v)
		}
		out = append(out, types.Record(dest))
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}

// execOne runs a statement that must touch exactly one row.
func (b *Backend) execOne(ctx context.Context, op, query string, args ...any) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	db, err := b.conn()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(op, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// normalize maps driver values onto the Record value set: int64, float64,
// string or nil.
func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case time.Time:
		return x.UTC().Format(timestampLayout)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}

// keyClause builds "a = ? AND b = ?" for the schema's key.
func keyClause(s *types.EntitySchema, key types.Key) (string, []any, error) {
	if len(key) != len(s.PrimaryKey) {
		return "", nil, fmt.Errorf("%s: got %d key part(s), want %d: %w",
			s.Table, len(key), len(s.PrimaryKey), types.ErrInvalidKey)
	}
	conds := make([]string, len(key))
	for i, col := range s.PrimaryKey {
		conds[i] = quoteIdent(col) + " = ?"
	}
	return strings.Join(conds, " AND "), []any(key), nil
}

// keyFromValues assembles the key from the written values when every key
// column was supplied.
func keyFromValues(s *types.EntitySchema, values []types.ColumnValue) (types.Key, bool) {
	key := make(types.Key, len(s.PrimaryKey))
	for i, col := range s.PrimaryKey {
		found := false
		for _, v := range values {
			if v.Column == col && v.Value != nil {
				key[i] = v.Value
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return key, true
}

func checkColumns(s *types.EntitySchema, columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("%s: no columns: %w", s.Table, types.ErrUnknownColumn)
	}
	for _, c := range columns {
		if s.ColumnIndex(c) < 0 {
			return fmt.Errorf("%s.%s: %w", s.Table, c, types.ErrUnknownColumn)
		}
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func columnList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// escapeLike escapes the LIKE metacharacters of term for ESCAPE '\'.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}
