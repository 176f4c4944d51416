package sqlite

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

// ExportJSONL writes every row of the table to path, one JSON object per
// line keyed by column name, in primary-key order. The file is replaced
// atomically. Returns the number of rows written.
func (b *Backend) ExportJSONL(ctx context.Context, s *types.EntitySchema, path string) (int, error) {
	rows, err := b.List(ctx, s)
	if err != nil {
		return 0, err
	}
	cols := s.ColumnNames()
	records := make([]json.RawMessage, 0, len(rows))
	for _, r := range rows {
		obj := make(map[string]any, len(cols))
		for i, c := range cols {
			obj[c] = r[i]
		}
		data, err := json.Marshal(obj)
		if err != nil {
			return 0, fmt.Errorf("marshaling %s row: %w", s.Table, err)
		}
		records = append(records, data)
	}
	if err := writeJSONL(path, records); err != nil {
		return 0, err
	}
	b.log.InfoContext(ctx, "export", "table", s.Table, "rows", len(records), "path", path)
	return len(records), nil
}

// ImportJSONL inserts the rows of a JSON Lines file into the table inside a
// single transaction. Only declared columns are read; unknown fields are
// ignored. Malformed lines and rows the engine rejects are skipped and
// counted. Foreign keys stay enforced.
func (b *Backend) ImportJSONL(ctx context.Context, s *types.EntitySchema, path string) (imported, skipped int, err error) {
	records, err := readJSONL(path)
	if err != nil {
		return 0, 0, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	db, err := b.conn()
	if err != nil {
		return 0, 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, classify("import "+s.Table, err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		dec := json.NewDecoder(bytes.NewReader(rec))
		dec.UseNumber()
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil || obj == nil {
			skipped++
			continue
		}

		var cols []string
		var args []any
		for _, c := range s.ColumnNames() {
			v, ok := obj[c]
			if !ok {
				continue
			}
			cols = append(cols, c)
			args = append(args, jsonScalar(v))
		}
		if len(cols) == 0 {
			skipped++
			continue
		}
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteIdent(s.Table), columnList(cols), placeholders(len(cols)))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isConstraint(err) {
				skipped++
				continue
			}
			return 0, 0, classify("import "+s.Table, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, classify("import "+s.Table, err)
	}
	b.log.InfoContext(ctx, "import", "table", s.Table, "rows", imported, "skipped", skipped, "path", path)
	return imported, skipped, nil
}

// jsonScalar converts a decoded JSON value to a bindable scalar. Integral
// numbers become int64; nested values are re-encoded as text.
func jsonScalar(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		f, _ := x.Float64()
		return f
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case map[string]any, []any:
		data, err := json.Marshal(x)
		if err != nil {
			return nil
		}
		return string(data)
	default:
		return v
	}
}

// readJSONL reads a JSONL file and returns each non-empty line as a
// json.RawMessage. Lines that are not valid JSON are kept so the caller can
// count them as skipped.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail(fmt.Errorf("writing record: %w", err))
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail(fmt.Errorf("writing newline: %w", err))
		}
	}
	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("flushing buffer: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
