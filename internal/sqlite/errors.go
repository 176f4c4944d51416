package sqlite

import (
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

// classify maps a driver error onto the store's error kinds. Engine-reported
// constraint failures become *types.ConstraintError carrying the engine's
// message; everything else wraps ErrStorage.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrDetached) {
		return err
	}
	if isConstraint(err) {
		return &types.ConstraintError{Message: engineMessage(err)}
	}
	return fmt.Errorf("%s: %w: %v", op, types.ErrStorage, err)
}

func isConstraint(err error) bool {
	var se *msqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return strings.Contains(err.Error(), "constraint failed")
}

// engineMessage strips the driver's code suffix and generic prefix, leaving
// text such as "UNIQUE constraint failed: users.username".
func engineMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, " ("); i > 0 && strings.HasSuffix(msg, ")") {
		msg = msg[:i]
	}
	if rest, ok := strings.CutPrefix(msg, "constraint failed: "); ok && strings.Contains(rest, "constraint failed") {
		msg = rest
	}
	return msg
}
