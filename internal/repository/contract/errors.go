package contract

import "errors"

// ErrNoRowsAffected is returned by scoped writes that matched nothing,
// either because the row is gone or because it belongs to someone else.
var ErrNoRowsAffected = errors.New("no rows affected")

// ErrDuplicate is returned when a write collides with a unique index.
var ErrDuplicate = errors.New("duplicate key")
