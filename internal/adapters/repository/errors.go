package repository

import "errors"

// Sentinel error kinds for this package. Callers branch on these with
// errors.Is; the HTTP layer maps them to status codes.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already recorded")
	ErrStore    = errors.New("store operation failed")
	ErrConnect  = errors.New("store connection failed")
	ErrMigrate  = errors.New("migration failed")
)
