package match

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidWeek    = errors.New("invalid target week")
	ErrListCandidates = errors.New("list candidates failed")
)
