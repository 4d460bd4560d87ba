package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrInvalidRace         = errors.New("invalid race")
	ErrInvalidWinner       = errors.New("invalid winner")
	ErrInvalidKey          = errors.New("invalid set identity")
	ErrInvalidScheduledSet = errors.New("invalid scheduled set")
	ErrInvalidMetadata     = errors.New("invalid replay metadata")
	ErrInvalidAcePairing   = errors.New("invalid ace pairing")
	ErrInvalidLineup       = errors.New("invalid lineup")
)
