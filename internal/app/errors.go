package app

import "errors"

// Sentinel error kinds for this package. The HTTP layer maps these, together
// with the repository and blobstore sentinels, to status codes.
var (
	ErrValidation = errors.New("validation failed")
	ErrBusy       = errors.New("service busy")
)
