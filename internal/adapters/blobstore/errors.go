package blobstore

import "errors"

// Sentinel error kinds for this package.
var (
	ErrBadDir        = errors.New("blob directory unusable")
	ErrInvalidDigest = errors.New("invalid digest")
	ErrNotFound      = errors.New("blob not found")
	ErrWrite         = errors.New("blob write failed")
	ErrRead          = errors.New("blob read failed")
)
