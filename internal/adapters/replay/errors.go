package replay

import "errors"

// ErrParse marks metadata extraction failures. Non-fatal to a batch: the
// affected replay gets no suggestion and the rest proceed.
var ErrParse = errors.New("replay parse failed")
