package catalog

import "errors"

// errInvalidCandidate marks candidates rejected before any store access.
var errInvalidCandidate = errors.New("invalid candidate")

// IsInvalidCandidate reports whether err is a candidate-validation failure
// rather than a store failure.
func IsInvalidCandidate(err error) bool {
	return errors.Is(err, errInvalidCandidate)
}
