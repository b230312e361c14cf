package suppress

import "errors"

var (
	ErrNoDocument = errors.New("task does not reference a document")
)
