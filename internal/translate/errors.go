package translate

import "errors"

var (
	ErrUnsupportedObjectType = errors.New("object type cannot be translated")
)
