package module

import "errors"

var (
	ErrUnexpectedObject = errors.New("unexpected event object")
)
