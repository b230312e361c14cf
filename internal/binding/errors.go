package binding

import "errors"

var (
	ErrMissingOwnerColumn = errors.New("primary table has no owner guid column")
	ErrOwnerNotFound      = errors.New("binding owner not found")
)
