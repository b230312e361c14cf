package cache

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrMiss = errors.New("cache miss")

// TranslationCache remembers the local id an object GUID resolved to.
type TranslationCache interface {
	// GetLocalID gets the local id of an object from the cache. It returns
	// ErrMiss when the object is not cached.
	GetLocalID(ctx context.Context, objectType string, guid uuid.UUID) (int, error)
	// SetLocalID caches the local id of an object.
	SetLocalID(ctx context.Context, objectType string, guid uuid.UUID, id int) error
	// Forget removes an object from the cache.
	Forget(ctx context.Context, objectType string, guid uuid.UUID) error
}
