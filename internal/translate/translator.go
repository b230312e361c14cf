// Package translate maps object ids used by another server onto the ids of
// the same objects on this server.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/emrgen/relstage/internal/cache"
	"github.com/emrgen/relstage/internal/model"
	"github.com/emrgen/relstage/internal/payload"
	"github.com/emrgen/relstage/internal/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Translator resolves the local id of an object referenced by a payload.
type Translator interface {
	// TranslateID returns the local id of the objectType object known as id
	// on the server that produced data. It returns 0 when the object has no
	// local copy.
	TranslateID(ctx context.Context, id int, data *payload.DataSet, objectType string) (int, error)
}

var _ Translator = (*GUIDTranslator)(nil)

// GUIDTranslator translates through the GUIDs recorded in the payload's
// translation table.
type GUIDTranslator struct {
	store store.NodeStore
	cache cache.TranslationCache
}

func NewGUIDTranslator(s store.NodeStore, c cache.TranslationCache) *GUIDTranslator {
	if c == nil {
		c = cache.NewMemoryTranslationCache()
	}
	return &GUIDTranslator{store: s, cache: c}
}

func (g *GUIDTranslator) TranslateID(ctx context.Context, id int, data *payload.DataSet, objectType string) (int, error) {
	if id <= 0 {
		return 0, nil
	}

	objectType = strings.ToLower(objectType)
	guid, ok := data.TranslationGUID(objectType, id)
	if !ok {
		return 0, nil
	}

	return g.LocalID(ctx, objectType, guid)
}

// LocalID returns the id of the local objectType object with guid, or 0 when
// there is none.
func (g *GUIDTranslator) LocalID(ctx context.Context, objectType string, guid uuid.UUID) (int, error) {
	cached, err := g.cache.GetLocalID(ctx, objectType, guid)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logrus.Warnf("translate: cache lookup %s %s: %v", objectType, guid, err)
	}

	id, err := g.lookup(ctx, objectType, guid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	if err := g.cache.SetLocalID(ctx, objectType, guid, id); err != nil {
		logrus.Warnf("translate: cache store %s %s: %v", objectType, guid, err)
	}

	return id, nil
}

func (g *GUIDTranslator) lookup(ctx context.Context, objectType string, guid uuid.UUID) (int, error) {
	switch objectType {
	case model.ObjectTypeNode:
		node, err := g.store.GetNodeByGUID(ctx, guid)
		if err != nil {
			return 0, err
		}
		return node.ID, nil
	case model.ObjectTypeCategory:
		category, err := g.store.GetCategoryByGUID(ctx, guid)
		if err != nil {
			return 0, err
		}
		return category.ID, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedObjectType, objectType)
	}
}
