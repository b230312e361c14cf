// Package host stands in for the content platform: it persists objects and
// raises their lifecycle events, and it runs a minimal staging engine for
// documents and generic objects.
package host

import (
	"context"

	"github.com/emrgen/relstage/internal/events"
	"github.com/emrgen/relstage/internal/model"
	"github.com/emrgen/relstage/internal/store"
)

// Objects writes objects through the store and publishes their events.
type Objects struct {
	store store.Store
	bus   *events.Bus
}

func NewObjects(s store.Store, bus *events.Bus) *Objects {
	return &Objects{store: s, bus: bus}
}

func (o *Objects) publish(ctx context.Context, kind events.EntityKind, phase events.Phase, object any) {
	o.bus.Publish(ctx, &events.Event{Kind: kind, Phase: phase, Object: object})
}

func (o *Objects) CreateRelationshipName(ctx context.Context, name *model.RelationshipName) error {
	if err := o.store.CreateRelationshipName(ctx, name); err != nil {
		return err
	}
	o.publish(ctx, events.RelationshipName, events.AfterInsert, name)
	return nil
}

func (o *Objects) UpdateRelationshipName(ctx context.Context, name *model.RelationshipName) error {
	if err := o.store.UpdateRelationshipName(ctx, name); err != nil {
		return err
	}
	o.publish(ctx, events.RelationshipName, events.AfterUpdate, name)
	return nil
}

func (o *Objects) DeleteRelationshipName(ctx context.Context, name *model.RelationshipName) error {
	if err := o.store.DeleteRelationshipName(ctx, name.ID); err != nil {
		return err
	}
	o.publish(ctx, events.RelationshipName, events.AfterDelete, name)
	return nil
}

func (o *Objects) AddRelationshipNameToSite(ctx context.Context, assoc *model.RelationshipNameSite) error {
	if err := o.store.AddRelationshipNameToSite(ctx, assoc); err != nil {
		return err
	}
	o.publish(ctx, events.RelationshipNameSite, events.AfterInsert, assoc)
	return nil
}

func (o *Objects) RemoveRelationshipNameFromSite(ctx context.Context, assoc *model.RelationshipNameSite) error {
	if err := o.store.RemoveRelationshipNameFromSite(ctx, assoc); err != nil {
		return err
	}
	o.publish(ctx, events.RelationshipNameSite, events.AfterDelete, assoc)
	return nil
}

func (o *Objects) CreateRelationship(ctx context.Context, rel *model.Relationship) error {
	if err := o.store.CreateRelationship(ctx, rel); err != nil {
		return err
	}
	o.publish(ctx, events.Relationship, events.AfterInsert, rel)
	return nil
}

func (o *Objects) DeleteRelationship(ctx context.Context, rel *model.Relationship) error {
	if err := o.store.DeleteRelationship(ctx, rel.ID); err != nil {
		return err
	}
	o.publish(ctx, events.Relationship, events.AfterDelete, rel)
	return nil
}

func (o *Objects) AddNodeToCategory(ctx context.Context, nodeID, categoryID int) error {
	if err := o.store.AddNodeToCategory(ctx, nodeID, categoryID); err != nil {
		return err
	}
	o.publish(ctx, events.TreeCategory, events.AfterInsert, &model.TreeCategory{NodeID: nodeID, CategoryID: categoryID})
	return nil
}

func (o *Objects) RemoveNodeFromCategory(ctx context.Context, nodeID, categoryID int) error {
	if err := o.store.RemoveNodeFromCategory(ctx, nodeID, categoryID); err != nil {
		return err
	}
	o.publish(ctx, events.TreeCategory, events.AfterDelete, &model.TreeCategory{NodeID: nodeID, CategoryID: categoryID})
	return nil
}
