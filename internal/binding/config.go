package binding

import "github.com/emrgen/relstage/internal/model"

// Config describes how a binding travels inside a task payload.
type Config struct {
	// ObjectType is the staging object type of one binding row.
	ObjectType string
	// Table is the payload table holding the binding rows.
	Table string
	// OwnerColumn and TargetColumn hold the origin server's ids.
	OwnerColumn  string
	TargetColumn string
	// OwnerObjectType and TargetObjectType key identifier translation.
	OwnerObjectType  string
	TargetObjectType string
	// OwnerGUIDColumn is read from the first row of the primary table.
	OwnerGUIDColumn string
}

// NodeCategory is the node to category binding.
var NodeCategory = Config{
	ObjectType:       model.ObjectTypeTreeCategory,
	Table:            "CMS_TreeCategory",
	OwnerColumn:      "NodeID",
	TargetColumn:     "CategoryID",
	OwnerObjectType:  model.ObjectTypeNode,
	TargetObjectType: model.ObjectTypeCategory,
	OwnerGUIDColumn:  "NodeGUID",
}
