package model

import "github.com/google/uuid"

// RelationshipName is a named relationship kind. Ad-hoc names generated by
// the platform for page type fields carry a GUID after the first underscore
// of their code name.
type RelationshipName struct {
	ID          int       `gorm:"primaryKey;autoIncrement"`
	GUID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Name        string    `gorm:"uniqueIndex;not null"`
	DisplayName string    `gorm:"not null"`
	IsAdHoc     bool      `gorm:"not null;default:false"`
}

func (RelationshipName) TableName() string {
	return "relationship_names"
}

// RelationshipNameSite binds a relationship name to a site.
type RelationshipNameSite struct {
	RelationshipNameID int `gorm:"primaryKey;autoIncrement:false"`
	SiteID             int `gorm:"primaryKey;autoIncrement:false"`
}

func (RelationshipNameSite) TableName() string {
	return "relationship_name_sites"
}

// Relationship is one instance of a relationship name between a left and a
// right node.
type Relationship struct {
	ID                 int `gorm:"primaryKey;autoIncrement"`
	RelationshipNameID int `gorm:"index;not null"`
	LeftNodeID         int `gorm:"index;not null"`
	RightNodeID        int `gorm:"not null"`
}

func (Relationship) TableName() string {
	return "relationships"
}
