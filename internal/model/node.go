package model

import "github.com/google/uuid"

// Node is a content tree node. Every node is owned by exactly one document,
// and document level changes are what the staging engine ships.
type Node struct {
	ID         int       `gorm:"primaryKey;autoIncrement"`
	GUID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	SiteID     int       `gorm:"index;not null"`
	SiteName   string    `gorm:"not null"`
	AliasPath  string    `gorm:"not null"`
	DocumentID int       `gorm:"index"`
}

func (Node) TableName() string {
	return "nodes"
}

// Category is the target side of the node-category binding.
type Category struct {
	ID          int       `gorm:"primaryKey;autoIncrement"`
	GUID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Name        string    `gorm:"not null"`
	DisplayName string
}

func (Category) TableName() string {
	return "categories"
}
