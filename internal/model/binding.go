package model

// TreeCategory binds a node (owner) to a category (target).
type TreeCategory struct {
	NodeID     int       `gorm:"primaryKey;autoIncrement:false"`
	CategoryID int       `gorm:"primaryKey;autoIncrement:false;index"`
	Node       *Node     `gorm:"foreignKey:NodeID;constraint:OnDelete:CASCADE"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

func (TreeCategory) TableName() string {
	return "tree_categories"
}
