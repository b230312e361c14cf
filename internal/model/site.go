package model

// Site is one site hosted by the platform. StagingEnabled mirrors the
// per-site "log staging changes" setting.
type Site struct {
	ID             int    `gorm:"primaryKey;autoIncrement"`
	Name           string `gorm:"uniqueIndex;not null"`
	DisplayName    string
	StagingEnabled bool `gorm:"not null;default:false"`
}

func (Site) TableName() string {
	return "sites"
}
