package model

import "gorm.io/gorm"

// Migrate creates or updates every table the staging module reads or writes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Site{}, &Node{}, &Category{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&RelationshipName{}, &RelationshipNameSite{}, &Relationship{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&TreeCategory{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&Server{}, &StagingTask{}, &Synchronization{}, &TaskGroup{}, &TaskGroupTask{}); err != nil {
		return err
	}

	return db.AutoMigrate(&EventLogEntry{})
}
