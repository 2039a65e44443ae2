package dao

import (
	"fmt"

	"gorm.io/gorm"
)

var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + idxMedalsPodium + ` ON medals (event_id, medal_type)
		WHERE medal_type IN ('GOLD', 'SILVER', 'BRONZE')`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + idxMedalsNoEntry + ` ON medals (event_id, team_id)
		WHERE medal_type = 'NO_ENTRY'`,
}

// InitTables migrates every table and creates the partial unique indexes gorm
// tags cannot express.
func InitTables(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Category{},
		&Team{},
		&Event{},
		&Medal{},
		&ScoreSettings{},
	); err != nil {
		return fmt.Errorf("db.AutoMigrate -> %w", err)
	}

	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("db.Exec -> %w", err)
		}
	}

	return nil
}

// dropAllTables is used by the integration tests to start from a clean schema.
func dropAllTables(db *gorm.DB) error {
	var tableNames []string
	if err := db.Table("information_schema.tables").
		Where("table_schema = ?", "public").
		Pluck("table_name", &tableNames).Error; err != nil {
		return err
	}

	for _, tableName := range tableNames {
		if err := db.Exec(`DROP TABLE IF EXISTS "` + tableName + `" CASCADE`).Error; err != nil {
			return err
		}
	}

	return nil
}
