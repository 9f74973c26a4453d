package database

import (
	"fmt"

	"gorm.io/gorm"
)

// RunMigrations creates the indexes AutoMigrate does not know about
func RunMigrations(db *gorm.DB) error {
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func createIndexes(db *gorm.DB) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_case_records_search
		ON case_records(case_type, case_number, filing_year)`,
		`CREATE INDEX IF NOT EXISTS idx_query_logs_time
		ON query_logs(query_time)`,
		`CREATE INDEX IF NOT EXISTS idx_case_documents_record
		ON case_documents(case_record_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_timeline_events_record
		ON timeline_events(case_record_id, position)`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
