package migration

import (
	"fmt"

	"github.com/damoang/angple-wiki/internal/domain"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, in dependency order
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Page{},
		&domain.PageRevision{},
		&domain.PendingPageEdit{},
		&domain.PageRejection{},
		&domain.Invitation{},
		&domain.SystemSetting{},
	}
}

// Run executes AutoMigrate and creates the indexes gorm tags cannot express
func Run(db *gorm.DB) error {
	// 1. AutoMigrate creates missing tables and columns
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// 2. Dialect specific indexes
	for _, stmt := range indexStatements(db.Dialector.Name()) {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// indexStatements returns the extra DDL for dialect. MySQL has no partial
// indexes; there the page row lock alone keeps one pending edit per editor.
func indexStatements(dialect string) []string {
	onePending := `CREATE UNIQUE INDEX IF NOT EXISTS idx_pending_edits_one_pending
		ON pending_page_edits (page_id, editor_id) WHERE status = 'pending'`

	switch dialect {
	case "postgres":
		return []string{
			onePending,
			`CREATE INDEX IF NOT EXISTS idx_pages_search
				ON pages USING gin(to_tsvector('english', title || ' ' || content))`,
		}
	case "sqlite":
		return []string{onePending}
	default:
		return nil
	}
}
