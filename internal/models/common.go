package models

import "time"

// AuditFields holds standard audit columns shared by persisted models.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}
