package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Samsoniteyd/newtailor/internal/models"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Requisition{},
		&models.RequisitionNote{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
