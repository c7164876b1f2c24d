package database

import (
	"fmt"

	"github.com/martijnhiemstra/selfsuffient/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.PasswordReset{},
		&models.Project{},
		&models.ProjectView{},
		&models.DiaryEntry{},
		&models.GalleryFolder{},
		&models.GalleryImage{},
		&models.BlogEntry{},
		&models.BlogImage{},
		&models.LibraryFolder{},
		&models.LibraryEntry{},
		&models.Task{},
		&models.RoutineTask{},
		&models.RoutineCompletion{},
		&models.Checklist{},
		&models.ChecklistItem{},
		&models.FinanceAccount{},
		&models.FinanceCategory{},
		&models.FinanceTransaction{},
		&models.FinanceRecurring{},
		&models.FinanceSavingsGoal{},
		&models.ExpensePeriod{},
		&models.ExpectedItem{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
