package pkg

import (
	"fmt"

	"github.com/SAP-F-2025/quiz-engine/internal/config"
	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Info
	if cfg.IsProduction() {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the quiz engine tables.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Quiz{},
		&models.Question{},
		&models.Choice{},
		&models.Blank{},
		&models.MatchPair{},
		&models.DragToken{},
		&models.NumericKey{},
		&models.TextKey{},
		&models.MatrixRow{},
		&models.MatrixColumn{},
		&models.MatrixCell{},
		&models.OrderingItem{},
		&models.Session{},
		&models.Response{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
