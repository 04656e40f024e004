package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"planboard/internal/models"
)

// Config holds the connection parameters read from the environment.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func Connect(cfg Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s search_path=public",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// the users table belongs to the account service; only owned tables migrate here
	if err := db.AutoMigrate(&models.Plan{}, &models.Submission{}, &models.UpdateHistory{}); err != nil {
		return nil, err
	}
	return db, nil
}
