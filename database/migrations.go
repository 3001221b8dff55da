package database

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"blogicum/models"
)

// Order matters: referenced tables first.
var schema = []any{
	&models.User{},
	&models.Location{},
	&models.Category{},
	&models.Post{},
	&models.Comment{},
}

func RunMigrations(db *gorm.DB) error {
	log.Info().Msg("running database migrations")

	if err := db.AutoMigrate(schema...); err != nil {
		log.Error().Err(err).Msg("migrations failed")
		return err
	}

	log.Info().Msg("migrations completed")
	return nil
}
