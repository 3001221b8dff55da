package repository

import (
	"context"

	"gorm.io/gorm"

	"blogicum/models"
)

type LocationRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Location, error)
	List(ctx context.Context) ([]models.Location, error)
	Create(ctx context.Context, location *models.Location) error
	SetPublished(ctx context.Context, id uint, published bool) error
	Delete(ctx context.Context, id uint) error
}

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) LocationRepository { return &locationRepository{db: db} }

func (r *locationRepository) GetByID(ctx context.Context, id uint) (*models.Location, error) {
	var location models.Location
	if err := r.db.WithContext(ctx).First(&location, id).Error; err != nil {
		return nil, translate(err)
	}
	return &location, nil
}

func (r *locationRepository) List(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	err := r.db.WithContext(ctx).Order("name").Find(&locations).Error
	return locations, err
}

func (r *locationRepository) Create(ctx context.Context, location *models.Location) error {
	return translate(r.db.WithContext(ctx).Create(location).Error)
}

func (r *locationRepository) SetPublished(ctx context.Context, id uint, published bool) error {
	return setPublished(r.db.WithContext(ctx), &models.Location{}, id, published)
}

// Delete keeps the location's posts and clears their location.
func (r *locationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).
			Where("location_id = ?", id).
			Update("location_id", nil).Error; err != nil {
			return err
		}
		return deleteByID(tx, &models.Location{}, id)
	})
}
