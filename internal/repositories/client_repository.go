package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/foodcatalog/internal/models"
)

// ClientRepository reads client profiles.
type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// List returns one page of clients, newest first, with their user accounts.
func (r *ClientRepository) List(ctx context.Context, offset, limit int) ([]models.Client, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Client{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []models.Client
	if err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at desc").
		Order("id asc").
		Limit(limit).
		Offset(offset).
		Find(&clients).Error; err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}
