package groups

import (
	"context"
	"errors"

	"github.com/mx-space/metafields/internal/models"
	"gorm.io/gorm"
)

// Store is the persistence contract of the registry.
type Store interface {
	List(ctx context.Context) ([]models.MetafieldGroupModel, error)
	Create(ctx context.Context, group *models.MetafieldGroupModel) error
	UpdateMetafields(ctx context.Context, id string, metafields string) (*models.MetafieldGroupModel, error)
	Delete(ctx context.Context, id string) error
}

// GormStore keeps groups in the metafield_groups table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) List(ctx context.Context) ([]models.MetafieldGroupModel, error) {
	var rows []models.MetafieldGroupModel
	return rows, s.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&rows).Error
}

func (s *GormStore) Create(ctx context.Context, group *models.MetafieldGroupModel) error {
	return s.db.WithContext(ctx).Create(group).Error
}

// UpdateMetafields overwrites the metafields column and returns the updated row.
func (s *GormStore) UpdateMetafields(ctx context.Context, id string, metafields string) (*models.MetafieldGroupModel, error) {
	var row models.MetafieldGroupModel
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&row).Update("metafields", metafields).Error; err != nil {
		return nil, err
	}
	row.Metafields = metafields
	return &row, nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.MetafieldGroupModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
