package repository

import (
	"go-stockledger-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ItemRepository interface {
	Create(item *model.Item) error
	FindAll() ([]model.Item, error)
	FindByID(id uuid.UUID) (*model.Item, error)
	FindBySKU(sku string) (*model.Item, error)
	Exists(tx *gorm.DB, id uuid.UUID) (bool, error)
}

type itemRepo struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) ItemRepository {
	return &itemRepo{db}
}

func (r *itemRepo) Create(item *model.Item) error {
	return r.db.Create(item).Error
}

func (r *itemRepo) FindAll() ([]model.Item, error) {
	var items []model.Item
	err := r.db.Preload("CreatedByUser").Preload("UpdatedByUser").Order("name ASC").Find(&items).Error
	return items, err
}

func (r *itemRepo) FindByID(id uuid.UUID) (*model.Item, error) {
	var item model.Item
	err := r.db.Preload("CreatedByUser").Preload("UpdatedByUser").First(&item, "id = ?", id).Error
	return &item, err
}

func (r *itemRepo) FindBySKU(sku string) (*model.Item, error) {
	var item model.Item
	err := r.db.First(&item, "sku = ?", sku).Error
	return &item, err
}

// Exists runs inside the caller's transaction so ledger writes see a
// consistent catalog.
func (r *itemRepo) Exists(tx *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	if err := tx.Model(&model.Item{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
