package repository

import (
	"go-stockledger-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdjustmentRepository interface {
	Create(adj *model.Adjustment) error
	FindByID(tx *gorm.DB, id uuid.UUID) (*model.Adjustment, error)
	FindAll(status model.AdjustmentStatus) ([]model.Adjustment, error)
	Save(tx *gorm.DB, adj *model.Adjustment) error
	CountPending() (int64, error)
}

type adjustmentRepo struct {
	db *gorm.DB
}

func NewAdjustmentRepo(db *gorm.DB) AdjustmentRepository {
	return &adjustmentRepo{db}
}

func (r *adjustmentRepo) Create(adj *model.Adjustment) error {
	return r.db.Create(adj).Error
}

func (r *adjustmentRepo) FindByID(tx *gorm.DB, id uuid.UUID) (*model.Adjustment, error) {
	var adj model.Adjustment
	err := tx.Preload("Item").First(&adj, "id = ?", id).Error
	return &adj, err
}

// FindAll lists adjustments, optionally filtered by status (empty = all).
func (r *adjustmentRepo) FindAll(status model.AdjustmentStatus) ([]model.Adjustment, error) {
	adjustments := []model.Adjustment{}
	q := r.db.Preload("Item").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&adjustments).Error
	return adjustments, err
}

func (r *adjustmentRepo) Save(tx *gorm.DB, adj *model.Adjustment) error {
	return tx.Save(adj).Error
}

func (r *adjustmentRepo) CountPending() (int64, error) {
	var count int64
	err := r.db.Model(&model.Adjustment{}).Where("status = ?", model.AdjustmentPending).Count(&count).Error
	return count, err
}
