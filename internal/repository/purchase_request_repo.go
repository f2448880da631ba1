package repository

import (
	"go-stockledger-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseRequestRepository interface {
	Create(pr *model.PurchaseRequest) error
	FindByID(tx *gorm.DB, id uuid.UUID) (*model.PurchaseRequest, error)
	FindAll(status model.PurchaseStatus) ([]model.PurchaseRequest, error)
	Save(tx *gorm.DB, pr *model.PurchaseRequest) error
	CountPending() (int64, error)
	CountPendingBySupplier(supplierID uuid.UUID) (int64, error)
}

type purchaseRequestRepo struct {
	db *gorm.DB
}

func NewPurchaseRequestRepo(db *gorm.DB) PurchaseRequestRepository {
	return &purchaseRequestRepo{db}
}

func (r *purchaseRequestRepo) Create(pr *model.PurchaseRequest) error {
	return r.db.Create(pr).Error
}

func (r *purchaseRequestRepo) FindByID(tx *gorm.DB, id uuid.UUID) (*model.PurchaseRequest, error) {
	var pr model.PurchaseRequest
	err := tx.Preload("Item").Preload("Supplier").First(&pr, "id = ?", id).Error
	return &pr, err
}

// FindAll lists purchase requests, optionally filtered by status (empty = all).
func (r *purchaseRequestRepo) FindAll(status model.PurchaseStatus) ([]model.PurchaseRequest, error) {
	requests := []model.PurchaseRequest{}
	q := r.db.Preload("Item").Preload("Supplier").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&requests).Error
	return requests, err
}

func (r *purchaseRequestRepo) Save(tx *gorm.DB, pr *model.PurchaseRequest) error {
	return tx.Save(pr).Error
}

func (r *purchaseRequestRepo) CountPending() (int64, error) {
	var count int64
	err := r.db.Model(&model.PurchaseRequest{}).Where("status = ?", model.PurchasePending).Count(&count).Error
	return count, err
}

// CountPendingBySupplier backs the supplier delete guard.
func (r *purchaseRequestRepo) CountPendingBySupplier(supplierID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.PurchaseRequest{}).
		Where("supplier_id = ? AND status = ?", supplierID, model.PurchasePending).
		Count(&count).Error
	return count, err
}
