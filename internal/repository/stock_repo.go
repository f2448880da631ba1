package repository

import (
	"errors"

	"go-stockledger-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockRepository interface {
	GetQuantity(tx *gorm.DB, itemID uuid.UUID, loc model.Location) (int, error)
	SetQuantity(tx *gorm.DB, itemID uuid.UUID, loc model.Location, qty int) error
	Snapshot(itemID uuid.UUID) (*model.StockSnapshot, error)
	FindAll() ([]model.StockLevel, error)
	ReplaceAll(tx *gorm.DB, levels []model.StockLevel) error
}

type stockRepo struct {
	db *gorm.DB
}

func NewStockRepo(db *gorm.DB) StockRepository {
	return &stockRepo{db}
}

// GetQuantity reads a level inside the caller's transaction. A missing row
// means zero stock, which is not an error.
func (r *stockRepo) GetQuantity(tx *gorm.DB, itemID uuid.UUID, loc model.Location) (int, error) {
	var level model.StockLevel
	err := tx.Where("item_id = ? AND location = ?", itemID, loc).First(&level).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return level.Quantity, nil
}

// SetQuantity upserts the level row inside the caller's transaction.
func (r *stockRepo) SetQuantity(tx *gorm.DB, itemID uuid.UUID, loc model.Location, qty int) error {
	var level model.StockLevel
	err := tx.Where("item_id = ? AND location = ?", itemID, loc).First(&level).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&model.StockLevel{ItemID: itemID, Location: loc, Quantity: qty}).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&level).Update("quantity", qty).Error
}

func (r *stockRepo) Snapshot(itemID uuid.UUID) (*model.StockSnapshot, error) {
	var levels []model.StockLevel
	if err := r.db.Where("item_id = ?", itemID).Find(&levels).Error; err != nil {
		return nil, err
	}

	snap := &model.StockSnapshot{ItemID: itemID}
	for _, l := range levels {
		switch l.Location {
		case model.LocationGodown:
			snap.Godown = l.Quantity
		case model.LocationShop:
			snap.Shop = l.Quantity
		}
	}
	snap.Total = snap.Godown + snap.Shop
	return snap, nil
}

func (r *stockRepo) FindAll() ([]model.StockLevel, error) {
	levels := []model.StockLevel{}
	err := r.db.Find(&levels).Error
	return levels, err
}

// ReplaceAll swaps the whole projection for a freshly rebuilt one. Only the
// rebuild path uses this; normal writes go through SetQuantity.
func (r *stockRepo) ReplaceAll(tx *gorm.DB, levels []model.StockLevel) error {
	if err := tx.Where("1 = 1").Delete(&model.StockLevel{}).Error; err != nil {
		return err
	}
	if len(levels) == 0 {
		return nil
	}
	return tx.Create(&levels).Error
}
