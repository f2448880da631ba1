package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"go-stockledger-ws/internal/model"
	"go-stockledger-ws/internal/repository"
	"go-stockledger-ws/internal/ws"
	"go-stockledger-ws/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CatalogService interface {
	CreateItem(req *model.Item, userID, userName string) error
	UpdateItem(id uuid.UUID, req *model.Item, userID, userName string) (*model.Item, error)
	GetAllItems() ([]model.Item, error)
	GetItemByID(id uuid.UUID) (*model.Item, error)
}

type catalogService struct {
	itemRepo repository.ItemRepository
	db       *gorm.DB
	wsHub    *ws.Hub
}

func NewCatalogService(iRepo repository.ItemRepository, db *gorm.DB, hub *ws.Hub) CatalogService {
	return &catalogService{itemRepo: iRepo, db: db, wsHub: hub}
}

func (s *catalogService) CreateItem(req *model.Item, userID, userName string) error {
	if err := validator.Check(req); err != nil {
		return err
	}
	if req.ConversionRatio <= 0 {
		return errors.New("conversion ratio must be positive")
	}

	// SKU uniqueness (business validation)
	existing, _ := s.itemRepo.FindBySKU(req.SKU)
	if existing != nil && existing.ID != uuid.Nil {
		return ErrSKUExists
	}

	req.CreatedBy = userID
	req.UpdatedBy = userID
	if uid, err := uuid.Parse(userID); err == nil {
		req.CreatedByUserID = &uid
		req.UpdatedByUserID = &uid
	}

	if err := s.itemRepo.Create(req); err != nil {
		return err
	}

	go func() {
		payload := map[string]interface{}{
			"type":   "stock_update",
			"action": "item_created",
			"item": map[string]interface{}{
				"id":   req.ID,
				"sku":  req.SKU,
				"name": req.Name,
			},
			"user":    map[string]interface{}{"id": userID, "name": userName},
			"message": fmt.Sprintf("%s created item '%s'", userName, req.Name),
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()

	return nil
}

// UpdateItem changes catalog metadata only. Quantities live in the ledger and
// cannot be edited here.
func (s *catalogService) UpdateItem(id uuid.UUID, req *model.Item, userID, userName string) (*model.Item, error) {
	if req.ConversionRatio <= 0 {
		return nil, errors.New("conversion ratio must be positive")
	}

	var updated *model.Item
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Item
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			return ErrUnknownItem
		}

		if req.SKU != existing.SKU {
			other, _ := s.itemRepo.FindBySKU(req.SKU)
			if other != nil && other.ID != uuid.Nil && other.ID != id {
				return ErrSKUExists
			}
		}

		existing.SKU = req.SKU
		existing.Name = req.Name
		existing.Category = req.Category
		existing.BaseUnit = req.BaseUnit
		existing.PurchaseUnit = req.PurchaseUnit
		existing.ConversionRatio = req.ConversionRatio
		existing.PurchasePrice = req.PurchasePrice
		existing.MinStockLevel = req.MinStockLevel
		existing.DeadStockDays = req.DeadStockDays
		existing.UpdatedBy = userID
		if uid, err := uuid.Parse(userID); err == nil {
			existing.UpdatedByUserID = &uid
		}

		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		updated = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	go func() {
		payload := map[string]interface{}{
			"type":    "stock_update",
			"action":  "item_updated",
			"item":    map[string]interface{}{"id": updated.ID, "sku": updated.SKU, "name": updated.Name},
			"user":    map[string]interface{}{"id": userID, "name": userName},
			"message": fmt.Sprintf("%s updated item '%s'", userName, updated.Name),
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()

	return updated, nil
}

func (s *catalogService) GetAllItems() ([]model.Item, error) {
	return s.itemRepo.FindAll()
}

func (s *catalogService) GetItemByID(id uuid.UUID) (*model.Item, error) {
	return s.itemRepo.FindByID(id)
}
