package service

import (
	"encoding/json"
	"fmt"

	"go-stockledger-ws/internal/model"
	"go-stockledger-ws/internal/repository"
	"go-stockledger-ws/internal/ws"
	"go-stockledger-ws/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LedgerService interface {
	SubmitInward(req *InwardRequest, actorID, actorName string) (*model.Movement, error)
	SubmitTransfer(req *TransferRequest, actorID, actorName string) (*model.Movement, error)
	GetStock(itemID uuid.UUID) (*model.StockSnapshot, error)
	ListMovements(itemID uuid.UUID) ([]model.Movement, error)
	ListRecent(limit int) ([]model.Movement, error)
	RebuildProjection(apply bool) (*RebuildResult, error)
}

// InwardRequest records a goods receipt into one location.
type InwardRequest struct {
	ItemID   uuid.UUID       `json:"item_id" validate:"uuid_required"`
	Location model.Location  `json:"location"`
	Quantity int             `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	Vendor   string          `json:"vendor"`
	BatchRef string          `json:"batch_ref"`
	Notes    string          `json:"notes"`
}

// TransferRequest moves stock between the two locations.
type TransferRequest struct {
	ItemID   uuid.UUID      `json:"item_id" validate:"uuid_required"`
	From     model.Location `json:"from"`
	To       model.Location `json:"to"`
	Quantity int            `json:"quantity"`
	Notes    string         `json:"notes"`
}

// RebuildResult reports a full ledger replay against the stored projection.
type RebuildResult struct {
	Levels      []model.StockLevel `json:"levels"`
	Divergences []StockDivergence  `json:"divergences"`
	Applied     bool               `json:"applied"`
}

type StockDivergence struct {
	ItemID   uuid.UUID      `json:"item_id"`
	Location model.Location `json:"location"`
	Stored   int            `json:"stored"`
	Rebuilt  int            `json:"rebuilt"`
}

type ledgerService struct {
	itemRepo     repository.ItemRepository
	movementRepo repository.MovementRepository
	stockRepo    repository.StockRepository
	db           *gorm.DB
	wsHub        *ws.Hub
}

func NewLedgerService(iRepo repository.ItemRepository, mRepo repository.MovementRepository, sRepo repository.StockRepository, db *gorm.DB, hub *ws.Hub) LedgerService {
	return &ledgerService{
		itemRepo:     iRepo,
		movementRepo: mRepo,
		stockRepo:    sRepo,
		db:           db,
		wsHub:        hub,
	}
}

// foldMovement applies one ledger entry to the stock levels, inside the
// caller's transaction. The insufficient-stock check and the level update
// commit or roll back together, so a level can never go negative, not even
// transiently.
func foldMovement(tx *gorm.DB, stockRepo repository.StockRepository, m *model.Movement) error {
	switch m.Type {
	case model.MovementInward:
		qty, err := stockRepo.GetQuantity(tx, m.ItemID, m.Location)
		if err != nil {
			return err
		}
		return stockRepo.SetQuantity(tx, m.ItemID, m.Location, qty+m.Quantity)

	case model.MovementTransfer:
		fromQty, err := stockRepo.GetQuantity(tx, m.ItemID, m.FromLocation)
		if err != nil {
			return err
		}
		if fromQty < m.Quantity {
			return ErrInsufficientStock
		}
		if err := stockRepo.SetQuantity(tx, m.ItemID, m.FromLocation, fromQty-m.Quantity); err != nil {
			return err
		}
		toQty, err := stockRepo.GetQuantity(tx, m.ItemID, m.ToLocation)
		if err != nil {
			return err
		}
		return stockRepo.SetQuantity(tx, m.ItemID, m.ToLocation, toQty+m.Quantity)

	case model.MovementDamageLoss:
		qty, err := stockRepo.GetQuantity(tx, m.ItemID, m.Location)
		if err != nil {
			return err
		}
		if qty < m.Quantity {
			return ErrInsufficientStock
		}
		return stockRepo.SetQuantity(tx, m.ItemID, m.Location, qty-m.Quantity)
	}

	return fmt.Errorf("unknown movement type %q", m.Type)
}

// appendMovement validates the item inside the transaction, appends the
// ledger row and folds it into the projection as one atomic unit. The caller
// holds the per-item lock.
func appendMovement(tx *gorm.DB, itemRepo repository.ItemRepository, movementRepo repository.MovementRepository, stockRepo repository.StockRepository, m *model.Movement) error {
	exists, err := itemRepo.Exists(tx, m.ItemID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUnknownItem
	}
	if err := movementRepo.Append(tx, m); err != nil {
		return err
	}
	return foldMovement(tx, stockRepo, m)
}

func (s *ledgerService) SubmitInward(req *InwardRequest, actorID, actorName string) (*model.Movement, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !req.Location.Valid() {
		return nil, ErrInvalidLocation
	}

	movement := &model.Movement{
		ItemID:      req.ItemID,
		Type:        model.MovementInward,
		Quantity:    req.Quantity,
		Location:    req.Location,
		PerformedBy: actorID,
		Notes:       req.Notes,
		UnitCost:    req.UnitCost,
		Vendor:      req.Vendor,
		BatchRef:    req.BatchRef,
	}

	unlock := stockLocks.lock(req.ItemID)
	defer unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return appendMovement(tx, s.itemRepo, s.movementRepo, s.stockRepo, movement)
	})
	if err != nil {
		return nil, err
	}

	s.broadcastMovement(movement, actorName, fmt.Sprintf("%s received %d units into %s", actorName, req.Quantity, req.Location))
	return movement, nil
}

func (s *ledgerService) SubmitTransfer(req *TransferRequest, actorID, actorName string) (*model.Movement, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !req.From.Valid() || !req.To.Valid() {
		return nil, ErrInvalidLocation
	}
	if req.From == req.To {
		return nil, ErrInvalidLocationPair
	}

	movement := &model.Movement{
		ItemID:       req.ItemID,
		Type:         model.MovementTransfer,
		Quantity:     req.Quantity,
		FromLocation: req.From,
		ToLocation:   req.To,
		PerformedBy:  actorID,
		Notes:        req.Notes,
	}

	unlock := stockLocks.lock(req.ItemID)
	defer unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return appendMovement(tx, s.itemRepo, s.movementRepo, s.stockRepo, movement)
	})
	if err != nil {
		return nil, err
	}

	s.broadcastMovement(movement, actorName, fmt.Sprintf("%s moved %d units from %s to %s", actorName, req.Quantity, req.From, req.To))
	return movement, nil
}

func (s *ledgerService) GetStock(itemID uuid.UUID) (*model.StockSnapshot, error) {
	if _, err := s.itemRepo.FindByID(itemID); err != nil {
		return nil, ErrUnknownItem
	}
	return s.stockRepo.Snapshot(itemID)
}

func (s *ledgerService) ListMovements(itemID uuid.UUID) ([]model.Movement, error) {
	return s.movementRepo.FindByItem(itemID)
}

func (s *ledgerService) ListRecent(limit int) ([]model.Movement, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.movementRepo.FindRecent(limit)
}

// RebuildProjection replays the full ledger in timestamp order and compares
// the result with the stored levels. With apply=true the stored projection is
// replaced by the rebuilt one in a single transaction.
func (s *ledgerService) RebuildProjection(apply bool) (*RebuildResult, error) {
	movements, err := s.movementRepo.FindAllOrdered()
	if err != nil {
		return nil, err
	}

	type key struct {
		itemID uuid.UUID
		loc    model.Location
	}
	rebuilt := make(map[key]int)
	for _, m := range movements {
		switch m.Type {
		case model.MovementInward:
			rebuilt[key{m.ItemID, m.Location}] += m.Quantity
		case model.MovementTransfer:
			rebuilt[key{m.ItemID, m.FromLocation}] -= m.Quantity
			rebuilt[key{m.ItemID, m.ToLocation}] += m.Quantity
		case model.MovementDamageLoss:
			rebuilt[key{m.ItemID, m.Location}] -= m.Quantity
		}
	}

	stored, err := s.stockRepo.FindAll()
	if err != nil {
		return nil, err
	}
	storedByKey := make(map[key]int, len(stored))
	for _, l := range stored {
		storedByKey[key{l.ItemID, l.Location}] = l.Quantity
	}

	result := &RebuildResult{}
	for k, qty := range rebuilt {
		result.Levels = append(result.Levels, model.StockLevel{ItemID: k.itemID, Location: k.loc, Quantity: qty})
		if storedByKey[k] != qty {
			result.Divergences = append(result.Divergences, StockDivergence{
				ItemID: k.itemID, Location: k.loc, Stored: storedByKey[k], Rebuilt: qty,
			})
		}
	}
	for k, qty := range storedByKey {
		if _, ok := rebuilt[k]; !ok && qty != 0 {
			result.Divergences = append(result.Divergences, StockDivergence{
				ItemID: k.itemID, Location: k.loc, Stored: qty, Rebuilt: 0,
			})
		}
	}

	if apply {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			return s.stockRepo.ReplaceAll(tx, result.Levels)
		})
		if err != nil {
			return nil, err
		}
		result.Applied = true
	}

	return result, nil
}

func (s *ledgerService) broadcastMovement(m *model.Movement, actorName, message string) {
	go func() {
		payload := map[string]interface{}{
			"type":   "stock_update",
			"action": "movement_recorded",
			"movement": map[string]interface{}{
				"id":       m.ID,
				"type":     m.Type,
				"item_id":  m.ItemID,
				"quantity": m.Quantity,
			},
			"user":    map[string]interface{}{"id": m.PerformedBy, "name": actorName},
			"message": message,
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
