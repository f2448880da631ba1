package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go-stockledger-ws/internal/model"
	"go-stockledger-ws/internal/repository"
	"go-stockledger-ws/internal/ws"
	"go-stockledger-ws/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WorkflowService runs the two staged-approval flows: stock adjustments
// (write-offs) and purchase requests. Only approved adjustments ever touch the
// ledger; purchase approval is a status-only transition.
type WorkflowService interface {
	RequestAdjustment(req *AdjustmentInput, actorID, actorName string) (*model.Adjustment, error)
	ApproveAdjustment(id uuid.UUID, actorID, actorName string) (*model.Movement, error)
	RejectAdjustment(id uuid.UUID, actorID string) (*model.Adjustment, error)
	ListAdjustments(status model.AdjustmentStatus) ([]model.Adjustment, error)

	RequestPurchase(req *PurchaseInput, actorID string) (*model.PurchaseRequest, error)
	ApprovePurchase(id uuid.UUID, actorID string) (*model.PurchaseRequest, error)
	RejectPurchase(id uuid.UUID, actorID string) (*model.PurchaseRequest, error)
	ListPurchaseRequests(status model.PurchaseStatus) ([]model.PurchaseRequest, error)
}

type AdjustmentInput struct {
	ItemID   uuid.UUID      `json:"item_id" validate:"uuid_required"`
	Location model.Location `json:"location"`
	Quantity int            `json:"quantity"`
	Unit     string         `json:"unit"`
	Reason   string         `json:"reason"`
}

type PurchaseInput struct {
	ItemID     uuid.UUID     `json:"item_id" validate:"uuid_required"`
	Quantity   int           `json:"quantity"` // purchase units
	SupplierID *uuid.UUID    `json:"supplier_id"`
	Urgency    model.Urgency `json:"urgency"`
}

type workflowService struct {
	itemRepo     repository.ItemRepository
	movementRepo repository.MovementRepository
	stockRepo    repository.StockRepository
	adjRepo      repository.AdjustmentRepository
	purchaseRepo repository.PurchaseRequestRepository
	supplierRepo repository.SupplierRepository
	db           *gorm.DB
	wsHub        *ws.Hub
}

func NewWorkflowService(
	itemRepo repository.ItemRepository,
	movementRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	adjRepo repository.AdjustmentRepository,
	purchaseRepo repository.PurchaseRequestRepository,
	supplierRepo repository.SupplierRepository,
	db *gorm.DB,
	hub *ws.Hub,
) WorkflowService {
	return &workflowService{
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		stockRepo:    stockRepo,
		adjRepo:      adjRepo,
		purchaseRepo: purchaseRepo,
		supplierRepo: supplierRepo,
		db:           db,
		wsHub:        hub,
	}
}

func (s *workflowService) RequestAdjustment(req *AdjustmentInput, actorID, actorName string) (*model.Adjustment, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !req.Location.Valid() {
		return nil, ErrInvalidLocation
	}
	// A write-off without a reason is never accepted.
	if strings.TrimSpace(req.Reason) == "" {
		return nil, ErrReasonRequired
	}

	item, err := s.itemRepo.FindByID(req.ItemID)
	if err != nil {
		return nil, ErrUnknownItem
	}

	unit := req.Unit
	if unit == "" {
		unit = item.BaseUnit
	}

	adj := &model.Adjustment{
		ItemID:     req.ItemID,
		Location:   req.Location,
		Quantity:   req.Quantity,
		Unit:       unit,
		CostImpact: item.UnitCost().Mul(decimal.NewFromInt(int64(req.Quantity))),
		Reason:     strings.TrimSpace(req.Reason),
		Status:     model.AdjustmentPending,
	}
	adj.CreatedBy = actorID
	adj.UpdatedBy = actorID

	if err := s.adjRepo.Create(adj); err != nil {
		return nil, err
	}

	s.broadcast("adjustment_requested", actorName, fmt.Sprintf("%s requested write-off of %d units of '%s'", actorName, req.Quantity, item.Name))
	return adj, nil
}

// ApproveAdjustment flips PENDING to APPROVED and appends the DAMAGE_LOSS
// movement in one transaction. If the ledger refuses the debit the whole
// operation rolls back and the adjustment stays PENDING.
func (s *workflowService) ApproveAdjustment(id uuid.UUID, actorID, actorName string) (*model.Movement, error) {
	// Resolve the item first so the per-item lock is held for the whole
	// status-flip + append sequence.
	peek, err := s.adjRepo.FindByID(s.db, id)
	if err != nil {
		return nil, err
	}

	unlock := stockLocks.lock(peek.ItemID)
	defer unlock()

	var movement *model.Movement
	err = s.db.Transaction(func(tx *gorm.DB) error {
		adj, err := s.adjRepo.FindByID(tx, id)
		if err != nil {
			return err
		}
		if adj.Status != model.AdjustmentPending {
			return ErrNotPending
		}

		movement = &model.Movement{
			ItemID:      adj.ItemID,
			Type:        model.MovementDamageLoss,
			Quantity:    adj.Quantity,
			Location:    adj.Location,
			PerformedBy: actorID,
			Notes:       adj.Reason,
		}
		if err := appendMovement(tx, s.itemRepo, s.movementRepo, s.stockRepo, movement); err != nil {
			return err
		}

		now := time.Now()
		adj.Status = model.AdjustmentApproved
		adj.ResolvedBy = actorID
		adj.ResolvedAt = &now
		adj.MovementID = &movement.ID
		adj.UpdatedBy = actorID
		return s.adjRepo.Save(tx, adj)
	})
	if err != nil {
		return nil, err
	}

	s.broadcast("adjustment_approved", actorName, fmt.Sprintf("%s approved write-off of %d units", actorName, movement.Quantity))
	return movement, nil
}

func (s *workflowService) RejectAdjustment(id uuid.UUID, actorID string) (*model.Adjustment, error) {
	peek, err := s.adjRepo.FindByID(s.db, id)
	if err != nil {
		return nil, err
	}

	// Same lock as ApproveAdjustment, so a concurrent approve and reject
	// serialize and only the first sees PENDING.
	unlock := stockLocks.lock(peek.ItemID)
	defer unlock()

	var rejected *model.Adjustment
	err = s.db.Transaction(func(tx *gorm.DB) error {
		adj, err := s.adjRepo.FindByID(tx, id)
		if err != nil {
			return err
		}
		if adj.Status != model.AdjustmentPending {
			return ErrNotPending
		}

		now := time.Now()
		adj.Status = model.AdjustmentRejected
		adj.ResolvedBy = actorID
		adj.ResolvedAt = &now
		adj.UpdatedBy = actorID
		rejected = adj
		return s.adjRepo.Save(tx, adj)
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

func (s *workflowService) ListAdjustments(status model.AdjustmentStatus) ([]model.Adjustment, error) {
	return s.adjRepo.FindAll(status)
}

func (s *workflowService) RequestPurchase(req *PurchaseInput, actorID string) (*model.PurchaseRequest, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	if _, err := s.itemRepo.FindByID(req.ItemID); err != nil {
		return nil, ErrUnknownItem
	}
	if req.SupplierID != nil {
		if _, err := s.supplierRepo.FindByID(*req.SupplierID); err != nil {
			return nil, ErrSupplierNotFound
		}
	}

	urgency := req.Urgency
	switch urgency {
	case model.UrgencyLow, model.UrgencyNormal, model.UrgencyHigh:
	case "":
		urgency = model.UrgencyNormal
	default:
		return nil, fmt.Errorf("invalid urgency %q", req.Urgency)
	}

	snap, err := s.stockRepo.Snapshot(req.ItemID)
	if err != nil {
		return nil, err
	}

	pr := &model.PurchaseRequest{
		ItemID:        req.ItemID,
		RequestedQty:  req.Quantity,
		StockSnapshot: snap.Total,
		SupplierID:    req.SupplierID,
		Urgency:       urgency,
		Status:        model.PurchasePending,
	}
	pr.CreatedBy = actorID
	pr.UpdatedBy = actorID

	if err := s.purchaseRepo.Create(pr); err != nil {
		return nil, err
	}
	return pr, nil
}

// ApprovePurchase marks the request ORDERED. Stock is not touched here; the
// goods receipt arrives later as its own INWARD movement.
func (s *workflowService) ApprovePurchase(id uuid.UUID, actorID string) (*model.PurchaseRequest, error) {
	return s.resolvePurchase(id, actorID, model.PurchaseOrdered)
}

func (s *workflowService) RejectPurchase(id uuid.UUID, actorID string) (*model.PurchaseRequest, error) {
	return s.resolvePurchase(id, actorID, model.PurchaseRejected)
}

func (s *workflowService) resolvePurchase(id uuid.UUID, actorID string, target model.PurchaseStatus) (*model.PurchaseRequest, error) {
	peek, err := s.purchaseRepo.FindByID(s.db, id)
	if err != nil {
		return nil, err
	}

	// Resolutions of the same request serialize on the item lock; the
	// PENDING re-check inside the transaction then makes the second one fail.
	unlock := stockLocks.lock(peek.ItemID)
	defer unlock()

	var resolved *model.PurchaseRequest
	err = s.db.Transaction(func(tx *gorm.DB) error {
		pr, err := s.purchaseRepo.FindByID(tx, id)
		if err != nil {
			return err
		}
		if pr.Status != model.PurchasePending {
			return ErrNotPending
		}

		now := time.Now()
		pr.Status = target
		pr.ResolvedBy = actorID
		pr.ResolvedAt = &now
		pr.UpdatedBy = actorID
		resolved = pr
		return s.purchaseRepo.Save(tx, pr)
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

func (s *workflowService) ListPurchaseRequests(status model.PurchaseStatus) ([]model.PurchaseRequest, error) {
	return s.purchaseRepo.FindAll(status)
}

func (s *workflowService) broadcast(action, actorName, message string) {
	go func() {
		payload := map[string]interface{}{
			"type":    "stock_update",
			"action":  action,
			"user":    map[string]interface{}{"name": actorName},
			"message": message,
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
