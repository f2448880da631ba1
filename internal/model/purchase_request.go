package model

import (
	"time"

	"github.com/google/uuid"
)

type PurchaseStatus string

const (
	PurchasePending  PurchaseStatus = "PENDING"
	PurchaseOrdered  PurchaseStatus = "ORDERED"
	PurchaseRejected PurchaseStatus = "REJECTED"
)

type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyNormal Urgency = "NORMAL"
	UrgencyHigh   Urgency = "HIGH"
)

// PurchaseRequest asks for replenishment of an item. Approving it only flips
// the status to ORDERED; the physical receipt arrives later as a separate
// INWARD movement.
type PurchaseRequest struct {
	BaseModel
	ItemID       uuid.UUID `gorm:"type:uuid;not null;index" json:"item_id" validate:"uuid_required"`
	Item         *Item     `json:"item,omitempty" validate:"-"`
	RequestedQty int       `gorm:"not null" json:"requested_qty" validate:"required,gt=0"` // purchase units

	// Total on-hand base units at the moment the request was raised.
	StockSnapshot int `gorm:"not null" json:"stock_snapshot"`

	SupplierID *uuid.UUID `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	Supplier   *Supplier  `json:"supplier,omitempty" validate:"-"`

	Urgency Urgency        `gorm:"type:varchar(10);not null;default:NORMAL" json:"urgency" validate:"required,oneof=LOW NORMAL HIGH"`
	Status  PurchaseStatus `gorm:"type:varchar(10);not null;default:PENDING;index" json:"status"`

	ResolvedBy string     `gorm:"type:varchar(255)" json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}
