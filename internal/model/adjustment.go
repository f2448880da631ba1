package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AdjustmentStatus string

const (
	AdjustmentPending  AdjustmentStatus = "PENDING"
	AdjustmentApproved AdjustmentStatus = "APPROVED"
	AdjustmentRejected AdjustmentStatus = "REJECTED"
)

// Adjustment is a requested stock write-off. It has no ledger effect until an
// admin approves it, at which point a DAMAGE_LOSS movement is appended in the
// same transaction that flips the status.
type Adjustment struct {
	BaseModel
	ItemID   uuid.UUID `gorm:"type:uuid;not null;index" json:"item_id" validate:"uuid_required"`
	Item     *Item     `json:"item,omitempty" validate:"-"`
	Location Location  `gorm:"type:varchar(10);not null" json:"location" validate:"required,oneof=GODOWN SHOP"`
	Quantity int       `gorm:"not null" json:"quantity" validate:"required,gt=0"` // base units
	Unit     string    `gorm:"type:varchar(20)" json:"unit"`

	// Quantity x per-base-unit cost, captured when the request is raised.
	CostImpact decimal.Decimal `gorm:"type:decimal(20,4)" json:"cost_impact"`

	Reason string           `gorm:"type:text;not null" json:"reason" validate:"required"`
	Status AdjustmentStatus `gorm:"type:varchar(10);not null;default:PENDING;index" json:"status"`

	ResolvedBy string     `gorm:"type:varchar(255)" json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	// Set on approval, links back to the DAMAGE_LOSS ledger entry.
	MovementID *uuid.UUID `gorm:"type:uuid" json:"movement_id,omitempty"`
}
