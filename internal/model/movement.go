package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MovementType string

const (
	MovementInward     MovementType = "INWARD"
	MovementTransfer   MovementType = "TRANSFER"
	MovementDamageLoss MovementType = "DAMAGE_LOSS"
)

// Movement is one immutable entry in the stock ledger. Rows are only ever
// appended; there is deliberately no BaseModel here, so no soft delete and no
// UpdatedAt on ledger history.
type Movement struct {
	ID        uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time    `gorm:"index:idx_movements_item_time,priority:2;autoCreateTime" json:"created_at"`
	ItemID    uuid.UUID    `gorm:"type:uuid;not null;index:idx_movements_item_time,priority:1" json:"item_id"`
	Item      *Item        `json:"item,omitempty"`
	Type      MovementType `gorm:"type:varchar(20);not null" json:"type"`
	Quantity  int          `gorm:"not null" json:"quantity"` // base units, always positive

	// INWARD / DAMAGE_LOSS use Location; TRANSFER uses the From/To pair.
	Location     Location `gorm:"type:varchar(10)" json:"location,omitempty"`
	FromLocation Location `gorm:"type:varchar(10)" json:"from_location,omitempty"`
	ToLocation   Location `gorm:"type:varchar(10)" json:"to_location,omitempty"`

	PerformedBy string `gorm:"type:varchar(255);not null" json:"performed_by"`
	Notes       string `gorm:"type:text" json:"notes,omitempty"`

	// INWARD receipt details
	UnitCost decimal.Decimal `gorm:"type:decimal(20,4)" json:"unit_cost"`
	Vendor   string          `gorm:"type:varchar(255)" json:"vendor,omitempty"`
	BatchRef string          `gorm:"type:varchar(100)" json:"batch_ref,omitempty"`
}

func (m *Movement) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}

// StockLevel is the current quantity of one item at one location. It is a
// projection over the movements table: always rebuildable, never authoritative.
type StockLevel struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_location,priority:1" json:"item_id"`
	Location  Location  `gorm:"type:varchar(10);not null;uniqueIndex:idx_stock_item_location,priority:2" json:"location"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockSnapshot is the per-location view handed out to callers.
type StockSnapshot struct {
	ItemID uuid.UUID `json:"item_id"`
	Godown int       `json:"godown"`
	Shop   int       `json:"shop"`
	Total  int       `json:"total"`
}
