package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a stock keeping unit. Quantities everywhere are in base units;
// purchasing happens in purchase units (1 purchase unit = ConversionRatio base units).
type Item struct {
	BaseModel
	SKU             string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category        string          `gorm:"type:varchar(100);index" json:"category"`
	BaseUnit        string          `gorm:"type:varchar(20)" json:"base_unit"`
	PurchaseUnit    string          `gorm:"type:varchar(20)" json:"purchase_unit"`
	ConversionRatio int             `gorm:"not null;default:1" json:"conversion_ratio" validate:"required,gt=0"`
	PurchasePrice   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"purchase_price"` // per purchase unit
	MinStockLevel   int             `gorm:"not null;default:0" json:"min_stock_level"`         // base units
	DeadStockDays   int             `gorm:"not null;default:90" json:"dead_stock_days"`

	// User tracking
	CreatedByUserID *uuid.UUID `gorm:"type:uuid" json:"created_by_user_id,omitempty"`
	UpdatedByUserID *uuid.UUID `gorm:"type:uuid" json:"updated_by_user_id,omitempty"`
	CreatedByUser   *User      `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by_user,omitempty"`
	UpdatedByUser   *User      `gorm:"foreignKey:UpdatedByUserID;references:ID" json:"updated_by_user,omitempty"`
}

// UnitCost is the purchase price expressed per base unit.
func (i *Item) UnitCost() decimal.Decimal {
	if i.ConversionRatio <= 0 {
		return decimal.Zero
	}
	return i.PurchasePrice.Div(decimal.NewFromInt(int64(i.ConversionRatio)))
}
