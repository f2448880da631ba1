package model

// Supplier is reference data for purchase requests.
type Supplier struct {
	BaseModel
	Name     string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Contact  string `gorm:"type:varchar(255)" json:"contact"`
	Phone    string `gorm:"type:varchar(20)" json:"phone"`
	Category string `gorm:"type:varchar(100)" json:"category"`
}
