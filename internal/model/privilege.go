package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "movement:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Record Movement"
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
	// Item catalog
	{Code: "item:view", Name: "View Item"},
	{Code: "item:create", Name: "Create Item"},
	{Code: "item:update", Name: "Update Item"},
	// Stock movements
	{Code: "movement:view", Name: "View Movement"},
	{Code: "movement:create", Name: "Record Movement"},
	// Stock adjustments (write-offs)
	{Code: "adjustment:view", Name: "View Adjustment"},
	{Code: "adjustment:create", Name: "Request Adjustment"},
	{Code: "adjustment:approve", Name: "Approve/Reject Adjustment"},
	// Purchase requests
	{Code: "purchase:view", Name: "View Purchase Request"},
	{Code: "purchase:create", Name: "Create Purchase Request"},
	{Code: "purchase:approve", Name: "Approve/Reject Purchase Request"},
	// Suppliers
	{Code: "supplier:view", Name: "View Supplier"},
	{Code: "supplier:create", Name: "Create Supplier"},
	{Code: "supplier:delete", Name: "Delete Supplier"},
	// Reports & dashboard
	{Code: "report:view", Name: "View Valuation Report"},
	{Code: "dashboard:view", Name: "View Dashboard"},
}
