package models

import "time"

// PropertyType is the listing kind
type PropertyType string

const (
	PropertyTypeSale PropertyType = "SALE"
	PropertyTypeRent PropertyType = "RENT"
)

// Property is a catalog listing. Inquiries only read it.
type Property struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Title     string       `gorm:"not null" json:"title"`
	Address   string       `json:"address"`
	Price     *float64     `json:"price"`
	Type      PropertyType `gorm:"type:varchar(8)" json:"type"`
	Bedrooms  *int         `json:"bedrooms"`
	Bathrooms *int         `json:"bathrooms"`
	AreaSqFt  *float64     `json:"area_sq_ft"`
	ImageKey  *string      `json:"image_key"` // S3 key
	AgentID   *uint        `gorm:"index" json:"agent_id"` // nullable, the listing agent's staff profile
	Agent     *Agent       `gorm:"foreignKey:AgentID" json:"-"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// TableName specifies the table name for the Property model
func (Property) TableName() string {
	return "properties"
}
