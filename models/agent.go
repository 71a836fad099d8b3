package models

import "time"

// Agent is a staff profile. An agent-role user acts through the profile
// linked to their account.
type Agent struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	LinkedUserID    *uint     `gorm:"uniqueIndex" json:"linked_user_id"`
	LinkedUser      *User     `gorm:"foreignKey:LinkedUserID" json:"-"`
	Name            string    `gorm:"not null" json:"name"`
	Title           string    `json:"title"`
	Phone           string    `json:"phone"`
	ProfileImageKey *string   `json:"profile_image_key"` // S3 key
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Agent model
func (Agent) TableName() string {
	return "agents"
}
