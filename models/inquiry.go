package models

import "time"

// InquiryStatus is the lifecycle state of an inquiry
type InquiryStatus string

const (
	StatusPending InquiryStatus = "PENDING"
	StatusReplied InquiryStatus = "REPLIED"
	StatusClosed  InquiryStatus = "CLOSED"
)

// ParseInquiryStatus validates a status filter value
func ParseInquiryStatus(s string) (InquiryStatus, bool) {
	switch st := InquiryStatus(s); st {
	case StatusPending, StatusReplied, StatusClosed:
		return st, true
	}
	return "", false
}

// ViewerClass selects which read watermark applies. Agents and admins
// share the staff watermark.
type ViewerClass int

const (
	ViewerBuyer ViewerClass = iota
	ViewerStaff
)

// ViewerClassFor maps a role to its watermark class
func ViewerClassFor(r Role) ViewerClass {
	if r.IsStaff() {
		return ViewerStaff
	}
	return ViewerBuyer
}

// Inquiry is a conversation thread between one buyer and the staff side
// about one property
type Inquiry struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	UserID          uint          `gorm:"not null;index" json:"user_id"` // owner, never changes
	User            User          `gorm:"foreignKey:UserID" json:"-"`
	PropertyID      uint          `gorm:"not null;index" json:"property_id"`
	Property        Property      `gorm:"foreignKey:PropertyID" json:"-"`
	AssignedAgentID *uint         `gorm:"index" json:"assigned_agent_id"`
	AssignedAgent   *Agent        `gorm:"foreignKey:AssignedAgentID" json:"-"`
	Status          InquiryStatus `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"status"`
	CreatedAt       time.Time     `gorm:"not null" json:"created_at"`
	LastMessageAt   time.Time     `gorm:"not null;index" json:"last_message_at"`
	LastReadAtUser  *time.Time    `json:"last_read_at_user"`
	LastReadAtStaff *time.Time    `json:"last_read_at_staff"`
}

// TableName specifies the table name for the Inquiry model
func (Inquiry) TableName() string {
	return "inquiries"
}

// IsAssignedTo reports whether the inquiry is assigned to the given staff profile
func (i *Inquiry) IsAssignedTo(agentID uint) bool {
	return i.AssignedAgentID != nil && *i.AssignedAgentID == agentID
}

// Watermark returns the last-read timestamp for a viewer class
func (i *Inquiry) Watermark(vc ViewerClass) *time.Time {
	if vc == ViewerStaff {
		return i.LastReadAtStaff
	}
	return i.LastReadAtUser
}

// HasUnread reports whether the thread moved past the viewer class watermark
func (i *Inquiry) HasUnread(vc ViewerClass) bool {
	w := i.Watermark(vc)
	return w == nil || i.LastMessageAt.After(*w)
}

// InquiryMessage is one entry of an inquiry's append-only log
type InquiryMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	InquiryID  uint      `gorm:"not null;index:idx_inquiry_messages_thread,priority:1" json:"inquiry_id"`
	Inquiry    Inquiry   `gorm:"foreignKey:InquiryID" json:"-"`
	SenderID   uint      `gorm:"not null" json:"sender_id"`
	SenderRole Role      `gorm:"type:varchar(16);not null" json:"sender_role"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	CreatedAt  time.Time `gorm:"not null;index:idx_inquiry_messages_thread,priority:2" json:"created_at"`
}

// TableName specifies the table name for the InquiryMessage model
func (InquiryMessage) TableName() string {
	return "inquiry_messages"
}

// All lists every model the service migrates
func All() []interface{} {
	return []interface{}{&User{}, &Agent{}, &Property{}, &Inquiry{}, &InquiryMessage{}}
}
