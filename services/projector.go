package services

import (
	"context"
	"time"

	"github.com/kendall-kelly/estate-inquiries-api/logger"
	"github.com/kendall-kelly/estate-inquiries-api/models"
)

const (
	previewLength     = 100
	previewEllipsis   = "..."
	adminSenderName   = "Admin"
	unknownSenderName = "Unknown"
)

// InquiryView is the outward summary of an inquiry for one viewer class
type InquiryView struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`

	PropertyID        uint     `json:"property_id"`
	PropertyTitle     string   `json:"property_title"`
	PropertyAddress   string   `json:"property_address"`
	PropertyImage     string   `json:"property_image"`
	PropertyPrice     *float64 `json:"property_price"`
	PropertyBedrooms  *int     `json:"property_bedrooms"`
	PropertyBathrooms *int     `json:"property_bathrooms"`
	PropertyAreaSqFt  *float64 `json:"property_area_sq_ft"`
	PropertyType      string   `json:"property_type"`

	AssignedAgentID           *uint  `json:"assigned_agent_id"`
	AssignedAgentName         string `json:"assigned_agent_name,omitempty"`
	AssignedAgentProfileImage string `json:"assigned_agent_profile_image,omitempty"`
	AssignedAgentPhone        string `json:"assigned_agent_phone,omitempty"`
	AssignedAgentTitle        string `json:"assigned_agent_title,omitempty"`

	Status             models.InquiryStatus `json:"status"`
	LastMessagePreview string               `json:"last_message_preview"`
	LastMessageAt      time.Time            `json:"last_message_at"`
	CreatedAt          time.Time            `json:"created_at"`
	HasUnread          bool                 `json:"has_unread"`
}

// MessageView is the outward form of one message
type MessageView struct {
	ID         uint        `json:"id"`
	InquiryID  uint        `json:"inquiry_id"`
	SenderID   uint        `json:"sender_id"`
	SenderName string      `json:"sender_name"`
	SenderRole models.Role `json:"sender_role"`
	Text       string      `json:"text"`
	CreatedAt  time.Time   `json:"created_at"`
}

// UserLookup resolves sender display names
type UserLookup interface {
	FindUser(ctx context.Context, id uint) (*models.User, error)
}

// Projector composes views. It only reads.
type Projector struct {
	users  UserLookup
	images ImageService
}

// NewProjector creates a projector; images may be nil when no storage is configured
func NewProjector(users UserLookup, images ImageService) *Projector {
	return &Projector{users: users, images: images}
}

// Preview shortens a message for list views
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + previewEllipsis
}

// Inquiry projects inquiry for viewer class vc. last is the newest message
// of the thread, or nil for an empty log.
func (p *Projector) Inquiry(inquiry *models.Inquiry, last *models.InquiryMessage, vc models.ViewerClass) InquiryView {
	view := InquiryView{
		ID:        inquiry.ID,
		UserID:    inquiry.UserID,
		UserName:  inquiry.User.Name,
		UserEmail: inquiry.User.Email,

		PropertyID:        inquiry.PropertyID,
		PropertyTitle:     inquiry.Property.Title,
		PropertyAddress:   inquiry.Property.Address,
		PropertyImage:     p.imageURL(inquiry.Property.ImageKey),
		PropertyPrice:     inquiry.Property.Price,
		PropertyBedrooms:  inquiry.Property.Bedrooms,
		PropertyBathrooms: inquiry.Property.Bathrooms,
		PropertyAreaSqFt:  inquiry.Property.AreaSqFt,
		PropertyType:      string(inquiry.Property.Type),

		AssignedAgentID: inquiry.AssignedAgentID,

		Status:        inquiry.Status,
		LastMessageAt: inquiry.LastMessageAt,
		CreatedAt:     inquiry.CreatedAt,
		HasUnread:     inquiry.HasUnread(vc),
	}

	if agent := inquiry.AssignedAgent; agent != nil {
		view.AssignedAgentName = agent.Name
		view.AssignedAgentProfileImage = p.imageURL(agent.ProfileImageKey)
		view.AssignedAgentPhone = agent.Phone
		view.AssignedAgentTitle = agent.Title
	}
	if last != nil {
		view.LastMessagePreview = Preview(last.Text)
	}
	return view
}

// Messages projects a log, resolving each sender once
func (p *Projector) Messages(ctx context.Context, messages []models.InquiryMessage) []MessageView {
	names := make(map[uint]string)
	views := make([]MessageView, 0, len(messages))
	for i := range messages {
		views = append(views, p.message(ctx, &messages[i], names))
	}
	return views
}

// Message projects a single message
func (p *Projector) Message(ctx context.Context, msg *models.InquiryMessage) MessageView {
	return p.message(ctx, msg, nil)
}

func (p *Projector) message(ctx context.Context, msg *models.InquiryMessage, names map[uint]string) MessageView {
	return MessageView{
		ID:         msg.ID,
		InquiryID:  msg.InquiryID,
		SenderID:   msg.SenderID,
		SenderName: p.senderName(ctx, msg, names),
		SenderRole: msg.SenderRole,
		Text:       msg.Text,
		CreatedAt:  msg.CreatedAt,
	}
}

func (p *Projector) senderName(ctx context.Context, msg *models.InquiryMessage, names map[uint]string) string {
	if msg.SenderRole == models.RoleAdmin {
		return adminSenderName
	}
	if name, ok := names[msg.SenderID]; ok {
		return name
	}

	name := unknownSenderName
	if user, err := p.users.FindUser(ctx, msg.SenderID); err == nil {
		name = user.Name
	}
	if names != nil {
		names[msg.SenderID] = name
	}
	return name
}

func (p *Projector) imageURL(key *string) string {
	if p.images == nil || key == nil || *key == "" {
		return ""
	}
	url, err := p.images.GetImageURL(*key)
	if err != nil {
		logger.Get().Warn().Err(err).Str("key", *key).Msg("failed to resolve image URL")
		return ""
	}
	return url
}
