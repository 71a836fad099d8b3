package services

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kendall-kelly/estate-inquiries-api/models"
)

// MaxMessageLength bounds message text, counted in characters
const MaxMessageLength = 1000

var validate = validator.New()

type messageInput struct {
	Text string `validate:"required,max=1000"`
}

// normalizeText trims and bounds message text
func normalizeText(text string) (string, error) {
	input := messageInput{Text: strings.TrimSpace(text)}
	if err := validate.Struct(input); err != nil {
		if input.Text == "" {
			return "", errValidation("Message text is required")
		}
		return "", errValidation("Message text must be at most 1000 characters")
	}
	return input.Text, nil
}

// newInquiry builds a PENDING inquiry owned by caller and assigned to the
// property's current agent
func newInquiry(owner models.Caller, property *models.Property, now time.Time) *models.Inquiry {
	var agentID *uint
	if property.AgentID != nil {
		id := *property.AgentID
		agentID = &id
	}
	return &models.Inquiry{
		UserID:          owner.UserID,
		PropertyID:      property.ID,
		AssignedAgentID: agentID,
		Status:          models.StatusPending,
		CreatedAt:       now,
		LastMessageAt:   now,
		LastReadAtUser:  &now,
	}
}

// messageTime keeps thread activity monotonic and never before creation
func messageTime(inquiry *models.Inquiry, now time.Time) time.Time {
	if now.Before(inquiry.LastMessageAt) {
		now = inquiry.LastMessageAt
	}
	if now.Before(inquiry.CreatedAt) {
		now = inquiry.CreatedAt
	}
	return now
}

// applyMessage moves inquiry through the transition a new message from a
// sender with role causes. It returns the timestamp the message carries.
func applyMessage(inquiry *models.Inquiry, role models.Role, now time.Time) (time.Time, error) {
	if inquiry.Status == models.StatusClosed {
		return time.Time{}, errInquiryClosed()
	}

	at := messageTime(inquiry, now)
	inquiry.LastMessageAt = at

	if role.IsStaff() {
		inquiry.Status = models.StatusReplied
		inquiry.LastReadAtStaff = &at
	} else {
		if inquiry.Status == models.StatusReplied {
			inquiry.Status = models.StatusPending
		}
		inquiry.LastReadAtUser = &at
	}
	return at, nil
}

// applyRead moves the watermark of vc
func applyRead(inquiry *models.Inquiry, vc models.ViewerClass, now time.Time) {
	at := now
	if vc == models.ViewerStaff {
		inquiry.LastReadAtStaff = &at
	} else {
		inquiry.LastReadAtUser = &at
	}
}
