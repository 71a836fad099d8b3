package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kendall-kelly/estate-inquiries-api/models"
	"github.com/kendall-kelly/estate-inquiries-api/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockUserLookup is a testify mock of UserLookup
type MockUserLookup struct {
	mock.Mock
}

func (m *MockUserLookup) FindUser(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func strPtr(s string) *string { return &s }

func TestPreview(t *testing.T) {
	assert.Equal(t, "", Preview(""))
	assert.Equal(t, "short", Preview("short"))

	exact := strings.Repeat("x", 100)
	assert.Equal(t, exact, Preview(exact), "exactly 100 characters is not truncated")

	long := strings.Repeat("y", 150)
	assert.Equal(t, strings.Repeat("y", 100)+"...", Preview(long))

	multibyte := strings.Repeat("ü", 101)
	assert.Equal(t, strings.Repeat("ü", 100)+"...", Preview(multibyte))
}

func TestProjector_Inquiry(t *testing.T) {
	price := 320000.0
	beds := 2
	agentID := uint(3)
	readAt := t0.Add(-time.Minute)
	inquiry := &models.Inquiry{
		ID:     7,
		UserID: 1,
		User:   models.User{ID: 1, Name: "Bea Buyer", Email: "bea@example.com"},
		Property: models.Property{
			ID: 4, Title: "Harbour Loft", Address: "12 Harbour Street", Price: &price,
			Bedrooms: &beds, Type: models.PropertyTypeRent, ImageKey: strPtr("properties/loft.png"),
		},
		PropertyID:      4,
		AssignedAgentID: &agentID,
		AssignedAgent: &models.Agent{
			ID: 3, Name: "Al Agent", Title: "Lettings", Phone: "555", ProfileImageKey: strPtr("agents/missing.png"),
		},
		Status:          models.StatusReplied,
		CreatedAt:       t0.Add(-time.Hour),
		LastMessageAt:   t0,
		LastReadAtUser:  &readAt,
		LastReadAtStaff: &t0,
	}
	last := &models.InquiryMessage{Text: strings.Repeat("z", 120)}

	projector := NewProjector(new(MockUserLookup), NewS3ImageService(NewMockS3Service("properties/loft.png")))

	buyerView := projector.Inquiry(inquiry, last, models.ViewerBuyer)
	assert.Equal(t, uint(7), buyerView.ID)
	assert.Equal(t, "Bea Buyer", buyerView.UserName)
	assert.Equal(t, "Harbour Loft", buyerView.PropertyTitle)
	assert.Equal(t, "RENT", buyerView.PropertyType)
	assert.Equal(t, &price, buyerView.PropertyPrice)
	assert.Contains(t, buyerView.PropertyImage, "properties/loft.png")
	assert.Equal(t, "Al Agent", buyerView.AssignedAgentName)
	assert.Equal(t, "Lettings", buyerView.AssignedAgentTitle)
	assert.Empty(t, buyerView.AssignedAgentProfileImage, "unresolvable images are left empty")
	assert.Equal(t, strings.Repeat("z", 100)+"...", buyerView.LastMessagePreview)
	assert.True(t, buyerView.HasUnread, "buyer watermark is before the last message")

	staffView := projector.Inquiry(inquiry, last, models.ViewerStaff)
	assert.False(t, staffView.HasUnread, "staff watermark equals the last message")
}

func TestProjector_InquiryWithoutAgentOrMessages(t *testing.T) {
	inquiry := &models.Inquiry{ID: 7, Status: models.StatusPending, CreatedAt: t0, LastMessageAt: t0}

	view := NewProjector(new(MockUserLookup), nil).Inquiry(inquiry, nil, models.ViewerStaff)
	assert.Nil(t, view.AssignedAgentID)
	assert.Empty(t, view.AssignedAgentName)
	assert.Empty(t, view.PropertyImage)
	assert.Equal(t, "", view.LastMessagePreview)
	assert.True(t, view.HasUnread, "a nil watermark is always unread")
}

func TestProjector_SenderNames(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserLookup)
	users.On("FindUser", ctx, uint(1)).Return(&models.User{ID: 1, Name: "Bea Buyer"}, nil).Once()
	users.On("FindUser", ctx, uint(2)).Return(nil, repository.ErrNotFound).Once()

	messages := []models.InquiryMessage{
		{ID: 1, SenderID: 1, SenderRole: models.RoleUser, Text: "Interested"},
		{ID: 2, SenderID: 99, SenderRole: models.RoleAdmin, Text: "Hello from the office"},
		{ID: 3, SenderID: 2, SenderRole: models.RoleAgent, Text: "I have left the agency"},
		{ID: 4, SenderID: 1, SenderRole: models.RoleUser, Text: "Thanks"},
	}

	views := NewProjector(users, nil).Messages(ctx, messages)

	assert.Len(t, views, 4)
	assert.Equal(t, "Bea Buyer", views[0].SenderName)
	assert.Equal(t, "Admin", views[1].SenderName)
	assert.Equal(t, "Unknown", views[2].SenderName)
	assert.Equal(t, "Bea Buyer", views[3].SenderName, "resolved from the per-call cache")
	assert.Equal(t, models.RoleAgent, views[2].SenderRole)

	users.AssertExpectations(t)
}
