package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/kendall-kelly/estate-inquiries-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InquiryRepository persists inquiries and their message logs
type InquiryRepository struct {
	db *gorm.DB
}

// NewInquiryRepository creates a repository over the given connection
func NewInquiryRepository(db *gorm.DB) *InquiryRepository {
	return &InquiryRepository{db: db}
}

// withRelations preloads everything the view projection reads
func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Property").Preload("AssignedAgent")
}

// Find loads one inquiry with its owner, property and assigned agent
func (r *InquiryRepository) Find(ctx context.Context, id uint) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	if err := withRelations(r.db.WithContext(ctx)).First(&inquiry, id).Error; err != nil {
		return nil, translate(err)
	}
	return &inquiry, nil
}

// FindByOwner lists a buyer's inquiries, most recently active first
func (r *InquiryRepository) FindByOwner(ctx context.Context, userID uint, status *models.InquiryStatus) ([]models.Inquiry, error) {
	return r.list(ctx, status, "user_id = ?", userID)
}

// FindByAssignedAgent lists inquiries assigned to a staff profile
func (r *InquiryRepository) FindByAssignedAgent(ctx context.Context, agentID uint, status *models.InquiryStatus) ([]models.Inquiry, error) {
	return r.list(ctx, status, "assigned_agent_id = ?", agentID)
}

// FindAll lists every inquiry
func (r *InquiryRepository) FindAll(ctx context.Context, status *models.InquiryStatus) ([]models.Inquiry, error) {
	return r.list(ctx, status, "")
}

func (r *InquiryRepository) list(ctx context.Context, status *models.InquiryStatus, where string, args ...interface{}) ([]models.Inquiry, error) {
	query := withRelations(r.db.WithContext(ctx))
	if where != "" {
		query = query.Where(where, args...)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var inquiries []models.Inquiry
	if err := query.Order("last_message_at DESC").Order("id DESC").Find(&inquiries).Error; err != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}
	return inquiries, nil
}

// Create inserts a new inquiry together with its first message
func (r *InquiryRepository) Create(ctx context.Context, inquiry *models.Inquiry, first *models.InquiryMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(inquiry).Error; err != nil {
			return fmt.Errorf("failed to create inquiry: %w", err)
		}

		first.InquiryID = inquiry.ID
		if err := tx.Omit(clause.Associations).Create(first).Error; err != nil {
			return fmt.Errorf("failed to create first message: %w", err)
		}
		return nil
	})
}

// AppendMessage inserts msg and writes the inquiry's new status, activity
// time and the sender's watermark. Both writes commit or neither does; if
// the inquiry was closed in the meantime the insert is rolled back and
// ErrInquiryClosed is returned.
func (r *InquiryRepository) AppendMessage(ctx context.Context, inquiry *models.Inquiry, msg *models.InquiryMessage) error {
	senderClass := models.ViewerClassFor(msg.SenderRole)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msg.InquiryID = inquiry.ID
		if err := tx.Omit(clause.Associations).Create(msg).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}

		res := tx.Model(&models.Inquiry{}).
			Where("id = ? AND status <> ?", inquiry.ID, models.StatusClosed).
			Updates(map[string]interface{}{
				"status":                     inquiry.Status,
				"last_message_at":            inquiry.LastMessageAt,
				watermarkColumn(senderClass): inquiry.Watermark(senderClass),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update inquiry: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInquiryClosed
		}
		return nil
	})
}

// UpdateStatus sets the status of an inquiry
func (r *InquiryRepository) UpdateStatus(ctx context.Context, id uint, status models.InquiryStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Inquiry{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update inquiry status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAssignment points an inquiry at a different staff profile
func (r *InquiryRepository) UpdateAssignment(ctx context.Context, id uint, agentID uint) error {
	res := r.db.WithContext(ctx).Model(&models.Inquiry{}).Where("id = ?", id).Update("assigned_agent_id", agentID)
	if res.Error != nil {
		return fmt.Errorf("failed to reassign inquiry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkRead moves one watermark. Only that column is written.
func (r *InquiryRepository) MarkRead(ctx context.Context, id uint, vc models.ViewerClass, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Inquiry{}).
		Where("id = ?", id).
		UpdateColumn(watermarkColumn(vc), at).Error
	if err != nil {
		return fmt.Errorf("failed to mark inquiry read: %w", err)
	}
	return nil
}

// FindMessages returns an inquiry's log in creation order
func (r *InquiryRepository) FindMessages(ctx context.Context, inquiryID uint) ([]models.InquiryMessage, error) {
	var messages []models.InquiryMessage
	err := r.db.WithContext(ctx).
		Where("inquiry_id = ?", inquiryID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return messages, nil
}

// LastMessage returns the newest message of an inquiry, or nil when the
// log is empty
func (r *InquiryRepository) LastMessage(ctx context.Context, inquiryID uint) (*models.InquiryMessage, error) {
	var messages []models.InquiryMessage
	err := r.db.WithContext(ctx).
		Where("inquiry_id = ?", inquiryID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(1).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch last message: %w", err)
	}
	if len(messages) == 0 {
		return nil, nil
	}
	return &messages[0], nil
}

func watermarkColumn(vc models.ViewerClass) string {
	if vc == models.ViewerStaff {
		return "last_read_at_staff"
	}
	return "last_read_at_user"
}
