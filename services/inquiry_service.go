package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kendall-kelly/estate-inquiries-api/logger"
	"github.com/kendall-kelly/estate-inquiries-api/models"
	"github.com/kendall-kelly/estate-inquiries-api/repository"
)

// InquiryStore is the durable storage of inquiries and message logs
type InquiryStore interface {
	InquiryFinder
	FindByOwner(ctx context.Context, userID uint, status *models.InquiryStatus) ([]models.Inquiry, error)
	FindByAssignedAgent(ctx context.Context, agentID uint, status *models.InquiryStatus) ([]models.Inquiry, error)
	FindAll(ctx context.Context, status *models.InquiryStatus) ([]models.Inquiry, error)
	Create(ctx context.Context, inquiry *models.Inquiry, first *models.InquiryMessage) error
	AppendMessage(ctx context.Context, inquiry *models.Inquiry, msg *models.InquiryMessage) error
	UpdateStatus(ctx context.Context, id uint, status models.InquiryStatus) error
	UpdateAssignment(ctx context.Context, id uint, agentID uint) error
	MarkRead(ctx context.Context, id uint, vc models.ViewerClass, at time.Time) error
	FindMessages(ctx context.Context, inquiryID uint) ([]models.InquiryMessage, error)
	LastMessage(ctx context.Context, inquiryID uint) (*models.InquiryMessage, error)
}

// Directory resolves the users, staff profiles and properties inquiries refer to
type Directory interface {
	UserLookup
	StaffDirectory
	FindAgent(ctx context.Context, id uint) (*models.Agent, error)
	FindProperty(ctx context.Context, id uint) (*models.Property, error)
}

// InquiryService runs inquiry operations on behalf of an explicit caller
type InquiryService struct {
	store     InquiryStore
	directory Directory
	access    *AccessResolver
	projector *Projector
	fanout    *Fanout
	now       func() time.Time
}

// NewInquiryService wires the messaging core. images and notifier may be nil.
func NewInquiryService(store InquiryStore, directory Directory, images ImageService, notifier Notifier) *InquiryService {
	s := &InquiryService{
		store:     store,
		directory: directory,
		access:    NewAccessResolver(directory, store),
		projector: NewProjector(directory, images),
	}
	s.now = func() time.Time { return time.Now().UTC() }
	s.fanout = NewFanout(notifier, s.clock)
	return s
}

// WithClock replaces the time source (tests)
func (s *InquiryService) WithClock(now func() time.Time) *InquiryService {
	s.now = now
	return s
}

func (s *InquiryService) clock() time.Time {
	return s.now()
}

// CreateInquiry opens a thread on a property with the buyer's first message
func (s *InquiryService) CreateInquiry(ctx context.Context, caller models.Caller, propertyID uint, text string) (*InquiryView, *MessageView, error) {
	if caller.Role != models.RoleUser {
		return nil, nil, errForbidden("Only buyers can create inquiries")
	}
	text, err := normalizeText(text)
	if err != nil {
		return nil, nil, err
	}

	property, err := s.directory.FindProperty(ctx, propertyID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, errPropertyNotFound()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load property: %w", err)
	}

	now := s.now()
	inquiry := newInquiry(caller, property, now)
	first := &models.InquiryMessage{
		SenderID:   caller.UserID,
		SenderRole: caller.Role,
		Text:       text,
		CreatedAt:  now,
	}
	if err := s.store.Create(ctx, inquiry, first); err != nil {
		return nil, nil, err
	}

	created, err := s.store.Find(ctx, inquiry.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reload inquiry: %w", err)
	}

	view := s.projector.Inquiry(created, first, models.ViewerBuyer)
	message := s.projector.Message(ctx, first)
	s.fanout.InquiryCreated(created, s.projector.Inquiry(created, first, models.ViewerStaff))

	logger.Get().Info().
		Str("user", caller.Email).
		Uint("inquiry_id", created.ID).
		Uint("property_id", property.ID).
		Msg("inquiry created")
	return &view, &message, nil
}

// ListInquiries returns the inquiries visible to caller, most recently
// active first. status narrows the list when set.
func (s *InquiryService) ListInquiries(ctx context.Context, caller models.Caller, status *models.InquiryStatus) ([]InquiryView, error) {
	scope, err := s.access.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}

	var inquiries []models.Inquiry
	switch scope.Kind {
	case ScopeBuyer:
		inquiries, err = s.store.FindByOwner(ctx, caller.UserID, status)
	case ScopeAgent:
		inquiries, err = s.store.FindByAssignedAgent(ctx, scope.AgentID, status)
	case ScopeAdmin:
		inquiries, err = s.store.FindAll(ctx, status)
	}
	if err != nil {
		return nil, err
	}

	views := make([]InquiryView, 0, len(inquiries))
	for i := range inquiries {
		last, err := s.store.LastMessage(ctx, inquiries[i].ID)
		if err != nil {
			return nil, err
		}
		views = append(views, s.projector.Inquiry(&inquiries[i], last, scope.ViewerClass()))
	}
	return views, nil
}

// GetInquiry returns one inquiry and marks it read for the caller's viewer class
func (s *InquiryService) GetInquiry(ctx context.Context, caller models.Caller, inquiryID uint) (*InquiryView, error) {
	inquiry, scope, err := s.access.Authorize(ctx, caller, inquiryID, ActionView)
	if err != nil {
		return nil, err
	}
	if err := s.markRead(ctx, inquiry, scope.ViewerClass()); err != nil {
		return nil, err
	}

	last, err := s.store.LastMessage(ctx, inquiry.ID)
	if err != nil {
		return nil, err
	}
	view := s.projector.Inquiry(inquiry, last, scope.ViewerClass())
	return &view, nil
}

// ListMessages returns an inquiry's log and marks it read for the caller's viewer class
func (s *InquiryService) ListMessages(ctx context.Context, caller models.Caller, inquiryID uint) ([]MessageView, error) {
	inquiry, scope, err := s.access.Authorize(ctx, caller, inquiryID, ActionView)
	if err != nil {
		return nil, err
	}
	if err := s.markRead(ctx, inquiry, scope.ViewerClass()); err != nil {
		return nil, err
	}

	messages, err := s.store.FindMessages(ctx, inquiry.ID)
	if err != nil {
		return nil, err
	}
	return s.projector.Messages(ctx, messages), nil
}

// SendMessage appends to an inquiry's log. Buyers send follow-ups, staff reply.
func (s *InquiryService) SendMessage(ctx context.Context, caller models.Caller, inquiryID uint, text string) (*MessageView, error) {
	text, err := normalizeText(text)
	if err != nil {
		return nil, err
	}

	inquiry, _, err := s.access.Authorize(ctx, caller, inquiryID, ActionMessage)
	if err != nil {
		return nil, err
	}

	at, err := applyMessage(inquiry, caller.Role, s.now())
	if err != nil {
		return nil, err
	}

	msg := &models.InquiryMessage{
		SenderID:   caller.UserID,
		SenderRole: caller.Role,
		Text:       text,
		CreatedAt:  at,
	}
	if err := s.store.AppendMessage(ctx, inquiry, msg); err != nil {
		if errors.Is(err, repository.ErrInquiryClosed) {
			return nil, errInquiryClosed()
		}
		return nil, err
	}

	view := s.projector.Message(ctx, msg)
	s.fanout.MessageCreated(inquiry, caller.Role, view)

	logger.Get().Info().
		Str("user", caller.Email).
		Str("role", string(caller.Role)).
		Uint("inquiry_id", inquiry.ID).
		Str("status", string(inquiry.Status)).
		Msg("inquiry message sent")
	return &view, nil
}

// Close ends a thread. Closing a closed inquiry succeeds without writing.
func (s *InquiryService) Close(ctx context.Context, caller models.Caller, inquiryID uint) (*InquiryView, error) {
	inquiry, scope, err := s.access.Authorize(ctx, caller, inquiryID, ActionClose)
	if err != nil {
		return nil, err
	}

	wasClosed := inquiry.Status == models.StatusClosed
	if !wasClosed {
		if err := s.store.UpdateStatus(ctx, inquiry.ID, models.StatusClosed); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, errInquiryNotFound()
			}
			return nil, err
		}
		inquiry.Status = models.StatusClosed
	}

	last, err := s.store.LastMessage(ctx, inquiry.ID)
	if err != nil {
		return nil, err
	}
	view := s.projector.Inquiry(inquiry, last, scope.ViewerClass())

	if !wasClosed {
		s.fanout.InquiryClosed(inquiry, s.projector.Inquiry(inquiry, last, models.ViewerBuyer))
		logger.Get().Info().Str("user", caller.Email).Uint("inquiry_id", inquiry.ID).Msg("inquiry closed")
	}
	return &view, nil
}

// Reassign hands an inquiry to another staff profile. Status and read
// watermarks are left as they are.
// TODO: decide whether the new agent should start with a cleared staff
// watermark; the staff side currently keeps the previous agent's read state.
func (s *InquiryService) Reassign(ctx context.Context, caller models.Caller, inquiryID uint, agentID uint) (*InquiryView, error) {
	inquiry, scope, err := s.access.Authorize(ctx, caller, inquiryID, ActionReassign)
	if err != nil {
		return nil, err
	}

	agent, err := s.directory.FindAgent(ctx, agentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errAgentNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load agent: %w", err)
	}

	if err := s.store.UpdateAssignment(ctx, inquiry.ID, agent.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInquiryNotFound()
		}
		return nil, err
	}
	id := agent.ID
	inquiry.AssignedAgentID = &id
	inquiry.AssignedAgent = agent

	last, err := s.store.LastMessage(ctx, inquiry.ID)
	if err != nil {
		return nil, err
	}
	view := s.projector.Inquiry(inquiry, last, scope.ViewerClass())
	s.fanout.InquiryReassigned(inquiry, agent, view)

	logger.Get().Info().Uint("inquiry_id", inquiry.ID).Uint("agent_id", agent.ID).Msg("inquiry reassigned")
	return &view, nil
}

func (s *InquiryService) markRead(ctx context.Context, inquiry *models.Inquiry, vc models.ViewerClass) error {
	now := s.now()
	if err := s.store.MarkRead(ctx, inquiry.ID, vc, now); err != nil {
		return err
	}
	applyRead(inquiry, vc, now)
	return nil
}
