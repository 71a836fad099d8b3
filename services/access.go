package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kendall-kelly/estate-inquiries-api/models"
	"github.com/kendall-kelly/estate-inquiries-api/repository"
)

// Action is a thing a caller may try to do with an inquiry
type Action int

const (
	ActionView Action = iota
	ActionMessage
	ActionClose
	ActionReassign
)

// ScopeKind tags which of the three views a scope grants
type ScopeKind int

const (
	ScopeBuyer ScopeKind = iota + 1
	ScopeAgent
	ScopeAdmin
)

// Scope is the capability set of one caller. Agent scopes carry the
// caller's staff profile id.
type Scope struct {
	Kind    ScopeKind
	Caller  models.Caller
	AgentID uint
}

// ViewerClass returns the watermark this scope reads and writes
func (s Scope) ViewerClass() models.ViewerClass {
	if s.Kind == ScopeBuyer {
		return models.ViewerBuyer
	}
	return models.ViewerStaff
}

// Permits decides whether the scope may perform action on inquiry.
// Callers that may not know the inquiry exists get a not-found error.
func (s Scope) Permits(inquiry *models.Inquiry, action Action) error {
	switch s.Kind {
	case ScopeAdmin:
		return nil

	case ScopeBuyer:
		if inquiry.UserID != s.Caller.UserID {
			return errInquiryNotFound()
		}
		if action == ActionView || action == ActionMessage {
			return nil
		}
		return errForbidden("Only staff can manage inquiries")

	case ScopeAgent:
		if action == ActionReassign {
			return errForbidden("Only admins can reassign inquiries")
		}
		if inquiry.IsAssignedTo(s.AgentID) {
			return nil
		}
		if action == ActionView {
			return errInquiryNotFound()
		}
		return errForbidden("You are not assigned to this inquiry")
	}
	return errForbidden("Unknown role")
}

// StaffDirectory maps user accounts to staff profiles
type StaffDirectory interface {
	FindAgentByLinkedUser(ctx context.Context, userID uint) (*models.Agent, error)
}

// InquiryFinder loads a single inquiry
type InquiryFinder interface {
	Find(ctx context.Context, id uint) (*models.Inquiry, error)
}

// AccessResolver turns callers into scopes and checks them against inquiries
type AccessResolver struct {
	staff     StaffDirectory
	inquiries InquiryFinder
}

// NewAccessResolver creates a resolver over the given lookups
func NewAccessResolver(staff StaffDirectory, inquiries InquiryFinder) *AccessResolver {
	return &AccessResolver{staff: staff, inquiries: inquiries}
}

// Resolve selects the scope for a caller's role
func (r *AccessResolver) Resolve(ctx context.Context, caller models.Caller) (Scope, error) {
	switch caller.Role {
	case models.RoleUser:
		return Scope{Kind: ScopeBuyer, Caller: caller}, nil
	case models.RoleAdmin:
		return Scope{Kind: ScopeAdmin, Caller: caller}, nil
	case models.RoleAgent:
		agent, err := r.staff.FindAgentByLinkedUser(ctx, caller.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return Scope{}, errProfileMissing()
		}
		if err != nil {
			return Scope{}, fmt.Errorf("failed to resolve agent profile: %w", err)
		}
		return Scope{Kind: ScopeAgent, Caller: caller, AgentID: agent.ID}, nil
	}
	return Scope{}, errForbidden("Unknown role")
}

// Authorize loads the inquiry and checks that the caller may perform action on it
func (r *AccessResolver) Authorize(ctx context.Context, caller models.Caller, inquiryID uint, action Action) (*models.Inquiry, Scope, error) {
	scope, err := r.Resolve(ctx, caller)
	if err != nil {
		return nil, Scope{}, err
	}

	inquiry, err := r.inquiries.Find(ctx, inquiryID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, Scope{}, errInquiryNotFound()
	}
	if err != nil {
		return nil, Scope{}, fmt.Errorf("failed to load inquiry: %w", err)
	}

	if err := scope.Permits(inquiry, action); err != nil {
		return nil, Scope{}, err
	}
	return inquiry, scope, nil
}

// TopicEntitled reports whether caller may subscribe to a notification topic
func TopicEntitled(caller models.Caller, topic string) bool {
	var prefix string
	switch caller.Role {
	case models.RoleAdmin:
		prefix = "admin/"
	case models.RoleAgent:
		prefix = fmt.Sprintf("agents/%d/", caller.UserID)
	case models.RoleUser:
		prefix = fmt.Sprintf("users/%d/", caller.UserID)
	default:
		return false
	}
	return strings.HasPrefix(topic, prefix) && !strings.Contains(topic, "..")
}
