package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kendall-kelly/estate-inquiries-api/models"
)

// EventType names a notification
type EventType string

const (
	EventInquiryCreated    EventType = "inquiry.created"
	EventMessageCreated    EventType = "message.created"
	EventInquiryReassigned EventType = "inquiry.reassigned"
	EventInquiryClosed     EventType = "inquiry.closed"
)

// Event is one notification addressed to one topic
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	Topic      string      `json:"topic"`
	InquiryID  uint        `json:"inquiry_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// Notifier accepts events for delivery. Implementations must return
// without waiting on subscribers.
type Notifier interface {
	Notify(event Event)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(event Event)

func (f NotifierFunc) Notify(event Event) { f(event) }

func AdminInquiriesTopic() string {
	return "admin/inquiries"
}

func AdminInquiryTopic(inquiryID uint) string {
	return fmt.Sprintf("admin/inquiries/%d", inquiryID)
}

func AgentInquiriesTopic(agentUserID uint) string {
	return fmt.Sprintf("agents/%d/inquiries", agentUserID)
}

func AgentInquiryTopic(agentUserID, inquiryID uint) string {
	return fmt.Sprintf("agents/%d/inquiries/%d", agentUserID, inquiryID)
}

func UserInquiryTopic(userID, inquiryID uint) string {
	return fmt.Sprintf("users/%d/inquiries/%d", userID, inquiryID)
}

// agentUserID returns the account behind the inquiry's assigned agent, if any
func agentUserID(agent *models.Agent) (uint, bool) {
	if agent == nil || agent.LinkedUserID == nil {
		return 0, false
	}
	return *agent.LinkedUserID, true
}

func createdTopics(inquiry *models.Inquiry) []string {
	topics := []string{AdminInquiriesTopic()}
	if uid, ok := agentUserID(inquiry.AssignedAgent); ok {
		topics = append(topics, AgentInquiriesTopic(uid))
	}
	return topics
}

func messageTopics(inquiry *models.Inquiry, senderRole models.Role) []string {
	if senderRole.IsStaff() {
		return []string{UserInquiryTopic(inquiry.UserID, inquiry.ID)}
	}
	topics := []string{AdminInquiryTopic(inquiry.ID)}
	if uid, ok := agentUserID(inquiry.AssignedAgent); ok {
		topics = append(topics, AgentInquiryTopic(uid, inquiry.ID))
	}
	return topics
}

func reassignedTopics(newAgent *models.Agent) []string {
	if uid, ok := agentUserID(newAgent); ok {
		return []string{AgentInquiriesTopic(uid)}
	}
	return nil
}

func closedTopics(inquiry *models.Inquiry) []string {
	return []string{UserInquiryTopic(inquiry.UserID, inquiry.ID), AdminInquiryTopic(inquiry.ID)}
}

// Fanout addresses inquiry events to every entitled topic. Recipients are
// computed from the participants at the moment of the event.
type Fanout struct {
	notifier Notifier
	now      func() time.Time
}

// NewFanout creates a fanout over notifier; a nil notifier discards events
func NewFanout(notifier Notifier, now func() time.Time) *Fanout {
	return &Fanout{notifier: notifier, now: now}
}

func (f *Fanout) InquiryCreated(inquiry *models.Inquiry, view InquiryView) {
	f.publish(createdTopics(inquiry), EventInquiryCreated, inquiry.ID, view)
}

func (f *Fanout) MessageCreated(inquiry *models.Inquiry, senderRole models.Role, view MessageView) {
	f.publish(messageTopics(inquiry, senderRole), EventMessageCreated, inquiry.ID, view)
}

func (f *Fanout) InquiryReassigned(inquiry *models.Inquiry, newAgent *models.Agent, view InquiryView) {
	f.publish(reassignedTopics(newAgent), EventInquiryReassigned, inquiry.ID, view)
}

func (f *Fanout) InquiryClosed(inquiry *models.Inquiry, view InquiryView) {
	f.publish(closedTopics(inquiry), EventInquiryClosed, inquiry.ID, view)
}

func (f *Fanout) publish(topics []string, typ EventType, inquiryID uint, data interface{}) {
	if f.notifier == nil {
		return
	}
	at := f.now()
	for _, topic := range topics {
		f.notifier.Notify(Event{
			ID:         uuid.NewString(),
			Type:       typ,
			Topic:      topic,
			InquiryID:  inquiryID,
			OccurredAt: at,
			Data:       data,
		})
	}
}
