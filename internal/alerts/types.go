package alerts

import "time"

// Task type constants
const (
	TaskWelcomeEmail  = "email:welcome"
	TaskVisitProposed = "email:visit_proposed"
	TaskVisitAccepted = "email:visit_accepted"
	TaskRequestClosed = "email:request_closed"
	TaskMessageNew    = "email:message_new"
)

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Welcome email payload
type WelcomeEmailPayload struct {
	UserID   string        `json:"user_id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

// VisitProposedPayload notifies the counterparty that a visit slot is on the table
type VisitProposedPayload struct {
	RequestID     string        `json:"request_id"`
	RequestTitle  string        `json:"request_title"`
	ProposedBy    string        `json:"proposed_by"`
	ScheduledDate string        `json:"scheduled_date"`
	ScheduledTime string        `json:"scheduled_time"`
	Email         string        `json:"email"`
	Envelope      EmailEnvelope `json:"envelope"`
	SentAt        time.Time     `json:"sent_at"`
}

// VisitAcceptedPayload notifies the proposing side that the slot is confirmed
type VisitAcceptedPayload struct {
	RequestID     string        `json:"request_id"`
	RequestTitle  string        `json:"request_title"`
	AcceptedBy    string        `json:"accepted_by"`
	ScheduledDate string        `json:"scheduled_date"`
	ScheduledTime string        `json:"scheduled_time"`
	Email         string        `json:"email"`
	Envelope      EmailEnvelope `json:"envelope"`
	SentAt        time.Time     `json:"sent_at"`
}

// MessageNewPayload notifies the other party of the thread about a new message
type MessageNewPayload struct {
	RequestID   string        `json:"request_id"`
	SenderID    string        `json:"sender_id"`
	RecipientID string        `json:"recipient_id"`
	Content     string        `json:"content"`
	Email       string        `json:"email"`
	Envelope    EmailEnvelope `json:"envelope"`
	SentAt      time.Time     `json:"sent_at"`
}

// RequestClosedPayload notifies an interested party that a request was cancelled or rejected
type RequestClosedPayload struct {
	RequestID    string        `json:"request_id"`
	RequestTitle string        `json:"request_title"`
	Status       string        `json:"status"`
	Email        string        `json:"email"`
	Envelope     EmailEnvelope `json:"envelope"`
	SentAt       time.Time     `json:"sent_at"`
}
