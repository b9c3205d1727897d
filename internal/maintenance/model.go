package maintenance

import "time"

// Role identifies who is acting on a maintenance request. The first three
// roles act on behalf of the property (requester side); PROVIDER is the
// assigned maintenance provider (provider side). Every command takes the
// acting role explicitly; nothing in this package reads ambient identity.
type Role string

const (
	RoleOwner    Role = "OWNER"
	RoleBroker   Role = "BROKER"
	RoleAdmin    Role = "ADMIN"
	RoleProvider Role = "PROVIDER"
)

// Valid reports whether the role can take part in visit negotiation.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleBroker, RoleAdmin, RoleProvider:
		return true
	}
	return false
}

// Side is the two-party partition of negotiation roles. Turn alternation is
// expressed over sides, never over individual roles.
type Side string

const (
	RequesterSide Side = "REQUESTER"
	ProviderSide  Side = "PROVIDER"
)

// Side returns which side of the negotiation the role belongs to.
// Only meaningful for valid roles.
func (r Role) Side() Side {
	if r == RoleProvider {
		return ProviderSide
	}
	return RequesterSide
}

// SameSide reports whether two roles sit on the same side of the table.
func SameSide(a, b Role) bool {
	return a.Side() == b.Side()
}

// RequestStatus is the lifecycle status of a maintenance request.
type RequestStatus string

const (
	StatusOpen                RequestStatus = "OPEN"
	StatusAssigned            RequestStatus = "ASSIGNED"
	StatusQuotePending        RequestStatus = "QUOTE_PENDING"
	StatusQuoteApproved       RequestStatus = "QUOTE_APPROVED"
	StatusPendingConfirmation RequestStatus = "PENDING_CONFIRMATION"
	StatusScheduled           RequestStatus = "SCHEDULED"
	StatusInProgress          RequestStatus = "IN_PROGRESS"
	StatusCompleted           RequestStatus = "COMPLETED"
	StatusRejected            RequestStatus = "REJECTED"
	StatusCancelled           RequestStatus = "CANCELLED"
)

// Priority of a maintenance request.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// ValidPriority reports whether p is a recognized priority.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ProposalStatus is the state of the visit-proposal slot. A rejected or
// withdrawn proposal is never retained; superseding it with a counter
// proposal is the only decline action.
type ProposalStatus string

const (
	ProposalProposed ProposalStatus = "PROPOSED"
	ProposalAccepted ProposalStatus = "ACCEPTED"
)

// DefaultVisitDuration is used when a proposal does not carry its own
// estimated duration, in minutes.
const DefaultVisitDuration = 120

// VisitProposal is the single scheduling offer currently on the table for a
// maintenance request. ProposedByRole identifies whose turn it is: the
// opposite side must accept or counter.
type VisitProposal struct {
	ID                       string         `json:"id"`
	MaintenanceRequestID     string         `json:"maintenance_request_id"`
	ScheduledDate            string         `json:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime            string         `json:"scheduled_time"` // HH:MM
	EstimatedDurationMinutes int            `json:"estimated_duration_minutes"`
	Status                   ProposalStatus `json:"status"`
	ProposedByRole           Role           `json:"proposed_by_role"`
	ContactPerson            string         `json:"contact_person,omitempty"`
	ContactPhone             string         `json:"contact_phone,omitempty"`
	SpecialInstructions      string         `json:"special_instructions,omitempty"`
	AcceptedByRole           Role           `json:"accepted_by_role,omitempty"`
	AcceptedAt               *time.Time     `json:"accepted_at,omitempty"`
	CreatedAt                time.Time      `json:"created_at"`
}

// MaintenanceRequest is the aggregate the negotiation runs against: its
// status plus the single current proposal slot.
type MaintenanceRequest struct {
	ID                 string        `json:"id"`
	PropertyID         string        `json:"property_id"`
	RequestedBy        string        `json:"requested_by"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	Category           string        `json:"category,omitempty"`
	Priority           Priority      `json:"priority"`
	Status             RequestStatus `json:"status"`
	AssignedProviderID string        `json:"assigned_provider_id,omitempty"`
	CurrentProposal    *VisitProposal `json:"current_proposal,omitempty"`

	// Confirmed appointment, copied from the proposal on acceptance.
	ScheduledDate string `json:"scheduled_date,omitempty"`
	ScheduledTime string `json:"scheduled_time,omitempty"`
	VisitDuration int    `json:"visit_duration,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the request so callers can hand aggregates
// across goroutines without aliasing the store's copy.
func (m *MaintenanceRequest) Clone() *MaintenanceRequest {
	if m == nil {
		return nil
	}
	out := *m
	if m.CurrentProposal != nil {
		p := *m.CurrentProposal
		if m.CurrentProposal.AcceptedAt != nil {
			at := *m.CurrentProposal.AcceptedAt
			p.AcceptedAt = &at
		}
		out.CurrentProposal = &p
	}
	return &out
}
