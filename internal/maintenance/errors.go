package maintenance

import "errors"

// All negotiation failures are client-correctable business-rule violations.
// Nothing here is retried automatically; the caller fixes the precondition
// and re-issues the command.
var (
	// ErrRequestNotFound: no maintenance request with that id.
	ErrRequestNotFound = errors.New("maintenance request not found")

	// ErrNoProviderAssigned: negotiation requires an assigned provider.
	ErrNoProviderAssigned = errors.New("no maintenance provider assigned to this request")

	// ErrAlreadyProposed: the acting side already has an outstanding offer
	// and must wait for the other side to accept or counter.
	ErrAlreadyProposed = errors.New("a proposal from this side is already outstanding")

	// ErrSelfAcceptance: acceptance must come from the counterpart side.
	ErrSelfAcceptance = errors.New("a side cannot accept its own proposal")

	// ErrNoProposal: accept called with no outstanding proposal.
	ErrNoProposal = errors.New("no outstanding visit proposal")

	// ErrAlreadyAccepted: the proposal slot is already settled.
	ErrAlreadyAccepted = errors.New("visit proposal already accepted")

	// ErrRequestClosed: the request is scheduled, in progress, or terminal;
	// no further negotiation is permitted.
	ErrRequestClosed = errors.New("maintenance request is closed to scheduling")

	// ErrInvalidRole: the role takes no part in visit negotiation.
	ErrInvalidRole = errors.New("role cannot take part in visit negotiation")

	// ErrInvalidTransition: the request is not in a status that permits the
	// attempted lifecycle move.
	ErrInvalidTransition = errors.New("invalid maintenance request status transition")

	// ErrProviderNotFound: the provider id is not in the directory.
	ErrProviderNotFound = errors.New("maintenance provider not found")
)
