package maintenance

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ProposeInput is the candidate visit carried by a propose command.
type ProposeInput struct {
	ScheduledDate       string
	ScheduledTime       string
	DurationMinutes     int
	ContactPerson       string
	ContactPhone        string
	SpecialInstructions string
}

// Engine applies negotiation and lifecycle commands to maintenance requests.
// It is the only writer of the proposal ledger. All mutating commands on the
// same request id are serialized through a per-request lock; commands on
// different requests run independently.
type Engine struct {
	store  Store
	ledger Ledger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates an engine over the given store.
func NewEngine(store Store) *Engine {
	return &Engine{
		store: store,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockRequest takes the per-request mutex and returns its unlock func.
func (e *Engine) lockRequest(id string) func() {
	e.mu.Lock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	e.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Create registers a new maintenance request in OPEN status.
func (e *Engine) Create(ctx context.Context, req *MaintenanceRequest) (*MaintenanceRequest, error) {
	now := e.now()
	req.ID = uuid.New().String()
	req.Status = StatusOpen
	req.AssignedProviderID = ""
	req.CurrentProposal = nil
	if req.Priority == "" {
		req.Priority = PriorityMedium
	}
	req.CreatedAt = now
	req.UpdatedAt = now
	if err := e.store.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Get returns the request including its current proposal. Read-only.
func (e *Engine) Get(ctx context.Context, requestID string) (*MaintenanceRequest, error) {
	return e.store.GetRequest(ctx, requestID)
}

// List returns every request. Used by the admin surface.
func (e *Engine) List(ctx context.Context) ([]*MaintenanceRequest, error) {
	return e.store.ListRequests(ctx)
}

// AssignProvider attaches a provider to the request, the precondition for
// any negotiation. Allowed until the negotiation window closes; an OPEN
// request advances to ASSIGNED, later statuses are left where they are.
func (e *Engine) AssignProvider(ctx context.Context, requestID, providerID string) (*MaintenanceRequest, error) {
	unlock := e.lockRequest(requestID)
	defer unlock()

	req, err := e.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status.SchedulingClosed() {
		return nil, ErrRequestClosed
	}
	req.AssignedProviderID = providerID
	req.Status = onAssign(req.Status)
	req.UpdatedAt = e.now()
	if err := e.store.UpdateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Propose puts a new offer in the proposal slot on behalf of actor. When the
// opposite side's offer is outstanding this is a counter-proposal and
// replaces it; when the acting side's own offer is outstanding the command
// is rejected and the actor must wait for the other side.
func (e *Engine) Propose(ctx context.Context, requestID string, actor Role, in ProposeInput) (*MaintenanceRequest, error) {
	if !actor.Valid() {
		return nil, ErrInvalidRole
	}
	unlock := e.lockRequest(requestID)
	defer unlock()

	req, err := e.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status.SchedulingClosed() {
		return nil, ErrRequestClosed
	}
	if req.AssignedProviderID == "" {
		return nil, ErrNoProviderAssigned
	}

	cur := e.ledger.Current(req)
	if cur != nil && cur.Status == ProposalProposed && SameSide(cur.ProposedByRole, actor) {
		return nil, ErrAlreadyProposed
	}

	p := &VisitProposal{
		ID:                       uuid.New().String(),
		ScheduledDate:            in.ScheduledDate,
		ScheduledTime:            in.ScheduledTime,
		EstimatedDurationMinutes: in.DurationMinutes,
		Status:                   ProposalProposed,
		ProposedByRole:           actor,
		ContactPerson:            in.ContactPerson,
		ContactPhone:             in.ContactPhone,
		SpecialInstructions:      in.SpecialInstructions,
		CreatedAt:                e.now(),
	}

	// A counter-offer inherits scheduling metadata the caller left blank.
	if cur != nil && cur.Status == ProposalProposed {
		if p.ContactPerson == "" {
			p.ContactPerson = cur.ContactPerson
		}
		if p.ContactPhone == "" {
			p.ContactPhone = cur.ContactPhone
		}
		if p.SpecialInstructions == "" {
			p.SpecialInstructions = cur.SpecialInstructions
		}
		if p.EstimatedDurationMinutes <= 0 {
			p.EstimatedDurationMinutes = cur.EstimatedDurationMinutes
		}
	}
	if p.EstimatedDurationMinutes <= 0 {
		p.EstimatedDurationMinutes = DefaultVisitDuration
	}

	if err := e.ledger.PutOrReplace(req, p); err != nil {
		return nil, err
	}
	req.Status = onProposal(req.Status)
	req.UpdatedAt = e.now()
	if err := e.store.UpdateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Accept settles the outstanding proposal. Only the side that did not make
// the offer may accept it; the request moves to SCHEDULED and the confirmed
// appointment is copied onto it.
func (e *Engine) Accept(ctx context.Context, requestID string, actor Role) (*MaintenanceRequest, error) {
	if !actor.Valid() {
		return nil, ErrInvalidRole
	}
	unlock := e.lockRequest(requestID)
	defer unlock()

	req, err := e.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status.SchedulingClosed() {
		return nil, ErrRequestClosed
	}

	cur := e.ledger.Current(req)
	if cur == nil {
		return nil, ErrNoProposal
	}
	if cur.Status == ProposalProposed && SameSide(cur.ProposedByRole, actor) {
		return nil, ErrSelfAcceptance
	}

	p, err := e.ledger.MarkAccepted(req, actor, e.now())
	if err != nil {
		return nil, err
	}
	req.Status = StatusScheduled
	req.ScheduledDate = p.ScheduledDate
	req.ScheduledTime = p.ScheduledTime
	req.VisitDuration = p.EstimatedDurationMinutes
	req.UpdatedAt = e.now()
	if err := e.store.UpdateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Start marks the visit as underway. Provider side only.
func (e *Engine) Start(ctx context.Context, requestID string, actor Role) (*MaintenanceRequest, error) {
	if actor != RoleProvider {
		return nil, ErrInvalidRole
	}
	unlock := e.lockRequest(requestID)
	defer unlock()

	req, err := e.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !canStart(req.Status) {
		return nil, ErrInvalidTransition
	}
	req.Status = StatusInProgress
	req.UpdatedAt = e.now()
	if err := e.store.UpdateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Complete marks the work as finished. Provider side only.
func (e *Engine) Complete(ctx context.Context, requestID string, actor Role) (*MaintenanceRequest, error) {
	if actor != RoleProvider {
		return nil, ErrInvalidRole
	}
	unlock := e.lockRequest(requestID)
	defer unlock()

	req, err := e.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !canComplete(req.Status) {
		return nil, ErrInvalidTransition
	}
	req.Status = StatusCompleted
	req.UpdatedAt = e.now()
	if err := e.store.UpdateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Cancel forces the request to CANCELLED. Idempotent: cancelling an already
// cancelled request succeeds without change, and it is safe to apply while a
// proposal is outstanding (subsequent negotiation fails with RequestClosed).
func (e *Engine) Cancel(ctx context.Context, requestID string) (*MaintenanceRequest, error) {
	return e.close(ctx, requestID, StatusCancelled)
}

// Reject forces the request to REJECTED. Idempotent like Cancel.
func (e *Engine) Reject(ctx context.Context, requestID string) (*MaintenanceRequest, error) {
	return e.close(ctx, requestID, StatusRejected)
}

func (e *Engine) close(ctx context.Context, requestID string, to RequestStatus) (*MaintenanceRequest, error) {
	unlock := e.lockRequest(requestID)
	defer unlock()

	req, err := e.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status == to {
		return req, nil
	}
	if req.Status.IsTerminal() {
		return nil, ErrRequestClosed
	}
	req.Status = to
	req.UpdatedAt = e.now()
	if err := e.store.UpdateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}
