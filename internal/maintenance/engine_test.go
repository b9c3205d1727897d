package maintenance

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func newTestEngine(t *testing.T) (*Engine, *MaintenanceRequest) {
	t.Helper()
	e := NewEngine(NewMemoryStore())
	req, err := e.Create(context.Background(), &MaintenanceRequest{
		PropertyID:  "prop-1",
		RequestedBy: "user-1",
		Title:       "Leaking kitchen faucet",
		Description: "Dripping since last week",
		Priority:    PriorityHigh,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return e, req
}

func assignTestProvider(t *testing.T, e *Engine, id string) {
	t.Helper()
	if _, err := e.AssignProvider(context.Background(), id, "prov-1"); err != nil {
		t.Fatalf("assign provider: %v", err)
	}
}

func proposal(date, hhmm string) ProposeInput {
	return ProposeInput{ScheduledDate: date, ScheduledTime: hhmm}
}

func TestCreateOpensRequest(t *testing.T) {
	_, req := newTestEngine(t)
	if req.Status != StatusOpen {
		t.Errorf("status = %q, want %q", req.Status, StatusOpen)
	}
	if req.CurrentProposal != nil {
		t.Error("new request must have an empty proposal slot")
	}
}

func TestProposeWithoutProviderFails(t *testing.T) {
	e, req := newTestEngine(t)

	_, err := e.Propose(context.Background(), req.ID, RoleBroker, proposal("2026-09-10", "10:00"))
	if !errors.Is(err, ErrNoProviderAssigned) {
		t.Fatalf("err = %v, want ErrNoProviderAssigned", err)
	}
}

func TestOwnerProposesVisit(t *testing.T) {
	e, req := newTestEngine(t)
	assignTestProvider(t, e, req.ID)

	m, err := e.Propose(context.Background(), req.ID, RoleOwner, ProposeInput{
		ScheduledDate:   "2026-09-10",
		ScheduledTime:   "10:00",
		DurationMinutes: 120,
		ContactPerson:   "Maria",
		ContactPhone:    "+56 9 1234 5678",
	})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if m.Status != StatusPendingConfirmation {
		t.Errorf("status = %q, want %q", m.Status, StatusPendingConfirmation)
	}
	p := m.CurrentProposal
	if p == nil {
		t.Fatal("expected a proposal in the slot")
	}
	if p.Status != ProposalProposed {
		t.Errorf("proposal status = %q, want %q", p.Status, ProposalProposed)
	}
	if p.ProposedByRole != RoleOwner {
		t.Errorf("proposed_by = %q, want OWNER", p.ProposedByRole)
	}
	if p.EstimatedDurationMinutes != 120 {
		t.Errorf("duration = %d, want 120", p.EstimatedDurationMinutes)
	}
}

func TestProposeDefaultsDuration(t *testing.T) {
	e, req := newTestEngine(t)
	assignTestProvider(t, e, req.ID)

	m, err := e.Propose(context.Background(), req.ID, RoleOwner, proposal("2026-09-10", "10:00"))
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if got := m.CurrentProposal.EstimatedDurationMinutes; got != DefaultVisitDuration {
		t.Errorf("duration = %d, want %d", got, DefaultVisitDuration)
	}
}

func TestSameSideCannotProposeTwice(t *testing.T) {
	e, req := newTestEngine(t)
	assignTestProvider(t, e, req.ID)
	ctx := context.Background()

	if _, err := e.Propose(ctx, req.ID, RoleOwner, proposal("2026-09-10", "10:00")); err != nil {
		t.Fatalf("first propose: %v", err)
	}

	// The owner's own offer is outstanding: every requester-side role is
	// blocked, not just the one that proposed.
	for _, r := range []Role{RoleOwner, RoleBroker, RoleAdmin} {
		if _, err := e.Propose(ctx, req.ID, r, proposal("2026-09-11", "11:00")); !errors.Is(err, ErrAlreadyProposed) {
			t.Errorf("%s re-propose err = %v, want ErrAlreadyProposed", r, err)
		}
	}
}

func TestProviderCounterProposalReplacesSlot(t *testing.T) {
	e, req := newTestEngine(t)
	assignTestProvider(t, e, req.ID)
	ctx := context.Background()

	if _, err := e.Propose(ctx, req.ID, RoleOwner, ProposeInput{
		ScheduledDate:       "2026-09-10",
		ScheduledTime:       "10:00",
		ContactPerson:       "Maria",
		ContactPhone:        "+56 9 1234 5678",
		SpecialInstructions: "ring apartment 4B",
	}); err != nil {
		t.Fatalf("owner propose: %v", err)
	}

	m, err := e.Propose(ctx, req.ID, RoleProvider, proposal("2026-09-11", "09:00"))
	if err != nil {
		t.Fatalf("provider counter: %v", err)
	}
	p := m.CurrentProposal
	if p.ProposedByRole != RoleProvider {
		t.Errorf("proposed_by = %q, want PROVIDER", p.ProposedByRole)
	}
	if p.ScheduledDate != "2026-09-11" || p.ScheduledTime != "09:00" {
		t.Errorf("slot not replaced: %s %s", p.ScheduledDate, p.ScheduledTime)
	}
	// Contact metadata carries over from the superseded offer.
	if p.ContactPerson != "Maria" || p.ContactPhone != "+56 9 1234 5678" {
		t.Errorf("contact not carried forward: %q %q", p.ContactPerson, p.ContactPhone)
	}
	if p.SpecialInstructions != "ring apartment 4B" {
		t.Errorf("instructions not carried forward: %q", p.SpecialInstructions)
	}
}

func TestAcceptRequiresOppositeSide(t *testing.T) {
	e, req := newTestEngine(t)
	assignTestProvider(t, e, req.ID)
	ctx := context.Background()

	if _, err := e.Propose(ctx, req.ID, RoleProvider, proposal("2026-09-11", "09:00")); err != nil {
		t.Fatalf("propose: %v", err)
	}

	if _, err := e.Accept(ctx, req.ID, RoleProvider); !errors.Is(err, ErrSelfAcceptance) {
		t.Fatalf("self accept err = %v, want ErrSelfAcceptance", err)
	}

	m, err := e.Accept(ctx, req.ID, RoleOwner)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if m.Status != StatusScheduled {
		t.Errorf("status = %q, want %q", m.Status, StatusScheduled)
	}
	p := m.CurrentProposal
	if p.Status != ProposalAccepted {
		t.Errorf("proposal status = %q, want %q", p.Status, ProposalAccepted)
	}
	if p.AcceptedByRole != RoleOwner {
		t.Errorf("accepted_by = %q, want OWNER", p.AcceptedByRole)
	}
	if p.AcceptedAt == nil {
		t.Error("accepted_at not set")
	}
	// Confirmed appointment copied onto the request.
	if m.ScheduledDate != "2026-09-11" || m.ScheduledTime != "09:00" {
		t.Errorf("appointment not copied: %s %s", m.ScheduledDate, m.ScheduledTime)
	}
	if m.VisitDuration != DefaultVisitDuration {
		t.Errorf("visit duration = %d, want %d", m.VisitDuration, DefaultVisitDuration)
	}
}

func TestAcceptWithoutProposal(t *testing.T) {
	e, req := newTestEngine(t)
	assignTestProvider(t, e, req.ID)

	if _, err := e.Accept(context.Background(), req.ID, RoleOwner); !errors.Is(err, ErrNoProposal) {
		t.Fatalf("err = %v, want ErrNoProposal", err)
	}
}

func TestNegotiationClosedAfterScheduling(t *testing.T) {
	e, req := newTestEngine(t)
	assignTestProvider(t, e, req.ID)
	ctx := context.Background()

	if _, err := e.Propose(ctx, req.ID, RoleOwner, proposal("2026-09-10", "10:00")); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := e.Accept(ctx, req.ID, RoleProvider); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := e.Propose(ctx, req.ID, RoleOwner, proposal("2026-09-12", "10:00")); !errors.Is(err, ErrRequestClosed) {
		t.Errorf("propose after schedule err = %v, want ErrRequestClosed", err)
	}
	if _, err := e.Accept(ctx, req.ID, RoleOwner); !errors.Is(err, ErrRequestClosed) {
		t.Errorf("accept after schedule err = %v, want ErrRequestClosed", err)
	}
}

func TestCancelledRequestRefusesNegotiation(t *testing.T) {
	e, req := newTestEngine(t)
	assignTestProvider(t, e, req.ID)
	ctx := context.Background()

	if _, err := e.Propose(ctx, req.ID, RoleOwner, proposal("2026-09-10", "10:00")); err != nil {
		t.Fatalf("propose: %v", err)
	}
	// Cancellation is safe while a proposal is outstanding.
	if _, err := e.Cancel(ctx, req.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := e.Propose(ctx, req.ID, RoleProvider, proposal("2026-09-11", "09:00")); !errors.Is(err, ErrRequestClosed) {
		t.Errorf("propose err = %v, want ErrRequestClosed", err)
	}
	if _, err := e.Accept(ctx, req.ID, RoleProvider); !errors.Is(err, ErrRequestClosed) {
		t.Errorf("accept err = %v, want ErrRequestClosed", err)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	e, req := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Cancel(ctx, req.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	m, err := e.Cancel(ctx, req.ID)
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if m.Status != StatusCancelled {
		t.Errorf("status = %q, want %q", m.Status, StatusCancelled)
	}
}

func TestTurnAlternation(t *testing.T) {
	e, req := newTestEngine(t)
	assignTestProvider(t, e, req.ID)
	ctx := context.Background()

	// Ping-pong: owner, provider, broker, provider. After each successful
	// propose the slot holds exactly one offer and the proposing side is
	// blocked until the other side moves.
	moves := []Role{RoleOwner, RoleProvider, RoleBroker, RoleProvider}
	for i, actor := range moves {
		m, err := e.Propose(ctx, req.ID, actor, proposal("2026-09-10", "10:00"))
		if err != nil {
			t.Fatalf("move %d (%s): %v", i, actor, err)
		}
		if m.CurrentProposal.ProposedByRole != actor {
			t.Fatalf("move %d: slot held by %q, want %q", i, m.CurrentProposal.ProposedByRole, actor)
		}
		if _, err := e.Propose(ctx, req.ID, actor, proposal("2026-09-10", "11:00")); !errors.Is(err, ErrAlreadyProposed) {
			t.Fatalf("move %d: same side re-propose err = %v, want ErrAlreadyProposed", i, err)
		}
	}
}

func TestStartAndCompleteFlow(t *testing.T) {
	e, req := newTestEngine(t)
	assignTestProvider(t, e, req.ID)
	ctx := context.Background()

	if _, err := e.Start(ctx, req.ID, RoleProvider); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("start before schedule err = %v, want ErrInvalidTransition", err)
	}

	if _, err := e.Propose(ctx, req.ID, RoleOwner, proposal("2026-09-10", "10:00")); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := e.Accept(ctx, req.ID, RoleProvider); err != nil {
		t.Fatalf("accept: %v", err)
	}

	m, err := e.Start(ctx, req.ID, RoleProvider)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if m.Status != StatusInProgress {
		t.Errorf("status = %q, want %q", m.Status, StatusInProgress)
	}

	if _, err := e.Start(ctx, req.ID, RoleOwner); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("owner start err = %v, want ErrInvalidRole", err)
	}

	m, err = e.Complete(ctx, req.ID, RoleProvider)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if m.Status != StatusCompleted {
		t.Errorf("status = %q, want %q", m.Status, StatusCompleted)
	}

	if _, err := e.Cancel(ctx, req.ID); !errors.Is(err, ErrRequestClosed) {
		t.Errorf("cancel completed err = %v, want ErrRequestClosed", err)
	}
}

func TestConcurrentSameSideProposals(t *testing.T) {
	e, req := newTestEngine(t)
	assignTestProvider(t, e, req.ID)

	// Two requester-side proposals race; exactly one may win the slot, the
	// loser must observe the conflict, never a silent overwrite.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.Propose(context.Background(), req.ID, RoleOwner, proposal("2026-09-10", "10:00"))
		}(i)
	}
	wg.Wait()

	var won, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrAlreadyProposed):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 || conflicted != 1 {
		t.Fatalf("won=%d conflicted=%d, want exactly one of each", won, conflicted)
	}
}

func TestOperationsOnUnknownRequest(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Propose(ctx, "nope", RoleOwner, proposal("2026-09-10", "10:00")); !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("propose err = %v, want ErrRequestNotFound", err)
	}
	if _, err := e.Accept(ctx, "nope", RoleOwner); !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("accept err = %v, want ErrRequestNotFound", err)
	}
	if _, err := e.Get(ctx, "nope"); !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("get err = %v, want ErrRequestNotFound", err)
	}
}

func TestInvalidRoleRejected(t *testing.T) {
	e, req := newTestEngine(t)
	assignTestProvider(t, e, req.ID)
	ctx := context.Background()

	if _, err := e.Propose(ctx, req.ID, Role("TENANT"), proposal("2026-09-10", "10:00")); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("propose err = %v, want ErrInvalidRole", err)
	}
	if _, err := e.Accept(ctx, req.ID, Role("")); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("accept err = %v, want ErrInvalidRole", err)
	}
}
