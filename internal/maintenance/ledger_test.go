package maintenance

import (
	"errors"
	"testing"
	"time"
)

func TestPutOrReplaceRequiresProvider(t *testing.T) {
	var l Ledger
	req := &MaintenanceRequest{ID: "r1"}

	err := l.PutOrReplace(req, &VisitProposal{ID: "p1", Status: ProposalProposed})
	if !errors.Is(err, ErrNoProviderAssigned) {
		t.Fatalf("err = %v, want ErrNoProviderAssigned", err)
	}
	if req.CurrentProposal != nil {
		t.Error("slot must stay empty after a failed put")
	}
}

func TestPutOrReplaceOverwritesSlot(t *testing.T) {
	var l Ledger
	req := &MaintenanceRequest{ID: "r1", AssignedProviderID: "prov-1"}

	first := &VisitProposal{ID: "p1", Status: ProposalProposed, ProposedByRole: RoleOwner}
	if err := l.PutOrReplace(req, first); err != nil {
		t.Fatalf("first put: %v", err)
	}
	second := &VisitProposal{ID: "p2", Status: ProposalProposed, ProposedByRole: RoleProvider}
	if err := l.PutOrReplace(req, second); err != nil {
		t.Fatalf("second put: %v", err)
	}

	if req.CurrentProposal.ID != "p2" {
		t.Errorf("slot holds %q, want p2", req.CurrentProposal.ID)
	}
	if req.CurrentProposal.MaintenanceRequestID != "r1" {
		t.Errorf("owning request = %q, want r1", req.CurrentProposal.MaintenanceRequestID)
	}
}

func TestMarkAcceptedSettlesSlot(t *testing.T) {
	var l Ledger
	req := &MaintenanceRequest{ID: "r1", AssignedProviderID: "prov-1"}
	if err := l.PutOrReplace(req, &VisitProposal{ID: "p1", Status: ProposalProposed, ProposedByRole: RoleProvider}); err != nil {
		t.Fatalf("put: %v", err)
	}

	at := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	p, err := l.MarkAccepted(req, RoleOwner, at)
	if err != nil {
		t.Fatalf("mark accepted: %v", err)
	}
	if p.Status != ProposalAccepted {
		t.Errorf("status = %q, want ACCEPTED", p.Status)
	}
	if p.AcceptedByRole != RoleOwner || p.AcceptedAt == nil || !p.AcceptedAt.Equal(at) {
		t.Errorf("acceptance record wrong: by=%q at=%v", p.AcceptedByRole, p.AcceptedAt)
	}

	// The slot remains as the record of the confirmed appointment.
	if l.Current(req) == nil {
		t.Error("slot cleared after acceptance")
	}

	if _, err := l.MarkAccepted(req, RoleOwner, at); !errors.Is(err, ErrAlreadyAccepted) {
		t.Errorf("second accept err = %v, want ErrAlreadyAccepted", err)
	}
}

func TestMarkAcceptedEmptySlot(t *testing.T) {
	var l Ledger
	req := &MaintenanceRequest{ID: "r1", AssignedProviderID: "prov-1"}

	if _, err := l.MarkAccepted(req, RoleOwner, time.Now()); !errors.Is(err, ErrNoProposal) {
		t.Fatalf("err = %v, want ErrNoProposal", err)
	}
}
