package maintenance

import "testing"

func TestSidePartition(t *testing.T) {
	for _, r := range []Role{RoleOwner, RoleBroker, RoleAdmin} {
		if r.Side() != RequesterSide {
			t.Errorf("%s side = %q, want requester", r, r.Side())
		}
	}
	if RoleProvider.Side() != ProviderSide {
		t.Errorf("PROVIDER side = %q, want provider", RoleProvider.Side())
	}
	if SameSide(RoleOwner, RoleProvider) {
		t.Error("owner and provider must be on opposite sides")
	}
	if !SameSide(RoleBroker, RoleAdmin) {
		t.Error("broker and admin must share the requester side")
	}
}

func TestSchedulingClosed(t *testing.T) {
	open := []RequestStatus{StatusOpen, StatusAssigned, StatusQuotePending, StatusQuoteApproved, StatusPendingConfirmation}
	for _, s := range open {
		if s.SchedulingClosed() {
			t.Errorf("%s: scheduling should be open", s)
		}
	}
	closed := []RequestStatus{StatusScheduled, StatusInProgress, StatusCompleted, StatusRejected, StatusCancelled}
	for _, s := range closed {
		if !s.SchedulingClosed() {
			t.Errorf("%s: scheduling should be closed", s)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []RequestStatus{StatusCompleted, StatusRejected, StatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if StatusScheduled.IsTerminal() || StatusInProgress.IsTerminal() {
		t.Error("scheduled/in-progress are not terminal")
	}
}

func TestOnProposalMonotonic(t *testing.T) {
	cases := []struct {
		in, want RequestStatus
	}{
		{StatusAssigned, StatusPendingConfirmation},
		{StatusQuotePending, StatusPendingConfirmation},
		{StatusQuoteApproved, StatusPendingConfirmation},
		{StatusPendingConfirmation, StatusPendingConfirmation},
	}
	for _, c := range cases {
		if got := onProposal(c.in); got != c.want {
			t.Errorf("onProposal(%s) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestOnAssign(t *testing.T) {
	if got := onAssign(StatusOpen); got != StatusAssigned {
		t.Errorf("onAssign(OPEN) = %s, want ASSIGNED", got)
	}
	// Later statuses are never regressed by a reassignment.
	for _, s := range []RequestStatus{StatusQuotePending, StatusPendingConfirmation} {
		if got := onAssign(s); got != s {
			t.Errorf("onAssign(%s) = %s, want unchanged", s, got)
		}
	}
}
