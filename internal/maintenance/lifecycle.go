package maintenance

// statusRank orders the forward progression of a request so the engine can
// enforce monotonicity without enumerating every pair of statuses. Terminal
// statuses are handled separately and carry no rank.
var statusRank = map[RequestStatus]int{
	StatusOpen:                0,
	StatusAssigned:            1,
	StatusQuotePending:        2,
	StatusQuoteApproved:       3,
	StatusPendingConfirmation: 4,
	StatusScheduled:           5,
	StatusInProgress:          6,
	StatusCompleted:           7,
}

// IsTerminal reports whether no further work happens on the request.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCancelled
}

// SchedulingClosed reports whether the negotiation window has closed: once a
// request is SCHEDULED or beyond, propose and accept both fail.
func (s RequestStatus) SchedulingClosed() bool {
	if s.IsTerminal() {
		return true
	}
	return statusRank[s] >= statusRank[StatusScheduled]
}

// onProposal returns the request status after a successful propose. The move
// to PENDING_CONFIRMATION is monotonic; a request already past that point is
// never regressed (the engine refuses closed requests before getting here).
func onProposal(s RequestStatus) RequestStatus {
	if statusRank[s] < statusRank[StatusPendingConfirmation] {
		return StatusPendingConfirmation
	}
	return s
}

// onAssign returns the status after a provider assignment. Only an OPEN
// request advances; quoting or negotiation statuses are left alone.
func onAssign(s RequestStatus) RequestStatus {
	if s == StatusOpen {
		return StatusAssigned
	}
	return s
}

// canStart gates the provider marking work as started.
func canStart(s RequestStatus) bool {
	return s == StatusScheduled
}

// canComplete gates the provider marking work as finished.
func canComplete(s RequestStatus) bool {
	return s == StatusInProgress
}
