package maintenance

import "time"

// Ledger owns the single visit-proposal slot on a maintenance request. It
// operates on the aggregate the engine has already loaded and locked; the
// engine commits the mutated aggregate to the store afterwards. The ledger
// performs no notification of its own.
type Ledger struct{}

// Current returns the proposal slot, nil when empty.
func (Ledger) Current(req *MaintenanceRequest) *VisitProposal {
	return req.CurrentProposal
}

// PutOrReplace unconditionally overwrites the slot with p. Fails when the
// request has no assigned provider: no provider, no proposal.
func (Ledger) PutOrReplace(req *MaintenanceRequest, p *VisitProposal) error {
	if req.AssignedProviderID == "" {
		return ErrNoProviderAssigned
	}
	p.MaintenanceRequestID = req.ID
	req.CurrentProposal = p
	return nil
}

// MarkAccepted settles the outstanding proposal, recording who accepted and
// when. The slot remains as the record of the confirmed appointment.
func (Ledger) MarkAccepted(req *MaintenanceRequest, by Role, at time.Time) (*VisitProposal, error) {
	p := req.CurrentProposal
	if p == nil {
		return nil, ErrNoProposal
	}
	if p.Status == ProposalAccepted {
		return nil, ErrAlreadyAccepted
	}
	p.Status = ProposalAccepted
	p.AcceptedByRole = by
	p.AcceptedAt = &at
	return p, nil
}
