package maintenance

// Notifier receives negotiation outcomes for delivery to the parties.
// Delivery is best-effort; implementations must not block the command path
// on failures.
type Notifier interface {
	VisitProposed(req *MaintenanceRequest, p *VisitProposal)
	VisitAccepted(req *MaintenanceRequest, p *VisitProposal)
	RequestClosed(req *MaintenanceRequest)
}

type nopNotifier struct{}

func (nopNotifier) VisitProposed(*MaintenanceRequest, *VisitProposal) {}
func (nopNotifier) VisitAccepted(*MaintenanceRequest, *VisitProposal) {}
func (nopNotifier) RequestClosed(*MaintenanceRequest)                 {}
