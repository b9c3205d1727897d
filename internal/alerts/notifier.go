package alerts

import (
	"context"
	"encoding/json"
	"log"

	"github.com/renthub-cl/renthub/internal/db"
	"github.com/renthub-cl/renthub/internal/maintenance"
	"github.com/renthub-cl/renthub/internal/provider"
)

// VisitNotifier delivers negotiation outcomes to the two sides of a
// maintenance request: the requester party (owner/broker/admin who opened
// it) and the assigned provider. Delivery is best-effort; failures are
// logged and never surface to the caller.
type VisitNotifier struct{}

func (VisitNotifier) VisitProposed(req *maintenance.MaintenanceRequest, p *maintenance.VisitProposal) {
	// The side that did not propose is the one that has to answer.
	if p.ProposedByRole.Side() == maintenance.ProviderSide {
		notifyRequester(req, func(email string) error {
			return EnqueueVisitProposed(req.ID, req.Title, string(p.ProposedByRole), p.ScheduledDate, p.ScheduledTime, email)
		}, "visit_proposed", "Visit proposed", "A visit slot has been proposed for your maintenance request.")
	} else {
		notifyProvider(req, func(email string) error {
			return EnqueueVisitProposed(req.ID, req.Title, string(p.ProposedByRole), p.ScheduledDate, p.ScheduledTime, email)
		}, "visit_proposed", "Visit proposed", "A visit slot has been proposed for a request assigned to you.")
	}
}

func (VisitNotifier) VisitAccepted(req *maintenance.MaintenanceRequest, p *maintenance.VisitProposal) {
	// The proposing side learns its offer was taken.
	if p.ProposedByRole.Side() == maintenance.ProviderSide {
		notifyProvider(req, func(email string) error {
			return EnqueueVisitAccepted(req.ID, req.Title, string(p.AcceptedByRole), p.ScheduledDate, p.ScheduledTime, email)
		}, "visit_accepted", "Visit confirmed", "Your proposed visit slot was accepted; the request is scheduled.")
	} else {
		notifyRequester(req, func(email string) error {
			return EnqueueVisitAccepted(req.ID, req.Title, string(p.AcceptedByRole), p.ScheduledDate, p.ScheduledTime, email)
		}, "visit_accepted", "Visit confirmed", "Your proposed visit slot was accepted; the request is scheduled.")
	}
}

func (VisitNotifier) RequestClosed(req *maintenance.MaintenanceRequest) {
	msg := "Maintenance request closed as " + string(req.Status) + "."
	notifyRequester(req, func(email string) error {
		return EnqueueRequestClosed(req.ID, req.Title, string(req.Status), email)
	}, "request_closed", "Request closed", msg)
	if req.AssignedProviderID != "" {
		notifyProvider(req, func(email string) error {
			return EnqueueRequestClosed(req.ID, req.Title, string(req.Status), email)
		}, "request_closed", "Request closed", msg)
	}
}

// notifyRequester fans out to every requester-side party: the user who
// opened the request plus the property's owner and broker accounts,
// deduplicated so a broker who also opened the request hears once.
func notifyRequester(req *maintenance.MaintenanceRequest, send func(email string) error, ntype, title, body string) {
	if db.Conn == nil {
		return
	}
	for _, userID := range requesterParties(context.Background(), req) {
		deliver(req, userID, send, ntype, title, body)
	}
}

// requesterParties resolves the requester-side recipients for a request.
func requesterParties(ctx context.Context, req *maintenance.MaintenanceRequest) []string {
	ids := []string{req.RequestedBy}
	var ownerID, brokerID string
	err := db.Conn.QueryRow(ctx,
		`SELECT COALESCE(owner_id::text, ''), COALESCE(broker_id::text, '')
		 FROM properties WHERE id = $1`, req.PropertyID,
	).Scan(&ownerID, &brokerID)
	if err == nil {
		ids = append(ids, ownerID, brokerID)
	}
	return dedupeIDs(ids)
}

// dedupeIDs drops empty ids and duplicates, preserving order.
func dedupeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// notifyProvider maps the assigned provider to its backing user account
// before delivering.
func notifyProvider(req *maintenance.MaintenanceRequest, send func(email string) error, ntype, title, body string) {
	if db.Conn == nil || req.AssignedProviderID == "" {
		return
	}
	userID, err := provider.UserID(context.Background(), req.AssignedProviderID)
	if err != nil {
		log.Printf("[notify] provider lookup failed for %s: %v", req.AssignedProviderID, err)
		return
	}
	deliver(req, userID, send, ntype, title, body)
}

func deliver(req *maintenance.MaintenanceRequest, userID string, send func(email string) error, ntype, title, body string) {
	if db.Conn == nil || userID == "" {
		return
	}
	email, err := userEmail(context.Background(), userID)
	if err != nil {
		log.Printf("[notify] email lookup failed for user %s: %v", userID, err)
		return
	}
	if email != "" {
		if err := send(email); err != nil {
			log.Printf("[notify] enqueue failed for request %s: %v", req.ID, err)
		}
	}
	ref := req.ID
	meta, _ := json.Marshal(map[string]string{"request_id": req.ID, "status": string(req.Status)})
	metaStr := string(meta)
	if err := CreateNotification(userID, ntype, title, body, &ref, &metaStr); err != nil {
		log.Printf("[notify] notification insert failed for user %s: %v", userID, err)
	}
}

func userEmail(ctx context.Context, userID string) (string, error) {
	var email string
	err := db.Conn.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email)
	if err != nil {
		return "", err
	}
	return email, nil
}
