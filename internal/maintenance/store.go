package maintenance

import "context"

// Store persists maintenance requests together with their proposal slot.
// Implementations must return aggregates the caller may mutate freely
// (copies, not shared references). Per-request write serialization is the
// engine's job; stores only need individual operations to be atomic.
type Store interface {
	CreateRequest(ctx context.Context, req *MaintenanceRequest) error
	GetRequest(ctx context.Context, id string) (*MaintenanceRequest, error)
	UpdateRequest(ctx context.Context, req *MaintenanceRequest) error
	ListRequests(ctx context.Context) ([]*MaintenanceRequest, error)
}
