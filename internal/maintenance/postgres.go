package maintenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists requests in maintenance_requests with the proposal
// slot in visit_schedules (one row per request, enforced by a UNIQUE
// constraint). Updates run in a transaction with a FOR UPDATE lock on the
// request row so the single-writer discipline holds across processes too.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CreateRequest(ctx context.Context, req *MaintenanceRequest) error {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO maintenance_requests
            (id, property_id, requested_by, title, description, category,
             priority, status, assigned_provider_id, scheduled_date,
             scheduled_time, visit_duration, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, '')::uuid, $10, $11, $12, $13, $14)`,
		req.ID, req.PropertyID, req.RequestedBy, req.Title, req.Description,
		req.Category, string(req.Priority), string(req.Status),
		req.AssignedProviderID, req.ScheduledDate, req.ScheduledTime,
		req.VisitDuration, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting maintenance request: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRequest(ctx context.Context, id string) (*MaintenanceRequest, error) {
	req, err := s.scanRequest(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *PostgresStore) UpdateRequest(ctx context.Context, req *MaintenanceRequest) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning update: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked string
	err = tx.QueryRow(ctx,
		`SELECT id FROM maintenance_requests WHERE id = $1 FOR UPDATE`, req.ID,
	).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("locking maintenance request: %w", err)
	}

	_, err = tx.Exec(ctx, `
        UPDATE maintenance_requests
        SET status = $2, assigned_provider_id = NULLIF($3, '')::uuid,
            scheduled_date = $4, scheduled_time = $5, visit_duration = $6,
            updated_at = $7
        WHERE id = $1`,
		req.ID, string(req.Status), req.AssignedProviderID,
		req.ScheduledDate, req.ScheduledTime, req.VisitDuration, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating maintenance request: %w", err)
	}

	if p := req.CurrentProposal; p != nil {
		_, err = tx.Exec(ctx, `
            INSERT INTO visit_schedules
                (id, maintenance_id, scheduled_date, scheduled_time,
                 estimated_duration, status, proposed_by, contact_person,
                 contact_phone, special_instructions, accepted_by,
                 accepted_at, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''), $12, $13)
            ON CONFLICT (maintenance_id) DO UPDATE SET
                id = EXCLUDED.id,
                scheduled_date = EXCLUDED.scheduled_date,
                scheduled_time = EXCLUDED.scheduled_time,
                estimated_duration = EXCLUDED.estimated_duration,
                status = EXCLUDED.status,
                proposed_by = EXCLUDED.proposed_by,
                contact_person = EXCLUDED.contact_person,
                contact_phone = EXCLUDED.contact_phone,
                special_instructions = EXCLUDED.special_instructions,
                accepted_by = EXCLUDED.accepted_by,
                accepted_at = EXCLUDED.accepted_at,
                created_at = EXCLUDED.created_at`,
			p.ID, req.ID, p.ScheduledDate, p.ScheduledTime,
			p.EstimatedDurationMinutes, string(p.Status), string(p.ProposedByRole),
			p.ContactPerson, p.ContactPhone, p.SpecialInstructions,
			string(p.AcceptedByRole), p.AcceptedAt, p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("upserting visit proposal: %w", err)
		}
	} else {
		if _, err := tx.Exec(ctx,
			`DELETE FROM visit_schedules WHERE maintenance_id = $1`, req.ID,
		); err != nil {
			return fmt.Errorf("clearing visit proposal: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing update: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRequests(ctx context.Context) ([]*MaintenanceRequest, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT id FROM maintenance_requests ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing maintenance requests: %w", err)
	}
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning request id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating request ids: %w", err)
	}

	out := make([]*MaintenanceRequest, 0, len(ids))
	for _, id := range ids {
		req, err := s.scanRequest(ctx, s.pool, id)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}

// querier lets scanRequest run against either the pool or a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PostgresStore) scanRequest(ctx context.Context, q querier, id string) (*MaintenanceRequest, error) {
	// A malformed id can never match a row; surfacing the cast error as a
	// lookup failure keeps this store in step with MemoryStore.
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrRequestNotFound
	}
	req := &MaintenanceRequest{}
	var priority, status string
	err := q.QueryRow(ctx, `
        SELECT id, property_id, requested_by, title, description,
               COALESCE(category, ''), priority, status,
               COALESCE(assigned_provider_id::text, ''),
               COALESCE(scheduled_date, ''), COALESCE(scheduled_time, ''),
               COALESCE(visit_duration, 0), created_at, updated_at
        FROM maintenance_requests WHERE id = $1`, id,
	).Scan(
		&req.ID, &req.PropertyID, &req.RequestedBy, &req.Title,
		&req.Description, &req.Category, &priority, &status,
		&req.AssignedProviderID, &req.ScheduledDate, &req.ScheduledTime,
		&req.VisitDuration, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("reading maintenance request: %w", err)
	}
	req.Priority = Priority(priority)
	req.Status = RequestStatus(status)

	p := &VisitProposal{}
	var pStatus, proposedBy, acceptedBy string
	err = q.QueryRow(ctx, `
        SELECT id, maintenance_id, scheduled_date, scheduled_time,
               estimated_duration, status, proposed_by,
               COALESCE(contact_person, ''), COALESCE(contact_phone, ''),
               COALESCE(special_instructions, ''), COALESCE(accepted_by, ''),
               accepted_at, created_at
        FROM visit_schedules WHERE maintenance_id = $1`, id,
	).Scan(
		&p.ID, &p.MaintenanceRequestID, &p.ScheduledDate, &p.ScheduledTime,
		&p.EstimatedDurationMinutes, &pStatus, &proposedBy,
		&p.ContactPerson, &p.ContactPhone, &p.SpecialInstructions,
		&acceptedBy, &p.AcceptedAt, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return req, nil
		}
		return nil, fmt.Errorf("reading visit proposal: %w", err)
	}
	p.Status = ProposalStatus(pStatus)
	p.ProposedByRole = Role(proposedBy)
	p.AcceptedByRole = Role(acceptedBy)
	req.CurrentProposal = p
	return req, nil
}
