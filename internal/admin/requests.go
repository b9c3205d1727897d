package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/renthub-cl/renthub/internal/db"
)

type AdminRequest struct {
	ID            string  `json:"id"`
	PropertyID    string  `json:"property_id"`
	RequestedBy   string  `json:"requested_by"`
	Title         string  `json:"title"`
	Status        string  `json:"status"`
	Priority      string  `json:"priority"`
	ProviderID    string  `json:"assigned_provider_id,omitempty"`
	ScheduledDate string  `json:"scheduled_date,omitempty"`
	ScheduledTime string  `json:"scheduled_time,omitempty"`
	ProposalState *string `json:"proposal_status,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// GET /admin/requests?status=OPEN
func ListRequests(c echo.Context) error {
	query := `SELECT r.id::text, r.property_id, r.requested_by::text, r.title, r.status, r.priority,
	                 COALESCE(r.assigned_provider_id::text, '') AS provider_id,
	                 COALESCE(r.scheduled_date, '') AS scheduled_date,
	                 COALESCE(r.scheduled_time, '') AS scheduled_time,
	                 vs.status AS proposal_status,
	                 r.created_at
	          FROM maintenance_requests r
	          LEFT JOIN visit_schedules vs ON vs.maintenance_id = r.id`
	args := []interface{}{}
	if status := c.QueryParam("status"); status != "" {
		query += ` WHERE r.status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY r.created_at DESC`

	rows, err := db.Conn.Query(context.Background(), query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch requests"})
	}
	defer rows.Close()

	var items []AdminRequest
	for rows.Next() {
		var r AdminRequest
		var created time.Time
		if err := rows.Scan(&r.ID, &r.PropertyID, &r.RequestedBy, &r.Title, &r.Status, &r.Priority,
			&r.ProviderID, &r.ScheduledDate, &r.ScheduledTime, &r.ProposalState, &created); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read request record"})
		}
		r.CreatedAt = created.UTC().Format(time.RFC3339)
		items = append(items, r)
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": items})
}
