package admin

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/renthub-cl/renthub/internal/db"
)

// GET /admin/stats
func Stats(c echo.Context) error {
	ctx := context.Background()

	var users, providers, requests, visits, notifications int

	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&users)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM providers`).Scan(&providers)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM maintenance_requests`).Scan(&requests)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM visit_schedules`).Scan(&visits)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&notifications)

	return c.JSON(http.StatusOK, echo.Map{
		"users":                users,
		"providers":            providers,
		"maintenance_requests": requests,
		"visit_schedules":      visits,
		"notifications":        notifications,
	})
}
