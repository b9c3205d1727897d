package messaging

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/renthub-cl/renthub/internal/db"
)

// threadParties resolves who may read and write the negotiation thread of a
// maintenance request: the user who opened it and the user behind the
// assigned provider (empty until a provider is assigned).
func threadParties(ctx context.Context, requestID string) (requesterID, providerUserID string, err error) {
	err = db.Conn.QueryRow(ctx,
		`SELECT r.requested_by, COALESCE(p.user_id::text, '')
		 FROM maintenance_requests r
		 LEFT JOIN providers p ON p.id = r.assigned_provider_id
		 WHERE r.id = $1`, requestID,
	).Scan(&requesterID, &providerUserID)
	return
}

// otherParty returns the counterparty for a given participant, or "" when
// the user is not part of the thread. Admins pass the participant check in
// the handlers separately.
func otherParty(userID, requesterID, providerUserID string) string {
	switch userID {
	case requesterID:
		return providerUserID
	case providerUserID:
		return requesterID
	}
	return ""
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "admin"
}

// canViewThread applies the same access rule on every read path: the two
// parties plus platform admins.
func canViewThread(c echo.Context, userID, requesterID, providerUserID string) bool {
	return userID == requesterID || userID == providerUserID || isAdmin(c)
}

func notFoundOrFail(c echo.Context, err error) error {
	if err == pgx.ErrNoRows {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "maintenance request not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch request"})
}
