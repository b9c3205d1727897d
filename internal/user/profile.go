package user

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/renthub-cl/renthub/internal/db"
)

// GET /user/:id/profile
// Public view: name, role, contact phone. Used by counterparties to reach
// the person behind a request or a provider account.
func GetPublicProfile(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing user id"})
	}

	var (
		id        string
		name      string
		phone     string
		avatarURL string
		role      string
		createdAt time.Time
	)

	query := `
		SELECT id, name, COALESCE(phone, ''), COALESCE(avatar_url, ''), role, created_at
		FROM users
		WHERE id = $1
	`

	err := db.Conn.QueryRow(context.Background(), query, userID).Scan(
		&id,
		&name,
		&phone,
		&avatarURL,
		&role,
		&createdAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch user"})
	}

	profile := echo.Map{
		"id":         id,
		"name":       name,
		"phone":      phone,
		"avatar_url": avatarURL,
		"role":       role,
		"created_at": createdAt.Format(time.RFC3339),
	}

	return c.JSON(http.StatusOK, profile)
}

type UpdateProfileRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatar_url"`
}

// PATCH /user/profile
func UpdateProfile(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or missing token"})
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	query := `
		UPDATE users
		SET name = COALESCE(NULLIF($1, ''), name),
		    phone = COALESCE(NULLIF($2, ''), phone),
		    avatar_url = COALESCE(NULLIF($3, ''), avatar_url)
		WHERE id = $4
	`
	_, err := db.Conn.Exec(c.Request().Context(), query, req.Name, req.Phone, req.AvatarURL, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "profile updated successfully",
	})
}
