package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/renthub-cl/renthub/internal/db"
)

// =========================
// Register - admin adds a provider to the directory
// =========================
func Register(c echo.Context) error {
	var req struct {
		UserID       string `json:"user_id"`
		BusinessName string `json:"business_name"`
		Specialty    string `json:"specialty"`
		Phone        string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil || req.BusinessName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "business_name is required"})
	}

	id := uuid.New().String()
	_, err := db.Conn.Exec(context.Background(), `
        INSERT INTO providers (id, user_id, business_name, specialty, phone, created_at)
        VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6)`,
		id, req.UserID, req.BusinessName, req.Specialty, req.Phone, time.Now(),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to register provider"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"provider_id": id})
}

// =========================
// List - browse the provider directory
// =========================
func List(c echo.Context) error {
	rows, err := db.Conn.Query(context.Background(), `
        SELECT id, COALESCE(user_id::text, ''), business_name,
               COALESCE(specialty, ''), COALESCE(phone, ''), created_at
        FROM providers ORDER BY business_name`)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch providers"})
	}
	defer rows.Close()

	var providers []Provider
	for rows.Next() {
		var p Provider
		if err := rows.Scan(&p.ID, &p.UserID, &p.BusinessName, &p.Specialty, &p.Phone, &p.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		providers = append(providers, p)
	}

	return c.JSON(http.StatusOK, echo.Map{"providers": providers})
}

// =========================
// Get - fetch one provider
// =========================
func Get(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing provider id in URL"})
	}

	var p Provider
	err := db.Conn.QueryRow(context.Background(), `
        SELECT id, COALESCE(user_id::text, ''), business_name,
               COALESCE(specialty, ''), COALESCE(phone, ''), created_at
        FROM providers WHERE id = $1`, id,
	).Scan(&p.ID, &p.UserID, &p.BusinessName, &p.Specialty, &p.Phone, &p.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "provider not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"provider": p})
}
