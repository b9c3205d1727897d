package auth

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/renthub-cl/renthub/internal/alerts"
	"github.com/renthub-cl/renthub/internal/db"
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
}

type SignupResponse struct {
	Token string `json:"token"`
}

// signupRoles are the roles a user may self-select at signup. Admins are
// promoted through cmd/adminutil, never via the public API.
var signupRoles = map[string]bool{
	"tenant":   true,
	"owner":    true,
	"broker":   true,
	"provider": true,
}

// ===== Signup =====
func Signup(c echo.Context) error {
	req := new(SignupRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	role := req.Role
	if role == "" {
		role = "tenant"
	}
	if !signupRoles[role] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	// Hash password
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	ctx := context.Background()
	var userID string
	err = db.Conn.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, uuid.New().String(), req.Name, req.Email, string(hashed), role).Scan(&userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already exists or invalid role"})
	}

	signed, err := issueToken(userID, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
	}

	// Best-effort welcome email; signup succeeds regardless
	if err := alerts.EnqueueWelcomeEmail(userID, req.Email, req.Name); err != nil {
		log.Printf("[auth] welcome email enqueue failed for %s: %v", userID, err)
	}

	return c.JSON(http.StatusOK, SignupResponse{Token: signed})
}

// issueToken signs a 72h HS256 token carrying the user id and role.
func issueToken(userID, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
