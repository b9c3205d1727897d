package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runGuard(t *testing.T, mw echo.MiddlewareFunc, role string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	c := echo.New().NewContext(r, w)
	if role != "" {
		c.Set("role", role)
	}

	reached := false
	handler := mw(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	return w, reached
}

func TestRequireRolesBlocksOtherRoles(t *testing.T) {
	guard := RequireRoles("admin")
	for _, role := range []string{"tenant", "provider", "owner", "broker", ""} {
		w, reached := runGuard(t, guard, role)
		if reached {
			t.Errorf("role %q reached handler", role)
		}
		if w.Code != http.StatusForbidden {
			t.Errorf("role %q: status = %d, want 403", role, w.Code)
		}
	}
}

func TestRequireRolesAllowsListedRole(t *testing.T) {
	guard := RequireRoles("owner", "broker", "admin")
	for _, role := range []string{"owner", "broker", "admin"} {
		w, reached := runGuard(t, guard, role)
		if !reached {
			t.Errorf("role %q did not reach handler", role)
		}
		if w.Code != http.StatusOK {
			t.Errorf("role %q: status = %d, want 200", role, w.Code)
		}
	}
}

func TestAdminGuard(t *testing.T) {
	if _, reached := runGuard(t, AdminGuard, "tenant"); reached {
		t.Error("tenant passed AdminGuard")
	}
	if _, reached := runGuard(t, AdminGuard, "admin"); !reached {
		t.Error("admin blocked by AdminGuard")
	}
}
