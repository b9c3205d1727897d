package messaging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWithRole(role string) echo.Context {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	c := echo.New().NewContext(r, httptest.NewRecorder())
	c.Set("role", role)
	return c
}

func TestCanViewThreadParties(t *testing.T) {
	c := contextWithRole("owner")
	if !canViewThread(c, "req-1", "req-1", "prov-user-1") {
		t.Error("requester denied")
	}
	if !canViewThread(contextWithRole("provider"), "prov-user-1", "req-1", "prov-user-1") {
		t.Error("provider user denied")
	}
	if canViewThread(contextWithRole("tenant"), "stranger", "req-1", "prov-user-1") {
		t.Error("outsider allowed")
	}
}

func TestCanViewThreadAdminOverride(t *testing.T) {
	// Admins see every thread, including its unread counters.
	if !canViewThread(contextWithRole("admin"), "admin-1", "req-1", "prov-user-1") {
		t.Error("admin denied")
	}
}

func TestOtherParty(t *testing.T) {
	if got := otherParty("req-1", "req-1", "prov-user-1"); got != "prov-user-1" {
		t.Errorf("otherParty = %q, want prov-user-1", got)
	}
	if got := otherParty("prov-user-1", "req-1", "prov-user-1"); got != "req-1" {
		t.Errorf("otherParty = %q, want req-1", got)
	}
	if got := otherParty("stranger", "req-1", "prov-user-1"); got != "" {
		t.Errorf("otherParty = %q, want empty", got)
	}
}
