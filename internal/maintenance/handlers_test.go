package maintenance

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type stubDirectory struct{ known map[string]bool }

func (d stubDirectory) Exists(_ context.Context, id string) (bool, error) {
	return d.known[id], nil
}

type recordingNotifier struct {
	proposed, accepted, closed int
}

func (n *recordingNotifier) VisitProposed(*MaintenanceRequest, *VisitProposal) { n.proposed++ }
func (n *recordingNotifier) VisitAccepted(*MaintenanceRequest, *VisitProposal) { n.accepted++ }
func (n *recordingNotifier) RequestClosed(*MaintenanceRequest)                 { n.closed++ }

func setupHandlers(t *testing.T) *recordingNotifier {
	t.Helper()
	n := &recordingNotifier{}
	Init(NewMemoryStore(), stubDirectory{known: map[string]bool{"prov-1": true}}, n)
	return n
}

// invoke runs handler against a synthetic authenticated request.
func invoke(t *testing.T, handler echo.HandlerFunc, method, path, userID, role, requestID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w := httptest.NewRecorder()

	e := echo.New()
	c := e.NewContext(r, w)
	c.Set("user_id", userID)
	c.Set("role", role)
	if requestID != "" {
		c.SetParamNames("id")
		c.SetParamValues(requestID)
	}
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return w
}

func createViaHTTP(t *testing.T) string {
	t.Helper()
	w := invoke(t, CreateRequest, http.MethodPost, "/maintenance", "user-1", "owner", "", map[string]any{
		"property_id": "prop-1",
		"title":       "Broken water heater",
		"priority":    "URGENT",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		MaintenanceRequest MaintenanceRequest `json:"maintenance_request"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.MaintenanceRequest.ID
}

func assignViaHTTP(t *testing.T, id string) {
	t.Helper()
	w := invoke(t, AssignProvider, http.MethodPost, "/maintenance/"+id+"/assign", "user-1", "owner", id,
		map[string]string{"provider_id": "prov-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("assign status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestAssignUnknownProvider(t *testing.T) {
	setupHandlers(t)
	id := createViaHTTP(t)

	w := invoke(t, AssignProvider, http.MethodPost, "/x", "user-1", "owner", id,
		map[string]string{"provider_id": "ghost"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestProposeAcceptOverHTTP(t *testing.T) {
	n := setupHandlers(t)
	id := createViaHTTP(t)
	assignViaHTTP(t, id)

	w := invoke(t, ProposeVisit, http.MethodPost, "/x", "user-1", "owner", id, map[string]any{
		"scheduled_date":   "2026-09-10",
		"scheduled_time":   "10:00",
		"duration_minutes": 90,
		"contact_person":   "Maria",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("propose status = %d body = %s", w.Code, w.Body.String())
	}
	if n.proposed != 1 {
		t.Errorf("proposed notifications = %d, want 1", n.proposed)
	}

	// Requester side re-proposing while its own offer is outstanding.
	w = invoke(t, ProposeVisit, http.MethodPost, "/x", "user-2", "broker", id, map[string]any{
		"scheduled_date": "2026-09-11",
		"scheduled_time": "11:00",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("same-side propose status = %d, want 409", w.Code)
	}

	// Owner cannot accept the requester side's own offer.
	w = invoke(t, AcceptVisit, http.MethodPost, "/x", "user-2", "broker", id, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("self accept status = %d, want 403", w.Code)
	}

	w = invoke(t, AcceptVisit, http.MethodPost, "/x", "prov-user", "provider", id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("accept status = %d body = %s", w.Code, w.Body.String())
	}
	if n.accepted != 1 {
		t.Errorf("accepted notifications = %d, want 1", n.accepted)
	}

	var resp struct {
		MaintenanceRequest MaintenanceRequest `json:"maintenance_request"`
		VisitProposal      VisitProposal      `json:"visit_proposal"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.MaintenanceRequest.Status != StatusScheduled {
		t.Errorf("status = %q, want SCHEDULED", resp.MaintenanceRequest.Status)
	}
	if resp.VisitProposal.AcceptedByRole != RoleProvider {
		t.Errorf("accepted_by = %q, want PROVIDER", resp.VisitProposal.AcceptedByRole)
	}
}

func TestProposeWithoutProviderHTTP(t *testing.T) {
	setupHandlers(t)
	id := createViaHTTP(t)

	w := invoke(t, ProposeVisit, http.MethodPost, "/x", "user-1", "broker", id, map[string]any{
		"scheduled_date": "2026-09-10",
		"scheduled_time": "10:00",
	})
	if w.Code != http.StatusPreconditionFailed {
		t.Errorf("status = %d, want 412", w.Code)
	}
}

func TestProposeValidation(t *testing.T) {
	setupHandlers(t)
	id := createViaHTTP(t)
	assignViaHTTP(t, id)

	cases := []map[string]any{
		{"scheduled_time": "10:00"},                              // missing date
		{"scheduled_date": "2026-09-10"},                         // missing time
		{"scheduled_date": "10/09/2026", "scheduled_time": "10:00"}, // bad date format
		{"scheduled_date": "2026-09-10", "scheduled_time": "25:99"}, // bad time
	}
	for i, body := range cases {
		w := invoke(t, ProposeVisit, http.MethodPost, "/x", "user-1", "owner", id, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("case %d: status = %d, want 400", i, w.Code)
		}
	}
}

func TestTenantCannotNegotiate(t *testing.T) {
	setupHandlers(t)
	id := createViaHTTP(t)
	assignViaHTTP(t, id)

	w := invoke(t, ProposeVisit, http.MethodPost, "/x", "user-9", "tenant", id, map[string]any{
		"scheduled_date": "2026-09-10",
		"scheduled_time": "10:00",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("tenant propose status = %d, want 403", w.Code)
	}
}

func TestCancelledRequestHTTP(t *testing.T) {
	n := setupHandlers(t)
	id := createViaHTTP(t)
	assignViaHTTP(t, id)

	w := invoke(t, CancelRequest, http.MethodPost, "/x", "user-1", "owner", id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel status = %d", w.Code)
	}
	if n.closed != 1 {
		t.Errorf("closed notifications = %d, want 1", n.closed)
	}

	w = invoke(t, ProposeVisit, http.MethodPost, "/x", "user-1", "owner", id, map[string]any{
		"scheduled_date": "2026-09-10",
		"scheduled_time": "10:00",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("propose on cancelled status = %d, want 409", w.Code)
	}
	w = invoke(t, AcceptVisit, http.MethodPost, "/x", "prov-user", "provider", id, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("accept on cancelled status = %d, want 409", w.Code)
	}
}

func TestGetUnknownRequestHTTP(t *testing.T) {
	setupHandlers(t)
	w := invoke(t, GetRequest, http.MethodGet, "/x", "user-1", "owner", "missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
