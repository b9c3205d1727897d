package maintenance

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// ProviderDirectory is the external collaborator that knows which providers
// exist. Checked before a provider is attached to a request.
type ProviderDirectory interface {
	Exists(ctx context.Context, providerID string) (bool, error)
}

var (
	engine    *Engine
	directory ProviderDirectory
	notify    Notifier = nopNotifier{}
)

// Init wires the package-level engine used by the HTTP handlers. A nil
// notifier disables notifications.
func Init(store Store, dir ProviderDirectory, n Notifier) {
	engine = NewEngine(store)
	directory = dir
	if n != nil {
		notify = n
	} else {
		notify = nopNotifier{}
	}
}

// roleFrom maps the JWT role claim set by the middleware onto a negotiation
// role. The actor role is always passed explicitly into the engine.
func roleFrom(c echo.Context) (Role, bool) {
	claim, _ := c.Get("role").(string)
	switch strings.ToLower(claim) {
	case "owner":
		return RoleOwner, true
	case "broker":
		return RoleBroker, true
	case "admin":
		return RoleAdmin, true
	case "provider", "maintenance":
		return RoleProvider, true
	}
	return "", false
}

// errStatus maps engine errors onto HTTP status codes.
func errStatus(err error) int {
	switch {
	case errors.Is(err, ErrRequestNotFound), errors.Is(err, ErrNoProposal),
		errors.Is(err, ErrProviderNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoProviderAssigned):
		return http.StatusPreconditionFailed
	case errors.Is(err, ErrAlreadyProposed), errors.Is(err, ErrAlreadyAccepted),
		errors.Is(err, ErrRequestClosed), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrSelfAcceptance):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidRole):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func fail(c echo.Context, err error) error {
	return c.JSON(errStatus(err), echo.Map{"error": err.Error()})
}

// =========================
// CreateRequest - open a new maintenance request
// =========================
func CreateRequest(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		PropertyID  string `json:"property_id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Priority    string `json:"priority"`
	}
	if err := c.Bind(&req); err != nil || req.PropertyID == "" || req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "property_id and title are required"})
	}
	priority := Priority(req.Priority)
	if req.Priority != "" && !ValidPriority(priority) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid priority"})
	}

	m, err := engine.Create(c.Request().Context(), &MaintenanceRequest{
		PropertyID:  req.PropertyID,
		RequestedBy: uid,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    priority,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"maintenance_request": m})
}

// =========================
// GetRequest - read a request with its current proposal
// =========================
func GetRequest(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing request id in URL"})
	}
	m, err := engine.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"maintenance_request": m})
}

// =========================
// AssignProvider - requester side attaches a provider
// =========================
func AssignProvider(c echo.Context) error {
	id := c.Param("id")
	var req struct {
		ProviderID string `json:"provider_id"`
	}
	if err := c.Bind(&req); err != nil || req.ProviderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provider_id is required"})
	}

	ctx := c.Request().Context()
	ok, err := directory.Exists(ctx, req.ProviderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to look up provider"})
	}
	if !ok {
		return fail(c, ErrProviderNotFound)
	}

	m, err := engine.AssignProvider(ctx, id, req.ProviderID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"maintenance_request": m})
}

// =========================
// ProposeVisit - either side puts an offer on the table
// =========================
func ProposeVisit(c echo.Context) error {
	actor, ok := roleFrom(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "role cannot schedule visits"})
	}
	id := c.Param("id")

	var req struct {
		ScheduledDate       string `json:"scheduled_date"`
		ScheduledTime       string `json:"scheduled_time"`
		DurationMinutes     int    `json:"duration_minutes"`
		ContactPerson       string `json:"contact_person"`
		ContactPhone        string `json:"contact_phone"`
		SpecialInstructions string `json:"special_instructions"`
	}
	if err := c.Bind(&req); err != nil || req.ScheduledDate == "" || req.ScheduledTime == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduled_date and scheduled_time are required"})
	}
	if _, err := time.Parse("2006-01-02", req.ScheduledDate); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid scheduled_date (use YYYY-MM-DD)"})
	}
	if _, err := time.Parse("15:04", req.ScheduledTime); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid scheduled_time (use HH:MM)"})
	}
	if req.DurationMinutes < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration_minutes must be positive"})
	}

	m, err := engine.Propose(c.Request().Context(), id, actor, ProposeInput{
		ScheduledDate:       req.ScheduledDate,
		ScheduledTime:       req.ScheduledTime,
		DurationMinutes:     req.DurationMinutes,
		ContactPerson:       req.ContactPerson,
		ContactPhone:        req.ContactPhone,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		return fail(c, err)
	}

	notify.VisitProposed(m, m.CurrentProposal)

	return c.JSON(http.StatusOK, echo.Map{
		"maintenance_request": m,
		"visit_proposal":      m.CurrentProposal,
	})
}

// =========================
// AcceptVisit - the counterpart side confirms the offer
// =========================
func AcceptVisit(c echo.Context) error {
	actor, ok := roleFrom(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "role cannot schedule visits"})
	}
	id := c.Param("id")

	m, err := engine.Accept(c.Request().Context(), id, actor)
	if err != nil {
		return fail(c, err)
	}

	notify.VisitAccepted(m, m.CurrentProposal)

	return c.JSON(http.StatusOK, echo.Map{
		"maintenance_request": m,
		"visit_proposal":      m.CurrentProposal,
	})
}

// =========================
// StartWork - provider marks the visit underway
// =========================
func StartWork(c echo.Context) error {
	actor, ok := roleFrom(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "role cannot start work"})
	}
	m, err := engine.Start(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"maintenance_request": m})
}

// =========================
// CompleteWork - provider marks the job done
// =========================
func CompleteWork(c echo.Context) error {
	actor, ok := roleFrom(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "role cannot complete work"})
	}
	m, err := engine.Complete(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"maintenance_request": m})
}

// =========================
// CancelRequest - requester side forces the request closed
// =========================
func CancelRequest(c echo.Context) error {
	m, err := engine.Cancel(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	notify.RequestClosed(m)
	return c.JSON(http.StatusOK, echo.Map{"maintenance_request": m})
}

// =========================
// RejectRequest - admin closes the request as rejected
// =========================
func RejectRequest(c echo.Context) error {
	m, err := engine.Reject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	notify.RequestClosed(m)
	return c.JSON(http.StatusOK, echo.Map{"maintenance_request": m})
}

// ListRequests returns every request, newest first. Admin surface.
func ListRequests(c echo.Context) error {
	ms, err := engine.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"maintenance_requests": ms})
}
