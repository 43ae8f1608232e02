package handlers

import (
	"net/http"
	"strings"
	"time"

	"talentgate/internal/app"
	"talentgate/internal/common"
	"talentgate/internal/domain/user"
	"talentgate/internal/http/middleware"
	"talentgate/internal/http/response"
)

type ApplicationHandler struct {
	applications *app.ApplicationService
	limiter      middleware.Limiter
	rateLimit    int
	rateWindow   time.Duration
}

func NewApplicationHandler(applications *app.ApplicationService, limiter middleware.Limiter, rateLimit int, rateWindow time.Duration) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, limiter: limiter, rateLimit: rateLimit, rateWindow: rateWindow}
}

type applyRequest struct {
	OpportunityID string            `json:"opportunity_id"`
	Answers       map[string]string `json:"answers"`
}

func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	applicantID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req applyRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if strings.TrimSpace(req.OpportunityID) == "" {
		response.Error(w, common.NewValidationError("invalid request", map[string]string{"opportunity_id": "opportunity_id is required"}))
		return
	}
	opportunityID, err := common.ParseUUID(req.OpportunityID)
	if err != nil {
		response.Error(w, common.NewValidationError("invalid request", map[string]string{"opportunity_id": "invalid uuid"}))
		return
	}
	if h.limiter != nil {
		key := middleware.PairKey("apply", opportunityID, applicantID)
		if !h.limiter.Allow(key, h.rateLimit, h.rateWindow) {
			response.Error(w, common.NewError(common.CodeRateLimited, "apply rate limit exceeded", nil))
			return
		}
	}
	created, err := h.applications.Apply(r.Context(), opportunityID, applicantID, req.Answers)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *ApplicationHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	applicantID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	applicationID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.applications.Withdraw(r.Context(), applicationID, applicantID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *ApplicationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	companyID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	applicationID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.applications.Reject(r.Context(), applicationID, companyID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	activeRole, ok := middleware.ActiveRoleFromContext(r.Context())
	if !ok || activeRole == "" {
		response.Error(w, common.NewError(common.CodeForbidden, "role not selected", nil))
		return
	}
	switch activeRole {
	case user.RoleApplicant:
		h.listApplicant(w, r)
	case user.RoleCompany:
		h.listCompany(w, r)
	default:
		response.Error(w, common.NewError(common.CodeForbidden, "insufficient role", nil))
	}
}

func (h *ApplicationHandler) listApplicant(w http.ResponseWriter, r *http.Request) {
	applicantID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	items, err := h.applications.ListByApplicant(r.Context(), applicantID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ApplicationHandler) listCompany(w http.ResponseWriter, r *http.Request) {
	companyID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	items, err := h.applications.ListByCompany(r.Context(), companyID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

// ListByOpportunity serves /opportunities/{id}/applications for the owning
// company.
func (h *ApplicationHandler) ListByOpportunity(w http.ResponseWriter, r *http.Request) {
	companyID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	opportunityID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.applications.ListByOpportunity(r.Context(), companyID, opportunityID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}
