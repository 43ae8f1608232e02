package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"talentgate/internal/app"
	"talentgate/internal/common"
	"talentgate/internal/domain/opportunity"
	"talentgate/internal/http/middleware"
	"talentgate/internal/http/response"
)

type OpportunityHandler struct {
	moderation *app.ModerationService
}

func NewOpportunityHandler(moderation *app.ModerationService) *OpportunityHandler {
	return &OpportunityHandler{moderation: moderation}
}

type opportunityRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	Location     string   `json:"location"`
}

type transitionRequest struct {
	Action string `json:"action"`
	Note   string `json:"note"`
}

func (h *OpportunityHandler) Create(w http.ResponseWriter, r *http.Request) {
	companyID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req opportunityRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.moderation.SubmitForReview(r.Context(), opportunity.Opportunity{
		CompanyID:    companyID,
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		Location:     req.Location,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *OpportunityHandler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	opportunityID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if strings.TrimSpace(req.Action) == "" {
		response.Error(w, common.NewError(common.CodeValidation, "action is required", nil))
		return
	}
	updated, err := h.moderation.Transition(r.Context(), opportunityID, opportunity.Action(req.Action), req.Note, actor)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *OpportunityHandler) Get(w http.ResponseWriter, r *http.Request) {
	opportunityID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	item, err := h.moderation.Get(r.Context(), opportunityID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, item)
}

func (h *OpportunityHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)
	items, err := h.moderation.ListApproved(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *OpportunityHandler) ListByCompany(w http.ResponseWriter, r *http.Request) {
	companyID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	items, err := h.moderation.ListByCompany(r.Context(), companyID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func queryInt(r *http.Request, key string, fallback int) int {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
