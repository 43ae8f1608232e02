package handlers

import (
	"net/http"
	"strings"

	"talentgate/internal/app"
	"talentgate/internal/common"
	"talentgate/internal/domain/pipeline"
	"talentgate/internal/http/middleware"
	"talentgate/internal/http/response"
)

type PipelineHandler struct {
	pipelines *app.PipelineService
}

func NewPipelineHandler(pipelines *app.PipelineService) *PipelineHandler {
	return &PipelineHandler{pipelines: pipelines}
}

type advanceRequest struct {
	OpportunityID string                    `json:"opportunity_id"`
	ApplicantID   string                    `json:"applicant_id"`
	Details       pipeline.InterviewDetails `json:"details"`
}

type hireRequest struct {
	OpportunityID string               `json:"opportunity_id"`
	ApplicantID   string               `json:"applicant_id"`
	Details       pipeline.HireDetails `json:"details"`
}

func (h *PipelineHandler) Advance(w http.ResponseWriter, r *http.Request) {
	companyID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req advanceRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	opportunityID, applicantID, err := pairFromRequest(req.OpportunityID, req.ApplicantID)
	if err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.pipelines.AdvanceToInterviewing(r.Context(), companyID, opportunityID, applicantID, req.Details)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *PipelineHandler) Hire(w http.ResponseWriter, r *http.Request) {
	companyID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req hireRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	opportunityID, applicantID, err := pairFromRequest(req.OpportunityID, req.ApplicantID)
	if err != nil {
		response.Error(w, err)
		return
	}
	result, err := h.pipelines.TransitionToHired(r.Context(), companyID, opportunityID, applicantID, req.Details)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

func (h *PipelineHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	companyID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	recordID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var update pipeline.DetailUpdate
	if err := decodeJSON(r, &update); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.pipelines.UpdateDetails(r.Context(), companyID, recordID, update)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *PipelineHandler) Remove(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	recordID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.pipelines.RemoveFromPipeline(r.Context(), actor, recordID); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusNoContent, nil)
}

func (h *PipelineHandler) List(w http.ResponseWriter, r *http.Request) {
	companyID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	if value := strings.TrimSpace(r.URL.Query().Get("opportunity_id")); value != "" {
		opportunityID, err := common.ParseUUID(value)
		if err != nil {
			response.Error(w, common.NewValidationError("invalid opportunity_id", map[string]string{"opportunity_id": "invalid uuid"}))
			return
		}
		items, err := h.pipelines.ListByOpportunity(r.Context(), companyID, opportunityID)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, items)
		return
	}
	items, err := h.pipelines.ListByCompany(r.Context(), companyID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func pairFromRequest(opportunityID, applicantID string) (common.UUID, common.UUID, error) {
	fields := map[string]string{}
	oppID, err := common.ParseUUID(opportunityID)
	if err != nil {
		fields["opportunity_id"] = "invalid uuid"
	}
	appID, err := common.ParseUUID(applicantID)
	if err != nil {
		fields["applicant_id"] = "invalid uuid"
	}
	if len(fields) > 0 {
		return "", "", common.NewValidationError("invalid request", fields)
	}
	return oppID, appID, nil
}
