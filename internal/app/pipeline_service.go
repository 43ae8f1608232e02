package app

import (
	"context"
	"time"

	"talentgate/internal/common"
	"talentgate/internal/domain/application"
	"talentgate/internal/domain/opportunity"
	"talentgate/internal/domain/pipeline"
	"talentgate/internal/domain/user"
	"talentgate/internal/observability"
)

// PipelineService keeps pipeline records and application statuses mutually
// consistent. The two record kinds live in independently writable stores, so
// every compound operation orders its writes to fail toward the safer
// inconsistency: an orphaned detail record rather than an application
// claiming a stage with no backing record. Later-step failures surface as
// partial_failure errors naming the step, and the hire path is idempotent so
// a retry never duplicates state.
type PipelineService struct {
	repo          pipeline.Repository
	applications  application.Repository
	opportunities opportunity.Repository
	logger        *observability.Logger
}

func NewPipelineService(repo pipeline.Repository, applications application.Repository, opportunities opportunity.Repository, logger *observability.Logger) *PipelineService {
	return &PipelineService{repo: repo, applications: applications, opportunities: opportunities, logger: logger}
}

// HireResult carries the non-fatal outcome of the hire side effect alongside
// the record. NoteWarning is set when the compliance note could not be
// recorded; the hire itself stands.
type HireResult struct {
	Record      *pipeline.Record `json:"record"`
	NoteWarning string           `json:"note_warning,omitempty"`
}

func (s *PipelineService) AdvanceToInterviewing(ctx context.Context, companyID, opportunityID, applicantID common.UUID, details pipeline.InterviewDetails) (*pipeline.Record, error) {
	app, err := s.guardPair(ctx, companyID, opportunityID, applicantID)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByPair(ctx, opportunityID, applicantID)
	if err == nil {
		if existing.Status == pipeline.StatusInterviewing && app.Status == application.StatusSubmitted {
			// Orphan left by an earlier partial failure: the record was
			// created but the application update never landed. Finish the
			// second step instead of failing the retry.
			if _, err := s.applications.UpdateStatus(ctx, app.ID, application.StatusInterviewing); err != nil {
				return nil, common.NewPartialFailure("update_application_status", "pipeline record exists but the application status update failed", err)
			}
			return existing, nil
		}
		return nil, common.NewError(common.CodeDuplicatePipelineRecord, "a pipeline record already exists for this candidate", nil)
	}
	if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	if app.Status != application.StatusSubmitted {
		return nil, common.NewError(common.CodeInvalidTransition, "only submitted applications can advance to interviewing", nil)
	}
	record := pipeline.Record{
		OpportunityID:  opportunityID,
		CompanyID:      companyID,
		ApplicantID:    applicantID,
		Status:         pipeline.StatusInterviewing,
		InterviewRound: details.Round,
		ScheduledAt:    details.ScheduledAt,
		Interviewer:    details.Interviewer,
		Notes:          details.Notes,
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	if _, err := s.applications.UpdateStatus(ctx, app.ID, application.StatusInterviewing); err != nil {
		return nil, common.NewPartialFailure("update_application_status", "pipeline record created but the application status update failed", err)
	}
	return created, nil
}

func (s *PipelineService) TransitionToHired(ctx context.Context, companyID, opportunityID, applicantID common.UUID, details pipeline.HireDetails) (*HireResult, error) {
	app, err := s.guardPair(ctx, companyID, opportunityID, applicantID)
	if err != nil {
		return nil, err
	}
	switch app.Status {
	case application.StatusSubmitted, application.StatusInterviewing, application.StatusHired:
		// hired is allowed so a retry after a partial failure goes through
	default:
		return nil, common.NewError(common.CodeInvalidTransition, "a withdrawn or rejected application cannot be hired", nil)
	}
	record := pipeline.Record{
		OpportunityID: opportunityID,
		CompanyID:     companyID,
		ApplicantID:   applicantID,
		Status:        pipeline.StatusHired,
		Role:          details.Role,
		StartDate:     details.StartDate,
		EndDate:       details.EndDate,
	}
	saved, err := s.repo.UpsertHire(ctx, record)
	if err != nil {
		return nil, err
	}
	if _, err := s.applications.UpdateStatus(ctx, app.ID, application.StatusHired); err != nil {
		return nil, common.NewPartialFailure("update_application_status", "hire record saved but the application status update failed", err)
	}
	result := &HireResult{Record: saved}
	if details.Notes != "" {
		actorID := companyID
		entry := opportunity.HistoryEntry{
			At:     time.Now().UTC(),
			Action: opportunity.ActionHireNote,
			Note:   details.Notes,
			By:     &actorID,
		}
		if err := s.opportunities.AppendHistory(ctx, opportunityID, entry); err != nil {
			s.logger.Warn("hire note not recorded",
				"opportunity_id", opportunityID.String(),
				"applicant_id", applicantID.String(),
				"error", err)
			result.NoteWarning = "hire note could not be recorded"
		}
	}
	return result, nil
}

// UpdateDetails edits stage-specific fields in place. It never changes the
// record status and never touches the sibling application.
func (s *PipelineService) UpdateDetails(ctx context.Context, companyID, recordID common.UUID, update pipeline.DetailUpdate) (*pipeline.Record, error) {
	record, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record.CompanyID != companyID {
		return nil, common.NewError(common.CodeForbidden, "pipeline record belongs to another company", nil)
	}
	if update.InterviewRound != nil {
		record.InterviewRound = *update.InterviewRound
	}
	if update.ScheduledAt != nil {
		record.ScheduledAt = update.ScheduledAt
	}
	if update.Interviewer != nil {
		record.Interviewer = *update.Interviewer
	}
	if update.Notes != nil {
		record.Notes = *update.Notes
	}
	if update.Role != nil {
		record.Role = *update.Role
	}
	if update.StartDate != nil {
		record.StartDate = update.StartDate
	}
	if update.EndDate != nil {
		record.EndDate = update.EndDate
	}
	return s.repo.Update(ctx, *record)
}

func (s *PipelineService) RemoveFromPipeline(ctx context.Context, actor user.Actor, recordID common.UUID) error {
	record, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return err
	}
	if actor.Role != user.RoleAdmin && record.CompanyID != actor.ID {
		return common.NewError(common.CodeForbidden, "pipeline record belongs to another company", nil)
	}
	// Delete first. A failure after this point leaves an application
	// claiming a stage with no backing record, which is detectable; the
	// reverse order could leave a stale record invisible to advance guards.
	if err := s.repo.Delete(ctx, recordID); err != nil {
		return err
	}
	app, err := s.applications.FindByOpportunityAndApplicant(ctx, record.OpportunityID, record.ApplicantID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil
		}
		return common.NewPartialFailure("revert_application_status", "pipeline record deleted but the application could not be loaded", err)
	}
	// A withdrawn or rejected application stays as it is; removing a stale
	// record must not resurrect the candidate. Anything still claiming a
	// stage is reverted, including an application lagging the record after
	// a partially failed hire.
	if app.Status != application.StatusInterviewing && app.Status != application.StatusHired {
		return nil
	}
	if _, err := s.applications.UpdateStatus(ctx, app.ID, application.StatusSubmitted); err != nil {
		return common.NewPartialFailure("revert_application_status", "pipeline record deleted but the application status revert failed", err)
	}
	return nil
}

func (s *PipelineService) Get(ctx context.Context, id common.UUID) (*pipeline.Record, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PipelineService) ListByOpportunity(ctx context.Context, companyID, opportunityID common.UUID) ([]pipeline.Record, error) {
	opp, err := s.opportunities.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if opp.CompanyID != companyID {
		return nil, common.NewError(common.CodeForbidden, "opportunity belongs to another company", nil)
	}
	return s.repo.ListByOpportunity(ctx, opportunityID)
}

func (s *PipelineService) ListByCompany(ctx context.Context, companyID common.UUID) ([]pipeline.Record, error) {
	return s.repo.ListByCompany(ctx, companyID)
}

func (s *PipelineService) guardPair(ctx context.Context, companyID, opportunityID, applicantID common.UUID) (*application.Application, error) {
	opp, err := s.opportunities.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if opp.CompanyID != companyID {
		return nil, common.NewError(common.CodeForbidden, "opportunity belongs to another company", nil)
	}
	app, err := s.applications.FindByOpportunityAndApplicant(ctx, opportunityID, applicantID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.NewError(common.CodeValidation, "candidate has no application for this opportunity", nil)
		}
		return nil, err
	}
	return app, nil
}
