package app

import (
	"context"

	"talentgate/internal/common"
	"talentgate/internal/domain/application"
	"talentgate/internal/domain/opportunity"
)

// ApplicationService guards the one-active-application-per-pair rule and the
// applicant-facing status transitions. The store's partial unique index is
// the real duplicate guard; the pre-check here is a fast path that turns the
// common case into a clean error without a failed insert.
type ApplicationService struct {
	repo          application.Repository
	opportunities opportunity.Repository
}

func NewApplicationService(repo application.Repository, opportunities opportunity.Repository) *ApplicationService {
	return &ApplicationService{repo: repo, opportunities: opportunities}
}

func (s *ApplicationService) Apply(ctx context.Context, opportunityID, applicantID common.UUID, answers map[string]string) (*application.Application, error) {
	opp, err := s.opportunities.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if opp.Status != opportunity.StatusApproved {
		return nil, common.NewError(common.CodeValidation, "opportunity is not accepting applications", nil)
	}
	existing, err := s.repo.FindByOpportunityAndApplicant(ctx, opportunityID, applicantID)
	if err == nil {
		if existing.Status != application.StatusWithdrawn {
			return nil, common.NewError(common.CodeDuplicateApplication, "an active application already exists for this opportunity", nil)
		}
		// Withdrawn leftovers are deleted before the new insert. If the
		// insert then fails the applicant is left with no application and
		// can simply retry; the reverse order could leave two rows.
		if err := s.repo.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	app := application.Application{
		OpportunityID: opportunityID,
		ApplicantID:   applicantID,
		Status:        application.StatusSubmitted,
		Answers:       answers,
	}
	return s.repo.Create(ctx, app)
}

// Withdraw is applicant-driven. It never touches a pipeline record the
// company may still hold for the pair; cleaning that up is an explicit
// company/admin action via RemoveFromPipeline.
func (s *ApplicationService) Withdraw(ctx context.Context, applicationID, applicantID common.UUID) (*application.Application, error) {
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID != applicantID {
		return nil, common.NewError(common.CodeForbidden, "application belongs to another applicant", nil)
	}
	if app.Status != application.StatusSubmitted && app.Status != application.StatusInterviewing {
		return nil, common.NewError(common.CodeInvalidTransition, "only submitted or interviewing applications can be withdrawn", nil)
	}
	return s.repo.UpdateStatus(ctx, applicationID, application.StatusWithdrawn)
}

// Reject is company-driven and, like Withdraw, leaves any pipeline record in
// place for explicit cleanup.
func (s *ApplicationService) Reject(ctx context.Context, applicationID, companyID common.UUID) (*application.Application, error) {
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	opp, err := s.opportunities.GetByID(ctx, app.OpportunityID)
	if err != nil {
		return nil, err
	}
	if opp.CompanyID != companyID {
		return nil, common.NewError(common.CodeForbidden, "application belongs to another company", nil)
	}
	if app.Status != application.StatusSubmitted && app.Status != application.StatusInterviewing {
		return nil, common.NewError(common.CodeInvalidTransition, "only submitted or interviewing applications can be rejected", nil)
	}
	return s.repo.UpdateStatus(ctx, applicationID, application.StatusRejected)
}

func (s *ApplicationService) Get(ctx context.Context, id common.UUID) (*application.Application, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ApplicationService) ListByOpportunity(ctx context.Context, companyID, opportunityID common.UUID) ([]application.Application, error) {
	opp, err := s.opportunities.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if opp.CompanyID != companyID {
		return nil, common.NewError(common.CodeForbidden, "opportunity belongs to another company", nil)
	}
	return s.repo.ListByOpportunity(ctx, opportunityID)
}

func (s *ApplicationService) ListByApplicant(ctx context.Context, applicantID common.UUID) ([]application.Application, error) {
	return s.repo.ListByApplicant(ctx, applicantID)
}

func (s *ApplicationService) ListByCompany(ctx context.Context, companyID common.UUID) ([]application.Application, error) {
	return s.repo.ListByCompany(ctx, companyID)
}
