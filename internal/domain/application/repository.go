package application

import (
	"context"

	"talentgate/internal/common"
)

type Repository interface {
	Create(ctx context.Context, app Application) (*Application, error)
	GetByID(ctx context.Context, id common.UUID) (*Application, error)
	Delete(ctx context.Context, id common.UUID) error
	UpdateStatus(ctx context.Context, id common.UUID, status Status) (*Application, error)
	FindByOpportunityAndApplicant(ctx context.Context, opportunityID, applicantID common.UUID) (*Application, error)
	ListByOpportunity(ctx context.Context, opportunityID common.UUID) ([]Application, error)
	ListByApplicant(ctx context.Context, applicantID common.UUID) ([]Application, error)
	ListByCompany(ctx context.Context, companyID common.UUID) ([]Application, error)
}
