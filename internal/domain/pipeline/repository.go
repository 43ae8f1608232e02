package pipeline

import (
	"context"

	"talentgate/internal/common"
)

type Repository interface {
	Create(ctx context.Context, record Record) (*Record, error)
	GetByID(ctx context.Context, id common.UUID) (*Record, error)
	FindByPair(ctx context.Context, opportunityID, applicantID common.UUID) (*Record, error)
	// UpsertHire inserts or replaces the record for the pair with hired
	// status and hire fields. Keyed on (opportunity_id, applicant_id) so
	// retries after a partial failure never create a second record.
	UpsertHire(ctx context.Context, record Record) (*Record, error)
	Update(ctx context.Context, record Record) (*Record, error)
	Delete(ctx context.Context, id common.UUID) error
	ListByOpportunity(ctx context.Context, opportunityID common.UUID) ([]Record, error)
	ListByCompany(ctx context.Context, companyID common.UUID) ([]Record, error)
}
