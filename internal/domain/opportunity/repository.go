package opportunity

import (
	"context"

	"talentgate/internal/common"
)

type Repository interface {
	Create(ctx context.Context, o Opportunity) (*Opportunity, error)
	GetByID(ctx context.Context, id common.UUID) (*Opportunity, error)
	// UpdateStatus commits the status change and the history entry as one
	// atomic write; either both land or neither does.
	UpdateStatus(ctx context.Context, id common.UUID, status Status, entry HistoryEntry) (*Opportunity, error)
	AppendHistory(ctx context.Context, id common.UUID, entry HistoryEntry) error
	ListApproved(ctx context.Context, limit, offset int) ([]Opportunity, error)
	ListByCompany(ctx context.Context, companyID common.UUID) ([]Opportunity, error)
}
