package app

import (
	"context"
	"sync"
	"time"

	"talentgate/internal/common"
	"talentgate/internal/domain/application"
	"talentgate/internal/domain/opportunity"
	"talentgate/internal/domain/pipeline"
)

type fakeOpportunityRepo struct {
	mu               sync.Mutex
	items            map[common.UUID]*opportunity.Opportunity
	appendHistoryErr error
}

func newFakeOpportunityRepo() *fakeOpportunityRepo {
	return &fakeOpportunityRepo{items: make(map[common.UUID]*opportunity.Opportunity)}
}

func (r *fakeOpportunityRepo) Create(ctx context.Context, o opportunity.Opportunity) (*opportunity.Opportunity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = common.NewUUID()
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	r.items[o.ID] = cloneOpportunity(&o)
	return cloneOpportunity(&o), nil
}

func (r *fakeOpportunityRepo) GetByID(ctx context.Context, id common.UUID) (*opportunity.Opportunity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.items[id]
	if item == nil {
		return nil, common.NewError(common.CodeNotFound, "opportunity not found", nil)
	}
	return cloneOpportunity(item), nil
}

func (r *fakeOpportunityRepo) UpdateStatus(ctx context.Context, id common.UUID, status opportunity.Status, entry opportunity.HistoryEntry) (*opportunity.Opportunity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.items[id]
	if item == nil {
		return nil, common.NewError(common.CodeNotFound, "opportunity not found", nil)
	}
	item.Status = status
	item.History = append(item.History, entry)
	item.UpdatedAt = time.Now().UTC()
	return cloneOpportunity(item), nil
}

func (r *fakeOpportunityRepo) AppendHistory(ctx context.Context, id common.UUID, entry opportunity.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendHistoryErr != nil {
		return r.appendHistoryErr
	}
	item := r.items[id]
	if item == nil {
		return common.NewError(common.CodeNotFound, "opportunity not found", nil)
	}
	item.History = append(item.History, entry)
	return nil
}

func (r *fakeOpportunityRepo) ListApproved(ctx context.Context, limit, offset int) ([]opportunity.Opportunity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []opportunity.Opportunity
	for _, item := range r.items {
		if item.Status == opportunity.StatusApproved {
			items = append(items, *cloneOpportunity(item))
		}
	}
	return items, nil
}

func (r *fakeOpportunityRepo) ListByCompany(ctx context.Context, companyID common.UUID) ([]opportunity.Opportunity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []opportunity.Opportunity
	for _, item := range r.items {
		if item.CompanyID == companyID {
			items = append(items, *cloneOpportunity(item))
		}
	}
	return items, nil
}

func cloneOpportunity(o *opportunity.Opportunity) *opportunity.Opportunity {
	copied := *o
	copied.History = append([]opportunity.HistoryEntry(nil), o.History...)
	return &copied
}

type fakeApplicationRepo struct {
	mu              sync.Mutex
	items           map[common.UUID]*application.Application
	opportunities   *fakeOpportunityRepo
	updateStatusErr error
}

func newFakeApplicationRepo(opportunities *fakeOpportunityRepo) *fakeApplicationRepo {
	return &fakeApplicationRepo{
		items:         make(map[common.UUID]*application.Application),
		opportunities: opportunities,
	}
}

func (r *fakeApplicationRepo) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.OpportunityID == app.OpportunityID && item.ApplicantID == app.ApplicantID && item.Status != application.StatusWithdrawn {
			return nil, common.NewError(common.CodeDuplicateApplication, "an active application already exists for this opportunity", nil)
		}
	}
	app.ID = common.NewUUID()
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	copied := app
	r.items[app.ID] = &copied
	return &app, nil
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.items[id]
	if item == nil {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	copied := *item
	return &copied, nil
}

func (r *fakeApplicationRepo) Delete(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items[id] == nil {
		return common.NewError(common.CodeNotFound, "application not found", nil)
	}
	delete(r.items, id)
	return nil
}

func (r *fakeApplicationRepo) UpdateStatus(ctx context.Context, id common.UUID, status application.Status) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateStatusErr != nil {
		return nil, r.updateStatusErr
	}
	item := r.items[id]
	if item == nil {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	item.Status = status
	item.UpdatedAt = time.Now().UTC()
	copied := *item
	return &copied, nil
}

func (r *fakeApplicationRepo) FindByOpportunityAndApplicant(ctx context.Context, opportunityID, applicantID common.UUID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.OpportunityID == opportunityID && item.ApplicantID == applicantID {
			copied := *item
			return &copied, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "application not found", nil)
}

func (r *fakeApplicationRepo) ListByOpportunity(ctx context.Context, opportunityID common.UUID) ([]application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []application.Application
	for _, item := range r.items {
		if item.OpportunityID == opportunityID {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (r *fakeApplicationRepo) ListByApplicant(ctx context.Context, applicantID common.UUID) ([]application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []application.Application
	for _, item := range r.items {
		if item.ApplicantID == applicantID {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (r *fakeApplicationRepo) ListByCompany(ctx context.Context, companyID common.UUID) ([]application.Application, error) {
	owned, err := r.opportunities.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	ownedIDs := make(map[common.UUID]bool, len(owned))
	for _, opp := range owned {
		ownedIDs[opp.ID] = true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []application.Application
	for _, item := range r.items {
		if ownedIDs[item.OpportunityID] {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (r *fakeApplicationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

type fakePipelineRepo struct {
	mu    sync.Mutex
	items map[common.UUID]*pipeline.Record
}

func newFakePipelineRepo() *fakePipelineRepo {
	return &fakePipelineRepo{items: make(map[common.UUID]*pipeline.Record)}
}

func (r *fakePipelineRepo) Create(ctx context.Context, record pipeline.Record) (*pipeline.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.OpportunityID == record.OpportunityID && item.ApplicantID == record.ApplicantID {
			return nil, common.NewError(common.CodeDuplicatePipelineRecord, "a pipeline record already exists for this candidate", nil)
		}
	}
	record.ID = common.NewUUID()
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	copied := record
	r.items[record.ID] = &copied
	return &record, nil
}

func (r *fakePipelineRepo) GetByID(ctx context.Context, id common.UUID) (*pipeline.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.items[id]
	if item == nil {
		return nil, common.NewError(common.CodeNotFound, "pipeline record not found", nil)
	}
	copied := *item
	return &copied, nil
}

func (r *fakePipelineRepo) FindByPair(ctx context.Context, opportunityID, applicantID common.UUID) (*pipeline.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.OpportunityID == opportunityID && item.ApplicantID == applicantID {
			copied := *item
			return &copied, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "pipeline record not found", nil)
}

func (r *fakePipelineRepo) UpsertHire(ctx context.Context, record pipeline.Record) (*pipeline.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, item := range r.items {
		if item.OpportunityID == record.OpportunityID && item.ApplicantID == record.ApplicantID {
			item.Status = pipeline.StatusHired
			item.Role = record.Role
			item.StartDate = record.StartDate
			item.EndDate = record.EndDate
			item.UpdatedAt = now
			copied := *item
			return &copied, nil
		}
	}
	record.ID = common.NewUUID()
	record.Status = pipeline.StatusHired
	record.CreatedAt = now
	record.UpdatedAt = now
	copied := record
	r.items[record.ID] = &copied
	return &record, nil
}

func (r *fakePipelineRepo) Update(ctx context.Context, record pipeline.Record) (*pipeline.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.items[record.ID]
	if item == nil {
		return nil, common.NewError(common.CodeNotFound, "pipeline record not found", nil)
	}
	item.InterviewRound = record.InterviewRound
	item.ScheduledAt = record.ScheduledAt
	item.Interviewer = record.Interviewer
	item.Notes = record.Notes
	item.Role = record.Role
	item.StartDate = record.StartDate
	item.EndDate = record.EndDate
	item.UpdatedAt = time.Now().UTC()
	copied := *item
	return &copied, nil
}

func (r *fakePipelineRepo) Delete(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items[id] == nil {
		return common.NewError(common.CodeNotFound, "pipeline record not found", nil)
	}
	delete(r.items, id)
	return nil
}

func (r *fakePipelineRepo) ListByOpportunity(ctx context.Context, opportunityID common.UUID) ([]pipeline.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []pipeline.Record
	for _, item := range r.items {
		if item.OpportunityID == opportunityID {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (r *fakePipelineRepo) ListByCompany(ctx context.Context, companyID common.UUID) ([]pipeline.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []pipeline.Record
	for _, item := range r.items {
		if item.CompanyID == companyID {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (r *fakePipelineRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
