package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"talentgate/internal/common"
	"talentgate/internal/domain/pipeline"
)

type PipelineRepository struct {
	db *sql.DB
}

func NewPipelineRepository(db *sql.DB) *PipelineRepository {
	return &PipelineRepository{db: db}
}

const pipelineColumns = `id, opportunity_id, company_id, applicant_id, status, interview_round, scheduled_at, interviewer, notes, role, start_date, end_date, created_at, updated_at`

func (r *PipelineRepository) Create(ctx context.Context, record pipeline.Record) (*pipeline.Record, error) {
	record.ID = common.NewUUID()
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO pipeline_records (id, opportunity_id, company_id, applicant_id, status, interview_round, scheduled_at, interviewer, notes, role, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		record.ID, record.OpportunityID, record.CompanyID, record.ApplicantID, record.Status,
		record.InterviewRound, record.ScheduledAt, record.Interviewer, record.Notes,
		record.Role, record.StartDate, record.EndDate, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeDuplicatePipelineRecord, "a pipeline record already exists for this candidate", err)
		}
		return nil, common.NewError(common.CodeStoreFailure, "failed to create pipeline record", err)
	}
	return &record, nil
}

// UpsertHire is keyed on the (opportunity_id, applicant_id) unique index so
// retrying a failed hire replaces the existing row instead of adding one.
func (r *PipelineRepository) UpsertHire(ctx context.Context, record pipeline.Record) (*pipeline.Record, error) {
	record.ID = common.NewUUID()
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	row := r.db.QueryRowContext(ctx, `INSERT INTO pipeline_records (id, opportunity_id, company_id, applicant_id, status, role, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (opportunity_id, applicant_id) DO UPDATE SET
			status = EXCLUDED.status,
			role = EXCLUDED.role,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			updated_at = EXCLUDED.updated_at
		RETURNING `+pipelineColumns,
		record.ID, record.OpportunityID, record.CompanyID, record.ApplicantID, pipeline.StatusHired,
		record.Role, record.StartDate, record.EndDate, record.CreatedAt, record.UpdatedAt)
	return scanPipelineRecord(row)
}

func (r *PipelineRepository) GetByID(ctx context.Context, id common.UUID) (*pipeline.Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+pipelineColumns+` FROM pipeline_records WHERE id = $1`, id)
	return scanPipelineRecord(row)
}

func (r *PipelineRepository) FindByPair(ctx context.Context, opportunityID, applicantID common.UUID) (*pipeline.Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+pipelineColumns+` FROM pipeline_records
		WHERE opportunity_id = $1 AND applicant_id = $2`, opportunityID, applicantID)
	return scanPipelineRecord(row)
}

func (r *PipelineRepository) Update(ctx context.Context, record pipeline.Record) (*pipeline.Record, error) {
	record.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `UPDATE pipeline_records SET interview_round = $1, scheduled_at = $2, interviewer = $3, notes = $4, role = $5, start_date = $6, end_date = $7, updated_at = $8
		WHERE id = $9`,
		record.InterviewRound, record.ScheduledAt, record.Interviewer, record.Notes,
		record.Role, record.StartDate, record.EndDate, record.UpdatedAt, record.ID)
	if err != nil {
		return nil, common.NewError(common.CodeStoreFailure, "failed to update pipeline record", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "pipeline record not found", sql.ErrNoRows)
	}
	return r.GetByID(ctx, record.ID)
}

func (r *PipelineRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pipeline_records WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeStoreFailure, "failed to delete pipeline record", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "pipeline record not found", sql.ErrNoRows)
	}
	return nil
}

func (r *PipelineRepository) ListByOpportunity(ctx context.Context, opportunityID common.UUID) ([]pipeline.Record, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+pipelineColumns+` FROM pipeline_records
		WHERE opportunity_id = $1 ORDER BY created_at DESC`, opportunityID)
	if err != nil {
		return nil, common.NewError(common.CodeStoreFailure, "failed to list pipeline records", err)
	}
	return scanPipelineRecords(rows)
}

func (r *PipelineRepository) ListByCompany(ctx context.Context, companyID common.UUID) ([]pipeline.Record, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+pipelineColumns+` FROM pipeline_records
		WHERE company_id = $1 ORDER BY created_at DESC`, companyID)
	if err != nil {
		return nil, common.NewError(common.CodeStoreFailure, "failed to list company pipeline records", err)
	}
	return scanPipelineRecords(rows)
}

func scanPipelineRecord(row rowScanner) (*pipeline.Record, error) {
	var record pipeline.Record
	if err := row.Scan(&record.ID, &record.OpportunityID, &record.CompanyID, &record.ApplicantID, &record.Status,
		&record.InterviewRound, &record.ScheduledAt, &record.Interviewer, &record.Notes,
		&record.Role, &record.StartDate, &record.EndDate, &record.CreatedAt, &record.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "pipeline record not found", err)
		}
		return nil, common.NewError(common.CodeStoreFailure, "failed to load pipeline record", err)
	}
	return &record, nil
}

func scanPipelineRecords(rows *sql.Rows) ([]pipeline.Record, error) {
	defer rows.Close()
	var items []pipeline.Record
	for rows.Next() {
		record, err := scanPipelineRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *record)
	}
	return items, nil
}
