package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"talentgate/internal/common"
	"talentgate/internal/domain/application"
)

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, opportunity_id, applicant_id, status, answers, created_at, updated_at`

func (r *ApplicationRepository) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	app.ID = common.NewUUID()
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	answers, err := json.Marshal(app.Answers)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to encode answers", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO applications (id, opportunity_id, applicant_id, status, answers, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		app.ID, app.OpportunityID, app.ApplicantID, app.Status, answers, app.CreatedAt, app.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeDuplicateApplication, "an active application already exists for this opportunity", err)
		}
		return nil, common.NewError(common.CodeStoreFailure, "failed to create application", err)
	}
	return &app, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	return scanApplication(row)
}

func (r *ApplicationRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeStoreFailure, "failed to delete application", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "application not found", sql.ErrNoRows)
	}
	return nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id common.UUID, status application.Status) (*application.Application, error) {
	_, err := r.db.ExecContext(ctx, `UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		return nil, common.NewError(common.CodeStoreFailure, "failed to update application status", err)
	}
	return r.GetByID(ctx, id)
}

func (r *ApplicationRepository) FindByOpportunityAndApplicant(ctx context.Context, opportunityID, applicantID common.UUID) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications
		WHERE opportunity_id = $1 AND applicant_id = $2`, opportunityID, applicantID)
	return scanApplication(row)
}

func (r *ApplicationRepository) ListByOpportunity(ctx context.Context, opportunityID common.UUID) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+applicationColumns+` FROM applications
		WHERE opportunity_id = $1 ORDER BY created_at DESC`, opportunityID)
	if err != nil {
		return nil, common.NewError(common.CodeStoreFailure, "failed to list applications", err)
	}
	return scanApplications(rows)
}

func (r *ApplicationRepository) ListByApplicant(ctx context.Context, applicantID common.UUID) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+applicationColumns+` FROM applications
		WHERE applicant_id = $1 ORDER BY created_at DESC`, applicantID)
	if err != nil {
		return nil, common.NewError(common.CodeStoreFailure, "failed to list applicant applications", err)
	}
	return scanApplications(rows)
}

func (r *ApplicationRepository) ListByCompany(ctx context.Context, companyID common.UUID) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT a.id, a.opportunity_id, a.applicant_id, a.status, a.answers, a.created_at, a.updated_at
		FROM applications a
		JOIN opportunities o ON o.id = a.opportunity_id
		WHERE o.company_id = $1
		ORDER BY a.created_at DESC`, companyID)
	if err != nil {
		return nil, common.NewError(common.CodeStoreFailure, "failed to list company applications", err)
	}
	return scanApplications(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*application.Application, error) {
	var app application.Application
	var answers []byte
	if err := row.Scan(&app.ID, &app.OpportunityID, &app.ApplicantID, &app.Status, &answers, &app.CreatedAt, &app.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "application not found", err)
		}
		return nil, common.NewError(common.CodeStoreFailure, "failed to load application", err)
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &app.Answers); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to decode answers", err)
		}
	}
	return &app, nil
}

func scanApplications(rows *sql.Rows) ([]application.Application, error) {
	defer rows.Close()
	var items []application.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *app)
	}
	return items, nil
}
