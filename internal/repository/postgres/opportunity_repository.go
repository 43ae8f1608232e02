package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"talentgate/internal/common"
	"talentgate/internal/domain/opportunity"
)

type OpportunityRepository struct {
	db *sql.DB
}

func NewOpportunityRepository(db *sql.DB) *OpportunityRepository {
	return &OpportunityRepository{db: db}
}

func (r *OpportunityRepository) Create(ctx context.Context, o opportunity.Opportunity) (*opportunity.Opportunity, error) {
	o.ID = common.NewUUID()
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewError(common.CodeStoreFailure, "failed to begin transaction", err)
	}
	defer tx.Rollback()
	_, err = tx.ExecContext(ctx, `INSERT INTO opportunities (id, company_id, title, description, requirements, location, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.CompanyID, o.Title, o.Description, pq.Array(o.Requirements), o.Location, o.Status, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeStoreFailure, "failed to create opportunity", err)
	}
	for _, entry := range o.History {
		if err := insertHistory(ctx, tx, o.ID, entry); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, common.NewError(common.CodeStoreFailure, "failed to commit opportunity", err)
	}
	return &o, nil
}

func (r *OpportunityRepository) GetByID(ctx context.Context, id common.UUID) (*opportunity.Opportunity, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, company_id, title, description, requirements, location, status, created_at, updated_at
		FROM opportunities WHERE id = $1`, id)
	var o opportunity.Opportunity
	if err := row.Scan(&o.ID, &o.CompanyID, &o.Title, &o.Description, pq.Array(&o.Requirements), &o.Location, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "opportunity not found", err)
		}
		return nil, common.NewError(common.CodeStoreFailure, "failed to load opportunity", err)
	}
	history, err := r.loadHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	o.History = history
	return &o, nil
}

// UpdateStatus writes the status change and the history entry in one
// transaction, so the history trail never drifts from the status column.
func (r *OpportunityRepository) UpdateStatus(ctx context.Context, id common.UUID, status opportunity.Status, entry opportunity.HistoryEntry) (*opportunity.Opportunity, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewError(common.CodeStoreFailure, "failed to begin transaction", err)
	}
	defer tx.Rollback()
	result, err := tx.ExecContext(ctx, `UPDATE opportunities SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		return nil, common.NewError(common.CodeStoreFailure, "failed to update opportunity status", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "opportunity not found", sql.ErrNoRows)
	}
	if err := insertHistory(ctx, tx, id, entry); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, common.NewError(common.CodeStoreFailure, "failed to commit opportunity status", err)
	}
	return r.GetByID(ctx, id)
}

func (r *OpportunityRepository) AppendHistory(ctx context.Context, id common.UUID, entry opportunity.HistoryEntry) error {
	return insertHistory(ctx, r.db, id, entry)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertHistory(ctx context.Context, db execer, opportunityID common.UUID, entry opportunity.HistoryEntry) error {
	var by any
	if entry.By != nil {
		by = *entry.By
	}
	_, err := db.ExecContext(ctx, `INSERT INTO opportunity_history (opportunity_id, at, action, note, by_user)
		VALUES ($1, $2, $3, $4, $5)`,
		opportunityID, entry.At, entry.Action, entry.Note, by)
	if err != nil {
		return common.NewError(common.CodeStoreFailure, "failed to append opportunity history", err)
	}
	return nil
}

func (r *OpportunityRepository) loadHistory(ctx context.Context, id common.UUID) ([]opportunity.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT at, action, note, by_user FROM opportunity_history
		WHERE opportunity_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, common.NewError(common.CodeStoreFailure, "failed to load opportunity history", err)
	}
	defer rows.Close()
	var history []opportunity.HistoryEntry
	for rows.Next() {
		var entry opportunity.HistoryEntry
		var by sql.NullString
		if err := rows.Scan(&entry.At, &entry.Action, &entry.Note, &by); err != nil {
			return nil, common.NewError(common.CodeStoreFailure, "failed to scan history entry", err)
		}
		if by.Valid {
			actor := common.UUID(by.String)
			entry.By = &actor
		}
		history = append(history, entry)
	}
	return history, nil
}

func (r *OpportunityRepository) ListApproved(ctx context.Context, limit, offset int) ([]opportunity.Opportunity, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, company_id, title, description, requirements, location, status, created_at, updated_at
		FROM opportunities WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		opportunity.StatusApproved, limit, offset)
	if err != nil {
		return nil, common.NewError(common.CodeStoreFailure, "failed to list opportunities", err)
	}
	return scanOpportunities(rows)
}

func (r *OpportunityRepository) ListByCompany(ctx context.Context, companyID common.UUID) ([]opportunity.Opportunity, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, company_id, title, description, requirements, location, status, created_at, updated_at
		FROM opportunities WHERE company_id = $1 ORDER BY created_at DESC`, companyID)
	if err != nil {
		return nil, common.NewError(common.CodeStoreFailure, "failed to list company opportunities", err)
	}
	return scanOpportunities(rows)
}

func scanOpportunities(rows *sql.Rows) ([]opportunity.Opportunity, error) {
	defer rows.Close()
	var items []opportunity.Opportunity
	for rows.Next() {
		var o opportunity.Opportunity
		if err := rows.Scan(&o.ID, &o.CompanyID, &o.Title, &o.Description, pq.Array(&o.Requirements), &o.Location, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, common.NewError(common.CodeStoreFailure, "failed to scan opportunity", err)
		}
		items = append(items, o)
	}
	return items, nil
}
