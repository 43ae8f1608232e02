package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"talentgate/internal/common"
	"talentgate/internal/domain/opportunity"
	"talentgate/internal/domain/user"
)

// ModerationService owns the posting approval state machine. Every status
// change appends exactly one history entry; disallowed transitions are
// rejected before any write happens.
type ModerationService struct {
	repo opportunity.Repository
}

func NewModerationService(repo opportunity.Repository) *ModerationService {
	return &ModerationService{repo: repo}
}

func (s *ModerationService) SubmitForReview(ctx context.Context, o opportunity.Opportunity) (*opportunity.Opportunity, error) {
	fields := map[string]string{}
	if strings.TrimSpace(o.Title) == "" {
		fields["title"] = "title is required"
	}
	if strings.TrimSpace(o.Description) == "" {
		fields["description"] = "description is required"
	}
	if o.CompanyID == "" {
		fields["company_id"] = "company_id is required"
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid opportunity", fields)
	}
	o.Status = opportunity.StatusPending
	companyID := o.CompanyID
	o.History = []opportunity.HistoryEntry{{
		At:     time.Now().UTC(),
		Action: opportunity.ActionSubmitted,
		By:     &companyID,
	}}
	return s.repo.Create(ctx, o)
}

// Transition applies one moderation action. Admin actors may perform any
// action; a company actor may only close its own approved posting.
func (s *ModerationService) Transition(ctx context.Context, id common.UUID, action opportunity.Action, note string, actor user.Actor) (*opportunity.Opportunity, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	normalized := opportunity.Action(strings.ToLower(strings.TrimSpace(string(action))))
	note = strings.TrimSpace(note)

	if actor.Role != user.RoleAdmin {
		if actor.Role != user.RoleCompany || normalized != opportunity.ActionClose {
			return nil, common.NewError(common.CodeForbidden, "moderation actions require the admin role", nil)
		}
		if current.CompanyID != actor.ID {
			return nil, common.NewError(common.CodeForbidden, "opportunity belongs to another company", nil)
		}
	}

	next, err := nextStatus(current.Status, normalized, note)
	if err != nil {
		return nil, err
	}
	actorID := actor.ID
	entry := opportunity.HistoryEntry{
		At:     time.Now().UTC(),
		Action: normalized,
		Note:   note,
		By:     &actorID,
	}
	return s.repo.UpdateStatus(ctx, id, next, entry)
}

func nextStatus(current opportunity.Status, action opportunity.Action, note string) (opportunity.Status, error) {
	switch action {
	case opportunity.ActionApprove:
		if current == opportunity.StatusPending || current == opportunity.StatusRevisionRequired {
			return opportunity.StatusApproved, nil
		}
	case opportunity.ActionReject:
		if current == opportunity.StatusPending || current == opportunity.StatusRevisionRequired {
			return opportunity.StatusRejected, nil
		}
	case opportunity.ActionRequestRevision:
		if note == "" {
			return "", common.NewError(common.CodeMissingRequiredNote, "request_revision requires a note for the author", nil)
		}
		if current == opportunity.StatusPending || current == opportunity.StatusRevisionRequired || current == opportunity.StatusApproved {
			return opportunity.StatusRevisionRequired, nil
		}
	case opportunity.ActionClose:
		if current == opportunity.StatusApproved {
			return opportunity.StatusClosed, nil
		}
	default:
		return "", common.NewValidationError("unknown moderation action", map[string]string{"action": "action must be approve, reject, request_revision, or close"})
	}
	return "", common.NewError(common.CodeInvalidTransition, fmt.Sprintf("cannot %s an opportunity in status %s", action, current), nil)
}

func (s *ModerationService) Get(ctx context.Context, id common.UUID) (*opportunity.Opportunity, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ModerationService) ListApproved(ctx context.Context, limit, offset int) ([]opportunity.Opportunity, error) {
	return s.repo.ListApproved(ctx, limit, offset)
}

func (s *ModerationService) ListByCompany(ctx context.Context, companyID common.UUID) ([]opportunity.Opportunity, error) {
	return s.repo.ListByCompany(ctx, companyID)
}
