package pipeline

import (
	"time"

	"talentgate/internal/common"
)

type Status string

const (
	StatusInterviewing Status = "interviewing"
	StatusHired        Status = "hired"
)

// Record tracks a candidate's interview or hire detail for one opportunity.
// At most one record exists per (opportunity, applicant) pair; its status is
// mirrored onto the sibling application by the pipeline service.
type Record struct {
	ID            common.UUID `json:"id"`
	OpportunityID common.UUID `json:"opportunity_id"`
	CompanyID     common.UUID `json:"company_id"`
	ApplicantID   common.UUID `json:"applicant_id"`
	Status        Status      `json:"status"`

	InterviewRound int        `json:"interview_round,omitempty"`
	ScheduledAt    *time.Time `json:"scheduled_at,omitempty"`
	Interviewer    string     `json:"interviewer,omitempty"`
	Notes          string     `json:"notes,omitempty"`

	Role      string     `json:"role,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InterviewDetails struct {
	Round       int        `json:"round"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Interviewer string     `json:"interviewer"`
	Notes       string     `json:"notes"`
}

type HireDetails struct {
	Role      string     `json:"role"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Notes     string     `json:"notes"`
}

// DetailUpdate carries an in-place edit of stage-specific fields. Nil fields
// are left unchanged. Status is deliberately absent; status changes go
// through advance, hire, or remove.
type DetailUpdate struct {
	InterviewRound *int       `json:"interview_round"`
	ScheduledAt    *time.Time `json:"scheduled_at"`
	Interviewer    *string    `json:"interviewer"`
	Notes          *string    `json:"notes"`
	Role           *string    `json:"role"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
}
