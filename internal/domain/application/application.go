package application

import (
	"time"

	"talentgate/internal/common"
)

type Status string

const (
	StatusSubmitted    Status = "submitted"
	StatusInterviewing Status = "interviewing"
	StatusHired        Status = "hired"
	StatusRejected     Status = "rejected"
	StatusWithdrawn    Status = "withdrawn"
)

type Application struct {
	ID            common.UUID `json:"id"`
	OpportunityID common.UUID `json:"opportunity_id"`
	ApplicantID   common.UUID `json:"applicant_id"`
	Status        Status      `json:"status"`
	// Answers is the applicant's submission snapshot, frozen at apply time.
	Answers   map[string]string `json:"answers,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
