package opportunity

import (
	"time"

	"talentgate/internal/common"
)

type Status string

const (
	StatusPending          Status = "pending"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
	StatusRevisionRequired Status = "revision_required"
	StatusClosed           Status = "closed"
)

type Action string

const (
	ActionSubmitted       Action = "submitted"
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
	ActionRequestRevision Action = "request_revision"
	ActionClose           Action = "close"
	ActionHireNote        Action = "hire_note"
)

// HistoryEntry is one row of the append-only moderation trail. Entries are
// never rewritten; ordering is preserved by the store.
type HistoryEntry struct {
	At     time.Time    `json:"at"`
	Action Action       `json:"action"`
	Note   string       `json:"note,omitempty"`
	By     *common.UUID `json:"by,omitempty"`
}

type Opportunity struct {
	ID           common.UUID    `json:"id"`
	CompanyID    common.UUID    `json:"company_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Requirements []string       `json:"requirements"`
	Location     string         `json:"location"`
	Status       Status         `json:"status"`
	History      []HistoryEntry `json:"history,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
