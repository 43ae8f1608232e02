package user

import "talentgate/internal/common"

type Role string

const (
	RoleApplicant Role = "applicant"
	RoleCompany   Role = "company"
	RoleAdmin     Role = "admin"
)

// Actor is the authenticated identity performing an operation. The workflow
// trusts it as supplied by the session layer and never re-authenticates.
type Actor struct {
	ID   common.UUID
	Role Role
}
