package models

import "database/sql"

// Invitation statuses. The happy path is sent → registered → payed → approved,
// but reconciliation may recompute a status out of order from the member's
// current state.
const (
	InviteStatusSent       = "sent"
	InviteStatusRegistered = "registered"
	InviteStatusPayed      = "payed"
	InviteStatusApproved   = "approved"
	InviteStatusExpired    = "expired"
)

type Invitation struct {
	ID               int            `json:"id,omitempty" db:"id,omitempty"`
	InviterID        int            `json:"inviter_id,omitempty" db:"inviter_id,omitempty"`
	InviteeEmail     string         `json:"invitee_email,omitempty" db:"invitee_email,omitempty"`
	InviteeFirstName string         `json:"invitee_first_name,omitempty" db:"invitee_first_name,omitempty"`
	InviteeMemberID  sql.NullInt64  `json:"invitee_member_id,omitempty" db:"invitee_member_id,omitempty"`
	Status           string         `json:"status,omitempty" db:"status,omitempty"`
	Token            string         `json:"-" db:"token,omitempty"`
	SentAt           sql.NullString `json:"sent_at,omitempty" db:"sent_at,omitempty"`
	RegisteredAt     sql.NullString `json:"registered_at,omitempty" db:"registered_at,omitempty"`
	PayedAt          sql.NullString `json:"payed_at,omitempty" db:"payed_at,omitempty"`
	ApprovedAt       sql.NullString `json:"approved_at,omitempty" db:"approved_at,omitempty"`
	ExpiresAt        sql.NullString `json:"expires_at,omitempty" db:"expires_at,omitempty"`
}
