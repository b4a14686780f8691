package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Member statuses and the values reconciliation reads from them.
const (
	MemberStatusPending  = "pending"
	MemberStatusApproved = "approved"
	MemberStatusRejected = "rejected"

	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPaid    = "paid"
	PaymentStatusOverdue = "overdue"
)

const (
	MembershipFreeTrial = "free_trial"
	MembershipMonthly   = "monthly"
	MembershipYearly    = "yearly"
	MembershipLifetime  = "lifetime"
	MembershipBasic     = "basic"
	MembershipSponsor   = "sponsor"
)

type Member struct {
	ID                  int                 `json:"id,omitempty" db:"id,omitempty"`
	FirstName           string              `json:"first_name,omitempty" db:"first_name,omitempty"`
	LastName            string              `json:"last_name,omitempty" db:"last_name,omitempty"`
	Email               string              `json:"email,omitempty" db:"email,omitempty"`
	Status              string              `json:"status,omitempty" db:"status,omitempty"`
	PaymentStatus       string              `json:"payment_status,omitempty" db:"payment_status,omitempty"`
	MembershipType      string              `json:"membership_type,omitempty" db:"membership_type,omitempty"`
	MembershipStartDate sql.NullString      `json:"membership_start_date,omitempty" db:"membership_start_date,omitempty"`
	MembershipEndDate   sql.NullString      `json:"membership_end_date,omitempty" db:"membership_end_date,omitempty"`
	InviterID           sql.NullInt64       `json:"inviter_id,omitempty" db:"inviter_id,omitempty"`
	PaymentAmount       decimal.NullDecimal `json:"payment_amount,omitempty" db:"payment_amount,omitempty"`
	LastPaymentDate     sql.NullString      `json:"last_payment_date,omitempty" db:"last_payment_date,omitempty"`
	CreatedAt           sql.NullString      `json:"created_at,omitempty" db:"created_at,omitempty"`
	UpdatedAt           sql.NullString      `json:"updated_at,omitempty" db:"updated_at,omitempty"`
}

var ValidMemberStatuses = map[string]bool{
	MemberStatusPending:  true,
	MemberStatusApproved: true,
	MemberStatusRejected: true,
}

var ValidPaymentStatuses = map[string]bool{
	PaymentStatusUnpaid:  true,
	PaymentStatusPaid:    true,
	PaymentStatusOverdue: true,
}
