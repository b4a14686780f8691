package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

const (
	TransactionCompleted = "completed"

	AllocationMembershipYears = "membership_years"
	AllocationSponsorDonation = "sponsor_donation"
)

type PaymentTransaction struct {
	ID              int             `json:"id,omitempty" db:"id,omitempty"`
	MemberID        int             `json:"member_id,omitempty" db:"member_id,omitempty"`
	Amount          decimal.Decimal `json:"amount,omitempty" db:"amount,omitempty"`
	Status          string          `json:"status,omitempty" db:"status,omitempty"`
	Reference       string          `json:"reference,omitempty" db:"reference,omitempty"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount" db:"allocated_amount"`
	AllocationType  sql.NullString  `json:"allocation_type,omitempty" db:"allocation_type,omitempty"`
	AllocationYears sql.NullInt64   `json:"allocation_years,omitempty" db:"allocation_years,omitempty"`
	AllocationDate  sql.NullString  `json:"allocation_date,omitempty" db:"allocation_date,omitempty"`
	CreatedAt       sql.NullString  `json:"created_at,omitempty" db:"created_at,omitempty"`
	UpdatedAt       sql.NullString  `json:"updated_at,omitempty" db:"updated_at,omitempty"`
}
