package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"calliope_members/internal/models"
	"calliope_members/pkg/utils"

	"github.com/shopspring/decimal"
)

// BasicYearlyPrice is the price of one year of basic membership, in euros.
var BasicYearlyPrice = decimal.RequireFromString("20.00")

// allocationTolerance absorbs rounding leftovers when walking transaction
// rows; anything larger than this after a full scan aborts the allocation.
var allocationTolerance = decimal.RequireFromString("0.01")

type AllocationOption struct {
	Type   string          `json:"type"`
	Years  int             `json:"years"`
	Amount decimal.Decimal `json:"amount"`
}

type MembershipSnapshot struct {
	Type          string `json:"type,omitempty"`
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
}

type AllocationOptions struct {
	UnallocatedBalance decimal.Decimal    `json:"unallocated_balance"`
	AllocatedBalance   decimal.Decimal    `json:"allocated_balance"`
	TotalBalance       decimal.Decimal    `json:"total_balance"`
	Options            []AllocationOption `json:"options"`
	CurrentMembership  MembershipSnapshot `json:"current_membership"`
}

type AllocationResult struct {
	Type            string          `json:"type"`
	Years           int             `json:"years"`
	Amount          decimal.Decimal `json:"amount"`
	MembershipType  string          `json:"membership_type"`
	MembershipStart string          `json:"membership_start"`
	MembershipEnd   string          `json:"membership_end"`
}

type lockedTransaction struct {
	id        int
	amount    decimal.Decimal
	allocated decimal.Decimal
}

// GetAllocationOptions reports a member's payment balances and what the
// unallocated part can fund. Exactly one basic year when the balance matches
// the yearly price to the cent, a sponsor donation when it exceeds it,
// nothing below it.
func GetAllocationOptions(ctx context.Context, db *sql.DB, memberID int) (*AllocationOptions, error) {
	var snapshot MembershipSnapshot
	var membershipType, startDate, endDate sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT membership_type, membership_start_date, membership_end_date, payment_status FROM members WHERE id = ?`,
		memberID,
	).Scan(&membershipType, &startDate, &endDate, &snapshot.PaymentStatus)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("member: %w", ErrNotFound)
	}
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to load member")
	}
	snapshot.Type = membershipType.String
	snapshot.StartDate = startDate.String
	snapshot.EndDate = endDate.String

	rows, err := db.QueryContext(ctx,
		`SELECT amount, allocated_amount FROM payment_transactions WHERE member_id = ? AND status = ?`,
		memberID, models.TransactionCompleted,
	)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to query payment transactions")
	}
	defer rows.Close()

	total := decimal.Zero
	allocated := decimal.Zero
	for rows.Next() {
		var amount, alloc decimal.Decimal
		if err := rows.Scan(&amount, &alloc); err != nil {
			return nil, utils.ErrorHandler(err, "failed to scan payment transaction")
		}
		total = total.Add(amount)
		allocated = allocated.Add(alloc)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.ErrorHandler(err, "failed to read payment transactions")
	}

	unallocated := total.Sub(allocated)

	result := &AllocationOptions{
		UnallocatedBalance: unallocated,
		AllocatedBalance:   allocated,
		TotalBalance:       total,
		CurrentMembership:  snapshot,
	}

	switch {
	case unallocated.GreaterThan(BasicYearlyPrice):
		result.Options = append(result.Options, AllocationOption{
			Type:   models.AllocationSponsorDonation,
			Years:  1,
			Amount: unallocated,
		})
	case unallocated.Equal(BasicYearlyPrice):
		result.Options = append(result.Options, AllocationOption{
			Type:   models.AllocationMembershipYears,
			Years:  1,
			Amount: BasicYearlyPrice,
		})
	}

	return result, nil
}

// Allocate converts a member's unallocated balance into a membership
// extension or a sponsor donation. The balance read, the oldest-first take
// loop over transaction rows and the member update run inside one transaction
// with the rows locked, so concurrent calls cannot over-allocate; any failure
// rolls the whole sequence back.
func Allocate(ctx context.Context, db *sql.DB, memberID int, allocationType string, years int) (*AllocationResult, error) {
	switch allocationType {
	case models.AllocationMembershipYears:
		if years < 1 {
			return nil, fmt.Errorf("%w: allocation_years must be at least 1", ErrValidation)
		}
	case models.AllocationSponsorDonation:
		years = 1
	default:
		return nil, fmt.Errorf("%w: unknown allocation_type %q", ErrValidation, allocationType)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to start transaction")
	}
	defer tx.Rollback()

	var currentEnd sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT membership_end_date FROM members WHERE id = ? FOR UPDATE`, memberID).Scan(&currentEnd)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("member: %w", ErrNotFound)
	}
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to lock member")
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, amount, allocated_amount FROM payment_transactions WHERE member_id = ? AND status = ? ORDER BY created_at ASC, id ASC FOR UPDATE`,
		memberID, models.TransactionCompleted,
	)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to lock payment transactions")
	}

	var transactions []lockedTransaction
	for rows.Next() {
		var t lockedTransaction
		if err := rows.Scan(&t.id, &t.amount, &t.allocated); err != nil {
			rows.Close()
			return nil, utils.ErrorHandler(err, "failed to scan payment transaction")
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, utils.ErrorHandler(err, "failed to read payment transactions")
	}
	rows.Close()

	unallocated := decimal.Zero
	for _, t := range transactions {
		unallocated = unallocated.Add(t.amount.Sub(t.allocated))
	}

	var amountNeeded decimal.Decimal
	if allocationType == models.AllocationMembershipYears {
		amountNeeded = BasicYearlyPrice.Mul(decimal.NewFromInt(int64(years)))
	} else {
		amountNeeded = unallocated
	}

	if amountNeeded.GreaterThan(unallocated) || !amountNeeded.IsPositive() {
		return nil, fmt.Errorf("%w: need %s, have %s", ErrInsufficientBalance,
			amountNeeded.StringFixed(2), unallocated.StringFixed(2))
	}

	today := time.Now()
	allocationDate := today.Format("2006-01-02")

	remaining := amountNeeded
	for _, t := range transactions {
		if !remaining.IsPositive() {
			break
		}
		available := t.amount.Sub(t.allocated)
		if !available.IsPositive() {
			continue
		}
		take := decimal.Min(available, remaining)

		_, err = tx.ExecContext(ctx,
			`UPDATE payment_transactions SET allocated_amount = allocated_amount + ?, allocation_type = ?, allocation_years = ?, allocation_date = ? WHERE id = ?`,
			take, allocationType, years, allocationDate, t.id,
		)
		if err != nil {
			return nil, utils.ErrorHandler(err, "failed to update payment transaction")
		}
		remaining = remaining.Sub(take)
	}

	if remaining.GreaterThan(allocationTolerance) {
		return nil, fmt.Errorf("%w: %s left after scanning all transactions",
			ErrAllocationIncomplete, remaining.StringFixed(2))
	}

	// Extension starts today or at the current expiry, whichever is later.
	start := today
	if currentEnd.Valid && currentEnd.String != "" {
		if end, parseErr := time.Parse("2006-01-02", currentEnd.String); parseErr == nil && end.After(today) {
			start = end
		}
	}
	newEnd := start.AddDate(years, 0, 0)

	membershipType := models.MembershipBasic
	if allocationType == models.AllocationSponsorDonation {
		membershipType = models.MembershipSponsor
	}

	startStr := start.Format("2006-01-02")
	endStr := newEnd.Format("2006-01-02")

	_, err = tx.ExecContext(ctx,
		`UPDATE members SET membership_type = ?, membership_start_date = ?, membership_end_date = ?, payment_status = ?, payment_amount = ?, last_payment_date = ? WHERE id = ?`,
		membershipType, startStr, endStr, models.PaymentStatusPaid, amountNeeded, allocationDate, memberID,
	)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to update member")
	}

	if err := tx.Commit(); err != nil {
		return nil, utils.ErrorHandler(err, "failed to commit allocation")
	}

	return &AllocationResult{
		Type:            allocationType,
		Years:           years,
		Amount:          amountNeeded,
		MembershipType:  membershipType,
		MembershipStart: startStr,
		MembershipEnd:   endStr,
	}, nil
}
