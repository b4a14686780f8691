package services

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"calliope_members/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	optionsMemberQuery  = `SELECT membership_type, membership_start_date, membership_end_date, payment_status FROM members WHERE id = ?`
	optionsBalanceQuery = `SELECT amount, allocated_amount FROM payment_transactions WHERE member_id = ? AND status = ?`
	lockMemberQuery     = `SELECT membership_end_date FROM members WHERE id = ? FOR UPDATE`
	lockTxQuery         = `SELECT id, amount, allocated_amount FROM payment_transactions WHERE member_id = ? AND status = ? ORDER BY created_at ASC, id ASC FOR UPDATE`
	updateTxQuery       = `UPDATE payment_transactions SET allocated_amount = allocated_amount + ?, allocation_type = ?, allocation_years = ?, allocation_date = ? WHERE id = ?`
	updateMemberQuery   = `UPDATE members SET membership_type = ?, membership_start_date = ?, membership_end_date = ?, payment_status = ?, payment_amount = ?, last_payment_date = ? WHERE id = ?`
)

func expectBalance(mock sqlmock.Sqlmock, memberID int, rows *sqlmock.Rows) {
	mock.ExpectQuery(regexp.QuoteMeta(optionsMemberQuery)).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"membership_type", "membership_start_date", "membership_end_date", "payment_status"}).
			AddRow(models.MembershipFreeTrial, nil, nil, models.PaymentStatusUnpaid))
	mock.ExpectQuery(regexp.QuoteMeta(optionsBalanceQuery)).
		WithArgs(memberID, models.TransactionCompleted).
		WillReturnRows(rows)
}

func balanceRows(pairs ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"amount", "allocated_amount"})
	for i := 0; i+1 < len(pairs); i += 2 {
		rows.AddRow(pairs[i], pairs[i+1])
	}
	return rows
}

func TestAllocationOptionsExactPriceOffersMembershipYear(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectBalance(mock, 5, balanceRows("20.00", "0.00"))

	options, err := GetAllocationOptions(context.Background(), db, 5)
	require.NoError(t, err)

	assert.True(t, options.UnallocatedBalance.Equal(BasicYearlyPrice))
	require.Len(t, options.Options, 1)
	assert.Equal(t, models.AllocationMembershipYears, options.Options[0].Type)
	assert.Equal(t, 1, options.Options[0].Years)
	assert.True(t, options.Options[0].Amount.Equal(BasicYearlyPrice))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocationOptionsAbovePriceOffersSponsorOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectBalance(mock, 5, balanceRows("20.01", "0.00"))

	options, err := GetAllocationOptions(context.Background(), db, 5)
	require.NoError(t, err)

	require.Len(t, options.Options, 1)
	assert.Equal(t, models.AllocationSponsorDonation, options.Options[0].Type)
	assert.True(t, options.Options[0].Amount.Equal(decimal.RequireFromString("20.01")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocationOptionsBelowPriceOffersNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectBalance(mock, 5, balanceRows("15.00", "0.00", "10.00", "6.00"))

	options, err := GetAllocationOptions(context.Background(), db, 5)
	require.NoError(t, err)

	assert.True(t, options.UnallocatedBalance.Equal(decimal.RequireFromString("19.00")))
	assert.True(t, options.TotalBalance.Equal(decimal.RequireFromString("25.00")))
	assert.True(t, options.AllocatedBalance.Equal(decimal.RequireFromString("6.00")))
	assert.Empty(t, options.Options)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocationOptionsMemberNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(optionsMemberQuery)).
		WithArgs(404).
		WillReturnError(sql.ErrNoRows)

	_, err = GetAllocationOptions(context.Background(), db, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateSpansTransactionsOldestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Two completed transactions of 15 and 10; one membership year needs 20:
	// the older row is consumed fully, the newer one partially.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockMemberQuery)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"membership_end_date"}).AddRow(nil))
	mock.ExpectQuery(regexp.QuoteMeta(lockTxQuery)).
		WithArgs(5, models.TransactionCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount", "allocated_amount"}).
			AddRow(1, "15.00", "0.00").
			AddRow(2, "10.00", "0.00"))
	mock.ExpectExec(regexp.QuoteMeta(updateTxQuery)).
		WithArgs(sqlmock.AnyArg(), models.AllocationMembershipYears, 1, sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(updateTxQuery)).
		WithArgs(sqlmock.AnyArg(), models.AllocationMembershipYears, 1, sqlmock.AnyArg(), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(updateMemberQuery)).
		WithArgs(models.MembershipBasic, sqlmock.AnyArg(), sqlmock.AnyArg(), models.PaymentStatusPaid, sqlmock.AnyArg(), sqlmock.AnyArg(), 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := Allocate(context.Background(), db, 5, models.AllocationMembershipYears, 1)
	require.NoError(t, err)

	assert.Equal(t, models.AllocationMembershipYears, result.Type)
	assert.Equal(t, 1, result.Years)
	assert.True(t, result.Amount.Equal(BasicYearlyPrice))
	assert.Equal(t, models.MembershipBasic, result.MembershipType)

	// With no prior end date the extension starts today.
	today := time.Now().Format("2006-01-02")
	assert.Equal(t, today, result.MembershipStart)
	assert.Equal(t, time.Now().AddDate(1, 0, 0).Format("2006-01-02"), result.MembershipEnd)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateExtendsFromCurrentEndDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	futureEnd := time.Now().AddDate(0, 3, 0).Format("2006-01-02")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockMemberQuery)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"membership_end_date"}).AddRow(futureEnd))
	mock.ExpectQuery(regexp.QuoteMeta(lockTxQuery)).
		WithArgs(5, models.TransactionCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount", "allocated_amount"}).
			AddRow(1, "40.00", "0.00"))
	mock.ExpectExec(regexp.QuoteMeta(updateTxQuery)).
		WithArgs(sqlmock.AnyArg(), models.AllocationMembershipYears, 2, sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(updateMemberQuery)).
		WithArgs(models.MembershipBasic, futureEnd, sqlmock.AnyArg(), models.PaymentStatusPaid, sqlmock.AnyArg(), sqlmock.AnyArg(), 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := Allocate(context.Background(), db, 5, models.AllocationMembershipYears, 2)
	require.NoError(t, err)

	end, parseErr := time.Parse("2006-01-02", futureEnd)
	require.NoError(t, parseErr)

	assert.Equal(t, futureEnd, result.MembershipStart)
	assert.Equal(t, end.AddDate(2, 0, 0).Format("2006-01-02"), result.MembershipEnd)
	assert.True(t, result.Amount.Equal(decimal.RequireFromString("40.00")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateSponsorTakesFullBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockMemberQuery)).
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"membership_end_date"}).AddRow(nil))
	mock.ExpectQuery(regexp.QuoteMeta(lockTxQuery)).
		WithArgs(8, models.TransactionCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount", "allocated_amount"}).
			AddRow(1, "75.50", "0.00"))
	mock.ExpectExec(regexp.QuoteMeta(updateTxQuery)).
		WithArgs(sqlmock.AnyArg(), models.AllocationSponsorDonation, 1, sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(updateMemberQuery)).
		WithArgs(models.MembershipSponsor, sqlmock.AnyArg(), sqlmock.AnyArg(), models.PaymentStatusPaid, sqlmock.AnyArg(), sqlmock.AnyArg(), 8).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := Allocate(context.Background(), db, 8, models.AllocationSponsorDonation, 0)
	require.NoError(t, err)

	assert.Equal(t, models.AllocationSponsorDonation, result.Type)
	assert.Equal(t, 1, result.Years)
	assert.True(t, result.Amount.Equal(decimal.RequireFromString("75.50")))
	assert.Equal(t, models.MembershipSponsor, result.MembershipType)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateSponsorWithZeroBalanceFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockMemberQuery)).
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"membership_end_date"}).AddRow(nil))
	mock.ExpectQuery(regexp.QuoteMeta(lockTxQuery)).
		WithArgs(8, models.TransactionCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount", "allocated_amount"}))
	mock.ExpectRollback()

	_, err = Allocate(context.Background(), db, 8, models.AllocationSponsorDonation, 0)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateInsufficientBalanceRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockMemberQuery)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"membership_end_date"}).AddRow(nil))
	mock.ExpectQuery(regexp.QuoteMeta(lockTxQuery)).
		WithArgs(5, models.TransactionCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount", "allocated_amount"}).
			AddRow(1, "15.00", "5.00"))
	mock.ExpectRollback()

	_, err = Allocate(context.Background(), db, 5, models.AllocationMembershipYears, 1)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateValidatesInput(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = Allocate(context.Background(), db, 5, "buy_a_painting", 1)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = Allocate(context.Background(), db, 5, models.AllocationMembershipYears, 0)
	assert.ErrorIs(t, err, ErrValidation)
}
