package services

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"calliope_members/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var memberCols = []string{"id", "first_name", "last_name", "email", "inviter_id", "status", "payment_status", "membership_type", "membership_end_date"}
var invitationCols = []string{"id", "inviter_id", "invitee_email", "invitee_first_name", "invitee_member_id", "status", "registered_at", "payed_at", "approved_at"}

const (
	memberByIDQuery      = `SELECT id, first_name, last_name, email, inviter_id, status, payment_status, membership_type, membership_end_date FROM members WHERE id = ? FOR UPDATE`
	memberByEmailQuery   = `SELECT id, first_name, last_name, email, inviter_id, status, payment_status, membership_type, membership_end_date FROM members WHERE LOWER(TRIM(email)) = ? FOR UPDATE`
	invitesByMemberQuery = `SELECT ` + invitationColumns + ` FROM member_invitations WHERE invitee_member_id = ? FOR UPDATE`
	invitesByEmailQuery  = `SELECT ` + invitationColumns + ` FROM member_invitations WHERE LOWER(TRIM(invitee_email)) = ? FOR UPDATE`
)

func TestReconcileApprovedMemberPromotesInvitation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(memberByIDQuery)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(memberCols).
			AddRow(7, "Nora", "Visser", "nora@example.org", nil, models.MemberStatusApproved, models.PaymentStatusUnpaid, models.MembershipFreeTrial, nil))
	mock.ExpectQuery(regexp.QuoteMeta(invitesByMemberQuery)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(invitationCols).
			AddRow(3, 2, "nora@example.org", "Nora", 7, models.InviteStatusSent, nil, nil, nil))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE member_invitations SET status = ?, registered_at = ?, approved_at = ? WHERE id = ?`)).
		WithArgs(models.InviteStatusApproved, sqlmock.AnyArg(), sqlmock.AnyArg(), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := ReconcileInvitations(context.Background(), db, MemberRef{ID: 7})
	require.NoError(t, err)

	assert.Equal(t, 1, result.UpdatedCount)
	require.Len(t, result.Invitations, 1)
	assert.Equal(t, models.InviteStatusApproved, result.Invitations[0].Status)
	assert.True(t, result.Invitations[0].RegisteredAt.Valid)
	assert.True(t, result.Invitations[0].ApprovedAt.Valid)
	assert.False(t, result.Invitations[0].PayedAt.Valid)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileIsIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Invitation already fully reconciled: no update statement may run.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(memberByIDQuery)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(memberCols).
			AddRow(7, "Nora", "Visser", "nora@example.org", nil, models.MemberStatusApproved, models.PaymentStatusPaid, models.MembershipBasic, "2027-03-01"))
	mock.ExpectQuery(regexp.QuoteMeta(invitesByMemberQuery)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(invitationCols).
			AddRow(3, 2, "nora@example.org", "Nora", 7, models.InviteStatusApproved, "2026-01-10 12:00:00", nil, "2026-01-11 09:30:00"))
	mock.ExpectCommit()

	result, err := ReconcileInvitations(context.Background(), db, MemberRef{ID: 7})
	require.NoError(t, err)

	assert.Equal(t, 0, result.UpdatedCount)
	require.Len(t, result.Invitations, 1)
	assert.Equal(t, models.InviteStatusApproved, result.Invitations[0].Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileMatchesByCaseInsensitiveEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Member email carries a trailing space, invitation email differs in
	// case; no invitee_member_id link exists yet.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(memberByEmailQuery)).
		WithArgs("foo@bar.com").
		WillReturnRows(sqlmock.NewRows(memberCols).
			AddRow(12, "Frida", "Olsen", "foo@bar.com ", nil, models.MemberStatusPending, models.PaymentStatusUnpaid, models.MembershipFreeTrial, nil))
	mock.ExpectQuery(regexp.QuoteMeta(invitesByMemberQuery)).
		WithArgs(12).
		WillReturnRows(sqlmock.NewRows(invitationCols))
	mock.ExpectQuery(regexp.QuoteMeta(invitesByEmailQuery)).
		WithArgs("foo@bar.com").
		WillReturnRows(sqlmock.NewRows(invitationCols).
			AddRow(9, 4, "Foo@Bar.com", "Frida", nil, models.InviteStatusSent, nil, nil, nil))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE member_invitations SET invitee_member_id = ?, status = ?, registered_at = ? WHERE id = ?`)).
		WithArgs(12, models.InviteStatusRegistered, sqlmock.AnyArg(), 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := ReconcileInvitations(context.Background(), db, MemberRef{Email: " Foo@Bar.com"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.UpdatedCount)
	require.Len(t, result.Invitations, 1)
	assert.Equal(t, models.InviteStatusRegistered, result.Invitations[0].Status)
	assert.Equal(t, int64(12), result.Invitations[0].InviteeMemberID.Int64)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileFallsBackToInviterAndEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	invitesByInviterQuery := `SELECT ` + invitationColumns + ` FROM member_invitations WHERE inviter_id = ? AND LOWER(TRIM(invitee_email)) = ? FOR UPDATE`

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(memberByIDQuery)).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows(memberCols).
			AddRow(20, "Jan", "Brand", "jan@example.org", 4, models.MemberStatusPending, models.PaymentStatusPaid, models.MembershipFreeTrial, nil))
	mock.ExpectQuery(regexp.QuoteMeta(invitesByMemberQuery)).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows(invitationCols))
	mock.ExpectQuery(regexp.QuoteMeta(invitesByEmailQuery)).
		WithArgs("jan@example.org").
		WillReturnRows(sqlmock.NewRows(invitationCols))
	mock.ExpectQuery(regexp.QuoteMeta(invitesByInviterQuery)).
		WithArgs(4, "jan@example.org").
		WillReturnRows(sqlmock.NewRows(invitationCols).
			AddRow(31, 4, "jan@example.org", "Jan", nil, models.InviteStatusRegistered, "2026-02-01 10:00:00", nil, nil))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE member_invitations SET invitee_member_id = ?, status = ?, payed_at = ? WHERE id = ?`)).
		WithArgs(20, models.InviteStatusPayed, sqlmock.AnyArg(), 31).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := ReconcileInvitations(context.Background(), db, MemberRef{ID: 20})
	require.NoError(t, err)

	assert.Equal(t, 1, result.UpdatedCount)
	assert.Equal(t, models.InviteStatusPayed, result.Invitations[0].Status)
	assert.True(t, result.Invitations[0].PayedAt.Valid)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileMemberNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(memberByIDQuery)).
		WithArgs(999).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err = ReconcileInvitations(context.Background(), db, MemberRef{ID: 999})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
