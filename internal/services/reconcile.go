package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"calliope_members/internal/models"
	"calliope_members/pkg/utils"
)

// MemberRef identifies the member to reconcile against, by row ID or by
// email. ID wins when both are set.
type MemberRef struct {
	ID    int
	Email string
}

type ReconcileResult struct {
	UpdatedCount int                 `json:"updated_count"`
	Member       models.Member       `json:"member"`
	Invitations  []models.Invitation `json:"invitations"`
}

const invitationColumns = `id, inviter_id, invitee_email, invitee_first_name, invitee_member_id, status, registered_at, payed_at, approved_at`

// ReconcileInvitations links every invitation that refers to the given member
// and recomputes its status from the member's current state. Safe to call
// repeatedly: a second call with no intervening member change updates nothing.
// The member read and all invitation updates share one transaction; a failure
// on a single invitation is logged and does not abort the others.
func ReconcileInvitations(ctx context.Context, db *sql.DB, ref MemberRef) (*ReconcileResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to start transaction")
	}
	defer tx.Rollback()

	member, err := lockMember(ctx, tx, ref)
	if err != nil {
		return nil, err
	}

	state := MemberState{
		ID:            member.ID,
		Email:         member.Email,
		Status:        member.Status,
		PaymentStatus: member.PaymentStatus,
	}
	if member.InviterID.Valid {
		state.InviterID = int(member.InviterID.Int64)
		state.HasInviter = true
	}

	invitations, err := candidateInvitations(ctx, tx, state)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format("2006-01-02 15:04:05")
	updated := 0

	for i := range invitations {
		changed, err := applyInvitationUpdate(ctx, tx, &invitations[i], state, now)
		if err != nil {
			utils.Logger.Errorf("failed to reconcile invitation %d for member %d: %v", invitations[i].ID, state.ID, err)
			continue
		}
		if changed {
			updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, utils.ErrorHandler(err, "failed to commit reconciliation")
	}

	return &ReconcileResult{
		UpdatedCount: updated,
		Member:       *member,
		Invitations:  invitations,
	}, nil
}

func lockMember(ctx context.Context, tx *sql.Tx, ref MemberRef) (*models.Member, error) {
	query := `SELECT id, first_name, last_name, email, inviter_id, status, payment_status, membership_type, membership_end_date FROM members WHERE `
	var arg interface{}
	if ref.ID > 0 {
		query += `id = ?`
		arg = ref.ID
	} else {
		query += `LOWER(TRIM(email)) = ?`
		arg = strings.ToLower(strings.TrimSpace(ref.Email))
	}
	query += ` FOR UPDATE`

	var m models.Member
	err := tx.QueryRowContext(ctx, query, arg).Scan(
		&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.InviterID,
		&m.Status, &m.PaymentStatus, &m.MembershipType, &m.MembershipEndDate,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("member: %w", ErrNotFound)
	}
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to load member")
	}
	return &m, nil
}

// candidateInvitations tries the linking strategies in priority order and
// returns the first non-empty set: exact invitee_member_id link, then email
// match, then inviter + email match. Later strategies are only consulted when
// earlier ones find nothing.
func candidateInvitations(ctx context.Context, tx *sql.Tx, member MemberState) ([]models.Invitation, error) {
	email := strings.ToLower(strings.TrimSpace(member.Email))

	byID := `SELECT ` + invitationColumns + ` FROM member_invitations WHERE invitee_member_id = ? FOR UPDATE`
	invitations, err := queryInvitations(ctx, tx, byID, member.ID)
	if err != nil || len(invitations) > 0 {
		return invitations, err
	}

	byEmail := `SELECT ` + invitationColumns + ` FROM member_invitations WHERE LOWER(TRIM(invitee_email)) = ? FOR UPDATE`
	invitations, err = queryInvitations(ctx, tx, byEmail, email)
	if err != nil || len(invitations) > 0 {
		return invitations, err
	}

	if !member.HasInviter {
		return nil, nil
	}

	byInviter := `SELECT ` + invitationColumns + ` FROM member_invitations WHERE inviter_id = ? AND LOWER(TRIM(invitee_email)) = ? FOR UPDATE`
	return queryInvitations(ctx, tx, byInviter, member.InviterID, email)
}

func queryInvitations(ctx context.Context, tx *sql.Tx, query string, args ...interface{}) ([]models.Invitation, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to query invitations")
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		if err := rows.Scan(
			&inv.ID, &inv.InviterID, &inv.InviteeEmail, &inv.InviteeFirstName,
			&inv.InviteeMemberID, &inv.Status, &inv.RegisteredAt, &inv.PayedAt, &inv.ApprovedAt,
		); err != nil {
			return nil, utils.ErrorHandler(err, "failed to scan invitation")
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.ErrorHandler(err, "failed to read invitations")
	}
	return invitations, nil
}

// applyInvitationUpdate computes the target fields for one invitation and
// writes only what actually differs. Timestamps are first-write-wins.
func applyInvitationUpdate(ctx context.Context, tx *sql.Tx, inv *models.Invitation, member MemberState, now string) (bool, error) {
	target := DeriveInvitationStatus(member, inv.Status)
	stampRegistered, stampPayed, stampApproved := StampsFor(target)

	var sets []string
	var args []interface{}

	if !inv.InviteeMemberID.Valid {
		sets = append(sets, "invitee_member_id = ?")
		args = append(args, member.ID)
	}
	if target != inv.Status {
		sets = append(sets, "status = ?")
		args = append(args, target)
	}
	if stampRegistered && !inv.RegisteredAt.Valid {
		sets = append(sets, "registered_at = ?")
		args = append(args, now)
	}
	if stampPayed && !inv.PayedAt.Valid {
		sets = append(sets, "payed_at = ?")
		args = append(args, now)
	}
	if stampApproved && !inv.ApprovedAt.Valid {
		sets = append(sets, "approved_at = ?")
		args = append(args, now)
	}

	if len(sets) == 0 {
		return false, nil
	}

	query := "UPDATE member_invitations SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, inv.ID)

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return false, err
	}

	if !inv.InviteeMemberID.Valid {
		inv.InviteeMemberID = sql.NullInt64{Int64: int64(member.ID), Valid: true}
	}
	inv.Status = target
	if stampRegistered && !inv.RegisteredAt.Valid {
		inv.RegisteredAt = sql.NullString{String: now, Valid: true}
	}
	if stampPayed && !inv.PayedAt.Valid {
		inv.PayedAt = sql.NullString{String: now, Valid: true}
	}
	if stampApproved && !inv.ApprovedAt.Valid {
		inv.ApprovedAt = sql.NullString{String: now, Valid: true}
	}

	return true, nil
}
