package services

import (
	"testing"

	"calliope_members/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDeriveInvitationStatus(t *testing.T) {
	tests := []struct {
		name          string
		memberStatus  string
		paymentStatus string
		current       string
		want          string
	}{
		{"approved member overrides sent", models.MemberStatusApproved, models.PaymentStatusUnpaid, models.InviteStatusSent, models.InviteStatusApproved},
		{"approved member overrides registered", models.MemberStatusApproved, models.PaymentStatusUnpaid, models.InviteStatusRegistered, models.InviteStatusApproved},
		{"approved member overrides payed", models.MemberStatusApproved, models.PaymentStatusPaid, models.InviteStatusPayed, models.InviteStatusApproved},
		{"approved member overrides expired", models.MemberStatusApproved, models.PaymentStatusUnpaid, models.InviteStatusExpired, models.InviteStatusApproved},
		{"paid member promotes sent to payed", models.MemberStatusPending, models.PaymentStatusPaid, models.InviteStatusSent, models.InviteStatusPayed},
		{"paid member promotes registered to payed", models.MemberStatusPending, models.PaymentStatusPaid, models.InviteStatusRegistered, models.InviteStatusPayed},
		{"paid member leaves payed alone", models.MemberStatusPending, models.PaymentStatusPaid, models.InviteStatusPayed, models.InviteStatusPayed},
		{"pending member promotes sent to registered", models.MemberStatusPending, models.PaymentStatusUnpaid, models.InviteStatusSent, models.InviteStatusRegistered},
		{"rejected member still registers the invitee", models.MemberStatusRejected, models.PaymentStatusUnpaid, models.InviteStatusSent, models.InviteStatusRegistered},
		{"pending member leaves registered alone", models.MemberStatusPending, models.PaymentStatusUnpaid, models.InviteStatusRegistered, models.InviteStatusRegistered},
		{"overdue member leaves payed alone", models.MemberStatusPending, models.PaymentStatusOverdue, models.InviteStatusPayed, models.InviteStatusPayed},
		{"expired stays expired without approval", models.MemberStatusPending, models.PaymentStatusUnpaid, models.InviteStatusExpired, models.InviteStatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			member := MemberState{Status: tt.memberStatus, PaymentStatus: tt.paymentStatus}
			got := DeriveInvitationStatus(member, tt.current)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveInvitationStatusIsStable(t *testing.T) {
	// Applying the derivation twice never moves the status further.
	member := MemberState{Status: models.MemberStatusApproved, PaymentStatus: models.PaymentStatusPaid}
	once := DeriveInvitationStatus(member, models.InviteStatusSent)
	twice := DeriveInvitationStatus(member, once)
	assert.Equal(t, once, twice)
}

func TestStampsFor(t *testing.T) {
	registered, payed, approved := StampsFor(models.InviteStatusRegistered)
	assert.True(t, registered)
	assert.False(t, payed)
	assert.False(t, approved)

	registered, payed, approved = StampsFor(models.InviteStatusPayed)
	assert.True(t, registered)
	assert.True(t, payed)
	assert.False(t, approved)

	registered, payed, approved = StampsFor(models.InviteStatusApproved)
	assert.True(t, registered)
	assert.False(t, payed)
	assert.True(t, approved)

	registered, payed, approved = StampsFor(models.InviteStatusSent)
	assert.False(t, registered)
	assert.False(t, payed)
	assert.False(t, approved)
}
