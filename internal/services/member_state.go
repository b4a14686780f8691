package services

import "calliope_members/internal/models"

// MemberState is the slice of a member row that invitation reconciliation
// derives from.
type MemberState struct {
	ID            int
	Email         string
	InviterID     int
	HasInviter    bool
	Status        string
	PaymentStatus string
}

// inviteTransition is one row of the invitation transition table: given the
// member's state, which invitation statuses move to which target.
type inviteTransition struct {
	memberStatus  string
	paymentStatus string
	from          map[string]bool
	to            string
}

var anyInviteStatus = map[string]bool{
	models.InviteStatusSent:       true,
	models.InviteStatusRegistered: true,
	models.InviteStatusPayed:      true,
	models.InviteStatusApproved:   true,
	models.InviteStatusExpired:    true,
}

// Evaluated in order; the first matching row wins. An empty memberStatus or
// paymentStatus matches any value. Combinations not covered leave the
// invitation unchanged.
var inviteTransitions = []inviteTransition{
	{
		memberStatus: models.MemberStatusApproved,
		from:         anyInviteStatus,
		to:           models.InviteStatusApproved,
	},
	{
		paymentStatus: models.PaymentStatusPaid,
		from: map[string]bool{
			models.InviteStatusSent:       true,
			models.InviteStatusRegistered: true,
		},
		to: models.InviteStatusPayed,
	},
	{
		from: map[string]bool{models.InviteStatusSent: true},
		to:   models.InviteStatusRegistered,
	},
}

// DeriveInvitationStatus returns the status an invitation should carry given
// the state of the member it refers to. Returns the current status when no
// transition applies.
func DeriveInvitationStatus(member MemberState, current string) string {
	for _, t := range inviteTransitions {
		if t.memberStatus != "" && member.Status != t.memberStatus {
			continue
		}
		if t.paymentStatus != "" && member.PaymentStatus != t.paymentStatus {
			continue
		}
		if !t.from[current] {
			continue
		}
		return t.to
	}
	return current
}

// StampsFor reports which invitation timestamps a target status requires.
// Stamping is cumulative: payed implies registered, approved implies
// registered. Existing timestamps are never overwritten.
func StampsFor(status string) (registered, payed, approved bool) {
	switch status {
	case models.InviteStatusRegistered:
		return true, false, false
	case models.InviteStatusPayed:
		return true, true, false
	case models.InviteStatusApproved:
		return true, false, true
	default:
		return false, false, false
	}
}
