package services

import (
	"database/sql"

	"calliope_members/pkg/utils"
)

// Automation event names fired after successful state changes.
const (
	EventMemberRegistered  = "member_registered"
	EventMemberApproved    = "member_approved"
	EventMemberRejected    = "member_rejected"
	EventMembershipRenewed = "membership_renewed"
	EventSponsorTaxReceipt = "sponsor_tax_receipt"
)

// TriggerAutomation sends the email for a lifecycle event. Fire-and-forget:
// it runs in the background and failures are logged, never propagated, so a
// broken SMTP relay can't roll back the state change that fired the event.
func TriggerAutomation(db *sql.DB, eventName string, memberID int) {
	go func() {
		var email, firstName string
		var endDate sql.NullString
		err := db.QueryRow(
			`SELECT email, first_name, membership_end_date FROM members WHERE id = ?`,
			memberID,
		).Scan(&email, &firstName, &endDate)
		if err != nil {
			utils.Logger.Errorf("automation %s: failed to load member %d: %v", eventName, memberID, err)
			return
		}

		switch eventName {
		case EventMemberRegistered:
			err = utils.SendRegistrationEmail(email, firstName)
		case EventMemberApproved:
			err = utils.SendApprovalEmail(email, firstName)
		case EventMemberRejected:
			err = utils.SendRejectionEmail(email, firstName)
		case EventMembershipRenewed:
			err = utils.SendRenewalEmail(email, firstName, endDate.String)
		case EventSponsorTaxReceipt:
			err = utils.SendSponsorReceiptEmail(email, firstName)
		default:
			utils.Logger.Warnf("automation: unknown event %q for member %d", eventName, memberID)
			return
		}

		if err != nil {
			utils.Logger.Errorf("automation %s: failed to email member %d: %v", eventName, memberID, err)
			return
		}
		utils.Logger.Infof("automation %s: emailed member %d", eventName, memberID)
	}()
}
