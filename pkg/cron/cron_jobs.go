package cron

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"calliope_members/pkg/utils"

	"github.com/robfig/cron/v3"
)

func StartCronJob(db *sql.DB) *cron.Cron {
	c := cron.New()

	// Runs every 6 hours to mark expired invitations
	_, err := c.AddFunc("0 */6 * * *", func() {
		err := CheckAndUpdateExpiredInvitations(db)
		if err != nil {
			utils.Logger.Errorf("Cron job failed to update expired invitations: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule invitation expiration job: %v", err)
	}

	// Runs daily at midnight to remind members whose membership is lapsing
	_, err = c.AddFunc("0 0 * * *", func() {
		err := SendRenewalReminders(db)
		if err != nil {
			utils.Logger.Errorf("Cron job failed to send renewal reminders: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule renewal reminder job: %v", err)
	}

	c.Start()
	utils.Logger.Info("Cron jobs started (invitation expiry every 6h, renewal reminders daily at midnight)")
	return c
}

// -------------------------------------------------------------
// Mark overdue member invitations as expired
// -------------------------------------------------------------
func CheckAndUpdateExpiredInvitations(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// Resolved invitations keep their final status; only 'sent' ones can lapse.
	result, err := tx.ExecContext(ctx, `
		UPDATE member_invitations
		SET status = 'expired'
		WHERE expires_at < ? AND status = 'sent'
	`, time.Now().UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		tx.Rollback()
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if rowsAffected > 0 {
		utils.Logger.Infof("Updated %d expired invitations to status 'expired'", rowsAffected)
	}
	return nil
}

// -------------------------------------------------------------
// Send renewal reminders to members whose membership lapses soon
// (email sends run concurrently)
// -------------------------------------------------------------
func SendRenewalReminders(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	rows, err := db.QueryContext(ctx, `
		SELECT email, first_name, membership_end_date
		FROM members
		WHERE status = 'approved'
		  AND membership_end_date IS NOT NULL
		  AND membership_end_date BETWEEN CURDATE() AND DATE_ADD(CURDATE(), INTERVAL 30 DAY)
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var wg sync.WaitGroup
	errChan := make(chan error, 10)

	for rows.Next() {
		var email, firstName, endDate string

		if err := rows.Scan(&email, &firstName, &endDate); err != nil {
			utils.Logger.Errorf("Failed to scan member row: %v", err)
			continue
		}

		wg.Add(1)
		go func(email, firstName, endDate string) {
			defer wg.Done()

			if err := utils.SendRenewalReminderEmail(email, firstName, endDate); err != nil {
				errChan <- fmt.Errorf("failed to send renewal reminder to %s: %v", email, err)
				return
			}

			utils.Logger.Infof("📧 Sent renewal reminder to %s (%s), membership ends %s", firstName, email, endDate)
		}(email, firstName, endDate)
	}

	wg.Wait()
	close(errChan)

	for e := range errChan {
		utils.Logger.Error(e)
	}

	if err := rows.Err(); err != nil {
		utils.Logger.Errorf("Error iterating member rows: %v", err)
		return err
	}

	utils.Logger.Info("✅ Finished sending all renewal reminder emails.")
	return nil
}
