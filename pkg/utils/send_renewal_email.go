package utils

import (
	"fmt"
	"time"
)

func SendRenewalEmail(to, firstName, membershipEndDate string) error {
	subject := fmt.Sprintf("🔄 Membership renewed, %s", firstName)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
		<meta charset="UTF-8" />
		<title>Membership Renewed</title>
		<style>
			body { font-family: 'Helvetica Neue', Arial, sans-serif; background-color: #faf8f5; margin: 0; padding: 0; }
			.container { max-width: 650px; margin: 40px auto; background: #ffffff; border-radius: 14px; overflow: hidden; border-top: 6px solid #1d3557; box-shadow: 0 10px 30px rgba(0,0,0,0.08); }
			.header { background-color: #1d3557; color: #ffffff; text-align: center; padding: 35px 20px; }
			.header h1 { margin: 0; font-size: 24px; }
			.content { padding: 35px 40px; color: #333333; }
			.message { font-size: 15.5px; line-height: 1.8; color: #444444; margin-bottom: 16px; }
			.highlight { color: #1d3557; font-weight: 600; }
			.footer { background: #edf1f7; text-align: center; padding: 22px; font-size: 13px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>Membership Renewed 🔄</h1></div>
			<div class="content">
				<p class="message">Hi %s,</p>
				<p class="message">
					Your payment has been received and your basic membership now runs until
					<span class="highlight">%s</span>. Thank you for staying with us!
				</p>
				<p class="message">The Calliope team</p>
			</div>
			<div class="footer">&copy; %d Calliope Arts Collective</div>
		</div>
	</body>
	</html>
	`, firstName, membershipEndDate, time.Now().Year())

	return SendEmail(to, subject, body)
}

// SendRenewalReminderEmail goes out from the daily cron job when a membership
// is about to lapse.
func SendRenewalReminderEmail(to, firstName, membershipEndDate string) error {
	subject := fmt.Sprintf("⏳ Your Calliope membership ends on %s", membershipEndDate)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
		<meta charset="UTF-8" />
		<title>Membership Expiring Soon</title>
		<style>
			body { font-family: 'Helvetica Neue', Arial, sans-serif; background-color: #faf8f5; margin: 0; padding: 0; }
			.container { max-width: 650px; margin: 40px auto; background: #ffffff; border-radius: 14px; overflow: hidden; border-top: 6px solid #b5651d; box-shadow: 0 10px 30px rgba(0,0,0,0.08); }
			.content { padding: 35px 40px; color: #333333; }
			.message { font-size: 15.5px; line-height: 1.8; color: #444444; margin-bottom: 16px; }
			.highlight { color: #b5651d; font-weight: 600; }
			.cta { margin: 30px 0; text-align: center; }
			.cta a { background-color: #b5651d; color: #ffffff; text-decoration: none; padding: 13px 32px; border-radius: 8px; font-weight: 600; }
			.footer { background: #f7f0e8; text-align: center; padding: 22px; font-size: 13px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="content">
				<p class="message">Hi %s,</p>
				<p class="message">
					A quick heads-up: your membership of the Calliope Arts Collective runs out on
					<span class="highlight">%s</span>. Renew now to keep your profile, gallery
					submissions and event access uninterrupted.
				</p>
				<div class="cta"><a href="https://calliope-arts.org/renew" target="_blank">Renew membership</a></div>
				<p class="message">The Calliope team</p>
			</div>
			<div class="footer">&copy; %d Calliope Arts Collective</div>
		</div>
	</body>
	</html>
	`, firstName, membershipEndDate, time.Now().Year())

	return SendEmail(to, subject, body)
}
