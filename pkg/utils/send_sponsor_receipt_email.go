package utils

import (
	"fmt"
	"time"
)

func SendSponsorReceiptEmail(to, firstName string, attachments ...string) error {
	subject := fmt.Sprintf("💛 Thank you for sponsoring Calliope, %s", firstName)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
		<meta charset="UTF-8" />
		<title>Sponsor Donation Receipt</title>
		<style>
			body { font-family: 'Helvetica Neue', Arial, sans-serif; background-color: #faf8f5; margin: 0; padding: 0; }
			.container { max-width: 650px; margin: 40px auto; background: #ffffff; border-radius: 14px; overflow: hidden; border-top: 6px solid #b8860b; box-shadow: 0 10px 30px rgba(0,0,0,0.08); }
			.header { background-color: #b8860b; color: #ffffff; text-align: center; padding: 35px 20px; }
			.header h1 { margin: 0; font-size: 24px; }
			.content { padding: 35px 40px; color: #333333; }
			.message { font-size: 15.5px; line-height: 1.8; color: #444444; margin-bottom: 16px; }
			.footer { background: #f9f4e7; text-align: center; padding: 22px; font-size: 13px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>Thank You for Your Support 💛</h1></div>
			<div class="content">
				<p class="message">Dear %s,</p>
				<p class="message">
					Your sponsor donation has been recorded and your membership has been upgraded
					to sponsor status. Your support directly funds exhibitions, workshops and
					our young-artist programme.
				</p>
				<p class="message">
					Your tax receipt is attached to this email. Keep it with your records for
					the current tax year.
				</p>
				<p class="message">With gratitude,<br/>The Calliope board</p>
			</div>
			<div class="footer">&copy; %d Calliope Arts Collective</div>
		</div>
	</body>
	</html>
	`, firstName, time.Now().Year())

	return SendEmail(to, subject, body, attachments...)
}
