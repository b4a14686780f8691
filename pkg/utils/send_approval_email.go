package utils

import (
	"fmt"
	"time"
)

func SendApprovalEmail(to, firstName string) error {
	subject := fmt.Sprintf("✅ You're in, %s — membership approved!", firstName)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
		<meta charset="UTF-8" />
		<title>Membership Approved</title>
		<style>
			body { font-family: 'Helvetica Neue', Arial, sans-serif; background-color: #faf8f5; margin: 0; padding: 0; }
			.container { max-width: 650px; margin: 40px auto; background: #ffffff; border-radius: 14px; overflow: hidden; border-top: 6px solid #2d6a4f; box-shadow: 0 10px 30px rgba(0,0,0,0.08); }
			.header { background-color: #2d6a4f; color: #ffffff; text-align: center; padding: 35px 20px; }
			.header h1 { margin: 0; font-size: 24px; }
			.content { padding: 35px 40px; color: #333333; }
			.message { font-size: 15.5px; line-height: 1.8; color: #444444; margin-bottom: 16px; }
			.cta { margin: 30px 0; text-align: center; }
			.cta a { background-color: #2d6a4f; color: #ffffff; text-decoration: none; padding: 13px 32px; border-radius: 8px; font-weight: 600; }
			.footer { background: #eef5f0; text-align: center; padding: 22px; font-size: 13px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>Membership Approved 🎉</h1></div>
			<div class="content">
				<p class="message">Hi %s,</p>
				<p class="message">
					Great news — the board has approved your membership of the Calliope Arts Collective.
					Your member profile is now live and you can take part in all member events,
					submit work to the galleries and invite fellow artists.
				</p>
				<div class="cta"><a href="https://calliope-arts.org/login" target="_blank">Go to your profile</a></div>
				<p class="message">See you at the next vernissage!<br/>The Calliope team</p>
			</div>
			<div class="footer">&copy; %d Calliope Arts Collective</div>
		</div>
	</body>
	</html>
	`, firstName, time.Now().Year())

	return SendEmail(to, subject, body)
}

func SendRejectionEmail(to, firstName string) error {
	subject := "Your Calliope Arts Collective application"

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
		<meta charset="UTF-8" />
		<title>Application Update</title>
		<style>
			body { font-family: 'Helvetica Neue', Arial, sans-serif; background-color: #faf8f5; margin: 0; padding: 0; }
			.container { max-width: 650px; margin: 40px auto; background: #ffffff; border-radius: 14px; overflow: hidden; border-top: 6px solid #6c757d; box-shadow: 0 10px 30px rgba(0,0,0,0.08); }
			.content { padding: 35px 40px; color: #333333; }
			.message { font-size: 15.5px; line-height: 1.8; color: #444444; margin-bottom: 16px; }
			.footer { background: #f1f3f5; text-align: center; padding: 22px; font-size: 13px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="content">
				<p class="message">Hi %s,</p>
				<p class="message">
					Thank you for your interest in the Calliope Arts Collective. After review,
					the board was unfortunately not able to approve your application at this time.
				</p>
				<p class="message">
					You are welcome to apply again in the future, and replies to this email
					reach our membership secretary directly.
				</p>
				<p class="message">With kind regards,<br/>The Calliope team</p>
			</div>
			<div class="footer">&copy; %d Calliope Arts Collective</div>
		</div>
	</body>
	</html>
	`, firstName, time.Now().Year())

	return SendEmail(to, subject, body)
}
