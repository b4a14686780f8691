package utils

import (
	"fmt"
	"time"
)

func SendInvitationEmail(to, inviteeFirstName, inviterName, inviteLink string, expiresAt time.Time) error {
	subject := fmt.Sprintf("🖌️ %s invited you to join Calliope Arts Collective", inviterName)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
		<meta charset="UTF-8" />
		<title>You're Invited</title>
		<style>
			body { font-family: 'Helvetica Neue', Arial, sans-serif; background-color: #faf8f5; margin: 0; padding: 0; }
			.container { max-width: 650px; margin: 40px auto; background: #ffffff; border-radius: 14px; overflow: hidden; border-top: 6px solid #8a4f2d; box-shadow: 0 10px 30px rgba(0,0,0,0.08); }
			.header { background-color: #8a4f2d; color: #ffffff; text-align: center; padding: 35px 20px; }
			.header h1 { margin: 0; font-size: 24px; }
			.content { padding: 35px 40px; color: #333333; }
			.message { font-size: 15.5px; line-height: 1.8; color: #444444; margin-bottom: 16px; }
			.highlight { color: #8a4f2d; font-weight: 600; }
			.cta { margin: 30px 0; text-align: center; }
			.cta a { background-color: #8a4f2d; color: #ffffff; text-decoration: none; padding: 13px 32px; border-radius: 8px; font-weight: 600; }
			.expiry { font-size: 13.5px; color: #888888; text-align: center; }
			.footer { background: #f5efe9; text-align: center; padding: 22px; font-size: 13px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>You're Invited 🖌️</h1></div>
			<div class="content">
				<p class="message">Hi %s,</p>
				<p class="message">
					<span class="highlight">%s</span> thinks you'd be a great fit for the
					Calliope Arts Collective — a member-run association of artists with a shared
					gallery space, a busy events calendar and a lively community.
				</p>
				<div class="cta"><a href="%s" target="_blank">Accept invitation</a></div>
				<p class="expiry">This invitation link expires on %s.</p>
			</div>
			<div class="footer">&copy; %d Calliope Arts Collective</div>
		</div>
	</body>
	</html>
	`, inviteeFirstName, inviterName, inviteLink, expiresAt.Format("2 January 2006"), time.Now().Year())

	return SendEmail(to, subject, body)
}
