package utils

import (
	"fmt"
	"time"
)

func SendRegistrationEmail(to, firstName string) error {
	subject := fmt.Sprintf("🎨 Welcome to Calliope Arts Collective, %s!", firstName)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
		<meta charset="UTF-8" />
		<title>Welcome to Calliope</title>
		<style>
			body { font-family: 'Helvetica Neue', Arial, sans-serif; background-color: #faf8f5; margin: 0; padding: 0; }
			.container { max-width: 650px; margin: 40px auto; background: #ffffff; border-radius: 14px; overflow: hidden; border-top: 6px solid #8a4f2d; box-shadow: 0 10px 30px rgba(0,0,0,0.08); }
			.header { background-color: #8a4f2d; color: #ffffff; text-align: center; padding: 35px 20px; }
			.header h1 { margin: 0; font-size: 24px; }
			.content { padding: 35px 40px; color: #333333; }
			.message { font-size: 15.5px; line-height: 1.8; color: #444444; margin-bottom: 16px; }
			.highlight { color: #8a4f2d; font-weight: 600; }
			.footer { background: #f5efe9; text-align: center; padding: 22px; font-size: 13px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>Welcome to Calliope Arts Collective 🎨</h1></div>
			<div class="content">
				<p class="message">Hi %s,</p>
				<p class="message">
					Your registration has been received and is now <span class="highlight">awaiting approval</span> by the board.
					You'll get another email the moment your membership is confirmed.
				</p>
				<p class="message">
					In the meantime you can already browse the public galleries, the artist directory and the upcoming events.
				</p>
				<p class="message">Warm regards,<br/>The Calliope team</p>
			</div>
			<div class="footer">&copy; %d Calliope Arts Collective</div>
		</div>
	</body>
	</html>
	`, firstName, time.Now().Year())

	return SendEmail(to, subject, body)
}
