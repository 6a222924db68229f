package services

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/dimitrije/teamforge-api/internal/config"
)

type EmailService struct {
	cfg config.SMTPConfig
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

func (s *EmailService) Send(to, subject, body string) error {
	if !s.IsConfigured() {
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, to, subject, body)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}

func (s *EmailService) SendTeamInvitation(to, teamName, message, respondURL string) error {
	return s.Send(to, invitationSubject(teamName), invitationBody(teamName, message, respondURL))
}

var headerBreaks = strings.NewReplacer("\r", " ", "\n", " ")

func invitationSubject(teamName string) string {
	return headerBreaks.Replace(fmt.Sprintf("You've been invited to join team %s", teamName))
}

// invitationBody renders the invitation mail. Team name and message are
// user-supplied and always escaped.
func invitationBody(teamName, message, respondURL string) string {
	return fmt.Sprintf(`
		<html>
		<body>
			<h2>Team Invitation</h2>
			<p>Hi,</p>
			<p>You have been invited to join the hackathon team <strong>%s</strong>.</p>
			<blockquote>%s</blockquote>
			<p><a href="%s">Open your invitations</a> to accept or decline. The invitation lapses after 24 hours or when the hackathon starts.</p>
		</body>
		</html>
	`, html.EscapeString(teamName), html.EscapeString(message), html.EscapeString(respondURL))
}
