package notify

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"eventcrm/internal/models"
	"eventcrm/internal/workflow"
)

type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewEmailNotifier(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, toEmail string) *EmailNotifier {
	return &EmailNotifier{
		dialer: gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:   fromEmail,
		to:     toEmail,
	}
}

func (n *EmailNotifier) LeadStatusChanged(lead *models.Lead, fromStatus string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	m.SetHeader("Subject", fmt.Sprintf("Lead %q is now %s", lead.Title, workflow.Label(lead.Status)))

	body := fmt.Sprintf(`
		<h3>Lead pipeline update</h3>
		<p>Lead <strong>%s</strong> moved from <em>%s</em> to <em>%s</em>.</p>
		<p>Contact: %s %s</p>
	`, lead.Title, workflow.Label(fromStatus), workflow.Label(lead.Status), lead.Contact, lead.Phone)

	m.SetBody("text/html", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send lead status email: %w", err)
	}
	return nil
}
