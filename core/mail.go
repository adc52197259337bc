package core

import "net/mail"

type (
	// EmailMessage is a plain-text email. Templated/HTML content is not
	// needed yet; the only outbound mail today is the registration welcome.
	EmailMessage struct {
		To          []mail.Address
		Subject     string
		BodyStr     string
		TextContent string
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently.
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) Render() error {
	if m.TextContent == "" {
		m.TextContent = m.BodyStr
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool {
	return len(m.To) > 0
}

func (m *EmailMessage) HasContent() bool {
	return m.TextContent != ""
}
