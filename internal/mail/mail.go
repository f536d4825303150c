package mail

import "fmt"

// Message is the wire format of a queued outgoing email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender delivers a composed message. Implemented by SMTPMailer; tests
// substitute their own.
type Sender interface {
	Send(msg Message) error
}

// ResetMessage composes the password-reset email for the given recipient.
// The link embeds a signed, time-limited token.
func ResetMessage(to, resetURL string) Message {
	body := fmt.Sprintf(`To reset your password, visit the following link:
%s

If you did not make this request then simply ignore this email and no changes will be made.
`, resetURL)

	return Message{
		To:      to,
		Subject: "Password Reset Request",
		Body:    body,
	}
}
