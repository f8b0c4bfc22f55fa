package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"codereview/internal/security"
	"codereview/pkg/errors"
	"codereview/pkg/models"
)

// Sender delivers rendered messages over the profile's SMTP settings.
// Passwords come from the credential store by key; notification.config in
// the repository carries only the key name.
type Sender struct {
	credentials *security.CredentialManager
	send        func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewSender creates a sender backed by the system credential store
func NewSender(credentials *security.CredentialManager) *Sender {
	return &Sender{
		credentials: credentials,
		send:        smtp.SendMail,
	}
}

// Send delivers the message to the profile's recipients
func (s *Sender) Send(cfg *models.Notification, msg *Message) error {
	if cfg.SMTP.Host == "" {
		return errors.New(errors.ErrCodeConfigInvalid,
			"notification.config has no smtp host").
			WithSuggestions("Add an smtp section to the profile's notification.config")
	}
	recipients := append(append([]string{}, cfg.To...), cfg.CC...)
	if len(recipients) == 0 {
		return errors.New(errors.ErrCodeConfigInvalid,
			"notification.config has no recipients")
	}

	var auth smtp.Auth
	if cfg.SMTP.Username != "" {
		password, err := s.credentials.Get(cfg.SMTP.CredentialKey)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeCredentialStore,
				fmt.Sprintf("no stored credential %q for smtp", cfg.SMTP.CredentialKey)).
				WithSuggestions(fmt.Sprintf("Run 'codereview credentials set %s'", cfg.SMTP.CredentialKey))
		}
		auth = smtp.PlainAuth("", cfg.SMTP.Username, password, cfg.SMTP.Host)
	}

	port := cfg.SMTP.Port
	if port == 0 {
		port = 25
	}
	addr := fmt.Sprintf("%s:%d", cfg.SMTP.Host, port)

	payload := buildPayload(cfg.From, cfg.To, cfg.CC, msg)
	if err := s.send(addr, auth, cfg.From, recipients, payload); err != nil {
		return errors.Wrap(err, errors.ErrCodeNotifyFailed,
			fmt.Sprintf("smtp delivery via %s failed", addr))
	}
	return nil
}

func buildPayload(from string, to, cc []string, msg *Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	if len(cc) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(cc, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}
