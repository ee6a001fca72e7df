package notify

import (
	"context"

	"github.com/wneessen/go-mail"
)

// SMTP delivers mail through a configured SMTP relay.
type SMTP struct {
	client *mail.Client
	from   string
}

var _ Notifier = (*SMTP)(nil)

// NewSMTP builds an SMTP notifier. Credentials are optional for relays that
// allow unauthenticated submission.
func NewSMTP(host string, port int, username, password, from string) (*SMTP, error) {
	opts := []mail.Option{mail.WithPort(port)}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, err
	}
	return &SMTP{client: client, from: from}, nil
}

func (s *SMTP) Send(ctx context.Context, to, subject, bodyHTML string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, bodyHTML)

	return s.client.DialAndSendWithContext(ctx, msg)
}
