// Package notify sends best-effort email to invitees and members.
// Notification failure never fails the operation that triggered it; callers
// log and move on.
package notify

import "context"

// Notifier delivers a single HTML email.
type Notifier interface {
	Send(ctx context.Context, to, subject, bodyHTML string) error
}

// Noop discards every message. Used when SMTP is not configured.
type Noop struct{}

func (Noop) Send(context.Context, string, string, string) error { return nil }
