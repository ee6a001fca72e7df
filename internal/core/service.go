// Package core implements the group-formation and funding-coordination
// engine: group lifecycle, membership admission, invitation tokens,
// time-slot consensus, payment readiness, funding math, and shared virtual
// card issuance. Every operation is request-scoped and returns typed domain
// errors; transactional guarantees come from the injected GORM handle.
package core

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"groupdump/internal/events"
	"groupdump/internal/notify"
	"groupdump/internal/payment"
)

// Service owns the coordination core's dependencies. The processor client
// is injected explicitly; there is no global payment handle.
type Service struct {
	db        *gorm.DB
	processor payment.Client
	notifier  notify.Notifier
	bus       *events.Bus

	cardholderID  string
	inviteBaseURL string
}

// Options carries the optional wiring for a Service.
type Options struct {
	Notifier      notify.Notifier
	Bus           *events.Bus
	CardholderID  string
	InviteBaseURL string
}

// New builds a Service. A nil notifier falls back to the no-op sink; a nil
// bus drops events.
func New(db *gorm.DB, processor payment.Client, opts Options) *Service {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Service{
		db:            db,
		processor:     processor,
		notifier:      notifier,
		bus:           opts.Bus,
		cardholderID:  opts.CardholderID,
		inviteBaseURL: opts.InviteBaseURL,
	}
}

// isUniqueViolation matches duplicate-key errors across the postgres driver
// and the sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		errors.Is(err, gorm.ErrDuplicatedKey)
}
