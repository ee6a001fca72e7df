// Package payment defines the external payment processor contract the core
// depends on, with a live REST-backed client and an in-memory simulator.
// The client is injected explicitly wherever it is needed; there is no
// package-level handle.
package payment

import (
	"context"
	"fmt"
)

// SetupIntent is the processor's handle for verifying a payment method.
type SetupIntent struct {
	ID            string
	ClientSecret  string
	Status        string
	PaymentMethod string
}

// Charge is the result of capturing a member's contribution.
type Charge struct {
	ID     string
	Status string
}

// Card describes a virtual card held at the processor.
type Card struct {
	ID       string
	Status   string
	Brand    string
	Last4    string
	ExpMonth int
	ExpYear  int
}

// CardUpdate carries the mutable instrument attributes. Nil fields are left
// untouched at the processor.
type CardUpdate struct {
	Status     *string
	LimitCents *int64
}

// SetupIntent terminal status reported by the processor once the payment
// method is verified.
const SetupSucceeded = "succeeded"

// Charge statuses.
const ChargeSucceeded = "succeeded"

// Card statuses at the processor. The processor calls a frozen card
// "inactive".
const (
	ProcessorCardActive   = "active"
	ProcessorCardInactive = "inactive"
	ProcessorCardCanceled = "canceled"
)

// Client is the processor contract consumed by the core. All calls are
// bounded by the client's own timeout and report failure as *ProcessorError.
type Client interface {
	CreateSetupIntent(ctx context.Context, metadata map[string]string) (SetupIntent, error)
	RetrieveSetupIntent(ctx context.Context, id string) (SetupIntent, error)

	// CreateCharge captures amountCents from the given payment method. The
	// idempotency key makes retries safe: the processor returns the original
	// charge instead of capturing twice.
	CreateCharge(ctx context.Context, amountCents int64, paymentMethodID, idempotencyKey string, metadata map[string]string) (Charge, error)
	RefundCharge(ctx context.Context, chargeID string) error

	CreateCard(ctx context.Context, cardholderID string, limitCents int64, allowedCategories []string, metadata map[string]string) (Card, error)
	ModifyCard(ctx context.Context, id string, update CardUpdate) (Card, error)
	RetrieveCard(ctx context.Context, id string) (Card, error)
}

// ProcessorError is the generic failure surfaced by every client
// implementation.
type ProcessorError struct {
	Op      string
	Message string
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor %s: %s", e.Op, e.Message)
}
