package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Simulator is a deterministic in-memory processor. It backs the
// "simulated" mode and the core's tests: setup intents verify on retrieval,
// charges succeed unless the payment method carries the fail marker, and
// idempotency keys dedupe charges exactly like the live API.
type Simulator struct {
	mu      sync.Mutex
	seq     int
	intents map[string]SetupIntent
	charges map[string]Charge // by idempotency key
	cards   map[string]Card
}

var _ Client = (*Simulator)(nil)

// FailMarker in a payment method id makes the simulator decline its charge.
const FailMarker = "pm_fail"

// NewSimulator returns an empty simulator.
func NewSimulator() *Simulator {
	return &Simulator{
		intents: make(map[string]SetupIntent),
		charges: make(map[string]Charge),
		cards:   make(map[string]Card),
	}
}

func (s *Simulator) next(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s_sim_%06d", prefix, s.seq)
}

func (s *Simulator) CreateSetupIntent(_ context.Context, _ map[string]string) (SetupIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next("seti")
	intent := SetupIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       "requires_payment_method",
	}
	s.intents[id] = intent
	return intent, nil
}

func (s *Simulator) RetrieveSetupIntent(_ context.Context, id string) (SetupIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent, ok := s.intents[id]
	if !ok {
		return SetupIntent{}, &ProcessorError{Op: "retrieve_setup_intent", Message: "no such setup intent: " + id}
	}

	// The cardholder-facing confirmation step happens out of band; the
	// simulator treats any retrieval as proof it completed.
	intent.Status = SetupSucceeded
	if intent.PaymentMethod == "" {
		intent.PaymentMethod = strings.Replace(intent.ID, "seti", "pm", 1)
	}
	s.intents[id] = intent
	return intent, nil
}

func (s *Simulator) CreateCharge(_ context.Context, amountCents int64, paymentMethodID, idempotencyKey string, _ map[string]string) (Charge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.HasPrefix(paymentMethodID, FailMarker) {
		return Charge{}, &ProcessorError{Op: "create_charge", Message: "card declined"}
	}
	if amountCents <= 0 {
		return Charge{}, &ProcessorError{Op: "create_charge", Message: "amount must be positive"}
	}

	if idempotencyKey != "" {
		if prior, ok := s.charges[idempotencyKey]; ok {
			return prior, nil
		}
	}

	charge := Charge{ID: s.next("pi"), Status: ChargeSucceeded}
	if idempotencyKey != "" {
		s.charges[idempotencyKey] = charge
	}
	return charge, nil
}

func (s *Simulator) RefundCharge(_ context.Context, chargeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, charge := range s.charges {
		if charge.ID == chargeID {
			charge.Status = "refunded"
			s.charges[key] = charge
			return nil
		}
	}
	return &ProcessorError{Op: "refund_charge", Message: "no such charge: " + chargeID}
}

func (s *Simulator) CreateCard(_ context.Context, _ string, limitCents int64, _ []string, _ map[string]string) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limitCents <= 0 {
		return Card{}, &ProcessorError{Op: "create_card", Message: "spending limit must be positive"}
	}

	card := Card{
		ID:       s.next("ic"),
		Status:   ProcessorCardActive,
		Brand:    "Visa",
		Last4:    fmt.Sprintf("%04d", s.seq%10000),
		ExpMonth: 12,
		ExpYear:  2030,
	}
	s.cards[card.ID] = card
	return card, nil
}

func (s *Simulator) ModifyCard(_ context.Context, id string, update CardUpdate) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cards[id]
	if !ok {
		return Card{}, &ProcessorError{Op: "modify_card", Message: "no such card: " + id}
	}
	if update.Status != nil {
		card.Status = *update.Status
	}
	s.cards[id] = card
	return card, nil
}

func (s *Simulator) RetrieveCard(_ context.Context, id string) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cards[id]
	if !ok {
		return Card{}, &ProcessorError{Op: "retrieve_card", Message: "no such card: " + id}
	}
	return card, nil
}

// ChargeCount reports how many distinct charges were captured. Test helper.
func (s *Simulator) ChargeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.charges)
}
