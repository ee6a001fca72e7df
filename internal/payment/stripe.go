package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// StripeClient talks to the Stripe REST API: SetupIntents for payment-method
// verification, PaymentIntents for member charges, and Issuing for the
// group's virtual card. Only the handful of fields the core reads are
// decoded.
type StripeClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

var _ Client = (*StripeClient)(nil)

// NewStripeClient builds a live processor client. The timeout bounds every
// call; a timed-out call is reported as a ProcessorError.
func NewStripeClient(baseURL, secretKey string, timeout time.Duration) *StripeClient {
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &StripeClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type stripeIntent struct {
	ID            string `json:"id"`
	ClientSecret  string `json:"client_secret"`
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
}

type stripeCard struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *StripeClient) CreateSetupIntent(ctx context.Context, metadata map[string]string) (SetupIntent, error) {
	form := url.Values{}
	form.Set("usage", "off_session")
	encodeMetadata(form, metadata)

	var out stripeIntent
	if err := c.do(ctx, http.MethodPost, "/v1/setup_intents", form, "", &out); err != nil {
		return SetupIntent{}, wrapOp("create_setup_intent", err)
	}
	return SetupIntent{ID: out.ID, ClientSecret: out.ClientSecret, Status: out.Status, PaymentMethod: out.PaymentMethod}, nil
}

func (c *StripeClient) RetrieveSetupIntent(ctx context.Context, id string) (SetupIntent, error) {
	var out stripeIntent
	if err := c.do(ctx, http.MethodGet, "/v1/setup_intents/"+url.PathEscape(id), nil, "", &out); err != nil {
		return SetupIntent{}, wrapOp("retrieve_setup_intent", err)
	}
	return SetupIntent{ID: out.ID, ClientSecret: out.ClientSecret, Status: out.Status, PaymentMethod: out.PaymentMethod}, nil
}

func (c *StripeClient) CreateCharge(ctx context.Context, amountCents int64, paymentMethodID, idempotencyKey string, metadata map[string]string) (Charge, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", "usd")
	form.Set("payment_method", paymentMethodID)
	form.Set("confirm", "true")
	form.Set("off_session", "true")
	encodeMetadata(form, metadata)

	var out stripeIntent
	if err := c.do(ctx, http.MethodPost, "/v1/payment_intents", form, idempotencyKey, &out); err != nil {
		return Charge{}, wrapOp("create_charge", err)
	}
	return Charge{ID: out.ID, Status: out.Status}, nil
}

func (c *StripeClient) RefundCharge(ctx context.Context, chargeID string) error {
	form := url.Values{}
	form.Set("payment_intent", chargeID)

	if err := c.do(ctx, http.MethodPost, "/v1/refunds", form, "", &struct{}{}); err != nil {
		return wrapOp("refund_charge", err)
	}
	return nil
}

func (c *StripeClient) CreateCard(ctx context.Context, cardholderID string, limitCents int64, allowedCategories []string, metadata map[string]string) (Card, error) {
	form := url.Values{}
	form.Set("cardholder", cardholderID)
	form.Set("type", "virtual")
	form.Set("currency", "usd")
	form.Set("spending_controls[spending_limits][0][amount]", strconv.FormatInt(limitCents, 10))
	form.Set("spending_controls[spending_limits][0][interval]", "per_authorization")
	for i, cat := range allowedCategories {
		form.Set(fmt.Sprintf("spending_controls[allowed_categories][%d]", i), cat)
	}
	encodeMetadata(form, metadata)

	var out stripeCard
	if err := c.do(ctx, http.MethodPost, "/v1/issuing/cards", form, "", &out); err != nil {
		return Card{}, wrapOp("create_card", err)
	}
	return cardFromStripe(out), nil
}

func (c *StripeClient) ModifyCard(ctx context.Context, id string, update CardUpdate) (Card, error) {
	form := url.Values{}
	if update.Status != nil {
		form.Set("status", *update.Status)
	}
	if update.LimitCents != nil {
		form.Set("spending_controls[spending_limits][0][amount]", strconv.FormatInt(*update.LimitCents, 10))
		form.Set("spending_controls[spending_limits][0][interval]", "per_authorization")
	}

	var out stripeCard
	if err := c.do(ctx, http.MethodPost, "/v1/issuing/cards/"+url.PathEscape(id), form, "", &out); err != nil {
		return Card{}, wrapOp("modify_card", err)
	}
	return cardFromStripe(out), nil
}

func (c *StripeClient) RetrieveCard(ctx context.Context, id string) (Card, error) {
	var out stripeCard
	if err := c.do(ctx, http.MethodGet, "/v1/issuing/cards/"+url.PathEscape(id), nil, "", &out); err != nil {
		return Card{}, wrapOp("retrieve_card", err)
	}
	return cardFromStripe(out), nil
}

func (c *StripeClient) do(ctx context.Context, method, path string, form url.Values, idempotencyKey string, dest any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.secretKey, "")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var se stripeError
		if json.Unmarshal(payload, &se) == nil && se.Error.Message != "" {
			return fmt.Errorf("%s", se.Error.Message)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.Unmarshal(payload, dest)
}

func cardFromStripe(c stripeCard) Card {
	return Card{ID: c.ID, Status: c.Status, Brand: c.Brand, Last4: c.Last4, ExpMonth: c.ExpMonth, ExpYear: c.ExpYear}
}

func encodeMetadata(form url.Values, metadata map[string]string) {
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}
}

func wrapOp(op string, err error) error {
	return &ProcessorError{Op: op, Message: err.Error()}
}
