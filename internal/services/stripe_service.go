package services

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

// StripeService creates payment intents for checkout. Only the payment-intent
// contract is modeled; webhooks and the rest of the Stripe surface stay
// external.
type StripeService interface {
	CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, orderID string) (*PaymentIntent, error)
}

type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

type stripeService struct {
	secretKey string
	baseURL   string
	http      *http.Client
}

func NewStripeService(secretKey string) StripeService {
	return &stripeService{
		secretKey: secretKey,
		baseURL:   "https://api.stripe.com",
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *stripeService) CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, orderID string) (*PaymentIntent, error) {
	if s.secretKey == "" {
		return nil, fmt.Errorf("stripe secret key is not configured")
	}
	if amountCents <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	if currency == "" {
		currency = "usd"
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", currency)
	form.Set("metadata[order_id]", orderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stripe returned status %d: %s", resp.StatusCode, string(body))
	}

	intent := &PaymentIntent{}
	if err := json.Unmarshal(body, intent); err != nil {
		return nil, fmt.Errorf("failed to decode stripe response: %w", err)
	}
	return intent, nil
}
