package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/juanmircheva/reservas-app/models"
)

// StripeConfig holds Stripe configuration
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SiteBaseURL   string
}

// StripeService handles Stripe Checkout API interactions
type StripeService struct {
	config     *StripeConfig
	baseURL    string
	httpClient *http.Client
}

var (
	stripeService *StripeService
	stripeOnce    sync.Once
)

// GetStripeService returns singleton instance of StripeService
func GetStripeService() *StripeService {
	stripeOnce.Do(func() {
		stripeService = NewStripeService(&StripeConfig{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			SiteBaseURL:   os.Getenv("SITE_BASE_URL"),
		})
	})
	return stripeService
}

// NewStripeService creates a new instance of StripeService
func NewStripeService(config *StripeConfig) *StripeService {
	return &StripeService{
		config:  config,
		baseURL: "https://api.stripe.com",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ValidateConfig validates Stripe configuration
func (ss *StripeService) ValidateConfig() error {
	if ss.config.SecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is not set")
	}
	if ss.config.WebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is not set")
	}
	if ss.config.SiteBaseURL == "" {
		return fmt.Errorf("SITE_BASE_URL is not set")
	}
	return nil
}

// CheckoutSession is the subset of the Stripe session object we keep.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCheckoutSession opens a hosted checkout session for the
// reservation deposit and returns its redirect URL.
func (ss *StripeService) CreateCheckoutSession(reservation models.Reservation) (*CheckoutSession, error) {
	if ss.config.SecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is not set")
	}

	unitAmount := int64(math.Round(reservation.DepositAmount * 100))
	if unitAmount <= 0 {
		return nil, fmt.Errorf("reservation %d has no deposit amount", reservation.ID)
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", strconv.FormatUint(uint64(reservation.ID), 10))
	form.Set("success_url", ss.config.SiteBaseURL+"/reserva/pago-confirmado")
	form.Set("cancel_url", ss.config.SiteBaseURL+"/reserva/pago-cancelado")
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", "eur")
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(unitAmount, 10))
	form.Set("line_items[0][price_data][product_data][name]",
		fmt.Sprintf("Señal de reserva #%d - %s", reservation.ID, reservation.CustomerName))

	req, err := http.NewRequest("POST", ss.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}
	req.SetBasicAuth(ss.config.SecretKey, "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ss.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Stripe API error (status %d): %s", resp.StatusCode, string(body))
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %v", err)
	}

	return &session, nil
}

// ValidateSignature checks a Stripe-Signature header (t=...,v1=...)
// against the webhook secret.
func (ss *StripeService) ValidateSignature(payload []byte, header string) bool {
	var timestamp string
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return false
	}

	mac := hmac.New(sha256.New, []byte(ss.config.WebhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return true
		}
	}
	return false
}

// SignPayload produces a Stripe-Signature header for a payload. Used by
// tests and the local checkout simulator.
func (ss *StripeService) SignPayload(payload []byte, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(ss.config.WebhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}
