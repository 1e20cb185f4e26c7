package payments

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"township-rental-portal/internal/models"
)

// GatewayConfig holds the Ozow hosted-checkout credentials and endpoints
type GatewayConfig struct {
	SiteCode   string `yaml:"site_code"`
	PrivateKey string `yaml:"private_key"`
	APIKey     string `yaml:"api_key"`
	// CheckoutURL is the hosted payment page requests redirect to.
	CheckoutURL string `yaml:"checkout_url"`
	// StatusURL is the transaction-status API root polled by the worker.
	StatusURL string `yaml:"status_url"`
	AppURL    string `yaml:"app_url"`
	IsTest    bool   `yaml:"is_test"`
	Enabled   bool   `yaml:"enabled"`
}

// ErrGatewayDisabled is returned when initiation is attempted without a
// configured gateway. Handlers map it to 503.
var ErrGatewayDisabled = errors.New("payment gateway is not configured")

// ErrBreakerOpen is returned when the circuit breaker is rejecting
// outbound gateway calls.
var ErrBreakerOpen = errors.New("payment gateway circuit open")

// Gateway signs payment requests, builds hosted-checkout redirects and
// polls transaction status against the Ozow API.
type Gateway struct {
	cfg     GatewayConfig
	client  *http.Client
	breaker *CircuitBreaker
}

// NewGateway creates a gateway client with a shared circuit breaker
func NewGateway(cfg GatewayConfig) *Gateway {
	if cfg.CheckoutURL == "" {
		cfg.CheckoutURL = "https://stagingapi.ozow.com/PostPaymentRequest"
	}
	if cfg.StatusURL == "" {
		cfg.StatusURL = "https://stagingapi.ozow.com"
	}
	if cfg.AppURL == "" {
		cfg.AppURL = "http://localhost:3000"
	}
	return &Gateway{
		cfg:     cfg,
		client:  &http.Client{Timeout: 15 * time.Second},
		breaker: NewCircuitBreaker(3, 5*time.Minute),
	}
}

// Enabled reports whether the gateway has credentials and is switched on
func (g *Gateway) Enabled() bool {
	return g.cfg.Enabled && g.cfg.SiteCode != "" && g.cfg.PrivateKey != ""
}

// Breaker exposes the circuit breaker for status reporting
func (g *Gateway) Breaker() *CircuitBreaker {
	return g.breaker
}

// Request is one hosted-checkout payment request. Amount is in cents.
type Request struct {
	SiteCode             string
	CountryCode          string
	CurrencyCode         string
	Amount               int64
	TransactionReference string
	BankReference        string
	Customer             string
	Optional1            string
	Optional2            string
	Optional3            string
	Optional4            string
	Optional5            string
	CancelURL            string
	ErrorURL             string
	SuccessURL           string
	NotifyURL            string
	IsTest               bool
}

// hashValues returns the request values in the hash order: field names
// sorted alphabetically (amount, bankReference, cancelUrl, countryCode,
// currencyCode, customer, errorUrl, isTest, notifyUrl, optional1..5,
// siteCode, successUrl, transactionReference).
func (r *Request) hashValues() []string {
	return []string{
		strconv.FormatInt(r.Amount, 10),
		r.BankReference,
		r.CancelURL,
		r.CountryCode,
		r.CurrencyCode,
		r.Customer,
		r.ErrorURL,
		strconv.FormatBool(r.IsTest),
		r.NotifyURL,
		r.Optional1,
		r.Optional2,
		r.Optional3,
		r.Optional4,
		r.Optional5,
		r.SiteCode,
		r.SuccessURL,
		r.TransactionReference,
	}
}

// Hash computes the SHA-512 request hash: the values in sorted-key order,
// lower-cased and concatenated, followed by the private key.
func (g *Gateway) Hash(r *Request) string {
	return hashConcat(r.hashValues(), g.cfg.PrivateKey)
}

func hashConcat(values []string, privateKey string) string {
	var b strings.Builder
	for _, v := range values {
		b.WriteString(strings.ToLower(v))
	}
	b.WriteString(privateKey)

	sum := sha512.Sum512([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Redirect is what the initiate endpoint returns to send the payer to the
// hosted checkout page.
type Redirect struct {
	URL       string `json:"redirect_url"`
	HashCheck string `json:"HashCheck"`
	Amount    int64  `json:"amount_cents"`
	IsTest    bool   `json:"is_test"`
}

// bankReferencePrefix maps a payment type to the short label shown on the
// payer's bank statement.
func bankReferencePrefix(pt models.PaymentType) string {
	switch pt {
	case models.PaymentTypeMoveIn:
		return "MOVEIN"
	case models.PaymentTypeMonthlyRent:
		return "RENT"
	case models.PaymentTypeAdminFee:
		return "ADMIN"
	case models.PaymentTypeCancelPenalty:
		return "PENALTY"
	case models.PaymentTypeDepositReturn:
		return "DEPOSIT"
	default:
		return "PAYMENT"
	}
}

// BuildRedirect signs a payment and produces the hosted-checkout URL for
// it. customerEmail and customerName identify the payer on the gateway
// side; the breakdown travels in Optional4 so the notify handler can log
// what was quoted.
func (g *Gateway) BuildRedirect(p *models.Payment, q *Quote, customerEmail, customerName, propertyTitle string) (*Redirect, error) {
	if !g.Enabled() {
		return nil, ErrGatewayDisabled
	}

	breakdown, err := json.Marshal(q.Breakdown)
	if err != nil {
		return nil, err
	}

	ref := p.TransactionReference
	short := ref
	if len(short) > 8 {
		short = short[:8]
	}

	req := &Request{
		SiteCode:             g.cfg.SiteCode,
		CountryCode:          "ZA",
		CurrencyCode:         "ZAR",
		Amount:               ToCents(p.Amount),
		TransactionReference: ref,
		BankReference:        fmt.Sprintf("%s-%s", bankReferencePrefix(p.PaymentType), short),
		Customer:             customerEmail,
		Optional1:            p.TenantID,
		Optional2:            string(p.PaymentType),
		Optional3:            propertyTitle,
		Optional4:            string(breakdown),
		Optional5:            customerName,
		CancelURL:            g.cfg.AppURL + "/payments/cancel",
		ErrorURL:             g.cfg.AppURL + "/payments/error",
		SuccessURL:           g.cfg.AppURL + "/payments/success",
		NotifyURL:            g.cfg.AppURL + "/api/payments/notify",
		IsTest:               g.cfg.IsTest,
	}

	hash := g.Hash(req)

	params := url.Values{}
	params.Set("SiteCode", req.SiteCode)
	params.Set("CountryCode", req.CountryCode)
	params.Set("CurrencyCode", req.CurrencyCode)
	params.Set("Amount", strconv.FormatInt(req.Amount, 10))
	params.Set("TransactionReference", req.TransactionReference)
	params.Set("BankReference", req.BankReference)
	params.Set("Customer", req.Customer)
	params.Set("Optional1", req.Optional1)
	params.Set("Optional2", req.Optional2)
	params.Set("Optional3", req.Optional3)
	params.Set("Optional4", req.Optional4)
	params.Set("Optional5", req.Optional5)
	params.Set("CancelUrl", req.CancelURL)
	params.Set("ErrorUrl", req.ErrorURL)
	params.Set("SuccessUrl", req.SuccessURL)
	params.Set("NotifyUrl", req.NotifyURL)
	params.Set("IsTest", strconv.FormatBool(req.IsTest))
	params.Set("HashCheck", hash)

	return &Redirect{
		URL:       g.cfg.CheckoutURL + "?" + params.Encode(),
		HashCheck: hash,
		Amount:    req.Amount,
		IsTest:    req.IsTest,
	}, nil
}

// VerifyWebhook recomputes the notification hash and compares it against
// the Hash field. The gateway hashes every posted field except Hash in
// sorted-key order, lower-cased, plus the private key.
func (g *Gateway) VerifyWebhook(fields map[string]string) bool {
	received, ok := fields["Hash"]
	if !ok || received == "" {
		return false
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "Hash" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]string, 0, len(keys))
	for _, k := range keys {
		values = append(values, fields[k])
	}

	return hashConcat(values, g.cfg.PrivateKey) == strings.ToLower(received)
}

// TransactionStatus is the settlement state reported by the gateway
type TransactionStatus struct {
	TransactionReference string `json:"transactionReference"`
	Status               string `json:"status"`
	Amount               int64  `json:"amount"`
}

// GetTransactionStatus polls the gateway for the current state of a
// payment by our transaction reference. The circuit breaker rejects calls
// while the gateway is misbehaving.
func (g *Gateway) GetTransactionStatus(ctx context.Context, transactionReference string) (*TransactionStatus, error) {
	if !g.Enabled() {
		return nil, ErrGatewayDisabled
	}
	if !g.breaker.CanProceed() {
		return nil, ErrBreakerOpen
	}

	endpoint := fmt.Sprintf("%s/GetTransactionByReference?siteCode=%s&transactionReference=%s&IsTest=%t",
		g.cfg.StatusURL, url.QueryEscape(g.cfg.SiteCode), url.QueryEscape(transactionReference), g.cfg.IsTest)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("ApiKey", g.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.breaker.RecordFailure(0)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.breaker.RecordFailure(resp.StatusCode)
		return nil, fmt.Errorf("gateway status check returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		g.breaker.RecordFailure(0)
		return nil, err
	}

	// The reference endpoint returns an array of matching transactions.
	var statuses []TransactionStatus
	if err := json.Unmarshal(body, &statuses); err != nil {
		var single TransactionStatus
		if err2 := json.Unmarshal(body, &single); err2 != nil {
			g.breaker.RecordFailure(0)
			return nil, err
		}
		statuses = []TransactionStatus{single}
	}

	g.breaker.RecordSuccess()

	if len(statuses) == 0 {
		return nil, fmt.Errorf("no transaction found for reference %s", transactionReference)
	}
	return &statuses[0], nil
}

// MapGatewayStatus translates an Ozow settlement status into our payment
// status. Unknown statuses leave the payment pending.
func MapGatewayStatus(gatewayStatus string) (models.PaymentStatus, bool) {
	switch strings.ToLower(gatewayStatus) {
	case "complete":
		return models.PaymentStatusConfirmed, true
	case "cancelled", "abandoned":
		return models.PaymentStatusCancelled, true
	case "error":
		return models.PaymentStatusFailed, true
	default:
		return models.PaymentStatusPending, false
	}
}

// ToCents converts a rand amount to integer cents for the gateway
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
