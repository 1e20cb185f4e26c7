package payments

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"township-rental-portal/internal/models"
)

func testGateway() *Gateway {
	return NewGateway(GatewayConfig{
		SiteCode:   "TST-001",
		PrivateKey: "test-private-key",
		APIKey:     "test-api-key",
		AppURL:     "https://portal.example.co.za",
		IsTest:     true,
		Enabled:    true,
	})
}

func testPayment() *models.Payment {
	return &models.Payment{
		ID:                   "pay-1",
		LeaseID:              "lease-1",
		TenantID:             "tenant-1",
		LandlordID:           "landlord-1",
		PropertyID:           "property-1",
		PaymentType:          models.PaymentTypeMoveIn,
		Status:               models.PaymentStatusPending,
		Amount:               6200,
		TransactionReference: "MOVE_IN-1756600000000-9f1c2a3b",
	}
}

func TestHashDeterministic(t *testing.T) {
	g := testGateway()
	req := &Request{
		SiteCode:             "TST-001",
		CountryCode:          "ZA",
		CurrencyCode:         "ZAR",
		Amount:               620000,
		TransactionReference: "MOVE_IN-1756600000000-9f1c2a3b",
		BankReference:        "MOVEIN-MOVE_IN-",
		Customer:             "tenant@example.com",
		IsTest:               true,
	}

	h1 := g.Hash(req)
	h2 := g.Hash(req)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 128)
	assert.Equal(t, strings.ToLower(h1), h1)

	req.Amount = 620001
	assert.NotEqual(t, h1, g.Hash(req))
}

func TestBuildRedirect(t *testing.T) {
	g := testGateway()
	p := testPayment()
	q := &Quote{
		PaymentType: models.PaymentTypeMoveIn,
		Amount:      6200,
		Breakdown:   Breakdown{Deposit: 3000, BaseRent: 3000, Total: 6200},
	}

	redirect, err := g.BuildRedirect(p, q, "tenant@example.com", "Thabo Mokoena", "Backroom in Soweto")
	require.NoError(t, err)

	parsed, err := url.Parse(redirect.URL)
	require.NoError(t, err)
	params := parsed.Query()

	assert.Equal(t, "TST-001", params.Get("SiteCode"))
	assert.Equal(t, "ZA", params.Get("CountryCode"))
	assert.Equal(t, "ZAR", params.Get("CurrencyCode"))
	assert.Equal(t, "620000", params.Get("Amount"))
	assert.Equal(t, p.TransactionReference, params.Get("TransactionReference"))
	assert.Equal(t, "MOVEIN-MOVE_IN-", params.Get("BankReference"))
	assert.Equal(t, "move_in", params.Get("Optional2"))
	assert.Equal(t, redirect.HashCheck, params.Get("HashCheck"))
	assert.Contains(t, params.Get("NotifyUrl"), "/api/payments/notify")
	assert.Len(t, redirect.HashCheck, 128)
}

func TestBuildRedirectDisabled(t *testing.T) {
	g := NewGateway(GatewayConfig{Enabled: false})

	_, err := g.BuildRedirect(testPayment(), &Quote{}, "a@b.c", "A B", "X")
	assert.ErrorIs(t, err, ErrGatewayDisabled)
}

func TestVerifyWebhook(t *testing.T) {
	g := testGateway()

	fields := map[string]string{
		"SiteCode":             "TST-001",
		"TransactionId":        "ozow-txn-42",
		"TransactionReference": "MOVE_IN-1756600000000-9f1c2a3b",
		"Amount":               "620000",
		"Status":               "Complete",
		"IsTest":               "true",
	}

	// Sign the notification the way the gateway does.
	values := []string{
		fields["Amount"],
		fields["IsTest"],
		fields["SiteCode"],
		fields["Status"],
		fields["TransactionId"],
		fields["TransactionReference"],
	}
	fields["Hash"] = hashConcat(values, "test-private-key")

	assert.True(t, g.VerifyWebhook(fields))

	tampered := map[string]string{}
	for k, v := range fields {
		tampered[k] = v
	}
	tampered["Amount"] = "1"
	assert.False(t, g.VerifyWebhook(tampered))

	delete(fields, "Hash")
	assert.False(t, g.VerifyWebhook(fields))
}

func TestMapGatewayStatus(t *testing.T) {
	status, ok := MapGatewayStatus("Complete")
	assert.True(t, ok)
	assert.Equal(t, models.PaymentStatusConfirmed, status)

	status, ok = MapGatewayStatus("Cancelled")
	assert.True(t, ok)
	assert.Equal(t, models.PaymentStatusCancelled, status)

	status, ok = MapGatewayStatus("Abandoned")
	assert.True(t, ok)
	assert.Equal(t, models.PaymentStatusCancelled, status)

	status, ok = MapGatewayStatus("Error")
	assert.True(t, ok)
	assert.Equal(t, models.PaymentStatusFailed, status)

	_, ok = MapGatewayStatus("PendingInvestigation")
	assert.False(t, ok)
}

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(620000), ToCents(6200))
	assert.Equal(t, int64(319999), ToCents(3199.99))
	assert.Equal(t, int64(11), ToCents(0.105))
}

func TestCircuitBreaker(t *testing.T) {
	cb := NewCircuitBreaker(3, 50*time.Millisecond)

	assert.True(t, cb.CanProceed())

	cb.RecordFailure(500)
	cb.RecordFailure(500)
	assert.True(t, cb.CanProceed())

	cb.RecordFailure(0)
	assert.False(t, cb.CanProceed())

	time.Sleep(60 * time.Millisecond)
	assert.True(t, cb.CanProceed())

	// 429 opens the breaker immediately.
	cb.RecordFailure(429)
	assert.False(t, cb.CanProceed())
}
