package handlers

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"township-rental-portal/internal/audit"
	"township-rental-portal/internal/database"
	"township-rental-portal/internal/models"
	"township-rental-portal/internal/notify"
	"township-rental-portal/internal/payments"
)

const testPrivateKey = "test-private-key"

type testServer struct {
	router  *gin.Engine
	gdb     *database.GormDB
	gateway *payments.Gateway
}

func newTestServer(t *testing.T, gatewayEnabled bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	gdb := database.NewGormDBFromDB(db)
	require.NoError(t, gdb.InitSchema())

	auditSvc := audit.NewService(gdb.DB())
	notifySvc := notify.NewService(gdb.DB())
	gateway := payments.NewGateway(payments.GatewayConfig{
		SiteCode:    "TST-001",
		PrivateKey:  testPrivateKey,
		APIKey:      "test-api-key",
		CheckoutURL: "https://pay.example.test",
		StatusURL:   "https://api.example.test",
		AppURL:      "https://portal.example.test",
		IsTest:      true,
		Enabled:     gatewayEnabled,
	})
	settlement := payments.NewSettlement(gdb, auditSvc, notifySvc)

	viewingHandler := NewViewingHandler(gdb, notifySvc)
	applicationHandler := NewApplicationHandler(gdb, notifySvc)
	leaseHandler := NewLeaseHandler(gdb, auditSvc, notifySvc)
	paymentHandler := NewPaymentHandler(gdb, gateway, settlement)
	notificationHandler := NewNotificationHandler(gdb, notifySvc)

	r := gin.New()
	r.POST("/api/viewings", viewingHandler.Create)
	r.GET("/api/viewings", viewingHandler.List)
	r.PUT("/api/viewings/:id/:action", viewingHandler.Transition)
	r.POST("/api/applications", applicationHandler.Create)
	r.GET("/api/applications", applicationHandler.List)
	r.PUT("/api/applications/:id/:action", applicationHandler.Decide)
	r.POST("/api/leases", leaseHandler.Create)
	r.GET("/api/leases/:id", leaseHandler.Get)
	r.POST("/api/leases/:id/sign", leaseHandler.Sign)
	r.POST("/api/leases/:id/cancel", leaseHandler.Cancel)
	r.GET("/api/leases/:id/document", leaseHandler.Document)
	r.GET("/api/leases/:id/history", leaseHandler.History)
	r.GET("/api/payments/quote", paymentHandler.Quote)
	r.POST("/api/payments/initiate", paymentHandler.Initiate)
	r.POST("/api/payments/notify", paymentHandler.Webhook)
	r.GET("/api/payments", paymentHandler.History)
	r.GET("/api/notifications", notificationHandler.List)
	r.PUT("/api/notifications/:id/read", notificationHandler.MarkRead)

	return &testServer{router: r, gdb: gdb, gateway: gateway}
}

func (ts *testServer) seedParties(t *testing.T) {
	t.Helper()
	require.NoError(t, ts.gdb.DB().Create(&models.Profile{
		ID: "landlord-1", Email: "thandi@example.test",
		FirstName: "Thandi", LastName: "Mokoena", Role: models.RoleLandlord,
	}).Error)
	require.NoError(t, ts.gdb.DB().Create(&models.Profile{
		ID: "tenant-1", Email: "sipho@example.test",
		FirstName: "Sipho", LastName: "Dlamini", Role: models.RoleTenant,
	}).Error)
	require.NoError(t, ts.gdb.DB().Create(&models.Township{
		ID: "township-1", Name: "Soweto", City: "Johannesburg", Province: "Gauteng",
	}).Error)
	require.NoError(t, ts.gdb.DB().Create(&models.Property{
		ID: "property-1", LandlordID: "landlord-1", TownshipID: "township-1",
		Title: "Backroom in Orlando East", RentAmount: 3000, DepositAmount: 3000,
		PropertyType: models.PropertyTypeBackroom,
		Status:       models.PropertyStatusAvailable,
	}).Error)
}

func (ts *testServer) do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// advanceToApproved walks property-1 through viewing, application and
// landlord approval, returning the application id.
func (ts *testServer) advanceToApproved(t *testing.T) string {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/api/viewings", "tenant-1", gin.H{
		"property_id":    "property-1",
		"requested_date": "2026-09-05",
		"requested_time": "10:00",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	viewingID := decodeBody(t, w)["id"].(string)

	w = ts.do(t, http.MethodPut, "/api/viewings/"+viewingID+"/confirm", "landlord-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/applications", "tenant-1", gin.H{
		"property_id":           "property-1",
		"proposed_move_in_date": "2026-10-01",
		"monthly_income":        9500,
		"employment_status":     "employed",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	applicationID := decodeBody(t, w)["id"].(string)

	w = ts.do(t, http.MethodPut, "/api/applications/"+applicationID+"/approve", "landlord-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	return applicationID
}

// advanceToSignedLease continues from an approved application to a lease
// signed by both parties, returning the lease id.
func (ts *testServer) advanceToSignedLease(t *testing.T) string {
	t.Helper()

	applicationID := ts.advanceToApproved(t)

	w := ts.do(t, http.MethodPost, "/api/leases", "landlord-1", gin.H{
		"application_id":  applicationID,
		"start_date":      "2026-10-01",
		"duration_months": 12,
		"monthly_rent":    3000,
		"deposit_amount":  3000,
		"rent_due_day":    1,
		"extras":          []gin.H{{"id": "e1", "name": "Water", "amount": 200}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	leaseBody := decodeBody(t, w)["lease"].(map[string]interface{})
	leaseID := leaseBody["id"].(string)

	w = ts.do(t, http.MethodPost, "/api/leases/"+leaseID+"/sign", "landlord-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPost, "/api/leases/"+leaseID+"/sign", "tenant-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	return leaseID
}

func TestApplicationBlockedUntilViewingConfirmed(t *testing.T) {
	ts := newTestServer(t, false)
	ts.seedParties(t)

	// No viewing at all.
	w := ts.do(t, http.MethodPost, "/api/applications", "tenant-1", gin.H{
		"property_id": "property-1",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "request a viewing")

	// Pending viewing still blocks.
	w = ts.do(t, http.MethodPost, "/api/viewings", "tenant-1", gin.H{
		"property_id":    "property-1",
		"requested_date": "2026-09-05",
		"requested_time": "10:00",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	viewingID := decodeBody(t, w)["id"].(string)

	w = ts.do(t, http.MethodPost, "/api/applications", "tenant-1", gin.H{
		"property_id": "property-1",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "pending confirmation")

	// Confirmed viewing unblocks the application.
	w = ts.do(t, http.MethodPut, "/api/viewings/"+viewingID+"/confirm", "landlord-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/applications", "tenant-1", gin.H{
		"property_id": "property-1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// The viewing is consumed by the application.
	var viewing models.ViewingRequest
	require.NoError(t, ts.gdb.DB().Where("id = ?", viewingID).First(&viewing).Error)
	assert.Equal(t, models.ViewingStatusApplicationSubmitted, viewing.Status)

	// A second application for the same property is a conflict.
	w = ts.do(t, http.MethodPost, "/api/applications", "tenant-1", gin.H{
		"property_id": "property-1",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestViewingTransitionAuthorization(t *testing.T) {
	ts := newTestServer(t, false)
	ts.seedParties(t)

	w := ts.do(t, http.MethodPost, "/api/viewings", "tenant-1", gin.H{
		"property_id":    "property-1",
		"requested_date": "2026-09-05",
		"requested_time": "10:00",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	viewingID := decodeBody(t, w)["id"].(string)

	// Tenants cannot confirm their own viewing.
	w = ts.do(t, http.MethodPut, "/api/viewings/"+viewingID+"/confirm", "tenant-1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Strangers are not a party at all.
	w = ts.do(t, http.MethodPut, "/api/viewings/"+viewingID+"/confirm", "someone-else", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The tenant may cancel.
	w = ts.do(t, http.MethodPut, "/api/viewings/"+viewingID+"/cancel", "tenant-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Cancelled is terminal.
	w = ts.do(t, http.MethodPut, "/api/viewings/"+viewingID+"/confirm", "landlord-1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestViewingCreateGuards(t *testing.T) {
	ts := newTestServer(t, false)
	ts.seedParties(t)

	// Landlords cannot book their own property.
	w := ts.do(t, http.MethodPost, "/api/viewings", "landlord-1", gin.H{
		"property_id":    "property-1",
		"requested_date": "2026-09-05",
		"requested_time": "10:00",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Occupied properties take no viewings.
	require.NoError(t, ts.gdb.DB().Model(&models.Property{}).
		Where("id = ?", "property-1").
		Update("status", models.PropertyStatusOccupied).Error)

	w = ts.do(t, http.MethodPost, "/api/viewings", "tenant-1", gin.H{
		"property_id":    "property-1",
		"requested_date": "2026-09-05",
		"requested_time": "10:00",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestApplicationDecisionFlow(t *testing.T) {
	ts := newTestServer(t, false)
	ts.seedParties(t)

	w := ts.do(t, http.MethodPost, "/api/viewings", "tenant-1", gin.H{
		"property_id":    "property-1",
		"requested_date": "2026-09-05",
		"requested_time": "10:00",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	viewingID := decodeBody(t, w)["id"].(string)
	w = ts.do(t, http.MethodPut, "/api/viewings/"+viewingID+"/confirm", "landlord-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/applications", "tenant-1", gin.H{
		"property_id": "property-1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	applicationID := decodeBody(t, w)["id"].(string)

	// Only the landlord decides.
	w = ts.do(t, http.MethodPut, "/api/applications/"+applicationID+"/reject", "tenant-1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPut, "/api/applications/"+applicationID+"/reject", "landlord-1", gin.H{
		"rejection_reason": "Income too low",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "rejected", body["status"])
	assert.Equal(t, "Income too low", body["rejection_reason"])

	// Rejected is terminal.
	w = ts.do(t, http.MethodPut, "/api/applications/"+applicationID+"/approve", "landlord-1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLeaseCreateRequiresApprovedApplication(t *testing.T) {
	ts := newTestServer(t, false)
	ts.seedParties(t)

	require.NoError(t, ts.gdb.DB().Create(&models.Application{
		ID: "app-pending", TenantID: "tenant-1", PropertyID: "property-1",
		LandlordID: "landlord-1", Status: models.ApplicationStatusPending,
	}).Error)

	w := ts.do(t, http.MethodPost, "/api/leases", "landlord-1", gin.H{
		"application_id":  "app-pending",
		"start_date":      "2026-10-01",
		"duration_months": 12,
		"monthly_rent":    3000,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// And only that application's landlord may create one.
	require.NoError(t, ts.gdb.DB().Model(&models.Application{}).
		Where("id = ?", "app-pending").
		Update("status", models.ApplicationStatusApproved).Error)

	w = ts.do(t, http.MethodPost, "/api/leases", "tenant-1", gin.H{
		"application_id":  "app-pending",
		"start_date":      "2026-10-01",
		"duration_months": 12,
		"monthly_rent":    3000,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLeaseSignAndDocument(t *testing.T) {
	ts := newTestServer(t, false)
	ts.seedParties(t)
	leaseID := ts.advanceToSignedLease(t)

	var l models.Lease
	require.NoError(t, ts.gdb.DB().Where("id = ?", leaseID).First(&l).Error)
	assert.True(t, l.IsSigned)
	assert.Equal(t, models.LeaseStatusSigned, l.Status)
	assert.False(t, l.IsActive)
	assert.Equal(t, "2027-09-30", l.EndDate)

	// Re-signing is rejected.
	w := ts.do(t, http.MethodPost, "/api/leases/"+leaseID+"/sign", "tenant-1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// The agreement renders with both parties and the computed totals.
	w = ts.do(t, http.MethodGet, "/api/leases/"+leaseID+"/document", "tenant-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	html := w.Body.String()
	assert.Contains(t, html, "Thandi Mokoena")
	assert.Contains(t, html, "Sipho Dlamini")
	assert.Contains(t, html, "R 3 200,00")
	assert.Contains(t, html, "R 6 200,00")

	// Outsiders get neither the lease nor the document.
	w = ts.do(t, http.MethodGet, "/api/leases/"+leaseID+"/document", "someone-else", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// History carries creation and signature events.
	w = ts.do(t, http.MethodGet, "/api/leases/"+leaseID+"/history", "landlord-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := w.Body.String()
	assert.Contains(t, history, models.LeaseEventCreated)
	assert.Contains(t, history, models.LeaseEventLandlordSigned)
	assert.Contains(t, history, models.LeaseEventTenantSigned)
	assert.Contains(t, history, models.LeaseEventFullySigned)
}

func TestPaymentQuote(t *testing.T) {
	ts := newTestServer(t, false)
	ts.seedParties(t)
	leaseID := ts.advanceToSignedLease(t)

	w := ts.do(t, http.MethodGet, "/api/payments/quote?lease_id="+leaseID+"&payment_type=move_in", "tenant-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, 6200.0, body["amount"])
	assert.Equal(t, false, body["ozow_enabled"])

	// Landlords are not the payer for move-in.
	w = ts.do(t, http.MethodGet, "/api/payments/quote?lease_id="+leaseID+"&payment_type=move_in", "landlord-1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Disabled gateway rejects initiation with 503.
	w = ts.do(t, http.MethodPost, "/api/payments/initiate", "tenant-1", gin.H{
		"lease_id":     leaseID,
		"payment_type": "move_in",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// signWebhook computes the notification hash the way the gateway does:
// every field except Hash, sorted by key, values lower-cased, private key
// appended, SHA-512 hex.
func signWebhook(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(strings.ToLower(fields[k]))
	}
	sb.WriteString(strings.ToLower(testPrivateKey))

	sum := sha512.Sum512([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

func (ts *testServer) postWebhook(t *testing.T, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/payments/notify", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func TestMoveInWebhookActivatesLease(t *testing.T) {
	ts := newTestServer(t, true)
	ts.seedParties(t)
	leaseID := ts.advanceToSignedLease(t)

	w := ts.do(t, http.MethodPost, "/api/payments/initiate", "tenant-1", gin.H{
		"lease_id":     leaseID,
		"payment_type": "move_in",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	ref := body["transaction_ref"].(string)
	assert.True(t, strings.HasPrefix(ref, "MOVE_IN-"))
	ozow := body["ozow"].(map[string]interface{})
	assert.Contains(t, ozow["url"].(string), "https://pay.example.test")
	assert.Equal(t, 620000.0, ozow["amount"])

	// A tampered notification is rejected.
	fields := map[string]string{
		"TransactionReference": ref,
		"Status":               "Complete",
		"Amount":               "6200.00",
		"SiteCode":             "TST-001",
	}
	fields["Hash"] = signWebhook(fields)
	fields["Amount"] = "1.00"
	w = ts.postWebhook(t, fields)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The genuine notification settles and activates.
	fields["Amount"] = "6200.00"
	w = ts.postWebhook(t, fields)
	require.Equal(t, http.StatusOK, w.Code)

	var payment models.Payment
	require.NoError(t, ts.gdb.DB().Where("transaction_reference = ?", ref).First(&payment).Error)
	assert.Equal(t, models.PaymentStatusConfirmed, payment.Status)
	assert.Equal(t, "ozow", payment.PaymentMethod)
	require.NotNil(t, payment.PaidDate)

	var l models.Lease
	require.NoError(t, ts.gdb.DB().Where("id = ?", leaseID).First(&l).Error)
	assert.True(t, l.IsActive)
	assert.Equal(t, models.LeaseStatusActive, l.Status)

	var property models.Property
	require.NoError(t, ts.gdb.DB().Where("id = ?", "property-1").First(&property).Error)
	assert.Equal(t, models.PropertyStatusOccupied, property.Status)

	// Replaying the notification changes nothing.
	w = ts.postWebhook(t, fields)
	require.Equal(t, http.StatusOK, w.Code)
	var confirmed int64
	ts.gdb.DB().Model(&models.Payment{}).
		Where("lease_id = ? AND status = ?", leaseID, models.PaymentStatusConfirmed).
		Count(&confirmed)
	assert.Equal(t, int64(1), confirmed)

	// Both parties were told the lease is active.
	var notifications int64
	ts.gdb.DB().Model(&models.Notification{}).
		Where("type = ?", models.NotificationLeaseActivated).
		Count(&notifications)
	assert.Equal(t, int64(2), notifications)
}

func TestWebhookPendingStatusLeavesPaymentUntouched(t *testing.T) {
	ts := newTestServer(t, true)
	ts.seedParties(t)
	leaseID := ts.advanceToSignedLease(t)

	w := ts.do(t, http.MethodPost, "/api/payments/initiate", "tenant-1", gin.H{
		"lease_id":     leaseID,
		"payment_type": "move_in",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	ref := decodeBody(t, w)["transaction_ref"].(string)

	fields := map[string]string{
		"TransactionReference": ref,
		"Status":               "PendingInvestigation",
	}
	fields["Hash"] = signWebhook(fields)
	w = ts.postWebhook(t, fields)
	require.Equal(t, http.StatusOK, w.Code)

	var payment models.Payment
	require.NoError(t, ts.gdb.DB().Where("transaction_reference = ?", ref).First(&payment).Error)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
}

func TestLeaseCancellation(t *testing.T) {
	ts := newTestServer(t, true)
	ts.seedParties(t)
	leaseID := ts.advanceToSignedLease(t)

	// Cancelling before activation is rejected.
	w := ts.do(t, http.MethodPost, "/api/leases/"+leaseID+"/cancel", "tenant-1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Activate via the move-in webhook.
	w = ts.do(t, http.MethodPost, "/api/payments/initiate", "tenant-1", gin.H{
		"lease_id":     leaseID,
		"payment_type": "move_in",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	ref := decodeBody(t, w)["transaction_ref"].(string)
	fields := map[string]string{"TransactionReference": ref, "Status": "Complete"}
	fields["Hash"] = signWebhook(fields)
	require.Equal(t, http.StatusOK, ts.postWebhook(t, fields).Code)

	w = ts.do(t, http.MethodPost, "/api/leases/"+leaseID+"/cancel", "tenant-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["effective_date"])

	var l models.Lease
	require.NoError(t, ts.gdb.DB().Where("id = ?", leaseID).First(&l).Error)
	assert.Equal(t, models.LeaseStatusCancellationPending, l.Status)
	assert.False(t, l.IsActive)
	assert.Equal(t, body["effective_date"], l.EndDate)

	// Short notice produced a pending penalty payment when applicable.
	if body["penalty_due"] == true {
		var penalty models.Payment
		require.NoError(t, ts.gdb.DB().
			Where("lease_id = ? AND payment_type = ?", leaseID, models.PaymentTypeCancelPenalty).
			First(&penalty).Error)
		assert.Equal(t, 300.0, penalty.Amount)
		assert.Equal(t, models.PaymentStatusPending, penalty.Status)
	}

	// Cancelling twice is rejected.
	w = ts.do(t, http.MethodPost, "/api/leases/"+leaseID+"/cancel", "landlord-1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestNotificationsListAndMarkRead(t *testing.T) {
	ts := newTestServer(t, false)
	ts.seedParties(t)
	ts.advanceToApproved(t)

	// The approval notified the tenant.
	w := ts.do(t, http.MethodGet, "/api/notifications", "tenant-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.NotEmpty(t, body["notifications"])
	assert.Greater(t, body["unread_count"], 0.0)

	first := body["notifications"].([]interface{})[0].(map[string]interface{})
	notificationID := first["id"].(string)

	// Another user cannot mark it read.
	w = ts.do(t, http.MethodPut, "/api/notifications/"+notificationID+"/read", "landlord-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPut, "/api/notifications/"+notificationID+"/read", "tenant-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/notifications?unread=true", "tenant-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, n := range decodeBody(t, w)["notifications"].([]interface{}) {
		assert.NotEqual(t, notificationID, n.(map[string]interface{})["id"])
	}
}
