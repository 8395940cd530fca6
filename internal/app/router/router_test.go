package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Heethjain14/loan-management-system/internal/pkg/config"
	"github.com/Heethjain14/loan-management-system/internal/pkg/stripeclient"
	"github.com/Heethjain14/loan-management-system/internal/service/payments"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v76"
)

func newPaymentEngine(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := payments.NewPaymentService(stripeclient.NewClient(config.StripeConfig{}), nil, nil)
	return SetupPaymentRouter("payment-service", origins, svc)
}

func TestSetupPaymentRouter(t *testing.T) {
	r := newPaymentEngine(nil)

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"service":"payment-service"`)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("validate works without stripe", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/validate",
			strings.NewReader(`{"borrowerId":"7","amount":1200,"dueAmount":1000}`))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"isValid":true,"errors":[],"warnings":["Payment amount exceeds due amount by more than 10%"]}`, w.Body.String())
	})

	t.Run("history without stripe is empty", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments/history/7", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"borrowerId":"7","data":[]}`, w.Body.String())
	})

	t.Run("payment lookup without stripe", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments/pi_1", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Stripe is not configured"}`, w.Body.String())
	})

	t.Run("unknown route", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/nothing", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCORS(t *testing.T) {
	r := newPaymentEngine([]string{"http://localhost:3000"})

	t.Run("allowed origin preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/payments/process", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func newStripeBackedEngine(t *testing.T, handler http.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(server.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	gateway := stripeclient.NewClientWithBackends("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	return SetupPaymentRouter("payment-service", nil, payments.NewPaymentService(gateway, nil, nil))
}

func TestPaymentLookupAgainstStripe(t *testing.T) {
	r := newStripeBackedEngine(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/v1/payment_intents/pi_missing", req.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"resource_missing","message":"No such payment_intent: 'pi_missing'","type":"invalid_request_error"}}`))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments/pi_missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Payment not found"}`, w.Body.String())
}
