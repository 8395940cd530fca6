package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Heethjain14/loan-management-system/internal/pkg/stripeclient"
	"github.com/Heethjain14/loan-management-system/internal/service/payments"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Process(ctx context.Context, req payments.ProcessRequest) (*payments.ProcessResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*payments.ProcessResult)
	return res, args.Error(1)
}

func (m *MockPaymentService) Validate(req payments.ValidateRequest) payments.ValidationResult {
	return m.Called(req).Get(0).(payments.ValidationResult)
}

func (m *MockPaymentService) Refund(ctx context.Context, req payments.RefundRequest) (*payments.RefundResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*payments.RefundResult)
	return res, args.Error(1)
}

func (m *MockPaymentService) CreateIntent(ctx context.Context, req payments.IntentRequest) (*payments.IntentResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*payments.IntentResult)
	return res, args.Error(1)
}

func (m *MockPaymentService) Get(ctx context.Context, paymentID string) (*payments.Payment, error) {
	args := m.Called(ctx, paymentID)
	res, _ := args.Get(0).(*payments.Payment)
	return res, args.Error(1)
}

func (m *MockPaymentService) History(ctx context.Context, borrowerID string) ([]payments.Payment, error) {
	args := m.Called(ctx, borrowerID)
	res, _ := args.Get(0).([]payments.Payment)
	return res, args.Error(1)
}

func newPaymentRouter(svc *MockPaymentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPaymentHandler(svc)
	r := gin.New()
	r.POST("/process", h.Process)
	r.POST("/validate", h.Validate)
	r.POST("/refund", h.Refund)
	r.POST("/create-intent", h.CreateIntent)
	r.GET("/history/:borrowerId", h.History)
	r.GET("/:paymentId", h.GetPayment)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPaymentHandlerProcess(t *testing.T) {
	processedAt := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("cash payment", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("Process", mock.Anything, payments.ProcessRequest{BorrowerID: "7", Amount: 40, PaymentMethod: "cash"}).
			Return(&payments.ProcessResult{PaymentID: "offline_1_abc", Status: "succeeded", Amount: 40, Method: "cash", ProcessedAt: processedAt}, nil)

		w := serve(newPaymentRouter(svc), http.MethodPost, "/process", `{"borrowerId":"7","amount":40,"paymentMethod":"cash"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"paymentId":"offline_1_abc","status":"succeeded","amount":40,"method":"cash","transactionId":"","processedAt":"2024-06-01T09:00:00Z"}`, w.Body.String())
	})

	t.Run("invalid body never reaches the service", func(t *testing.T) {
		svc := new(MockPaymentService)

		w := serve(newPaymentRouter(svc), http.MethodPost, "/process", `{"borrowerId":"","amount":-1,"paymentMethod":"wire"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"success":false`)
		assert.Contains(t, w.Body.String(), `"field":"paymentMethod"`)
		svc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
	})

	t.Run("provider failure is 500", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("Process", mock.Anything, mock.Anything).Return(nil, errors.New("Payment processing failed: Your card was declined."))

		w := serve(newPaymentRouter(svc), http.MethodPost, "/process", `{"borrowerId":"7","amount":40,"paymentMethod":"card","paymentMethodId":"pm_x"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Payment processing failed: Your card was declined."}`, w.Body.String())
	})
}

func TestPaymentHandlerValidate(t *testing.T) {
	t.Run("negative amount reaches the business rules", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("Validate", mock.MatchedBy(func(r payments.ValidateRequest) bool {
			return r.Amount != nil && *r.Amount == -5
		})).Return(payments.ValidationResult{IsValid: false, Errors: []string{"Payment amount must be greater than zero"}, Warnings: []string{}})

		w := serve(newPaymentRouter(svc), http.MethodPost, "/validate", `{"borrowerId":"7","amount":-5,"dueAmount":1000}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"isValid":false,"errors":["Payment amount must be greater than zero"],"warnings":[]}`, w.Body.String())
	})

	t.Run("missing due amount", func(t *testing.T) {
		svc := new(MockPaymentService)
		w := serve(newPaymentRouter(svc), http.MethodPost, "/validate", `{"borrowerId":"7","amount":5}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Validate", mock.Anything)
	})
}

func TestPaymentHandlerGetPayment(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("Get", mock.Anything, "pi_1").Return(&payments.Payment{ID: "pi_1", Amount: 50, Currency: "usd", Status: "succeeded",
			Metadata: map[string]string{}, Created: time.Unix(0, 0).UTC()}, nil)

		w := serve(newPaymentRouter(svc), http.MethodGet, "/pi_1", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"data":{"id":"pi_1","amount":50,"currency":"usd","status":"succeeded","metadata":{},"created":"1970-01-01T00:00:00Z"}}`, w.Body.String())
	})

	t.Run("missing is 404", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("Get", mock.Anything, "pi_x").Return(nil, stripeclient.ErrPaymentNotFound)

		w := serve(newPaymentRouter(svc), http.MethodGet, "/pi_x", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Payment not found"}`, w.Body.String())
	})

	t.Run("not configured is 500", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("Get", mock.Anything, "pi_1").Return(nil, stripeclient.ErrNotConfigured)

		w := serve(newPaymentRouter(svc), http.MethodGet, "/pi_1", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Stripe is not configured"}`, w.Body.String())
	})
}

func TestPaymentHandlerRefund(t *testing.T) {
	svc := new(MockPaymentService)
	svc.On("Refund", mock.Anything, payments.RefundRequest{PaymentID: "pi_1"}).
		Return(&payments.RefundResult{RefundID: "re_1", Amount: 50, Status: "succeeded", ProcessedAt: time.Unix(0, 0).UTC()}, nil)
	r := newPaymentRouter(svc)

	w := serve(r, http.MethodPost, "/refund", `{"paymentId":"pi_1"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"amount":50`)

	svc.On("Refund", mock.Anything, payments.RefundRequest{PaymentID: "pi_1", Reason: "because"}).
		Return(nil, &stripeclient.Error{Code: "parameter_invalid_empty", Message: "Invalid reason", StatusCode: http.StatusBadRequest})

	// reason is forwarded as given; Stripe decides which values it accepts
	w = serve(r, http.MethodPost, "/refund", `{"paymentId":"pi_1","reason":"because"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	svc.AssertCalled(t, "Refund", mock.Anything, payments.RefundRequest{PaymentID: "pi_1", Reason: "because"})

	w = serve(r, http.MethodPost, "/refund", `{"reason":"duplicate"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentHandlerCreateIntentAndHistory(t *testing.T) {
	svc := new(MockPaymentService)
	svc.On("CreateIntent", mock.Anything, payments.IntentRequest{Amount: 100, BorrowerID: "9"}).
		Return(&payments.IntentResult{ClientSecret: "cs", PaymentIntentID: "pi_9", Amount: 100}, nil)
	svc.On("History", mock.Anything, "9").Return([]payments.Payment{}, nil)
	r := newPaymentRouter(svc)

	w := serve(r, http.MethodPost, "/create-intent", `{"amount":100,"borrowerId":"9"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"clientSecret":"cs","paymentIntentId":"pi_9","amount":100}`, w.Body.String())

	w = serve(r, http.MethodGet, "/history/9", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"borrowerId":"9","data":[]}`, w.Body.String())
}
