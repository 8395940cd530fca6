package payments

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Heethjain14/loan-management-system/internal/pkg/consts"
	"github.com/Heethjain14/loan-management-system/internal/pkg/models"
	"github.com/Heethjain14/loan-management-system/internal/pkg/stripeclient"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

type MockPaymentGateway struct {
	ctrl     *gomock.Controller
	recorder *MockPaymentGatewayMockRecorder
}

type MockPaymentGatewayMockRecorder struct {
	mock *MockPaymentGateway
}

func NewMockPaymentGateway(ctrl *gomock.Controller) *MockPaymentGateway {
	mock := &MockPaymentGateway{ctrl: ctrl}
	mock.recorder = &MockPaymentGatewayMockRecorder{mock}
	return mock
}

func (m *MockPaymentGateway) EXPECT() *MockPaymentGatewayMockRecorder {
	return m.recorder
}

func (m *MockPaymentGateway) CreateIntent(ctx context.Context, in stripeclient.IntentParams) (*stripe.PaymentIntent, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreateIntent", ctx, in)
	ret0, _ := ret[0].(*stripe.PaymentIntent)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockPaymentGatewayMockRecorder) CreateIntent(ctx, in interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreateIntent", reflect.TypeOf((*MockPaymentGateway)(nil).CreateIntent), ctx, in)
}

func (m *MockPaymentGateway) GetIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetIntent", ctx, id)
	ret0, _ := ret[0].(*stripe.PaymentIntent)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockPaymentGatewayMockRecorder) GetIntent(ctx, id interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetIntent", reflect.TypeOf((*MockPaymentGateway)(nil).GetIntent), ctx, id)
}

func (m *MockPaymentGateway) Refund(ctx context.Context, in stripeclient.RefundParams) (*stripe.Refund, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Refund", ctx, in)
	ret0, _ := ret[0].(*stripe.Refund)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockPaymentGatewayMockRecorder) Refund(ctx, in interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Refund", reflect.TypeOf((*MockPaymentGateway)(nil).Refund), ctx, in)
}

func (m *MockPaymentGateway) SearchByBorrower(ctx context.Context, borrowerID string) ([]*stripe.PaymentIntent, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SearchByBorrower", ctx, borrowerID)
	ret0, _ := ret[0].([]*stripe.PaymentIntent)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockPaymentGatewayMockRecorder) SearchByBorrower(ctx, borrowerID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SearchByBorrower", reflect.TypeOf((*MockPaymentGateway)(nil).SearchByBorrower), ctx, borrowerID)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishEvent(ctx context.Context, eventType, key string, event any) error {
	return m.Called(ctx, eventType, key, event).Error(0)
}

type MockReceiptArchiver struct {
	mock.Mock
}

func (m *MockReceiptArchiver) UploadJSON(ctx context.Context, name string, v any) (string, error) {
	args := m.Called(ctx, name, v)
	return args.String(0), args.Error(1)
}

func newTestService(t *testing.T) (*PaymentService, *MockPaymentGateway) {
	t.Helper()
	ctrl := gomock.NewController(t)
	gw := NewMockPaymentGateway(ctrl)
	s := NewPaymentService(gw, nil, nil)
	s.now = func() time.Time { return fixedNow }
	return s, gw
}

func ptr(f float64) *float64 { return &f }

func TestProcessCard(t *testing.T) {
	ctx := context.Background()

	t.Run("confirms an intent in minor units", func(t *testing.T) {
		s, gw := newTestService(t)
		gw.EXPECT().CreateIntent(ctx, stripeclient.IntentParams{
			AmountMinor:     1999,
			Currency:        "usd",
			PaymentMethodID: "pm_card_visa",
			Description:     "Payment for borrower 7",
			Confirm:         true,
			Metadata:        map[string]string{"borrowerId": "7", "loan": "a"},
		}).Return(&stripe.PaymentIntent{ID: "pi_1", Status: stripe.PaymentIntentStatusSucceeded}, nil)

		res, err := s.Process(ctx, ProcessRequest{
			BorrowerID:      "7",
			Amount:          19.99,
			PaymentMethod:   MethodCard,
			PaymentMethodID: "pm_card_visa",
			Metadata:        map[string]string{"loan": "a"},
		})
		require.NoError(t, err)
		assert.Equal(t, &ProcessResult{
			PaymentID:     "pi_1",
			Status:        "succeeded",
			Amount:        19.99,
			Method:        MethodCard,
			TransactionID: "pi_1",
			ProcessedAt:   fixedNow,
		}, res)
	})

	t.Run("payment method id required", func(t *testing.T) {
		s, _ := newTestService(t)
		_, err := s.Process(ctx, ProcessRequest{BorrowerID: "7", Amount: 10, PaymentMethod: MethodACH})
		assert.ErrorIs(t, err, ErrPaymentMethodRequired)
		assert.Equal(t, "Payment method ID is required for card/ACH payments", err.Error())
	})

	t.Run("provider failure is prefixed", func(t *testing.T) {
		s, gw := newTestService(t)
		gw.EXPECT().CreateIntent(ctx, gomock.Any()).
			Return(nil, &stripeclient.Error{Code: "card_declined", Message: "Your card was declined."})

		_, err := s.Process(ctx, ProcessRequest{BorrowerID: "7", Amount: 10, PaymentMethod: MethodCard, PaymentMethodID: "pm_x"})
		require.Error(t, err)
		assert.Equal(t, "Payment processing failed: Your card was declined.", err.Error())
	})

	t.Run("not configured", func(t *testing.T) {
		s, gw := newTestService(t)
		gw.EXPECT().CreateIntent(ctx, gomock.Any()).Return(nil, stripeclient.ErrNotConfigured)

		_, err := s.Process(ctx, ProcessRequest{BorrowerID: "7", Amount: 10, PaymentMethod: MethodCard, PaymentMethodID: "pm_x"})
		assert.Equal(t, stripeclient.ErrNotConfigured, err)
	})
}

func TestProcessOfflineNeverCallsGateway(t *testing.T) {
	for _, method := range []string{MethodCash, MethodCheck} {
		t.Run(method, func(t *testing.T) {
			s, _ := newTestService(t)

			res, err := s.Process(context.Background(), ProcessRequest{BorrowerID: "7", Amount: 250, PaymentMethod: method})
			require.NoError(t, err)
			assert.Equal(t, "succeeded", res.Status)
			assert.Equal(t, method, res.Method)
			assert.Empty(t, res.TransactionID)
			assert.Regexp(t, `^offline_1717234200000_[0-9a-z]{9}$`, res.PaymentID)
		})
	}
}

func TestProcessPublishesEventAndReceipt(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	s.offline = func(time.Time) string { return "offline_1_abc" }
	events, receipts := new(MockEventPublisher), new(MockReceiptArchiver)
	s.events, s.receipts = events, receipts

	isEvent := mock.MatchedBy(func(e models.PaymentEvent) bool {
		return e.PaymentID == "offline_1_abc" && e.BorrowerID == "7" && e.Currency == "usd" && e.Amount == 40
	})
	events.On("PublishEvent", ctx, consts.PaymentProcessedEvent, "offline_1_abc", isEvent).Return(errors.New("broker down"))
	receipts.On("UploadJSON", ctx, "offline_1_abc", isEvent).Return("receipts/offline_1_abc.json", nil)

	res, err := s.Process(ctx, ProcessRequest{BorrowerID: "7", Amount: 40, PaymentMethod: MethodCash})
	require.NoError(t, err)
	assert.Equal(t, "offline_1_abc", res.PaymentID)
	events.AssertExpectations(t)
	receipts.AssertExpectations(t)
}

func TestValidate(t *testing.T) {
	s, _ := newTestService(t)

	tests := []struct {
		name     string
		req      ValidateRequest
		valid    bool
		errors   []string
		warnings []string
	}{
		{
			name:  "exact due",
			req:   ValidateRequest{BorrowerID: "7", Amount: ptr(1000), DueAmount: ptr(1000)},
			valid: true,
		},
		{
			name:     "over ten percent",
			req:      ValidateRequest{BorrowerID: "7", Amount: ptr(1200), DueAmount: ptr(1000)},
			valid:    true,
			warnings: []string{"Payment amount exceeds due amount by more than 10%"},
		},
		{
			name:  "ten percent is allowed",
			req:   ValidateRequest{BorrowerID: "7", Amount: ptr(1100), DueAmount: ptr(1000)},
			valid: true,
		},
		{
			name:   "negative amount",
			req:    ValidateRequest{BorrowerID: "7", Amount: ptr(-5), DueAmount: ptr(1000)},
			errors: []string{"Payment amount must be greater than zero"},
		},
		{
			name:   "blank borrower",
			req:    ValidateRequest{BorrowerID: "  ", Amount: ptr(10), DueAmount: ptr(10)},
			errors: []string{"Borrower ID is required"},
		},
		{
			name:     "future date",
			req:      ValidateRequest{BorrowerID: "7", Amount: ptr(10), DueAmount: ptr(10), PaymentDate: "2024-06-02"},
			valid:    true,
			warnings: []string{"Payment date is in the future"},
		},
		{
			name:  "today is not future",
			req:   ValidateRequest{BorrowerID: "7", Amount: ptr(10), DueAmount: ptr(10), PaymentDate: "2024-06-01"},
			valid: true,
		},
		{
			name:   "bad date",
			req:    ValidateRequest{BorrowerID: "7", Amount: ptr(10), DueAmount: ptr(10), PaymentDate: "yesterday"},
			errors: []string{"Payment date must be a valid date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Validate(tt.req)
			assert.Equal(t, tt.valid, res.IsValid)
			if tt.errors == nil {
				tt.errors = []string{}
			}
			if tt.warnings == nil {
				tt.warnings = []string{}
			}
			assert.Equal(t, tt.errors, res.Errors)
			assert.Equal(t, tt.warnings, res.Warnings)
		})
	}
}

func TestRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("full refund reports major units", func(t *testing.T) {
		s, gw := newTestService(t)
		gw.EXPECT().GetIntent(ctx, "pi_1").Return(&stripe.PaymentIntent{ID: "pi_1", Amount: 5000, Currency: "usd"}, nil)
		gw.EXPECT().Refund(ctx, stripeclient.RefundParams{PaymentIntentID: "pi_1"}).
			Return(&stripe.Refund{ID: "re_1", Amount: 5000, Status: stripe.RefundStatusSucceeded}, nil)

		res, err := s.Refund(ctx, RefundRequest{PaymentID: "pi_1"})
		require.NoError(t, err)
		assert.Equal(t, &RefundResult{RefundID: "re_1", Amount: 50, Status: "succeeded", ProcessedAt: fixedNow}, res)
	})

	t.Run("partial refund", func(t *testing.T) {
		s, gw := newTestService(t)
		gw.EXPECT().GetIntent(ctx, "pi_1").Return(&stripe.PaymentIntent{ID: "pi_1", Amount: 5000}, nil)
		gw.EXPECT().Refund(ctx, stripeclient.RefundParams{PaymentIntentID: "pi_1", AmountMinor: 1250, Reason: "duplicate"}).
			Return(&stripe.Refund{ID: "re_2", Status: stripe.RefundStatusPending}, nil)

		res, err := s.Refund(ctx, RefundRequest{PaymentID: "pi_1", Amount: ptr(12.5), Reason: "duplicate"})
		require.NoError(t, err)
		assert.Equal(t, 12.5, res.Amount)
		assert.Equal(t, "pending", res.Status)
	})

	t.Run("missing payment", func(t *testing.T) {
		s, gw := newTestService(t)
		gw.EXPECT().GetIntent(ctx, "pi_nope").Return(nil, stripeclient.ErrPaymentNotFound)

		_, err := s.Refund(ctx, RefundRequest{PaymentID: "pi_nope"})
		assert.ErrorIs(t, err, stripeclient.ErrPaymentNotFound)
	})

	t.Run("provider failure is prefixed", func(t *testing.T) {
		s, gw := newTestService(t)
		gw.EXPECT().GetIntent(ctx, "pi_1").Return(&stripe.PaymentIntent{ID: "pi_1", Amount: 5000}, nil)
		gw.EXPECT().Refund(ctx, gomock.Any()).Return(nil, &stripeclient.Error{Message: "Charge already refunded"})

		_, err := s.Refund(ctx, RefundRequest{PaymentID: "pi_1"})
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "Refund processing failed: "))
	})
}

func TestCreateIntent(t *testing.T) {
	ctx := context.Background()
	s, gw := newTestService(t)
	gw.EXPECT().CreateIntent(ctx, stripeclient.IntentParams{
		AmountMinor: 10000,
		Currency:    "eur",
		Metadata:    map[string]string{"borrowerId": "9"},
	}).Return(&stripe.PaymentIntent{ID: "pi_9", ClientSecret: "pi_9_secret"}, nil)

	res, err := s.CreateIntent(ctx, IntentRequest{Amount: 100, Currency: "EUR", BorrowerID: "9"})
	require.NoError(t, err)
	assert.Equal(t, &IntentResult{ClientSecret: "pi_9_secret", PaymentIntentID: "pi_9", Amount: 100}, res)
}

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		s, gw := newTestService(t)
		gw.EXPECT().GetIntent(ctx, "pi_1").Return(&stripe.PaymentIntent{
			ID: "pi_1", Amount: 5000, Currency: "usd", Status: stripe.PaymentIntentStatusSucceeded, Created: 1717200000,
		}, nil)

		p, err := s.Get(ctx, "pi_1")
		require.NoError(t, err)
		assert.Equal(t, 50.0, p.Amount)
		assert.Equal(t, time.Unix(1717200000, 0).UTC(), p.Created)
		assert.NotNil(t, p.Metadata)
	})

	t.Run("not found", func(t *testing.T) {
		s, gw := newTestService(t)
		gw.EXPECT().GetIntent(ctx, "pi_x").Return(nil,
			fmt.Errorf("%w: %s", stripeclient.ErrPaymentNotFound, "No such payment_intent: 'pi_x'"))

		_, err := s.Get(ctx, "pi_x")
		assert.ErrorIs(t, err, stripeclient.ErrPaymentNotFound)
		assert.EqualError(t, err, "Payment not found")
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("maps intents", func(t *testing.T) {
		s, gw := newTestService(t)
		gw.EXPECT().SearchByBorrower(ctx, "7").Return([]*stripe.PaymentIntent{
			{ID: "pi_1", Amount: 100, Metadata: map[string]string{"borrowerId": "7"}},
			{ID: "pi_2", Amount: 250},
		}, nil)

		payments, err := s.History(ctx, "7")
		require.NoError(t, err)
		require.Len(t, payments, 2)
		assert.Equal(t, 2.5, payments[1].Amount)
	})

	t.Run("unconfigured gives empty list", func(t *testing.T) {
		s, gw := newTestService(t)
		gw.EXPECT().SearchByBorrower(ctx, "7").Return(nil, stripeclient.ErrNotConfigured)

		payments, err := s.History(ctx, "7")
		require.NoError(t, err)
		assert.NotNil(t, payments)
		assert.Empty(t, payments)
	})
}

func TestOfflinePaymentID(t *testing.T) {
	a := offlinePaymentID(fixedNow)
	b := offlinePaymentID(fixedNow)
	assert.Regexp(t, `^offline_1717234200000_[0-9a-z]{9}$`, a)
	assert.NotEqual(t, a, b)
}
