package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/internal/orders/domain"
	"go-storefront/internal/orders/ports"
	apperrors "go-storefront/pkg/errors"
	"go-storefront/pkg/logger"
)

func newTestKhalti(t *testing.T, handler http.HandlerFunc) *KhaltiGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewKhaltiGateway(KhaltiConfig{
		BaseURL:      srv.URL + "/api/v2/",
		SecretKey:    "secret",
		ReturnURL:    "https://shop.example.com/payment/callback",
		WebsiteURL:   "https://shop.example.com",
		RetryBackoff: time.Millisecond,
	}, logger.NewNop())
}

func TestKhaltiGateway_Initiate(t *testing.T) {
	var got khaltiInitiateRequest
	gw := newTestKhalti(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/epayment/initiate/", r.URL.Path)
		assert.Equal(t, "Key secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pidx":"abc","payment_url":"https://pay.khalti.com/?pidx=abc","expires_at":"2026-10-14T12:30:00.000000+05:45","expires_in":1800}`))
	})

	res, err := gw.Initiate(context.Background(), ports.InitiateRequest{
		OrderID:       "order-1",
		OrderName:     "Order order-1",
		AmountMinor:   107000,
		CustomerPhone: "9800000000",
	})
	require.NoError(t, err)

	assert.Equal(t, "abc", res.ExternalRef)
	assert.Equal(t, "https://pay.khalti.com/?pidx=abc", res.RedirectURL)
	assert.False(t, res.ExpiresAt.IsZero())

	assert.Equal(t, int64(107000), got.Amount)
	assert.Equal(t, "order-1", got.PurchaseOrderID)
	assert.Equal(t, "https://shop.example.com/payment/callback", got.ReturnURL)
	require.NotNil(t, got.CustomerInfo)
	assert.Equal(t, "9800000000", got.CustomerInfo.Phone)
}

func TestKhaltiGateway_InitiateIsNotRetried(t *testing.T) {
	var calls int32
	gw := newTestKhalti(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := gw.Initiate(context.Background(), ports.InitiateRequest{OrderID: "o", AmountMinor: 1000})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeGatewayUnavailable))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestKhaltiGateway_InitiateRejected(t *testing.T) {
	gw := newTestKhalti(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Invalid token.","status_code":401}`))
	})

	_, err := gw.Initiate(context.Background(), ports.InitiateRequest{OrderID: "o", AmountMinor: 1000})
	assert.True(t, apperrors.Is(err, apperrors.CodeGatewayUnavailable))
}

func TestKhaltiGateway_Verify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   domain.TransactionState
		txnID  string
	}{
		{
			name:   "completed",
			status: http.StatusOK,
			body:   `{"pidx":"abc","total_amount":107000,"status":"Completed","transaction_id":"T1","fee":0,"refunded":false}`,
			want:   domain.TransactionCompleted,
			txnID:  "T1",
		},
		{
			name:   "pending",
			status: http.StatusOK,
			body:   `{"pidx":"abc","total_amount":107000,"status":"Pending","transaction_id":null}`,
			want:   domain.TransactionPending,
		},
		{
			name:   "user canceled",
			status: http.StatusOK,
			body:   `{"pidx":"abc","total_amount":107000,"status":"User canceled","transaction_id":null}`,
			want:   domain.TransactionCancelled,
		},
		{
			name:   "expired as bad request",
			status: http.StatusBadRequest,
			body:   `{"pidx":"abc","total_amount":107000,"status":"Expired","transaction_id":null}`,
			want:   domain.TransactionExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newTestKhalti(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v2/epayment/lookup/", r.URL.Path)
				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "abc", body["pidx"])

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			txn, err := gw.Verify(context.Background(), "abc")
			require.NoError(t, err)
			assert.Equal(t, tt.want, txn.State)
			assert.Equal(t, int64(107000), txn.AmountMinor)
			assert.Equal(t, tt.txnID, txn.TransactionID)
		})
	}
}

func TestKhaltiGateway_VerifyRetriesServerErrors(t *testing.T) {
	var calls int32
	gw := newTestKhalti(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"pidx":"abc","total_amount":500,"status":"Completed","transaction_id":"T9"}`))
	})

	txn, err := gw.Verify(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionCompleted, txn.State)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestKhaltiGateway_VerifyGivesUp(t *testing.T) {
	var calls int32
	gw := newTestKhalti(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := gw.Verify(context.Background(), "abc")
	assert.True(t, apperrors.Is(err, apperrors.CodeGatewayUnavailable))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestKhaltiGateway_VerifyUnknownPidx(t *testing.T) {
	gw := newTestKhalti(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not found.","error_key":"validation_error"}`))
	})

	_, err := gw.Verify(context.Background(), "nope")
	assert.True(t, apperrors.Is(err, apperrors.CodeGatewayUnavailable))
}
