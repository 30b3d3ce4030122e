package pakasir

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(baseURL string) Client {
	return NewClient(zap.NewNop(), Config{
		BaseURL: baseURL,
		Project: "panelstore",
		APIKey:  "secret",
	})
}

func TestCreatePayment(t *testing.T) {
	var got createRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/transactioncreate/qris", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{
			"payment": map[string]any{
				"payment_number": "00020101021226",
				"fee":            247,
				"total_payment":  15247,
			},
		})
	}))
	defer srv.Close()

	payment, err := newTestClient(srv.URL).CreatePayment(context.Background(), 15000, "PANEL-1-AAAA")
	require.NoError(t, err)
	assert.Equal(t, "00020101021226", payment.PaymentNumber)
	assert.Equal(t, int64(247), payment.Fee)
	assert.Equal(t, int64(15247), payment.Total)

	assert.Equal(t, "panelstore", got.Project)
	assert.Equal(t, "PANEL-1-AAAA", got.OrderID)
	assert.Equal(t, int64(15000), got.Amount)
	assert.Equal(t, "secret", got.APIKey)
}

func TestCreatePaymentNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreatePayment(context.Background(), 15000, "PANEL-1-AAAA")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestCreatePaymentMissingPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreatePayment(context.Background(), 15000, "PANEL-1-AAAA")
	assert.ErrorIs(t, err, ErrGatewayRejected)
}

func TestQueryStatus(t *testing.T) {
	cases := []struct {
		name string
		body string
		want Status
	}{
		{"completed", `{"transaction":{"status":"completed"}}`, StatusCompleted},
		{"unpaid", `{"transaction":{"status":"pending"}}`, StatusUnpaid},
		{"no transaction", `{}`, StatusUnknown},
		{"garbage", `not json`, StatusUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/api/transactiondetail", r.URL.Path)
				require.Equal(t, "PANEL-1-AAAA", r.URL.Query().Get("order_id"))
				require.Equal(t, "15000", r.URL.Query().Get("amount"))
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			status, err := newTestClient(srv.URL).QueryStatus(context.Background(), "PANEL-1-AAAA", 15000)
			require.NoError(t, err)
			assert.Equal(t, tc.want, status)
		})
	}
}

func TestQueryStatusGatewayDownIsUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	client := newTestClient(srv.URL)

	status, err := client.QueryStatus(context.Background(), "PANEL-1-AAAA", 15000)
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, status)

	// connection refused after shutdown, still unknown rather than an error
	srv.Close()
	status, err = client.QueryStatus(context.Background(), "PANEL-1-AAAA", 15000)
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, status)
}
