package paymongo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentavos(t *testing.T) {
	assert.Equal(t, int64(50000), Centavos(500))
	assert.Equal(t, int64(12345), Centavos(123.45))
	assert.Equal(t, int64(10), Centavos(0.1))
	assert.Equal(t, int64(0), Centavos(0))
}

func TestCreateIntent(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment_intents", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":{"id":"pi_123","attributes":{"status":"awaiting_payment_method","amount":50000,"checkout_url":"https://checkout.test/pi_123"}}}`))
	}))
	defer srv.Close()

	c := NewClientWith("sk_test_abc", srv.URL, nil)
	intent, err := c.CreateIntent(context.Background(), 50000, "Order payment", []string{"gcash"}, RedirectURLs{
		Success: "https://shop.test/return", Failed: "https://shop.test/return", Cancelled: "https://shop.test/return",
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, int64(50000), intent.Amount)
	assert.Equal(t, "https://checkout.test/pi_123", intent.CheckoutURL)

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("sk_test_abc:"))
	assert.Equal(t, wantAuth, gotAuth)

	attrs := gotBody["data"].(map[string]any)["attributes"].(map[string]any)
	assert.Equal(t, "PHP", attrs["currency"])
	assert.Equal(t, float64(50000), attrs["amount"])
}

func TestAttachIntentDecline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment_intents/pi_123/attach", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"code":"generic_decline","detail":"The card was declined."}]}`))
	}))
	defer srv.Close()

	c := NewClientWith("sk_test_abc", srv.URL, nil)
	_, err := c.AttachIntent(context.Background(), "pi_123", "pm_456", "https://shop.test/return")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "generic_decline", apiErr.Code)
	assert.Equal(t, "The card was declined.", apiErr.Detail)
}

func TestAttachIntentThreeDSecure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"id":"pi_123","attributes":{"status":"awaiting_next_action","amount":50000,"next_action":{"redirect":{"url":"https://3ds.test/challenge"}}}}}`))
	}))
	defer srv.Close()

	c := NewClientWith("sk_test_abc", srv.URL, nil)
	intent, err := c.AttachIntent(context.Background(), "pi_123", "pm_456", "https://shop.test/return")
	require.NoError(t, err)

	assert.Equal(t, StatusAwaitingNextAction, intent.Status)
	assert.Equal(t, "https://3ds.test/challenge", intent.NextActionURL)
}

func TestRetrieveIntentDeclinedReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment_intents/pi_123", r.URL.Path)
		w.Write([]byte(`{"data":{"id":"pi_123","attributes":{"status":"awaiting_payment_method","amount":50000,"last_payment_error":{"failed_code":"insufficient_funds","failed_message":"Insufficient funds."}}}}`))
	}))
	defer srv.Close()

	c := NewClientWith("sk_test_abc", srv.URL, nil)
	intent, err := c.RetrieveIntent(context.Background(), "pi_123")
	require.NoError(t, err)

	assert.Equal(t, StatusAwaitingPaymentMethod, intent.Status)
	assert.Equal(t, "Insufficient funds.", intent.LastError)
}

func TestMissingConfiguration(t *testing.T) {
	c := NewClientWith("", "http://unused", nil)
	_, err := c.RetrieveIntent(context.Background(), "pi_123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration missing")
}

func TestCreatePaymentMethod(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment_methods", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		details := body["data"].(map[string]any)["attributes"].(map[string]any)["details"].(map[string]any)
		assert.Equal(t, "4343434343434345", details["card_number"])

		w.Write([]byte(`{"data":{"id":"pm_789","attributes":{}}}`))
	}))
	defer srv.Close()

	c := NewClientWith("sk_test_abc", srv.URL, nil)
	id, err := c.CreatePaymentMethod(context.Background(), Card{
		Number: "4343434343434345", ExpMonth: 12, ExpYear: 28, CVC: "123", Name: "Juan dela Cruz",
	})
	require.NoError(t, err)
	assert.Equal(t, "pm_789", id)
}
