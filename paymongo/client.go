// Package paymongo is a thin client for the PayMongo v1 API. It covers the
// four calls checkout needs: tokenizing card details into a payment method,
// creating a payment intent, attaching the method to the intent, and looking
// an intent back up after a redirect return.
package paymongo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"
)

const defaultAPIURL = "https://api.paymongo.com/v1"

// Intent statuses PayMongo reports on attach/retrieve.
const (
	StatusSucceeded             = "succeeded"
	StatusProcessing            = "processing"
	StatusAwaitingNextAction    = "awaiting_next_action"
	StatusAwaitingPaymentMethod = "awaiting_payment_method"
)

type Client struct {
	secretKey string
	apiURL    string
	http      *http.Client
}

// NewClient reads configuration from the environment. A missing secret key
// is reported at call time, not here, so COD-only deployments still boot.
func NewClient() *Client {
	apiURL := os.Getenv("PAYMONGO_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		secretKey: os.Getenv("PAYMONGO_SECRET_KEY"),
		apiURL:    apiURL,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWith is used by tests to point the client at a fake server.
func NewClientWith(secretKey, apiURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{secretKey: secretKey, apiURL: apiURL, http: hc}
}

// Card carries raw card fields into tokenization. They are never persisted;
// only the opaque payment method id leaves this package.
type Card struct {
	Number   string
	ExpMonth int
	ExpYear  int
	CVC      string
	Name     string
	Email    string
	Phone    string
}

// Intent is the subset of a PayMongo payment intent checkout cares about.
type Intent struct {
	ID            string
	Status        string
	Amount        int64 // centavos
	CheckoutURL   string // e-wallet redirect
	NextActionURL string // 3-D Secure redirect
	LastError     string
}

// RedirectURLs are where the gateway sends the buyer after a hosted page.
type RedirectURLs struct {
	Success   string `json:"success"`
	Failed    string `json:"failed"`
	Cancelled string `json:"cancelled"`
}

// APIError is a structured (non-transport) rejection from PayMongo, e.g. a
// card decline on attach.
type APIError struct {
	StatusCode int
	Code       string
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paymongo error (%d): %s", e.StatusCode, e.Detail)
}

// Centavos converts a peso amount to the integer centavos PayMongo expects.
func Centavos(pesos float64) int64 {
	return int64(math.Round(pesos * 100))
}

func (c *Client) authHeader() string {
	credentials := base64.StdEncoding.EncodeToString([]byte(c.secretKey + ":"))
	return "Basic " + credentials
}

type envelope struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Status      string `json:"status"`
			Amount      int64  `json:"amount"`
			CheckoutURL string `json:"checkout_url"`
			NextAction  *struct {
				Redirect struct {
					URL string `json:"url"`
				} `json:"redirect"`
			} `json:"next_action"`
			LastPaymentError json.RawMessage `json:"last_payment_error"`
		} `json:"attributes"`
	} `json:"data"`
	Errors []struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*envelope, error) {
	if c.secretKey == "" {
		return nil, fmt.Errorf("paymongo configuration missing")
	}

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.authHeader())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach paymongo: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read paymongo response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("failed to parse paymongo response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Detail: string(respBody)}
		if len(env.Errors) > 0 {
			apiErr.Code = env.Errors[0].Code
			apiErr.Detail = env.Errors[0].Detail
		}
		return nil, apiErr
	}

	return &env, nil
}

func intentFrom(env *envelope) *Intent {
	in := &Intent{
		ID:          env.Data.ID,
		Status:      env.Data.Attributes.Status,
		Amount:      env.Data.Attributes.Amount,
		CheckoutURL: env.Data.Attributes.CheckoutURL,
	}
	if env.Data.Attributes.NextAction != nil {
		in.NextActionURL = env.Data.Attributes.NextAction.Redirect.URL
	}
	if len(env.Data.Attributes.LastPaymentError) > 0 && string(env.Data.Attributes.LastPaymentError) != "null" {
		var lastErr struct {
			FailedMessage string `json:"failed_message"`
		}
		if err := json.Unmarshal(env.Data.Attributes.LastPaymentError, &lastErr); err == nil && lastErr.FailedMessage != "" {
			in.LastError = lastErr.FailedMessage
		} else {
			in.LastError = string(env.Data.Attributes.LastPaymentError)
		}
	}
	return in
}

// CreatePaymentMethod tokenizes raw card fields into an opaque payment
// method id.
func (c *Client) CreatePaymentMethod(ctx context.Context, card Card) (string, error) {
	payload := map[string]any{
		"data": map[string]any{
			"attributes": map[string]any{
				"type": "card",
				"details": map[string]any{
					"card_number": card.Number,
					"exp_month":   card.ExpMonth,
					"exp_year":    card.ExpYear,
					"cvc":         card.CVC,
				},
				"billing": map[string]any{
					"name":  card.Name,
					"email": card.Email,
					"phone": card.Phone,
				},
			},
		},
	}

	env, err := c.do(ctx, http.MethodPost, "/payment_methods", payload)
	if err != nil {
		return "", err
	}
	if env.Data.ID == "" {
		return "", fmt.Errorf("paymongo returned empty payment method id")
	}
	return env.Data.ID, nil
}

// CreateIntent creates a payment intent for the given amount in centavos.
// For e-wallet providers the response carries a hosted checkout URL.
func (c *Client) CreateIntent(ctx context.Context, amount int64, description string, methods []string, redirect RedirectURLs) (*Intent, error) {
	payload := map[string]any{
		"data": map[string]any{
			"attributes": map[string]any{
				"amount":                 amount,
				"currency":               "PHP",
				"description":            description,
				"statement_descriptor":   "DaingGrader",
				"payment_method_allowed": methods,
				"redirect":               redirect,
			},
		},
	}

	env, err := c.do(ctx, http.MethodPost, "/payment_intents", payload)
	if err != nil {
		return nil, err
	}
	if env.Data.ID == "" {
		return nil, fmt.Errorf("paymongo returned empty intent id")
	}
	return intentFrom(env), nil
}

// AttachIntent binds a tokenized payment method to an intent. The returned
// status decides whether the charge settled, needs a 3-D Secure redirect,
// or was declined.
func (c *Client) AttachIntent(ctx context.Context, intentID, methodID, returnURL string) (*Intent, error) {
	payload := map[string]any{
		"data": map[string]any{
			"attributes": map[string]any{
				"payment_method": methodID,
				"return_url":     returnURL,
			},
		},
	}

	env, err := c.do(ctx, http.MethodPost, "/payment_intents/"+intentID+"/attach", payload)
	if err != nil {
		return nil, err
	}
	return intentFrom(env), nil
}

// RetrieveIntent looks up the final status of an intent, used when the buyer
// returns from a redirect.
func (c *Client) RetrieveIntent(ctx context.Context, intentID string) (*Intent, error) {
	env, err := c.do(ctx, http.MethodGet, "/payment_intents/"+intentID, nil)
	if err != nil {
		return nil, err
	}
	return intentFrom(env), nil
}
