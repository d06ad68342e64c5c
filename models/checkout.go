package models

import "time"

type PaymentMethod string

const (
	PaymentMethodCOD     PaymentMethod = "cod"
	PaymentMethodEWallet PaymentMethod = "ewallet"
	PaymentMethodCard    PaymentMethod = "card"
)

// ShippingAddress is captured once per checkout attempt and immutable after
// submission. Notes is the only optional field.
type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Line       string `json:"line"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Notes      string `json:"notes,omitempty"`
}

type CheckoutState string

const (
	StateAddressCaptured  CheckoutState = "ADDRESS_CAPTURED"
	StatePaymentInFlight  CheckoutState = "PAYMENT_IN_FLIGHT"
	StateAwaitingRedirect CheckoutState = "AWAITING_REDIRECT"
	StateSettled          CheckoutState = "SETTLED"
	StateOrderCreated     CheckoutState = "ORDER_CREATED"
	StateAborted          CheckoutState = "ABORTED"
)

func (s CheckoutState) IsTerminal() bool {
	return s == StateOrderCreated || s == StateAborted
}

func (s CheckoutState) String() string {
	return string(s)
}

// CheckoutSession is the sole authority for idempotent order creation.
// It lives in the session store (not the database) from address capture
// until the order is created or the attempt aborts, and must survive the
// redirect round-trip to the payment gateway.
type CheckoutSession struct {
	ID             string          `json:"id"`
	BuyerID        string          `json:"buyer_id"`
	SellerID       string          `json:"seller_id"`
	Address        ShippingAddress `json:"address"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	WalletProvider string          `json:"wallet_provider,omitempty"` // "gcash", "grab_pay", "paymaya"
	State          CheckoutState   `json:"state"`
	GatewayRef     string          `json:"gateway_ref,omitempty"` // payment intent id
	Subtotal       float64         `json:"subtotal"`
	OrderID        uint            `json:"order_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

type OutcomeStatus string

const (
	OutcomeSettled  OutcomeStatus = "settled"
	OutcomePending  OutcomeStatus = "pending" // buyer must complete a redirect
	OutcomeDeclined OutcomeStatus = "declined"
)

// PaymentOutcome is produced by exactly one gateway strategy call and never
// mutated afterward. Transport failures are returned as errors instead.
type PaymentOutcome struct {
	Status        OutcomeStatus `json:"status"`
	AmountCharged float64       `json:"amount_charged,omitempty"`
	GatewayRef    string        `json:"gateway_ref,omitempty"`
	RedirectURL   string        `json:"redirect_url,omitempty"`
	DeclineReason string        `json:"decline_reason,omitempty"`
}
