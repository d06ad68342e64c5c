// Package checkoutControllers drives a cart plus shipping address through
// payment and into order creation. The flow is a small state machine:
//
//	ADDRESS_CAPTURED → PAYMENT_IN_FLIGHT → SETTLED → ORDER_CREATED
//	                                     ↘ AWAITING_REDIRECT → (resume) → SETTLED | ABORTED
//	                                     ↘ ABORTED (declined / failed)
//
// Redirect-based methods suspend across a full page navigation, so the
// session is externalized to the store before control leaves the app.
package checkoutControllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nxough-jxhn/daingGraderWeb-sub002/cards"
	cartControllers "github.com/nxough-jxhn/daingGraderWeb-sub002/controllers/cart"
	"github.com/nxough-jxhn/daingGraderWeb-sub002/models"
	"github.com/nxough-jxhn/daingGraderWeb-sub002/paymongo"
)

// ErrCheckoutInProgress rejects a second concurrent attempt for the same
// (buyer, seller) pair while one is in flight or awaiting a redirect.
var ErrCheckoutInProgress = errors.New("a checkout for this seller is already in progress")

// FieldErrors maps input field names to validation messages. These never
// reach the gateway.
type FieldErrors map[string]string

func (e FieldErrors) Error() string { return "validation failed" }

type CartReader interface {
	ReadSellerCart(buyerID, sellerID string) (*models.CartSnapshot, error)
}

type OrderCreator interface {
	Materialize(sess *models.CheckoutSession, cart *models.CartSnapshot, outcome *models.PaymentOutcome) (*models.Order, error)
}

type Notifier interface {
	Notify(order *models.Order) *models.NotificationRecord
}

type StartRequest struct {
	SellerID       string                 `json:"seller_id" binding:"required"`
	Address        models.ShippingAddress `json:"address"`
	PaymentMethod  string                 `json:"payment_method" binding:"required"`
	WalletProvider string                 `json:"wallet_provider"`
	Card           *CardInput             `json:"card"`
}

type CardInput struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"` // MM/YY
	CVC    string `json:"cvc"`
	Name   string `json:"name"`
}

// Result is what the receipt view consumes: either a created order with its
// notification record, or a redirect the buyer must follow.
type Result struct {
	Order        *models.Order              `json:"order,omitempty"`
	Notification *models.NotificationRecord `json:"notification,omitempty"`
	SessionID    string                     `json:"session_id,omitempty"`
	RedirectURL  string                     `json:"redirect_url,omitempty"`
}

type Orchestrator struct {
	Store    SessionStore
	Carts    CartReader
	Orders   OrderCreator
	Notifier Notifier
	Gateway  GatewayClient

	// ReturnURL is where the gateway sends the buyer back; the session id is
	// appended as a query parameter.
	ReturnURL string

	// Now is the reference clock for expiry validation. Defaults to time.Now.
	Now func() time.Time
}

func NewOrchestrator(store SessionStore, carts CartReader, orders OrderCreator, notifier Notifier, gw GatewayClient, returnURL string) *Orchestrator {
	return &Orchestrator{
		Store:     store,
		Carts:     carts,
		Orders:    orders,
		Notifier:  notifier,
		Gateway:   gw,
		ReturnURL: returnURL,
		Now:       time.Now,
	}
}

// Start runs a checkout attempt from address capture up to either a created
// order (COD, immediately-settled card) or a pending redirect.
func (o *Orchestrator) Start(ctx context.Context, buyerID string, req StartRequest) (*Result, error) {
	if errs := o.validate(req); len(errs) > 0 {
		return nil, errs
	}

	cart, err := o.Carts.ReadSellerCart(buyerID, req.SellerID)
	if err != nil {
		return nil, err
	}

	sess := &models.CheckoutSession{
		ID:             uuid.NewString(),
		BuyerID:        buyerID,
		SellerID:       req.SellerID,
		Address:        req.Address,
		PaymentMethod:  models.PaymentMethod(req.PaymentMethod),
		WalletProvider: req.WalletProvider,
		State:          models.StateAddressCaptured,
		Subtotal:       cart.Subtotal,
		CreatedAt:      o.Now(),
	}

	ok, err := o.Store.AcquireLock(ctx, buyerID, req.SellerID, sess.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCheckoutInProgress
	}

	sess.State = models.StatePaymentInFlight
	if err := o.Store.Save(ctx, sess); err != nil {
		o.Store.ReleaseLock(ctx, buyerID, req.SellerID)
		return nil, err
	}

	outcome, err := o.strategyFor(sess, req).Initiate(ctx, sess, cart)
	if err != nil {
		// Transport failure or local phone validation; no order, cart intact.
		// A retry must start a new session.
		o.abort(ctx, sess)
		return nil, err
	}

	switch outcome.Status {
	case models.OutcomeSettled:
		sess.State = models.StateSettled
		return o.settle(ctx, sess, cart, outcome)

	case models.OutcomePending:
		// Persist before handing control to the gateway page: the resume
		// handler may run in a fresh process. The lock stays held.
		sess.State = models.StateAwaitingRedirect
		sess.GatewayRef = outcome.GatewayRef
		if err := o.Store.Save(ctx, sess); err != nil {
			o.abort(ctx, sess)
			return nil, err
		}
		return &Result{SessionID: sess.ID, RedirectURL: outcome.RedirectURL}, nil

	case models.OutcomeDeclined:
		o.abort(ctx, sess)
		return nil, &DeclinedError{Reason: outcome.DeclineReason}

	default:
		o.abort(ctx, sess)
		return nil, fmt.Errorf("unexpected payment outcome %q", outcome.Status)
	}
}

// Resume finishes a redirect-based checkout after the buyer returns from the
// gateway. It assumes a fresh process: everything it needs comes from the
// session store and a status lookup by correlation reference.
func (o *Orchestrator) Resume(ctx context.Context, sessionID string) (*Result, error) {
	sess, err := o.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.State != models.StateAwaitingRedirect {
		return nil, ErrSessionNotFound
	}

	intent, err := o.Gateway.RetrieveIntent(ctx, sess.GatewayRef)
	if err != nil {
		var apiErr *paymongo.APIError
		if errors.As(err, &apiErr) {
			// Intent gone or rejected at the gateway (e.g. expired): terminal.
			o.abort(ctx, sess)
			return nil, fmt.Errorf("payment could not be verified: %s", apiErr.Detail)
		}
		// Transport error: keep the session so the buyer can retry the resume.
		return nil, err
	}

	switch intent.Status {
	case paymongo.StatusSucceeded, paymongo.StatusProcessing:
		outcome := &models.PaymentOutcome{
			Status:        models.OutcomeSettled,
			AmountCharged: float64(intent.Amount) / 100,
			GatewayRef:    intent.ID,
		}

		cart, err := o.Carts.ReadSellerCart(sess.BuyerID, sess.SellerID)
		if errors.Is(err, cartControllers.ErrEmptySellerCart) {
			// A concurrent resume may already have materialized and cleared
			// the lines; Materialize resolves this idempotently.
			cart = &models.CartSnapshot{BuyerID: sess.BuyerID, SellerID: sess.SellerID}
		} else if err != nil {
			return nil, err
		}

		sess.State = models.StateSettled
		return o.settle(ctx, sess, cart, outcome)

	case paymongo.StatusAwaitingNextAction:
		// Buyer came back without finishing the challenge.
		return &Result{SessionID: sess.ID, RedirectURL: intent.NextActionURL}, nil

	case paymongo.StatusAwaitingPaymentMethod:
		o.abort(ctx, sess)
		reason := intent.LastError
		if reason == "" {
			reason = "payment was not completed"
		}
		return nil, &DeclinedError{Reason: reason}

	default:
		o.abort(ctx, sess)
		return nil, fmt.Errorf("payment failed with status %q", intent.Status)
	}
}

// Cancel explicitly abandons an in-progress checkout. The cart is untouched.
func (o *Orchestrator) Cancel(ctx context.Context, buyerID, sessionID string) error {
	sess, err := o.Store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.BuyerID != buyerID {
		return ErrSessionNotFound
	}
	o.abort(ctx, sess)
	return nil
}

// settle materializes the order exactly once, clears the persisted session
// so a duplicate resumption cannot re-fire, and records notifications.
func (o *Orchestrator) settle(ctx context.Context, sess *models.CheckoutSession, cart *models.CartSnapshot, outcome *models.PaymentOutcome) (*Result, error) {
	order, err := o.Orders.Materialize(sess, cart, outcome)
	if err != nil {
		o.abort(ctx, sess)
		return nil, err
	}

	sess.State = models.StateOrderCreated
	sess.OrderID = order.ID

	// Claiming the session delete decides which of two racing resumes owns
	// notification; the loser returns the deduplicated order quietly.
	claimed, err := o.Store.Delete(ctx, sess.ID)
	if err != nil {
		log.Printf("checkout: failed to clear session %s: %v", sess.ID, err)
		claimed = true
	}
	if !claimed {
		return &Result{Order: order}, nil
	}

	if err := o.Store.ReleaseLock(ctx, sess.BuyerID, sess.SellerID); err != nil {
		log.Printf("checkout: failed to release lock for %s/%s: %v", sess.BuyerID, sess.SellerID, err)
	}

	// Best effort: a notification failure never reverses order creation.
	record := o.Notifier.Notify(order)

	return &Result{Order: order, Notification: record}, nil
}

func (o *Orchestrator) abort(ctx context.Context, sess *models.CheckoutSession) {
	sess.State = models.StateAborted
	if _, err := o.Store.Delete(ctx, sess.ID); err != nil {
		log.Printf("checkout: failed to clear session %s: %v", sess.ID, err)
	}
	if err := o.Store.ReleaseLock(ctx, sess.BuyerID, sess.SellerID); err != nil {
		log.Printf("checkout: failed to release lock for %s/%s: %v", sess.BuyerID, sess.SellerID, err)
	}
}

func (o *Orchestrator) strategyFor(sess *models.CheckoutSession, req StartRequest) PaymentStrategy {
	switch sess.PaymentMethod {
	case models.PaymentMethodEWallet:
		return ewalletStrategy{gw: o.Gateway, returnURL: o.ReturnURL}
	case models.PaymentMethodCard:
		card := paymongo.Card{Phone: sess.Address.Phone, Name: sess.Address.FullName}
		if req.Card != nil {
			card.Number = strings.ReplaceAll(req.Card.Number, " ", "")
			card.CVC = req.Card.CVC
			if req.Card.Name != "" {
				card.Name = req.Card.Name
			}
			card.ExpMonth, card.ExpYear, _ = parseExpiry(req.Card.Expiry)
		}
		return cardStrategy{gw: o.Gateway, returnURL: o.ReturnURL, card: card}
	default:
		return codStrategy{}
	}
}

// validate enforces the address and card-field checks that keep the machine
// in ADDRESS_CAPTURED until they pass.
func (o *Orchestrator) validate(req StartRequest) FieldErrors {
	errs := FieldErrors{}

	switch models.PaymentMethod(req.PaymentMethod) {
	case models.PaymentMethodCOD, models.PaymentMethodEWallet, models.PaymentMethodCard:
	default:
		errs["payment_method"] = "must be one of cod, ewallet, card"
	}

	// Notes is the only optional address field.
	addr := req.Address
	addressFields := map[string]string{
		"address.full_name":   addr.FullName,
		"address.phone":       addr.Phone,
		"address.line":        addr.Line,
		"address.city":        addr.City,
		"address.province":    addr.Province,
		"address.postal_code": addr.PostalCode,
	}
	for field, value := range addressFields {
		if strings.TrimSpace(value) == "" {
			errs[field] = "is required"
		}
	}

	if models.PaymentMethod(req.PaymentMethod) == models.PaymentMethodCard {
		if req.Card == nil {
			errs["card"] = "card details are required"
			return errs
		}
		if !cards.LuhnValid(req.Card.Number) {
			errs["card.number"] = "invalid card number"
		} else if cards.Detect(req.Card.Number) == cards.NetworkUnknown {
			errs["card.number"] = "unsupported card network"
		}
		month, year, ok := parseExpiry(req.Card.Expiry)
		if !ok || !cards.ExpiryValid(month, year, o.Now()) {
			errs["card.expiry"] = "invalid or past expiry"
		}
		if !cards.CVCValid(req.Card.CVC) {
			errs["card.cvc"] = "invalid security code"
		}
	}

	return errs
}

func parseExpiry(expiry string) (month, year int, ok bool) {
	parts := strings.Split(expiry, "/")
	if len(parts) != 2 {
		return 0, 0, false
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	year, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return month, year, true
}
