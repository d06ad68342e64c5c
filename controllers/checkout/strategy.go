package checkoutControllers

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/nxough-jxhn/daingGraderWeb-sub002/models"
	"github.com/nxough-jxhn/daingGraderWeb-sub002/paymongo"
)

// Philippine mobile numbers: 09XXXXXXXXX or +639XXXXXXXXX.
var phMobileRe = regexp.MustCompile(`^(09|\+639)\d{9}$`)

// ErrInvalidPhone is raised before any gateway call when the shipping phone
// cannot receive an e-wallet charge.
var ErrInvalidPhone = errors.New("phone must be a valid PH mobile number (09… or +639…)")

// DeclinedError carries the gateway's decline reason. The cart and address
// stay intact so the buyer can retry with different payment details.
type DeclinedError struct {
	Reason string
}

func (e *DeclinedError) Error() string {
	return "payment declined: " + e.Reason
}

// GatewayClient is the slice of the PayMongo client the strategies use.
// *paymongo.Client satisfies it; tests substitute a fake.
type GatewayClient interface {
	CreatePaymentMethod(ctx context.Context, card paymongo.Card) (string, error)
	CreateIntent(ctx context.Context, amount int64, description string, methods []string, redirect paymongo.RedirectURLs) (*paymongo.Intent, error)
	AttachIntent(ctx context.Context, intentID, methodID, returnURL string) (*paymongo.Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*paymongo.Intent, error)
}

// PaymentStrategy initiates payment for a checkout session. Called at most
// once per session; a retry after failure must use a new session.
type PaymentStrategy interface {
	Initiate(ctx context.Context, sess *models.CheckoutSession, cart *models.CartSnapshot) (*models.PaymentOutcome, error)
}

// codStrategy settles immediately with no gateway involvement; the amount
// is collected on delivery.
type codStrategy struct{}

func (codStrategy) Initiate(_ context.Context, _ *models.CheckoutSession, cart *models.CartSnapshot) (*models.PaymentOutcome, error) {
	return &models.PaymentOutcome{
		Status:        models.OutcomeSettled,
		AmountCharged: cart.Subtotal,
	}, nil
}

// ewalletStrategy creates an intent bound to the cart total and hands back
// the gateway's hosted checkout URL. The session must be persisted before
// the buyer navigates away.
type ewalletStrategy struct {
	gw        GatewayClient
	returnURL string
}

func (s ewalletStrategy) Initiate(ctx context.Context, sess *models.CheckoutSession, cart *models.CartSnapshot) (*models.PaymentOutcome, error) {
	if !phMobileRe.MatchString(sess.Address.Phone) {
		return nil, ErrInvalidPhone
	}

	provider := sess.WalletProvider
	if provider == "" {
		provider = "gcash"
	}

	returnURL := s.returnURL + "?session_id=" + sess.ID
	intent, err := s.gw.CreateIntent(ctx,
		paymongo.Centavos(cart.Subtotal),
		orderDescription(sess),
		[]string{provider},
		paymongo.RedirectURLs{Success: returnURL, Failed: returnURL, Cancelled: returnURL},
	)
	if err != nil {
		return nil, err
	}
	if intent.CheckoutURL == "" {
		return nil, fmt.Errorf("gateway returned no checkout URL")
	}

	return &models.PaymentOutcome{
		Status:      models.OutcomePending,
		GatewayRef:  intent.ID,
		RedirectURL: intent.CheckoutURL,
	}, nil
}

// cardStrategy runs tokenize → intent → attach. Card fields pass through to
// tokenization and are never stored.
type cardStrategy struct {
	gw        GatewayClient
	returnURL string
	card      paymongo.Card
}

func (s cardStrategy) Initiate(ctx context.Context, sess *models.CheckoutSession, cart *models.CartSnapshot) (*models.PaymentOutcome, error) {
	methodID, err := s.gw.CreatePaymentMethod(ctx, s.card)
	if err != nil {
		return nil, err
	}

	returnURL := s.returnURL + "?session_id=" + sess.ID
	intent, err := s.gw.CreateIntent(ctx,
		paymongo.Centavos(cart.Subtotal),
		orderDescription(sess),
		[]string{"card"},
		paymongo.RedirectURLs{Success: returnURL, Failed: returnURL, Cancelled: returnURL},
	)
	if err != nil {
		return nil, err
	}

	attached, err := s.gw.AttachIntent(ctx, intent.ID, methodID, returnURL)
	if err != nil {
		var apiErr *paymongo.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return &models.PaymentOutcome{
				Status:        models.OutcomeDeclined,
				GatewayRef:    intent.ID,
				DeclineReason: apiErr.Detail,
			}, nil
		}
		return nil, err
	}

	switch attached.Status {
	case paymongo.StatusSucceeded, paymongo.StatusProcessing:
		return &models.PaymentOutcome{
			Status:        models.OutcomeSettled,
			AmountCharged: float64(attached.Amount) / 100,
			GatewayRef:    attached.ID,
		}, nil
	case paymongo.StatusAwaitingNextAction:
		if attached.NextActionURL == "" {
			return nil, fmt.Errorf("gateway requires 3-D Secure but returned no redirect URL")
		}
		return &models.PaymentOutcome{
			Status:      models.OutcomePending,
			GatewayRef:  attached.ID,
			RedirectURL: attached.NextActionURL,
		}, nil
	case paymongo.StatusAwaitingPaymentMethod:
		reason := attached.LastError
		if reason == "" {
			reason = "payment was not accepted"
		}
		return &models.PaymentOutcome{
			Status:        models.OutcomeDeclined,
			GatewayRef:    attached.ID,
			DeclineReason: reason,
		}, nil
	default:
		return nil, fmt.Errorf("unexpected intent status %q", attached.Status)
	}
}

func orderDescription(sess *models.CheckoutSession) string {
	return "DaingGrader order for seller " + sess.SellerID
}
