package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"clinicbook/models"
	"clinicbook/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// PaymentGateway verifies payments collected by the client before a booking is written.
type PaymentGateway interface {
	VerifyPayment(ctx context.Context, paymentIntentID string) (*models.PaymentVerification, error)
}

// StripeGateway reads PaymentIntents with the globally configured stripe.Key.
type StripeGateway struct {
	logger *zap.Logger
}

func NewStripeGateway(logger *zap.Logger) *StripeGateway {
	return &StripeGateway{logger: logger}
}

func (g *StripeGateway) VerifyPayment(ctx context.Context, paymentIntentID string) (*models.PaymentVerification, error) {
	if !strings.HasPrefix(paymentIntentID, "pi_") {
		return nil, utils.NewValidationError("invalid payment intent id")
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(paymentIntentID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return nil, utils.NewValidationError("payment intent not found")
		}
		g.logger.Error("Stripe lookup failed", zap.String("paymentIntent", paymentIntentID), zap.Error(err))
		return nil, utils.NewServerError("Failed to verify payment", fmt.Errorf("stripe: %w", err))
	}

	method := "card"
	if len(pi.PaymentMethodTypes) > 0 {
		method = pi.PaymentMethodTypes[0]
	}
	return &models.PaymentVerification{
		GatewayPaymentID: pi.ID,
		Amount:           float64(pi.Amount) / 100,
		Currency:         strings.ToUpper(string(pi.Currency)),
		Method:           method,
		Status:           string(pi.Status),
	}, nil
}
