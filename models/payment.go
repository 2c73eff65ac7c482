package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentSucceeded = "succeeded"
	PaymentPending   = "pending"
	PaymentFailed    = "failed"
)

// Payment records the verified gateway payment behind a booking.
type Payment struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User             primitive.ObjectID `bson:"user" json:"user"`
	Amount           float64            `bson:"amount" json:"amount"`
	Currency         string             `bson:"currency" json:"currency"`
	Method           string             `bson:"method" json:"method"`
	GatewayPaymentID string             `bson:"gatewayPaymentId" json:"gatewayPaymentId"`
	Status           string             `bson:"status" json:"status"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

// PaymentVerification is what the gateway reports about a payment intent.
type PaymentVerification struct {
	GatewayPaymentID string
	Amount           float64
	Currency         string
	Method           string
	Status           string
}
