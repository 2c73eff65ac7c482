package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotificationSessionReminder = "session_reminder"
	NotificationSessionStatus   = "session_status"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Type      string             `bson:"type" json:"type"`
	Title     string             `bson:"title" json:"title"`
	Body      string             `bson:"body" json:"body"`
	Data      map[string]string  `bson:"data,omitempty" json:"data,omitempty"`
	Sent      bool               `bson:"sent" json:"sent"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// SessionReminderPayload is queued to fire shortly before a session starts.
type SessionReminderPayload struct {
	BookingID     string `json:"bookingId"`
	BookingNumber string `json:"bookingNumber"`
	SessionID     string `json:"sessionId"`
	UserID        string `json:"userId"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

// SessionStatusPayload is queued whenever an admin changes a session.
type SessionStatusPayload struct {
	BookingID     string `json:"bookingId"`
	BookingNumber string `json:"bookingNumber"`
	SessionID     string `json:"sessionId"`
	SessionNumber int    `json:"sessionNumber"`
	UserID        string `json:"userId"`
	Status        string `json:"status"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Reason        string `json:"reason,omitempty"`
}
