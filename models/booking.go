package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session statuses.
const (
	SessionPending     = "Pending"
	SessionConfirmed   = "Confirmed"
	SessionCancelled   = "Cancelled"
	SessionCompleted   = "Completed"
	SessionRescheduled = "Rescheduled"
	SessionNoShow      = "No-Show"
)

// Aggregate statuses of a booking.
const (
	BookingPending   = "Pending"
	BookingOngoing   = "Ongoing"
	BookingCompleted = "Completed"
	BookingCancelled = "Cancelled"
)

var sessionStatuses = map[string]bool{
	SessionPending:     true,
	SessionConfirmed:   true,
	SessionCancelled:   true,
	SessionCompleted:   true,
	SessionRescheduled: true,
	SessionNoShow:      true,
}

// IsSessionStatus reports whether s is a known session status.
func IsSessionStatus(s string) bool {
	return sessionStatuses[s]
}

// IsTerminalStatus reports whether no further lifecycle transitions apply.
func IsTerminalStatus(s string) bool {
	return s == SessionCompleted || s == SessionCancelled
}

type RescheduleEntry struct {
	PreviousDate string    `bson:"previousDate" json:"previousDate"`
	PreviousTime string    `bson:"previousTime" json:"previousTime"`
	Reason       string    `bson:"reason,omitempty" json:"reason,omitempty"`
	Timestamp    time.Time `bson:"timestamp" json:"timestamp"`
}

// Session is one visit inside a booking. SessionID never changes; SessionNumber
// is renumbered when sessions are deleted.
type Session struct {
	SessionID          string            `bson:"sessionId" json:"sessionId"`
	SessionNumber      int               `bson:"sessionNumber" json:"sessionNumber"`
	Date               string            `bson:"date" json:"date"`
	Time               string            `bson:"time" json:"time"`
	Status             string            `bson:"status" json:"status"`
	RescheduleHistory  []RescheduleEntry `bson:"rescheduleHistory" json:"rescheduleHistory"`
	CancellationReason string            `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	StatusReason       string            `bson:"statusReason,omitempty" json:"statusReason,omitempty"`
	CompletedAt        *time.Time        `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

type Prescription struct {
	SessionID        string    `bson:"sessionId" json:"sessionId"`
	SessionNumber    int       `bson:"sessionNumber" json:"sessionNumber"`
	PrescriptionType string    `bson:"prescriptionType" json:"prescriptionType"`
	FileURL          string    `bson:"fileUrl" json:"fileUrl"`
	PublicID         string    `bson:"publicId" json:"publicId"`
	ResourceType     string    `bson:"resourceType,omitempty" json:"resourceType,omitempty"`
	UploadedAt       time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// StoredFile identifies an uploaded object in cloud storage.
type StoredFile struct {
	PublicID     string
	URL          string
	ResourceType string
}

// Booking is a purchased multi-session treatment plan.
type Booking struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	BookingNumber        string             `bson:"bookingNumber" json:"bookingNumber"`
	Service              primitive.ObjectID `bson:"service" json:"service"`
	Clinic               primitive.ObjectID `bson:"clinic" json:"clinic"`
	Doctor               primitive.ObjectID `bson:"doctor,omitempty" json:"doctor,omitempty"`
	User                 primitive.ObjectID `bson:"user" json:"user"`
	Payment              primitive.ObjectID `bson:"payment" json:"payment"`
	NoOfSessionBook      int                `bson:"no_of_session_book" json:"no_of_session_book"`
	SessionDates         []Session          `bson:"SessionDates" json:"SessionDates"`
	SessionStatus        string             `bson:"session_status" json:"session_status"`
	TotalAmount          float64            `bson:"totalAmount" json:"totalAmount"`
	AmountPerSession     float64            `bson:"amountPerSession" json:"amountPerSession"`
	SessionPrescriptions []Prescription     `bson:"session_prescriptions" json:"session_prescriptions"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FindSession returns the session with the given display number, or nil.
func (b *Booking) FindSession(sessionNumber int) *Session {
	for i := range b.SessionDates {
		if b.SessionDates[i].SessionNumber == sessionNumber {
			return &b.SessionDates[i]
		}
	}
	return nil
}
