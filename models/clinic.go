package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingWindow is the inclusive date range (YYYY-MM-DD) in which a clinic accepts bookings.
type BookingWindow struct {
	StartDate string `bson:"start_date" json:"start_date"`
	EndDate   string `bson:"end_date" json:"end_date"`
}

// ArchivedBookingWindow is a previous booking window kept for audit.
type ArchivedBookingWindow struct {
	StartDate  string    `bson:"start_date" json:"start_date"`
	EndDate    string    `bson:"end_date" json:"end_date"`
	ArchivedAt time.Time `bson:"archived_at" json:"archived_at"`
}

// ClinicTimings holds default daily hours in HH:MM and the weekly off day name.
type ClinicTimings struct {
	OpenTime  string `bson:"open_time" json:"open_time"`
	CloseTime string `bson:"close_time" json:"close_time"`
	OffDay    string `bson:"off_day,omitempty" json:"off_day,omitempty"`
}

type Clinic struct {
	ID                   primitive.ObjectID      `bson:"_id,omitempty" json:"_id"`
	Name                 string                  `bson:"name" json:"name"`
	Address              string                  `bson:"address,omitempty" json:"address,omitempty"`
	Phone                string                  `bson:"phone,omitempty" json:"phone,omitempty"`
	BookingWindow        *BookingWindow          `bson:"booking_window,omitempty" json:"booking_window,omitempty"`
	BookingWindowHistory []ArchivedBookingWindow `bson:"booking_window_history" json:"booking_window_history"`
	Timings              ClinicTimings           `bson:"timings" json:"timings"`
	CreatedAt            time.Time               `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time               `bson:"updatedAt" json:"updatedAt"`
}
