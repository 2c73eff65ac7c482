package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SettingsSingletonKey identifies the one booking configuration document.
const SettingsSingletonKey = "booking"

type BookingConfig struct {
	SlotsPerHour        int `bson:"slots_per_hour" json:"slots_per_hour"`
	BookingLimitPerSlot int `bson:"booking_limit_per_slot" json:"booking_limit_per_slot"`
}

type TimeWindow struct {
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

// SpecialSlotRestriction overrides a clinic's default hours for one date.
type SpecialSlotRestriction struct {
	Date        string             `bson:"date" json:"date"`
	Clinic      primitive.ObjectID `bson:"clinic" json:"clinic"`
	TimeWindows []TimeWindow       `bson:"time_windows" json:"time_windows"`
	Active      bool               `bson:"active" json:"active"`
}

// Settings is the singleton booking configuration.
type Settings struct {
	ID                      primitive.ObjectID       `bson:"_id,omitempty" json:"_id"`
	Singleton               string                   `bson:"singleton" json:"-"`
	BookingConfig           *BookingConfig           `bson:"booking_config,omitempty" json:"booking_config,omitempty"`
	SpecialSlotRestrictions []SpecialSlotRestriction `bson:"special_slot_restrictions" json:"special_slot_restrictions"`
	UpdatedAt               time.Time                `bson:"updatedAt" json:"updatedAt"`
}

// ActiveRestriction returns the active override for clinic on date, if any.
func (s *Settings) ActiveRestriction(clinic primitive.ObjectID, date string) *SpecialSlotRestriction {
	for i := range s.SpecialSlotRestrictions {
		r := &s.SpecialSlotRestrictions[i]
		if r.Active && r.Date == date && r.Clinic == clinic {
			return r
		}
	}
	return nil
}
