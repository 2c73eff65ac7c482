package slots

import (
	"fmt"
	"time"

	"clinicbook/models"
	"clinicbook/utils"
)

const (
	MinSlotsPerHour = 1
	MaxSlotsPerHour = 12
)

// ParseClock converts an HH:MM time of day into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(utils.TimeLayout, s)
	if err != nil {
		return 0, utils.NewValidationError("invalid time %q, expected HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes after midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SlotDuration is the slot length in whole minutes. 60/slotsPerHour is
// floored, so rates that do not divide 60 produce slightly denser slots.
func SlotDuration(slotsPerHour int) (int, error) {
	if slotsPerHour < MinSlotsPerHour || slotsPerHour > MaxSlotsPerHour {
		return 0, utils.NewValidationError("slots_per_hour must be between %d and %d", MinSlotsPerHour, MaxSlotsPerHour)
	}
	return 60 / slotsPerHour, nil
}

// Generate returns the bookable times from start up to, but excluding, end.
func Generate(start, end string, slotsPerHour int) ([]string, error) {
	step, err := SlotDuration(slotsPerHour)
	if err != nil {
		return nil, err
	}
	from, err := ParseClock(start)
	if err != nil {
		return nil, err
	}
	to, err := ParseClock(end)
	if err != nil {
		return nil, err
	}

	out := []string{}
	for cur := from; cur < to; cur += step {
		out = append(out, FormatClock(cur))
	}
	return out, nil
}

// GenerateWindows concatenates Generate over each window in order.
func GenerateWindows(windows []models.TimeWindow, slotsPerHour int) ([]string, error) {
	out := []string{}
	for _, w := range windows {
		times, err := Generate(w.Start, w.End, slotsPerHour)
		if err != nil {
			return nil, err
		}
		out = append(out, times...)
	}
	return out, nil
}
