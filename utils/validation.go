package utils

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseObjectID parses a hex id, reporting a validation error naming field.
func ParseObjectID(raw, field string) (primitive.ObjectID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return primitive.NilObjectID, NewValidationError("%s is required", field)
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, NewValidationError("invalid %s", field)
	}
	return id, nil
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(raw, field string) (time.Time, error) {
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, NewValidationError("invalid %s %q, expected YYYY-MM-DD", field, raw)
	}
	return d, nil
}

// ValidateClock checks an HH:MM time of day.
func ValidateClock(raw, field string) error {
	if _, err := time.Parse(TimeLayout, raw); err != nil {
		return NewValidationError("invalid %s %q, expected HH:MM", field, raw)
	}
	return nil
}
