package clinicRepo

import (
	"testing"
	"time"

	"clinicbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func field(t *testing.T, d bson.D, key string) interface{} {
	t.Helper()
	for _, e := range d {
		if e.Key == key {
			return e.Value
		}
	}
	t.Fatalf("key %q not found in %v", key, d)
	return nil
}

func TestBookingWindowPipelineArchivesOnlyExistingWindow(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	p := bookingWindowPipeline(models.BookingWindow{StartDate: "2025-02-01", EndDate: "2025-02-28"}, now)
	require.Len(t, p, 1)

	set, ok := field(t, p[0], "$set").(bson.D)
	require.True(t, ok)
	assert.Equal(t, now, field(t, set, "updatedAt"))

	window := field(t, set, "booking_window").(bson.D)
	assert.Equal(t, bson.D{
		{Key: "start_date", Value: "2025-02-01"},
		{Key: "end_date", Value: "2025-02-28"},
	}, field(t, window, "$literal"))

	cond := field(t, field(t, set, "booking_window_history").(bson.D), "$cond").(bson.D)
	assert.Equal(t, bson.D{{Key: "$gt", Value: bson.A{"$booking_window.start_date", nil}}}, field(t, cond, "if"))

	history := bson.D{{Key: "$ifNull", Value: bson.A{"$booking_window_history", bson.A{}}}}
	assert.Equal(t, history, field(t, cond, "else"))

	concat := field(t, field(t, cond, "then").(bson.D), "$concatArrays").(bson.A)
	require.Len(t, concat, 2)
	assert.Equal(t, history, concat[0])
	assert.Equal(t, bson.A{bson.D{
		{Key: "start_date", Value: "$booking_window.start_date"},
		{Key: "end_date", Value: "$booking_window.end_date"},
		{Key: "archived_at", Value: now},
	}}, concat[1])
}

func TestBookingWindowPipelineMarshals(t *testing.T) {
	p := bookingWindowPipeline(models.BookingWindow{StartDate: "2025-02-01", EndDate: "2025-02-28"}, time.Now())
	for _, stage := range p {
		_, err := bson.Marshal(stage)
		assert.NoError(t, err)
	}
}
