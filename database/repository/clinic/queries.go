package clinicRepo

import (
	"time"

	"clinicbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// bookingWindowPipeline sets the new window and, when a window was already
// present, appends it to booking_window_history in the same atomic update.
// Expressions inside one $set stage see the document as it was before the stage.
func bookingWindowPipeline(window models.BookingWindow, now time.Time) mongo.Pipeline {
	history := bson.D{{Key: "$ifNull", Value: bson.A{"$booking_window_history", bson.A{}}}}
	archived := bson.D{
		{Key: "start_date", Value: "$booking_window.start_date"},
		{Key: "end_date", Value: "$booking_window.end_date"},
		{Key: "archived_at", Value: now},
	}

	return mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "booking_window_history", Value: bson.D{{Key: "$cond", Value: bson.D{
				{Key: "if", Value: bson.D{{Key: "$gt", Value: bson.A{"$booking_window.start_date", nil}}}},
				{Key: "then", Value: bson.D{{Key: "$concatArrays", Value: bson.A{history, bson.A{archived}}}}},
				{Key: "else", Value: history},
			}}}},
			{Key: "booking_window", Value: bson.D{{Key: "$literal", Value: bson.D{
				{Key: "start_date", Value: window.StartDate},
				{Key: "end_date", Value: window.EndDate},
			}}}},
			{Key: "updatedAt", Value: now},
		}}},
	}
}
