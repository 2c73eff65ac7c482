package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clinicbook/models"
	"clinicbook/utils"

	"github.com/hibiken/asynq"
)

const (
	TypeSessionReminder = "session:reminder"
	TypeSessionStatus   = "session:status"
)

// Enqueuer schedules background notification work.
type Enqueuer interface {
	EnqueueSessionStatus(ctx context.Context, payload models.SessionStatusPayload) error
	ScheduleSessionReminder(ctx context.Context, payload models.SessionReminderPayload) error
}

func NewSessionStatusTask(payload models.SessionStatusPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSessionStatus, b, asynq.MaxRetry(5)), nil
}

// NewSessionReminderTask builds a reminder that fires at fireAt. The task id is
// derived from the session and its slot, so rescheduling queues a new reminder
// while duplicate enqueues for the same slot are rejected by the queue.
func NewSessionReminderTask(payload models.SessionReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSessionReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(fmt.Sprintf("reminder:%s:%s:%s", payload.SessionID, payload.Date, payload.Time)),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

// ReminderTime is the session start in loc minus lead.
func ReminderTime(date, clock string, loc *time.Location, lead time.Duration) (time.Time, error) {
	start, err := time.ParseInLocation(utils.DateLayout+" "+utils.TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid session slot %s %s: %w", date, clock, err)
	}
	return start.Add(-lead), nil
}

// AsynqEnqueuer implements Enqueuer on an asynq client.
type AsynqEnqueuer struct {
	Client   *asynq.Client
	LeadTime time.Duration
	Location *time.Location
	Now      func() time.Time
}

func (e *AsynqEnqueuer) EnqueueSessionStatus(ctx context.Context, payload models.SessionStatusPayload) error {
	task, err := NewSessionStatusTask(payload)
	if err != nil {
		return err
	}
	if _, err := e.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue session status: %w", err)
	}
	return nil
}

// ScheduleSessionReminder is a no-op when the reminder time already passed.
func (e *AsynqEnqueuer) ScheduleSessionReminder(ctx context.Context, payload models.SessionReminderPayload) error {
	loc := e.Location
	if loc == nil {
		loc = time.UTC
	}
	fireAt, err := ReminderTime(payload.Date, payload.Time, loc, e.LeadTime)
	if err != nil {
		return err
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	if !fireAt.After(now()) {
		return nil
	}

	task, opts, err := NewSessionReminderTask(payload, fireAt)
	if err != nil {
		return err
	}
	if _, err := e.Client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("schedule session reminder: %w", err)
	}
	return nil
}
