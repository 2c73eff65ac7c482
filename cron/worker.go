package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clinicbook/config"
	"clinicbook/models"
	"clinicbook/services/notification"
	"clinicbook/services/tasks"
	"clinicbook/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt points asynq at the queue Redis DB.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewMux routes notification tasks to notifSvc.
func NewMux(notifSvc notification.NotificationService) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSessionStatus, handleSessionStatusTask(notifSvc))
	mux.HandleFunc(tasks.TypeSessionReminder, handleSessionReminderTask(notifSvc))
	return mux
}

// InitNotificationWorker starts the worker in the background. The returned
// server must be shut down by the caller.
func InitNotificationWorker(ctx context.Context, notifSvc notification.NotificationService) *asynq.Server {
	log := utils.GetLogger()
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: log.Sugar(),
		},
	)
	mux := NewMux(notifSvc)

	go monitorRedisConnection(ctx)

	go func() {
		log.Info("Starting notification worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			log.Error("Failed to start notification worker",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				log.Error("Notification worker gave up; session notifications will queue until restart")
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempts*2) * time.Second):
			}
		}
	}()
	return srv
}

func handleSessionStatusTask(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.SessionStatusPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			utils.GetLogger().Error("Invalid session status payload", zap.Error(err))
			return fmt.Errorf("decode session status payload: %v: %w", err, asynq.SkipRetry)
		}
		if err := notifSvc.NotifySessionStatus(ctx, p); err != nil {
			utils.GetLogger().Error("Failed to notify session status",
				zap.String("bookingId", p.BookingID), zap.Error(err))
			return err
		}
		return nil
	}
}

func handleSessionReminderTask(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.SessionReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			utils.GetLogger().Error("Invalid session reminder payload", zap.Error(err))
			return fmt.Errorf("decode session reminder payload: %v: %w", err, asynq.SkipRetry)
		}
		utils.GetLogger().Info("Sending session reminder",
			zap.String("bookingId", p.BookingID), zap.String("date", p.Date), zap.String("time", p.Time))
		return notifSvc.NotifySessionReminder(ctx, p)
	}
}

// monitorRedisConnection pings the queue DB periodically to surface outages.
func monitorRedisConnection(ctx context.Context) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				utils.GetLogger().Warn("Queue Redis connection lost", zap.Error(err))
			}
		}
	}
}
