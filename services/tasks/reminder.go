package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agendai/config"
	"agendai/models"

	"github.com/hibiken/asynq"
)

const TypeAppointmentReminder = "reminder:appointment"

// ReminderPayload is the task body for an appointment reminder.
type ReminderPayload struct {
	AppointmentID int64  `json:"appointmentId"`
	Protocol      string `json:"protocol"`
	Phone         string `json:"phone"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

// NewReminderTask builds the asynq task scheduled at fireAt.
func NewReminderTask(payload ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeAppointmentReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// AsynqReminderScheduler enqueues appointment reminders on the Redis
// queue, firing a configurable lead ahead of the appointment.
type AsynqReminderScheduler struct {
	client *asynq.Client
	lead   time.Duration
}

// NewAsynqReminderScheduler creates the scheduler over the queue Redis DB.
func NewAsynqReminderScheduler(lead time.Duration) *AsynqReminderScheduler {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	return &AsynqReminderScheduler{client: client, lead: lead}
}

// ScheduleAppointmentReminder enqueues a reminder for the appointment.
// An appointment closer than the lead fires immediately.
func (s *AsynqReminderScheduler) ScheduleAppointmentReminder(ctx context.Context, appt *models.Appointment, phone string) error {
	when, err := time.ParseInLocation("2006-01-02 15:04", appt.Date+" "+appt.Time, time.Local)
	if err != nil {
		return fmt.Errorf("invalid appointment datetime: %w", err)
	}
	fireAt := when.Add(-s.lead)
	if fireAt.Before(time.Now()) {
		fireAt = time.Now()
	}

	task, opts, err := NewReminderTask(ReminderPayload{
		AppointmentID: appt.ID,
		Protocol:      appt.Protocol,
		Phone:         phone,
		Date:          appt.Date,
		Time:          appt.Time,
	}, fireAt)
	if err != nil {
		return err
	}

	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	return nil
}

// Close releases the underlying queue connection.
func (s *AsynqReminderScheduler) Close() error {
	return s.client.Close()
}
