package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/noah-isme/driving-lesson-api/internal/integrations/notification"
	"github.com/noah-isme/driving-lesson-api/pkg/jobs"
	"github.com/noah-isme/driving-lesson-api/pkg/tracing"
)

// Notification job types.
const (
	JobBookingConfirmed = "booking.confirmed"
	JobBookingCancelled = "booking.cancelled"
)

// BookingNotice is the payload of booking notification jobs.
type BookingNotice struct {
	BookingID        string
	LearnerID        string
	InstructorUserID string
	InstructorName   string
	StartDate        string
	EndDate          string
	Labels           []string
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// NotificationService queues booking notifications and delivers them from queue workers.
type NotificationService struct {
	queue    jobEnqueuer
	notifier notification.Notifier
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(queue jobEnqueuer, notifier notification.Notifier, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{queue: queue, notifier: notifier, metrics: metrics, logger: logger}
}

// Register binds the delivery handlers to router.
func (s *NotificationService) Register(router *jobs.Router) {
	router.Handle(JobBookingConfirmed, s.deliver)
	router.Handle(JobBookingCancelled, s.deliver)
}

// BookingConfirmed queues confirmation notices. Queue failures are logged, never returned.
func (s *NotificationService) BookingConfirmed(ctx context.Context, notice BookingNotice) {
	s.enqueue(ctx, JobBookingConfirmed, notice)
}

// BookingCancelled queues cancellation notices.
func (s *NotificationService) BookingCancelled(ctx context.Context, notice BookingNotice) {
	s.enqueue(ctx, JobBookingCancelled, notice)
}

func (s *NotificationService) enqueue(ctx context.Context, jobType string, notice BookingNotice) {
	if s == nil || s.queue == nil {
		return
	}
	job := jobs.Job{
		ID:       uuid.NewString(),
		Type:     jobType,
		Payload:  notice,
		Metadata: tracing.InjectCarrier(ctx),
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("notification not queued", zap.String("type", jobType), zap.String("booking_id", notice.BookingID), zap.Error(err))
	}
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	notice, ok := job.Payload.(BookingNotice)
	if !ok {
		return fmt.Errorf("job %s: unexpected payload %T", job.ID, job.Payload)
	}
	ctx = tracing.ExtractCarrier(ctx, job.Metadata)
	ctx, span := tracing.Tracer().Start(ctx, "notifications."+job.Type)
	defer span.End()
	span.SetAttributes(attribute.String("booking.id", notice.BookingID), attribute.Int("job.attempt", job.Attempt))

	for _, msg := range bookingMessages(job.Type, notice) {
		if err := s.notifier.Notify(ctx, msg); err != nil {
			s.metrics.RecordNotification("failed")
			span.RecordError(err)
			return fmt.Errorf("notify %s: %w", msg.UserID, err)
		}
		s.metrics.RecordNotification("sent")
	}
	return nil
}

func bookingMessages(jobType string, notice BookingNotice) []notification.Notification {
	slots := strings.Join(notice.Labels, ", ")
	data := map[string]string{"booking_id": notice.BookingID, "type": jobType}
	var learnerTitle, instructorTitle string
	switch jobType {
	case JobBookingCancelled:
		learnerTitle = "Booking cancelled"
		instructorTitle = "Lesson plan cancelled"
	default:
		learnerTitle = "Booking confirmed"
		instructorTitle = "New lesson plan booked"
	}
	messages := []notification.Notification{{
		UserID: notice.LearnerID,
		Title:  learnerTitle,
		Body:   fmt.Sprintf("Lessons with %s from %s to %s at %s", notice.InstructorName, notice.StartDate, notice.EndDate, slots),
		Data:   data,
	}}
	if notice.InstructorUserID != "" {
		messages = append(messages, notification.Notification{
			UserID: notice.InstructorUserID,
			Title:  instructorTitle,
			Body:   fmt.Sprintf("Lessons from %s to %s at %s", notice.StartDate, notice.EndDate, slots),
			Data:   data,
		})
	}
	return messages
}
