// Package notification delivers push notifications to learners and instructors.
package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Notification is a message addressed to one user.
type Notification struct {
	UserID string
	Title  string
	Body   string
	Data   map[string]string
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the log instead of a push provider.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier builds a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, msg Notification) error {
	if msg.UserID == "" {
		return fmt.Errorf("notification has no recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	n.logger.Info("notification delivered",
		zap.String("user_id", msg.UserID),
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
		zap.Any("data", msg.Data),
	)
	return nil
}
