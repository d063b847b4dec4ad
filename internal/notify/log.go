package notify

import (
	"context"
	"log/slog"
)

// LogNotifier records notifications in the log instead of sending them.
// It is used when no SMTP relay is configured and never fails.
type LogNotifier struct {
	logger *slog.Logger
}

var _ Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "log_notifier")}
}

// SendAccountVerificationEmail implements Notifier.
func (n *LogNotifier) SendAccountVerificationEmail(ctx context.Context, msg VerificationEmail) error {
	n.logger.InfoContext(ctx, "verification email not sent: smtp not configured",
		"user_id", msg.UserID)
	return nil
}
