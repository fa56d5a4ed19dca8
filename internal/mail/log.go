package mail

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogSender writes messages to the log instead of delivering them. Used in development.
type LogSender struct{}

// NewLogSender constructs a LogSender.
func NewLogSender() *LogSender {
	return &LogSender{}
}

func (LogSender) Send(ctx context.Context, msg Message) (string, error) {
	id := "log-" + uuid.NewString()
	slog.InfoContext(ctx, "email not delivered (log provider)",
		"id", id,
		"to", msg.To,
		"subject", msg.Subject,
		"html", msg.HTML,
	)
	return id, nil
}
