package usecase

import (
	"context"

	"github.com/riskibarqy/match-digest/internal/platform/logging"
)

// Notifier delivers messages to a channel. Calls block until the channel
// accepted or rejected the message.
type Notifier interface {
	SendText(ctx context.Context, text string) error
	SendPhoto(ctx context.Context, path, caption string) error
}

// LogNotifier writes messages to the log instead of a channel.
type LogNotifier struct {
	logger *logging.Logger
}

func NewLogNotifier(logger *logging.Logger) *LogNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogNotifier{logger: logger.Named("notifier")}
}

func (n *LogNotifier) SendText(ctx context.Context, text string) error {
	n.logger.InfoContext(ctx, "message", "text", text)
	return nil
}

func (n *LogNotifier) SendPhoto(ctx context.Context, path, caption string) error {
	n.logger.InfoContext(ctx, "photo", "path", path, "caption", caption)
	return nil
}
