// Package telegram posts digests to a Telegram chat or channel.
package telegram

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/riskibarqy/match-digest/internal/platform/logging"
	"github.com/riskibarqy/match-digest/internal/platform/resilience"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// Telegram allows roughly one message per second per chat.
const defaultSendInterval = time.Second

type Config struct {
	Token  string
	ChatID string
	// Endpoint overrides tgbotapi.APIEndpoint, e.g. for a local bot API server.
	Endpoint     string
	HTTPClient   *http.Client
	SendInterval time.Duration
	Retry        resilience.RetryPolicy
	Logger       *logging.Logger
}

type Notifier struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	channel string
	limiter *rate.Limiter
	retry   resilience.RetryPolicy
	logger  *logging.Logger
}

// NewNotifier authenticates the bot token with getMe and returns a notifier
// bound to cfg.ChatID. The chat is either a numeric id or an @channel name.
func NewNotifier(cfg Config) (*Notifier, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, crerr.New("telegram bot token is required")
	}
	chatID, channel, err := parseChat(cfg.ChatID)
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, httpClient)
	if err != nil {
		return nil, crerr.Wrap(err, "connect telegram bot")
	}

	interval := cfg.SendInterval
	if interval <= 0 {
		interval = defaultSendInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("telegram")
	logger.Info("telegram notifier ready", "bot", bot.Self.UserName, "chat", cfg.ChatID)

	return &Notifier{
		bot:     bot,
		chatID:  chatID,
		channel: channel,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		retry:   resilience.NormalizeRetryPolicy(cfg.Retry),
		logger:  logger,
	}, nil
}

func parseChat(raw string) (int64, string, error) {
	value := strings.TrimSpace(raw)
	switch {
	case value == "":
		return 0, "", crerr.New("telegram chat id is required")
	case strings.HasPrefix(value, "@"):
		return 0, value, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, "", crerr.Wrapf(err, "parse telegram chat id %q", value)
	}
	return id, "", nil
}

func (n *Notifier) SendText(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ChannelUsername = n.channel
	msg.DisableWebPagePreview = true
	return n.send(ctx, "sendMessage", msg)
}

// SendPhoto uploads the image at path with caption.
func (n *Notifier) SendPhoto(ctx context.Context, path, caption string) error {
	if _, err := os.Stat(path); err != nil {
		return crerr.Wrapf(err, "read photo %s", path)
	}
	photo := tgbotapi.NewPhoto(n.chatID, tgbotapi.FilePath(path))
	photo.ChannelUsername = n.channel
	photo.Caption = caption
	return n.send(ctx, "sendPhoto", photo)
}

func (n *Notifier) send(ctx context.Context, method string, c tgbotapi.Chattable) error {
	return resilience.Retry(ctx, n.retry, func(attempt int) error {
		if err := n.limiter.Wait(ctx); err != nil {
			return resilience.Permanent(err)
		}
		_, err := n.bot.Send(c)
		if err == nil {
			return nil
		}

		var apiErr *tgbotapi.Error
		if crerr.As(err, &apiErr) {
			if apiErr.RetryAfter > 0 {
				n.logger.WarnContext(ctx, "telegram rate limited", "method", method, "retry_after", apiErr.RetryAfter, "attempt", attempt)
				wait := time.NewTimer(time.Duration(apiErr.RetryAfter) * time.Second)
				select {
				case <-ctx.Done():
					wait.Stop()
					return resilience.Permanent(ctx.Err())
				case <-wait.C:
				}
				return crerr.Wrapf(err, "telegram %s", method)
			}
			return resilience.Permanent(crerr.Wrapf(err, "telegram %s rejected", method))
		}

		n.logger.WarnContext(ctx, "telegram send failed", "method", method, "attempt", attempt, "error", err)
		return crerr.Wrapf(err, "telegram %s", method)
	})
}
