package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"golang.org/x/time/rate"
	"sensor-bot/internal/logging"
	"sensor-bot/internal/metrics"
)

// Sender delivers a text message to a chat. Failures are logged, never returned.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) bool
}

// Telegram is the shared sendMessage primitive used for alerts and command replies.
type Telegram struct {
	bot     *bot.Bot
	limiter *rate.Limiter
	logger  *logging.Logger
}

// NewTelegram builds a sender for the Bot API at apiURL. maxPerSecond <= 0 disables pacing.
func NewTelegram(apiURL, token string, maxPerSecond float64, logger *logging.Logger) (*Telegram, error) {
	b, err := bot.New(token,
		bot.WithServerURL(apiURL),
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(30*time.Second, &http.Client{Timeout: 30 * time.Second}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	t := &Telegram{bot: b, logger: logger}
	if maxPerSecond > 0 {
		burst := int(maxPerSecond)
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(maxPerSecond), burst)
	}
	return t, nil
}

// Send posts text to chatID in HTML parse mode and reports whether it was accepted.
func (t *Telegram) Send(ctx context.Context, chatID int64, text string) bool {
	if err := t.send(ctx, chatID, text); err != nil {
		metrics.MessagesSentTotal.WithLabelValues("failed").Inc()
		t.logger.Errorf("Failed to send Telegram message to chat_id %d: %v", chatID, err)
		return false
	}
	metrics.MessagesSentTotal.WithLabelValues("success").Inc()
	t.logger.Debugf("Sent Telegram message to chat_id %d", chatID)
	return true
}

func (t *Telegram) send(ctx context.Context, chatID int64, text string) error {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for send slot: %w", err)
		}
	}

	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: tgmodels.ParseModeHTML,
	}
	if _, err := t.bot.SendMessage(ctx, params); err != nil {
		return err
	}
	return nil
}
