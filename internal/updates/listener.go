package updates

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	tgmodels "github.com/go-telegram/bot/models"
	"sensor-bot/internal/logging"
	"sensor-bot/internal/metrics"
	"sensor-bot/internal/models"
	"sensor-bot/internal/providers"
	"sensor-bot/internal/utils"
	"sensor-bot/pkg/telegram"
)

// ErrUnauthorized means the Bot API rejected the token. It is fatal for the whole process.
var ErrUnauthorized = errors.New("bot token rejected by the API (401)")

const (
	DefaultServerErrorBackoff = 10 * time.Second
	DefaultClientErrorBackoff = 20 * time.Second
)

// UpdatesClient is the long-poll request used by the Listener.
type UpdatesClient interface {
	GetUpdates(ctx context.Context, offset int64, wait time.Duration) (*telegram.Response, error)
}

// SnapshotReader returns the newest snapshot, blocking until one exists.
type SnapshotReader interface {
	Latest(ctx context.Context) (models.Snapshot, error)
}

// ListenerConfig holds the authorization and polling settings of a Listener.
type ListenerConfig struct {
	ChatID       int64
	AllowedUsers []int64
	Wait         time.Duration
	// Zero values fall back to DefaultServerErrorBackoff and DefaultClientErrorBackoff.
	ServerErrorBackoff time.Duration
	ClientErrorBackoff time.Duration
}

// Listener long-polls for inbound messages and answers authorized commands.
type Listener struct {
	client        UpdatesClient
	sender        providers.Sender
	registry      *Registry
	snapshots     SnapshotReader
	chatID        int64
	allowed       map[int64]bool
	wait          time.Duration
	serverBackoff time.Duration
	clientBackoff time.Duration
	offset        int64
	logger        *logging.Logger
}

func NewListener(client UpdatesClient, sender providers.Sender, registry *Registry, snapshots SnapshotReader, cfg ListenerConfig, logger *logging.Logger) *Listener {
	allowed := make(map[int64]bool, len(cfg.AllowedUsers))
	for _, id := range cfg.AllowedUsers {
		allowed[id] = true
	}
	l := &Listener{
		client:        client,
		sender:        sender,
		registry:      registry,
		snapshots:     snapshots,
		chatID:        cfg.ChatID,
		allowed:       allowed,
		wait:          cfg.Wait,
		serverBackoff: cfg.ServerErrorBackoff,
		clientBackoff: cfg.ClientErrorBackoff,
		logger:        logger,
	}
	if l.serverBackoff <= 0 {
		l.serverBackoff = DefaultServerErrorBackoff
	}
	if l.clientBackoff <= 0 {
		l.clientBackoff = DefaultClientErrorBackoff
	}
	return l
}

// Offset is the id of the next update to request.
func (l *Listener) Offset() int64 {
	return l.offset
}

// Run polls until ctx is cancelled. It returns ErrUnauthorized on a 401 and nil otherwise.
func (l *Listener) Run(ctx context.Context) error {
	l.logger.Infof("Update listener started")
	for ctx.Err() == nil {
		backoff, err := l.poll(ctx)
		if err != nil {
			return err
		}
		if backoff > 0 {
			if err := utils.Sleep(ctx, backoff); err != nil {
				break
			}
		}
	}
	l.logger.Infof("Update listener stopped")
	return nil
}

// poll issues one getUpdates request and returns how long to wait before the next one.
func (l *Listener) poll(ctx context.Context) (time.Duration, error) {
	resp, err := l.client.GetUpdates(ctx, l.offset, l.wait)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil
		}
		metrics.UpdatesPollsTotal.WithLabelValues("transport_error").Inc()
		l.logger.Errorf("getUpdates request failed: %v", err)
		return l.serverBackoff, nil
	}

	switch code := resp.StatusCode; {
	case code == http.StatusUnauthorized:
		metrics.UpdatesPollsTotal.WithLabelValues("unauthorized").Inc()
		l.logger.Criticalf("getUpdates: token is invalid, stopping")
		return 0, ErrUnauthorized
	case code >= http.StatusInternalServerError:
		metrics.UpdatesPollsTotal.WithLabelValues("server_error").Inc()
		l.logger.Warnf("getUpdates: response code %d, retrying in %s", code, l.serverBackoff)
		return l.serverBackoff, nil
	case code != http.StatusOK:
		metrics.UpdatesPollsTotal.WithLabelValues("http_error").Inc()
		l.logger.Errorf("getUpdates: response code %d: %s", code, resp.Body)
		return l.clientBackoff, nil
	}

	l.handleBody(ctx, resp.Body)
	return 0, nil
}

type envelope struct {
	OK     *bool           `json:"ok"`
	Result json.RawMessage `json:"result"`
}

func (l *Listener) handleBody(ctx context.Context, body []byte) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		metrics.UpdatesPollsTotal.WithLabelValues("malformed").Inc()
		l.logger.Errorf("getUpdates: JSON decode error: %v", err)
		return
	}
	if env.OK == nil || len(env.Result) == 0 || string(env.Result) == "null" {
		metrics.UpdatesPollsTotal.WithLabelValues("skipped").Inc()
		l.logger.Debugf("getUpdates: response without ok/result, skipping")
		return
	}
	var items []json.RawMessage
	if err := json.Unmarshal(env.Result, &items); err != nil {
		metrics.UpdatesPollsTotal.WithLabelValues("malformed").Inc()
		l.logger.Errorf("getUpdates: result is not a list: %v", err)
		return
	}

	metrics.UpdatesPollsTotal.WithLabelValues("ok").Inc()
	for _, raw := range items {
		l.handleItem(ctx, raw)
	}
}

func (l *Listener) handleItem(ctx context.Context, raw json.RawMessage) {
	var head struct {
		UpdateID *int64 `json:"update_id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil || head.UpdateID == nil {
		l.logger.Errorf("getUpdates: item without update_id skipped: %s", raw)
		return
	}
	l.advance(*head.UpdateID)

	var upd tgmodels.Update
	if err := json.Unmarshal(raw, &upd); err != nil {
		l.logger.Errorf("Update %d: decode failed: %v", *head.UpdateID, err)
		return
	}
	msg := upd.Message
	if msg == nil || msg.Text == "" {
		return
	}
	if !l.authorized(msg) {
		l.logger.Warnf("Update %d: message from unauthorized chat %d ignored", upd.ID, msg.Chat.ID)
		return
	}

	cmd, err := l.registry.Lookup(msg.Text)
	if err != nil {
		l.logger.Debugf("Update %d: %v", upd.ID, err)
		return
	}
	snap, err := l.snapshots.Latest(ctx)
	if err != nil {
		return
	}
	metrics.CommandsTotal.WithLabelValues(cmd.Text).Inc()
	l.logger.Infof("Command %s from chat %d handled by %s", cmd.Text, msg.Chat.ID, cmd.HandlerName)
	l.sender.Send(ctx, msg.Chat.ID, cmd.Handler(snap))
}

func (l *Listener) advance(updateID int64) {
	if next := updateID + 1; next > l.offset {
		l.offset = next
		metrics.UpdatesOffset.Set(float64(next))
	}
}

func (l *Listener) authorized(msg *tgmodels.Message) bool {
	if msg.From != nil && l.allowed[msg.From.ID] {
		return true
	}
	return msg.Chat.ID == l.chatID
}
