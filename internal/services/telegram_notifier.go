package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/panelmurah/ptero-store/internal/views"
	"github.com/panelmurah/ptero-store/pkg"
	"github.com/panelmurah/ptero-store/pkg/utils"
	"go.uber.org/zap"
)

// TelegramNotifier sends a human-readable message to the shop owner's chat.
type TelegramNotifier struct {
	logger  *zap.Logger
	http    *http.Client
	baseURL string
	chatID  string
}

const telegramAPIBase = "https://api.telegram.org"

func NewTelegramNotifier(logger *zap.Logger, botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		logger:  logger,
		http:    utils.NewHTTPClient(utils.WithClientTimeout(5 * time.Second)),
		baseURL: fmt.Sprintf("%s/bot%s", telegramAPIBase, botToken),
		chatID:  chatID,
	}
}

// Notify sends in a goroutine detached from the request context so a slow
// Telegram API cannot hold up the order response.
func (t *TelegramNotifier) Notify(_ context.Context, event views.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := t.send(ctx, renderMessage(event)); err != nil {
			t.logger.Warn("telegram notification failed",
				zap.String("kind", string(event.Kind)), zap.Error(err))
		}
	}()
}

func (t *TelegramNotifier) Close() {}

func (t *TelegramNotifier) send(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]string{
		"chat_id": t.chatID,
		"text":    text,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/sendMessage", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram responded with status %d", resp.StatusCode)
	}
	return nil
}

func renderMessage(event views.Event) string {
	ts := event.Timestamp.Format("02/01/2006 15:04:05")
	switch event.Kind {
	case pkg.EventAccountRegistered:
		return fmt.Sprintf("NEW USER REGISTERED\nUsername: %s\nTime: %s", event.Username, ts)
	case pkg.EventOrderPaid:
		return fmt.Sprintf("PAYMENT RECEIVED\nUser: %s\nPlan: %s\nAmount: Rp%d\nOrder ID: %s\nTime: %s",
			event.Username, event.Plan, event.Amount, event.OrderID, ts)
	case pkg.EventPanelCreated:
		return fmt.Sprintf("NEW PANEL CREATED\nUser: %s\nPlan: %s\nServer ID: %d\nTime: %s",
			event.Username, event.Plan, event.ServerID, ts)
	case pkg.EventPanelDeleted:
		return fmt.Sprintf("PANEL DELETED\nUsername: %s\nServer ID: %d\nTime: %s",
			event.Username, event.ServerID, ts)
	default:
		return fmt.Sprintf("%s\nTime: %s", event.Kind, ts)
	}
}
