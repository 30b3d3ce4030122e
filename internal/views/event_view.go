package views

import (
	"time"

	"github.com/panelmurah/ptero-store/pkg"
)

// Event is a lifecycle notification payload. Delivery is fire-and-forget;
// losing one must never affect order or panel persistence.
type Event struct {
	Kind      pkg.EventKind     `json:"kind"`
	Username  string            `json:"username,omitempty"`
	OrderID   string            `json:"orderId,omitempty"`
	Plan      string            `json:"plan,omitempty"`
	Amount    int64             `json:"amount,omitempty"`
	ServerID  int               `json:"serverId,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Extra     map[string]string `json:"extra,omitempty"`
}
