package views

import (
	"time"

	"github.com/panelmurah/ptero-store/pkg"
	"github.com/panelmurah/ptero-store/pkg/models"
)

type CreateOrderRequest struct {
	Plan          string `json:"plan" binding:"required"`
	PanelUsername string `json:"username" binding:"required,min=3"`
	PanelPassword string `json:"password" binding:"required,min=5"`
}

// CreateOrderResponse is the payment display data: everything the buyer needs
// to scan and pay before the window closes.
type CreateOrderResponse struct {
	OrderID    string    `json:"orderId"`
	Amount     int64     `json:"amount"`
	Fee        int64     `json:"fee"`
	Total      int64     `json:"total"`
	QrisNumber string    `json:"qrisNumber"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// PanelView is the account detail returned once an order completes.
type PanelView struct {
	Username   string            `json:"username"`
	Password   string            `json:"password"`
	Email      string            `json:"email"`
	Plan       string            `json:"plan"`
	Specs      models.PanelSpecs `json:"specs"`
	LoginURL   string            `json:"loginUrl"`
	ServerID   int               `json:"serverId"`
	Identifier string            `json:"identifier"`
	CreatedAt  time.Time         `json:"createdAt"`
	ExpiresAt  time.Time         `json:"expiresAt"`
}

// StatusResult classifies a poll outcome.
type StatusResult string

const (
	StatusPending   StatusResult = "pending"
	StatusCompleted StatusResult = "completed"
	StatusExpired   StatusResult = "expired"
	// StatusError means payment settled but panel setup failed; the order
	// stays completed and reconciliation is a manual operation.
	StatusError StatusResult = "error"
)

type OrderStatusResponse struct {
	Status  StatusResult `json:"status"`
	Message string       `json:"message,omitempty"`
	Panel   *PanelView   `json:"panelInfo,omitempty"`
}

// OrderView is the listing shape for dashboards.
type OrderView struct {
	ID          string          `json:"id"`
	Username    string          `json:"username"`
	Plan        string          `json:"plan"`
	Amount      int64           `json:"amount"`
	Fee         int64           `json:"fee"`
	Total       int64           `json:"total"`
	Status      pkg.OrderStatus `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

func ToOrderView(o models.Order) OrderView {
	return OrderView{
		ID:          o.ID,
		Username:    o.Username,
		Plan:        o.Plan,
		Amount:      o.Amount,
		Fee:         o.Fee,
		Total:       o.Total,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		ExpiresAt:   o.ExpiresAt,
		CompletedAt: o.CompletedAt,
	}
}

func ToPanelView(p models.Panel) PanelView {
	return PanelView{
		Username:   p.Username,
		Password:   p.Password,
		Email:      p.Email,
		Plan:       p.Plan,
		Specs:      p.Specs,
		LoginURL:   p.LoginURL,
		ServerID:   p.ServerID,
		Identifier: p.Identifier,
		CreatedAt:  p.CreatedAt,
		ExpiresAt:  p.ExpiresAt,
	}
}
