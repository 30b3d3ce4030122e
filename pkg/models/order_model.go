package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/panelmurah/ptero-store/pkg"
)

// Order maps to table `orders`. One row per purchase attempt; the id doubles
// as the external payment reference, so it must be unguessable.
type Order struct {
	ID            string
	UserID        uuid.UUID
	Username      string // storefront account that placed the order
	Plan          string
	PanelUsername string
	PanelPassword string // AES-GCM encrypted at rest
	Amount        int64  // rupiah, fixed at creation from the catalog
	Fee           int64  // fixed at creation from the gateway response
	Total         int64  // fixed at creation from the gateway response
	QrisNumber    string // scannable payment code handle
	Status        pkg.OrderStatus
	CreatedAt     time.Time
	ExpiresAt     time.Time
	CompletedAt   *time.Time // set once, on the first transition to completed
}

// Expired reports whether the payment window has closed at the given instant.
func (o Order) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
