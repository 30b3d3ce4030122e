package models

import (
	"time"

	"github.com/google/uuid"
)

// PanelSpecs is the human-formatted resource allocation shown to the buyer.
type PanelSpecs struct {
	RAM  string `json:"ram"`
	CPU  string `json:"cpu"`
	Disk string `json:"disk"`
}

// Panel maps to table `panels`: one provisioned hosting-panel account per
// completed order. It outlives its originating order.
type Panel struct {
	// identifiers from the remote panel, required for later deletion
	PanelUserID int
	ServerID    int
	ServerUUID  string
	Identifier  string

	Username string // primary key in the store
	Password string
	Email    string
	Plan     string
	Specs    PanelSpecs
	LoginURL string

	OwnerID   uuid.UUID // storefront user the panel was sold to
	CreatedAt time.Time
	ExpiresAt time.Time // service validity window, independent of the order's payment window
}
