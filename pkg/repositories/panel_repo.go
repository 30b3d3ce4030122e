package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/panelmurah/ptero-store/pkg/database"
	"github.com/panelmurah/ptero-store/pkg/models"
)

// PanelRepository is the provisioned-account store, keyed by panel username.
// A panel record outlives the order that paid for it.
type PanelRepository interface {
	Create(ctx context.Context, panel models.Panel) error
	FindByUsername(ctx context.Context, username string) (models.Panel, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Panel, error)
	List(ctx context.Context) ([]models.Panel, error)
	// DeleteByServerID removes the record for a remotely deleted server.
	// Returns false when no record matched.
	DeleteByServerID(ctx context.Context, serverID int) (bool, error)
}

type PanelRepositoryImpl struct {
	db *database.DB
}

func NewPanelRepository(db *database.DB) PanelRepository {
	return &PanelRepositoryImpl{db: db}
}

const panelColumns = `username, panel_user_id, server_id, server_uuid, identifier,
	password, email, plan, specs_ram, specs_cpu, specs_disk, login_url, owner_id, created_at, expires_at`

func (p PanelRepositoryImpl) Create(ctx context.Context, panel models.Panel) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO panels (`+panelColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		panel.Username,
		panel.PanelUserID,
		panel.ServerID,
		panel.ServerUUID,
		panel.Identifier,
		panel.Password,
		panel.Email,
		panel.Plan,
		panel.Specs.RAM,
		panel.Specs.CPU,
		panel.Specs.Disk,
		panel.LoginURL,
		panel.OwnerID,
		panel.CreatedAt,
		panel.ExpiresAt,
	)
	return err
}

func (p PanelRepositoryImpl) FindByUsername(ctx context.Context, username string) (models.Panel, error) {
	row := p.db.QueryRow(ctx, `SELECT `+panelColumns+` FROM panels WHERE username = $1`, username)
	panel, err := scanPanel(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Panel{}, ErrNotFound
	}
	return panel, err
}

func (p PanelRepositoryImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Panel, error) {
	rows, err := p.db.Query(ctx, `SELECT `+panelColumns+` FROM panels WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	return collectPanels(rows)
}

func (p PanelRepositoryImpl) List(ctx context.Context) ([]models.Panel, error) {
	rows, err := p.db.Query(ctx, `SELECT `+panelColumns+` FROM panels ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectPanels(rows)
}

func (p PanelRepositoryImpl) DeleteByServerID(ctx context.Context, serverID int) (bool, error) {
	tag, err := p.db.Exec(ctx, `DELETE FROM panels WHERE server_id = $1`, serverID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanPanel(row pgx.Row) (models.Panel, error) {
	var panel models.Panel
	err := row.Scan(
		&panel.Username,
		&panel.PanelUserID,
		&panel.ServerID,
		&panel.ServerUUID,
		&panel.Identifier,
		&panel.Password,
		&panel.Email,
		&panel.Plan,
		&panel.Specs.RAM,
		&panel.Specs.CPU,
		&panel.Specs.Disk,
		&panel.LoginURL,
		&panel.OwnerID,
		&panel.CreatedAt,
		&panel.ExpiresAt,
	)
	return panel, err
}

func collectPanels(rows pgx.Rows) ([]models.Panel, error) {
	defer rows.Close()
	var panels []models.Panel
	for rows.Next() {
		panel, err := scanPanel(rows)
		if err != nil {
			return nil, err
		}
		panels = append(panels, panel)
	}
	return panels, rows.Err()
}
