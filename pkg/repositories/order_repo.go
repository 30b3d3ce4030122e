package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/panelmurah/ptero-store/pkg"
	"github.com/panelmurah/ptero-store/pkg/database"
	"github.com/panelmurah/ptero-store/pkg/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique constraint is violated.
var ErrDuplicate = errors.New("record already exists")

// OrderRepository is the order store: the single source of truth for order
// status transitions. MarkCompleted and MarkExpired are conditional updates so
// that exactly one caller wins a transition out of pending.
type OrderRepository interface {
	Create(ctx context.Context, order models.Order) error
	FindByID(ctx context.Context, id string) (models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListPending(ctx context.Context) ([]models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	// MarkCompleted transitions pending -> completed. Returns true only for the
	// caller whose update actually flipped the row.
	MarkCompleted(ctx context.Context, id string, completedAt time.Time) (bool, error)
	// MarkExpired transitions pending -> expired with the same winner semantics.
	MarkExpired(ctx context.Context, id string) (bool, error)
}

type OrderRepositoryImpl struct {
	db *database.DB
}

func NewOrderRepository(db *database.DB) OrderRepository {
	return &OrderRepositoryImpl{db: db}
}

const orderColumns = `id, user_id, username, plan, panel_username, panel_password,
	amount, fee, total, qris_number, status, created_at, expires_at, completed_at`

func (o OrderRepositoryImpl) Create(ctx context.Context, order models.Order) error {
	_, err := o.db.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		order.ID,
		order.UserID,
		order.Username,
		order.Plan,
		order.PanelUsername,
		order.PanelPassword,
		order.Amount,
		order.Fee,
		order.Total,
		order.QrisNumber,
		order.Status,
		order.CreatedAt,
		order.ExpiresAt,
		order.CompletedAt,
	)
	return err
}

func (o OrderRepositoryImpl) FindByID(ctx context.Context, id string) (models.Order, error) {
	row := o.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, ErrNotFound
	}
	return order, err
}

func (o OrderRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	rows, err := o.db.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (o OrderRepositoryImpl) ListPending(ctx context.Context) ([]models.Order, error) {
	rows, err := o.db.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE status = $1`, pkg.OrderStatusPending)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (o OrderRepositoryImpl) List(ctx context.Context) ([]models.Order, error) {
	rows, err := o.db.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// MarkCompleted flips a pending order to completed. The status guard in the
// WHERE clause is what closes the double-provisioning race: concurrent callers
// all run this update, the database serializes them, and RowsAffected tells
// each caller whether it was first.
func (o OrderRepositoryImpl) MarkCompleted(ctx context.Context, id string, completedAt time.Time) (bool, error) {
	tag, err := o.db.Exec(ctx, `
		UPDATE orders SET status = $1, completed_at = $2
		WHERE id = $3 AND status = $4`,
		pkg.OrderStatusCompleted, completedAt, id, pkg.OrderStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (o OrderRepositoryImpl) MarkExpired(ctx context.Context, id string) (bool, error) {
	tag, err := o.db.Exec(ctx, `
		UPDATE orders SET status = $1
		WHERE id = $2 AND status = $3`,
		pkg.OrderStatusExpired, id, pkg.OrderStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanOrder(row pgx.Row) (models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Username,
		&order.Plan,
		&order.PanelUsername,
		&order.PanelPassword,
		&order.Amount,
		&order.Fee,
		&order.Total,
		&order.QrisNumber,
		&order.Status,
		&order.CreatedAt,
		&order.ExpiresAt,
		&order.CompletedAt,
	)
	return order, err
}

func collectOrders(rows pgx.Rows) ([]models.Order, error) {
	defer rows.Close()
	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
