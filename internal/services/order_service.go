package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/panelmurah/ptero-store/internal/configs"
	"github.com/panelmurah/ptero-store/internal/views"
	"github.com/panelmurah/ptero-store/pkg"
	"github.com/panelmurah/ptero-store/pkg/catalog"
	"github.com/panelmurah/ptero-store/pkg/clock"
	"github.com/panelmurah/ptero-store/pkg/models"
	"github.com/panelmurah/ptero-store/pkg/pakasir"
	"github.com/panelmurah/ptero-store/pkg/pterodactyl"
	"github.com/panelmurah/ptero-store/pkg/repositories"
	"github.com/panelmurah/ptero-store/pkg/utils"
	"go.uber.org/zap"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrPaymentCreation = errors.New("failed to create payment")
)

// OrderService is the order lifecycle engine. An order moves pending ->
// completed or pending -> expired, and never leaves a terminal state; the
// first caller to observe a terminal condition wins the transition through a
// conditional update on the store, so provisioning runs at most once per order.
type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, username string, req views.CreateOrderRequest) (views.CreateOrderResponse, error)
	// CheckStatus is the poll endpoint's workhorse and the exactly-once
	// provisioning protocol. Safe to call concurrently for the same order.
	CheckStatus(ctx context.Context, orderID string) (views.OrderStatusResponse, error)
	// ExpireStale transitions overdue pending orders to expired. Invoked by
	// the scheduler; idempotent and safe to run concurrently with polls.
	ExpireStale(ctx context.Context) (int, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]views.OrderView, error)
	ListUserPanels(ctx context.Context, userID uuid.UUID) ([]views.PanelView, error)
}

type OrderServiceImpl struct {
	logger    *zap.Logger
	cnf       *configs.Config
	aesKey    []byte
	gateway   pakasir.Client
	panelAPI  pterodactyl.Client
	orderRepo repositories.OrderRepository
	panelRepo repositories.PanelRepository
	notifier  Notifier
	clock     clock.Clock
}

func NewOrderService(
	logger *zap.Logger,
	cnf *configs.Config,
	aesKey []byte,
	gateway pakasir.Client,
	panelAPI pterodactyl.Client,
	orderRepo repositories.OrderRepository,
	panelRepo repositories.PanelRepository,
	notifier Notifier,
	clk clock.Clock,
) OrderService {
	return &OrderServiceImpl{
		logger:    logger,
		cnf:       cnf,
		aesKey:    aesKey,
		gateway:   gateway,
		panelAPI:  panelAPI,
		orderRepo: orderRepo,
		panelRepo: panelRepo,
		notifier:  notifier,
		clock:     clk,
	}
}

func (s *OrderServiceImpl) CreateOrder(ctx context.Context, userID uuid.UUID, username string, req views.CreateOrderRequest) (views.CreateOrderResponse, error) {
	plan, err := catalog.Resolve(req.Plan)
	if err != nil {
		return views.CreateOrderResponse{}, err
	}

	orderID := newOrderID(s.clock)
	payment, err := s.gateway.CreatePayment(ctx, plan.Price, orderID)
	if err != nil {
		s.logger.Error("payment creation failed",
			zap.String("order_id", orderID), zap.String("plan", plan.ID), zap.Error(err))
		return views.CreateOrderResponse{}, fmt.Errorf("%w: %v", ErrPaymentCreation, err)
	}

	encryptedPassword, err := utils.EncryptAES([]byte(req.PanelPassword), s.aesKey)
	if err != nil {
		return views.CreateOrderResponse{}, err
	}

	now := s.clock.Now()
	order := models.Order{
		ID:            orderID,
		UserID:        userID,
		Username:      username,
		Plan:          plan.ID,
		PanelUsername: strings.ToLower(req.PanelUsername),
		PanelPassword: encryptedPassword,
		Amount:        plan.Price,
		Fee:           payment.Fee,
		Total:         payment.Total,
		QrisNumber:    payment.PaymentNumber,
		Status:        pkg.OrderStatusPending,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.cnf.OrderWindow),
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return views.CreateOrderResponse{}, err
	}

	s.logger.Info("order created",
		zap.String("order_id", orderID),
		zap.String("user_id", userID.String()),
		zap.String("plan", plan.ID),
		zap.Int64("amount", order.Amount),
		zap.Time("expires_at", order.ExpiresAt),
	)

	return views.CreateOrderResponse{
		OrderID:    orderID,
		Amount:     order.Amount,
		Fee:        order.Fee,
		Total:      order.Total,
		QrisNumber: order.QrisNumber,
		ExpiresAt:  order.ExpiresAt,
	}, nil
}

func (s *OrderServiceImpl) CheckStatus(ctx context.Context, orderID string) (views.OrderStatusResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return views.OrderStatusResponse{}, ErrOrderNotFound
	}
	if err != nil {
		return views.OrderStatusResponse{}, err
	}

	now := s.clock.Now()

	// Expiry is decided before any gateway traffic: an order past its window
	// is never re-queried.
	if order.Status == pkg.OrderStatusExpired {
		return views.OrderStatusResponse{Status: views.StatusExpired}, nil
	}
	if order.Status == pkg.OrderStatusPending && order.Expired(now) {
		won, err := s.orderRepo.MarkExpired(ctx, orderID)
		if err != nil {
			return views.OrderStatusResponse{}, err
		}
		if won {
			s.logger.Info("order expired", zap.String("order_id", orderID))
			return views.OrderStatusResponse{Status: views.StatusExpired}, nil
		}
		// Lost the transition to a concurrent caller; re-read to see what won.
		order, err = s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return views.OrderStatusResponse{}, err
		}
		if order.Status != pkg.OrderStatusCompleted {
			return views.OrderStatusResponse{Status: views.StatusExpired}, nil
		}
	}

	// Already completed: serve the stored panel. No gateway or provisioning
	// call happens on this path, which is what makes repeated polls safe.
	if order.Status == pkg.OrderStatusCompleted {
		return s.completedResult(ctx, order)
	}

	status, err := s.gateway.QueryStatus(ctx, orderID, order.Amount)
	if err != nil {
		return views.OrderStatusResponse{}, err
	}
	if status != pakasir.StatusCompleted {
		// unpaid and unknown both leave the order untouched; an unreachable
		// gateway must not move money state in either direction.
		return views.OrderStatusResponse{Status: views.StatusPending}, nil
	}

	// Payment confirmed. Persist completed before provisioning so a crash or
	// provisioning failure leaves a completed order, not a re-chargeable one,
	// and so concurrent pollers funnel into the completed branch above.
	won, err := s.orderRepo.MarkCompleted(ctx, orderID, now)
	if err != nil {
		return views.OrderStatusResponse{}, err
	}
	if !won {
		order, err = s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return views.OrderStatusResponse{}, err
		}
		if order.Status == pkg.OrderStatusExpired {
			return views.OrderStatusResponse{Status: views.StatusExpired}, nil
		}
		return s.completedResult(ctx, order)
	}

	return s.provision(ctx, order)
}

// provision runs the single provisioning attempt the confirmed payment is
// entitled to. The order is already completed in the store at this point.
func (s *OrderServiceImpl) provision(ctx context.Context, order models.Order) (views.OrderStatusResponse, error) {
	plan, err := catalog.Resolve(order.Plan)
	if err != nil {
		return views.OrderStatusResponse{}, err
	}

	password, err := utils.DecryptAES(order.PanelPassword, s.aesKey)
	if err != nil {
		s.logger.Error("failed to decrypt panel password", zap.String("order_id", order.ID), zap.Error(err))
		return s.setupFailed(), nil
	}

	account, err := s.panelAPI.CreateAccount(ctx, plan, order.PanelUsername, string(password), "")
	if err != nil {
		s.logger.Error("panel provisioning failed",
			zap.String("order_id", order.ID), zap.String("plan", plan.ID), zap.Error(err))
		return s.setupFailed(), nil
	}

	now := s.clock.Now()
	panel := models.Panel{
		PanelUserID: account.UserID,
		ServerID:    account.ServerID,
		ServerUUID:  account.ServerUUID,
		Identifier:  account.Identifier,
		Username:    account.Username,
		Password:    account.Password,
		Email:       account.Email,
		Plan:        account.Plan,
		Specs: models.PanelSpecs{
			RAM:  account.Specs.RAM,
			CPU:  account.Specs.CPU,
			Disk: account.Specs.Disk,
		},
		LoginURL:  account.LoginURL,
		OwnerID:   order.UserID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cnf.PanelValidity),
	}
	if err := s.panelRepo.Create(ctx, panel); err != nil {
		s.logger.Error("failed to persist panel record",
			zap.String("order_id", order.ID), zap.Int("server_id", panel.ServerID), zap.Error(err))
		return s.setupFailed(), nil
	}

	s.notifier.Notify(ctx, views.Event{
		Kind:      pkg.EventPanelCreated,
		Username:  order.Username,
		Plan:      panel.Plan,
		ServerID:  panel.ServerID,
		Timestamp: now,
	})
	s.notifier.Notify(ctx, views.Event{
		Kind:      pkg.EventOrderPaid,
		Username:  order.Username,
		OrderID:   order.ID,
		Plan:      order.Plan,
		Amount:    order.Amount,
		Timestamp: now,
	})

	s.logger.Info("order completed and panel provisioned",
		zap.String("order_id", order.ID), zap.Int("server_id", panel.ServerID))

	view := views.ToPanelView(panel)
	return views.OrderStatusResponse{Status: views.StatusCompleted, Panel: &view}, nil
}

// completedResult serves a poll against an order that is already completed.
func (s *OrderServiceImpl) completedResult(ctx context.Context, order models.Order) (views.OrderStatusResponse, error) {
	panel, err := s.panelRepo.FindByUsername(ctx, order.PanelUsername)
	if errors.Is(err, repositories.ErrNotFound) {
		// Payment settled but no panel exists: provisioning failed earlier.
		// Reconciliation is manual; the engine never retries on its own.
		return s.setupFailed(), nil
	}
	if err != nil {
		return views.OrderStatusResponse{}, err
	}
	view := views.ToPanelView(panel)
	return views.OrderStatusResponse{Status: views.StatusCompleted, Panel: &view}, nil
}

func (s *OrderServiceImpl) setupFailed() views.OrderStatusResponse {
	return views.OrderStatusResponse{
		Status:  views.StatusError,
		Message: "payment received but panel setup failed; contact support",
	}
}

func (s *OrderServiceImpl) ExpireStale(ctx context.Context) (int, error) {
	pending, err := s.orderRepo.ListPending(ctx)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	expired := 0
	for _, order := range pending {
		if !order.Expired(now) {
			continue
		}
		won, err := s.orderRepo.MarkExpired(ctx, order.ID)
		if err != nil {
			s.logger.Error("failed to expire order", zap.String("order_id", order.ID), zap.Error(err))
			continue
		}
		if won {
			expired++
		}
	}
	if expired > 0 {
		s.logger.Info("expired stale orders", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *OrderServiceImpl) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]views.OrderView, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]views.OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, views.ToOrderView(o))
	}
	return out, nil
}

func (s *OrderServiceImpl) ListUserPanels(ctx context.Context, userID uuid.UUID) ([]views.PanelView, error) {
	panels, err := s.panelRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]views.PanelView, 0, len(panels))
	for _, p := range panels {
		out = append(out, views.ToPanelView(p))
	}
	return out, nil
}

// newOrderID builds the external payment reference. The uuid suffix keeps ids
// unguessable; the timestamp keeps them readable in gateway dashboards.
func newOrderID(clk clock.Clock) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("PANEL-%d-%s", clk.Now().UnixMilli(), suffix)
}
