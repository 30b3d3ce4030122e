package services

import (
	"context"
	"errors"

	"github.com/panelmurah/ptero-store/internal/views"
	"github.com/panelmurah/ptero-store/pkg"
	"github.com/panelmurah/ptero-store/pkg/clock"
	"github.com/panelmurah/ptero-store/pkg/pterodactyl"
	"github.com/panelmurah/ptero-store/pkg/repositories"
	"go.uber.org/zap"
)

var ErrPanelNotFound = errors.New("panel not found")

// AdminService covers the operator surface: fleet-wide listings and server
// teardown.
type AdminService interface {
	ListOrders(ctx context.Context) ([]views.OrderView, error)
	ListPanels(ctx context.Context) ([]views.PanelView, error)
	// DeletePanel removes the server on the remote panel first and drops the
	// local record only after the remote side confirmed the delete. A server
	// already gone remotely still clears the local record.
	DeletePanel(ctx context.Context, serverID int) error
}

type AdminServiceImpl struct {
	logger    *zap.Logger
	panelAPI  pterodactyl.Client
	orderRepo repositories.OrderRepository
	panelRepo repositories.PanelRepository
	notifier  Notifier
	clock     clock.Clock
}

func NewAdminService(
	logger *zap.Logger,
	panelAPI pterodactyl.Client,
	orderRepo repositories.OrderRepository,
	panelRepo repositories.PanelRepository,
	notifier Notifier,
	clk clock.Clock,
) AdminService {
	return &AdminServiceImpl{
		logger:    logger,
		panelAPI:  panelAPI,
		orderRepo: orderRepo,
		panelRepo: panelRepo,
		notifier:  notifier,
		clock:     clk,
	}
}

func (s *AdminServiceImpl) ListOrders(ctx context.Context) ([]views.OrderView, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]views.OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, views.ToOrderView(o))
	}
	return out, nil
}

func (s *AdminServiceImpl) ListPanels(ctx context.Context) ([]views.PanelView, error) {
	panels, err := s.panelRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]views.PanelView, 0, len(panels))
	for _, p := range panels {
		out = append(out, views.ToPanelView(p))
	}
	return out, nil
}

func (s *AdminServiceImpl) DeletePanel(ctx context.Context, serverID int) error {
	err := s.panelAPI.DeleteServer(ctx, serverID)
	if err != nil && !errors.Is(err, pterodactyl.ErrServerNotFound) {
		s.logger.Error("remote server delete failed",
			zap.Int("server_id", serverID), zap.Error(err))
		return err
	}
	if errors.Is(err, pterodactyl.ErrServerNotFound) {
		s.logger.Warn("server already gone on remote panel, clearing local record",
			zap.Int("server_id", serverID))
	}

	removed, err := s.panelRepo.DeleteByServerID(ctx, serverID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrPanelNotFound
	}

	s.logger.Info("panel deleted", zap.Int("server_id", serverID))
	s.notifier.Notify(ctx, views.Event{
		Kind:      pkg.EventPanelDeleted,
		ServerID:  serverID,
		Timestamp: s.clock.Now(),
	})
	return nil
}
