package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/panelmurah/ptero-store/pkg"
	"github.com/panelmurah/ptero-store/pkg/clock"
	"github.com/panelmurah/ptero-store/pkg/models"
	"github.com/panelmurah/ptero-store/pkg/pterodactyl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type adminFixture struct {
	svc      AdminService
	orders   *fakeOrderRepo
	panels   *fakePanelRepo
	panelAPI *fakePanelAPI
	notifier *recordingNotifier
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	f := &adminFixture{
		orders:   newFakeOrderRepo(),
		panels:   newFakePanelRepo(),
		panelAPI: &fakePanelAPI{},
		notifier: &recordingNotifier{},
	}
	f.svc = NewAdminService(zap.NewNop(), f.panelAPI, f.orders, f.panels, f.notifier,
		clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))
	return f
}

func seedPanel(t *testing.T, f *adminFixture, username string, serverID int) {
	t.Helper()
	require.NoError(t, f.panels.Create(context.Background(), models.Panel{
		Username: username,
		ServerID: serverID,
		OwnerID:  uuid.New(),
		Plan:     "1gb",
	}))
}

func TestDeletePanel(t *testing.T) {
	f := newAdminFixture(t)
	seedPanel(t, f, "budi", 42)

	require.NoError(t, f.svc.DeletePanel(context.Background(), 42))

	assert.Equal(t, 0, f.panels.count())
	assert.Equal(t, int32(1), f.panelAPI.deleteCalls.Load())
	assert.Equal(t, []pkg.EventKind{pkg.EventPanelDeleted}, f.notifier.kinds())
}

func TestDeletePanelRemoteFailureKeepsRecord(t *testing.T) {
	f := newAdminFixture(t)
	seedPanel(t, f, "budi", 42)
	f.panelAPI.deleteErr = &pterodactyl.ProvisionError{Step: "delete server", Detail: "502"}

	err := f.svc.DeletePanel(context.Background(), 42)
	require.Error(t, err)

	// record survives until the remote delete is confirmed
	assert.Equal(t, 1, f.panels.count())
	assert.Empty(t, f.notifier.kinds())
}

func TestDeletePanelRemoteAlreadyGone(t *testing.T) {
	f := newAdminFixture(t)
	seedPanel(t, f, "budi", 42)
	f.panelAPI.deleteErr = pterodactyl.ErrServerNotFound

	require.NoError(t, f.svc.DeletePanel(context.Background(), 42))
	assert.Equal(t, 0, f.panels.count())
}

func TestDeletePanelUnknownServer(t *testing.T) {
	f := newAdminFixture(t)

	err := f.svc.DeletePanel(context.Background(), 999)
	assert.ErrorIs(t, err, ErrPanelNotFound)
}

func TestAdminListings(t *testing.T) {
	f := newAdminFixture(t)
	seedPanel(t, f, "budi", 1)
	seedPanel(t, f, "sari", 2)
	require.NoError(t, f.orders.Create(context.Background(), models.Order{
		ID:     "PANEL-1-AAAA",
		UserID: uuid.New(),
		Plan:   "1gb",
		Status: pkg.OrderStatusPending,
	}))

	panels, err := f.svc.ListPanels(context.Background())
	require.NoError(t, err)
	assert.Len(t, panels, 2)

	orders, err := f.svc.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "PANEL-1-AAAA", orders[0].ID)
}
