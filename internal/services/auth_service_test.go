package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/panelmurah/ptero-store/internal/configs"
	"github.com/panelmurah/ptero-store/internal/views"
	"github.com/panelmurah/ptero-store/pkg"
	"github.com/panelmurah/ptero-store/pkg/clock"
	middleware "github.com/panelmurah/ptero-store/pkg/middlewares"
	"github.com/panelmurah/ptero-store/pkg/models"
	"github.com/panelmurah/ptero-store/pkg/repositories"
	"github.com/panelmurah/ptero-store/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]models.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	f.users[user.Username] = user
	return nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[username]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]middleware.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]middleware.Session)}
}

func (f *fakeSessionStore) Put(_ context.Context, token string, session middleware.Session, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[token] = session
	return nil
}

func (f *fakeSessionStore) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

type authFixture struct {
	svc      AuthService
	users    *fakeUserRepo
	sessions *fakeSessionStore
	notifier *recordingNotifier
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:    newFakeUserRepo(),
		sessions: newFakeSessionStore(),
		notifier: &recordingNotifier{},
	}
	cnf := &configs.Config{SessionTTL: 24 * time.Hour}
	f.svc = NewAuthService(zap.NewNop(), cnf, f.users, f.sessions, f.notifier,
		clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))
	return f
}

func registerReq() views.RegisterRequest {
	return views.RegisterRequest{
		Username:        "Budi",
		Email:           "Budi@example.com",
		Password:        "rahasia123",
		ConfirmPassword: "rahasia123",
	}
}

func TestRegister(t *testing.T) {
	f := newAuthFixture(t)

	require.NoError(t, f.svc.Register(context.Background(), registerReq()))

	user, err := f.users.FindByUsername(context.Background(), "budi")
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", user.Email)
	assert.Equal(t, pkg.RoleUser, user.Role)
	assert.NotEqual(t, "rahasia123", user.PasswordHash)
	assert.True(t, utils.CheckPassword(user.PasswordHash, "rahasia123"))
	assert.Equal(t, []pkg.EventKind{pkg.EventAccountRegistered}, f.notifier.kinds())
}

func TestRegisterPasswordMismatch(t *testing.T) {
	f := newAuthFixture(t)

	req := registerReq()
	req.ConfirmPassword = "different"
	assert.ErrorIs(t, f.svc.Register(context.Background(), req), ErrPasswordMismatch)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	f := newAuthFixture(t)

	require.NoError(t, f.svc.Register(context.Background(), registerReq()))
	assert.ErrorIs(t, f.svc.Register(context.Background(), registerReq()), ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	require.NoError(t, f.svc.Register(context.Background(), registerReq()))

	resp, err := f.svc.Login(context.Background(), views.LoginRequest{
		Username: "budi",
		Password: "rahasia123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "budi", resp.Username)
	assert.Equal(t, string(pkg.RoleUser), resp.Role)

	session, ok := f.sessions.sessions[resp.Token]
	require.True(t, ok)
	assert.Equal(t, "budi", session.Username)
	assert.Equal(t, pkg.RoleUser, session.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	require.NoError(t, f.svc.Register(context.Background(), registerReq()))

	_, err := f.svc.Login(context.Background(), views.LoginRequest{
		Username: "budi",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), views.LoginRequest{
		Username: "ghost",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)
	require.NoError(t, f.svc.Register(context.Background(), registerReq()))

	resp, err := f.svc.Login(context.Background(), views.LoginRequest{
		Username: "budi",
		Password: "rahasia123",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), resp.Token))
	_, ok := f.sessions.sessions[resp.Token]
	assert.False(t, ok)

	// logging out twice is harmless
	require.NoError(t, f.svc.Logout(context.Background(), resp.Token))
}
