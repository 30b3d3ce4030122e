package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SessionStore holds login sessions keyed by token. The production store is
// Redis, which the auth middleware reads from on every request.
type SessionStore interface {
	Put(ctx context.Context, token string, session middleware.Session, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}

type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (r *RedisSessionStore) Put(ctx context.Context, token string, session middleware.Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, middleware.SessionKeyPrefix+token, payload, ttl).Err()
}

func (r *RedisSessionStore) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, middleware.SessionKeyPrefix+token).Err()
}

var (
	ErrUsernameTaken      = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

type AuthService interface {
	Register(ctx context.Context, req views.RegisterRequest) error
	Login(ctx context.Context, req views.LoginRequest) (views.LoginResponse, error)
	Logout(ctx context.Context, token string) error
}

type AuthServiceImpl struct {
	logger   *zap.Logger
	cnf      *configs.Config
	userRepo repositories.UserRepository
	sessions SessionStore
	notifier Notifier
	clock    clock.Clock
}

func NewAuthService(
	logger *zap.Logger,
	cnf *configs.Config,
	userRepo repositories.UserRepository,
	sessions SessionStore,
	notifier Notifier,
	clk clock.Clock,
) AuthService {
	return &AuthServiceImpl{
		logger:   logger,
		cnf:      cnf,
		userRepo: userRepo,
		sessions: sessions,
		notifier: notifier,
		clock:    clk,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, req views.RegisterRequest) error {
	if req.Password != req.ConfirmPassword {
		return ErrPasswordMismatch
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := models.User{
		ID:           uuid.New(),
		Username:     strings.ToLower(req.Username),
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		Role:         pkg.RoleUser,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return ErrUsernameTaken
		}
		return err
	}

	s.logger.Info("user registered", zap.String("username", user.Username))
	s.notifier.Notify(ctx, views.Event{
		Kind:      pkg.EventAccountRegistered,
		Username:  user.Username,
		Timestamp: user.CreatedAt,
	})
	return nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, req views.LoginRequest) (views.LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.ToLower(req.Username))
	if errors.Is(err, repositories.ErrNotFound) {
		return views.LoginResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return views.LoginResponse{}, err
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return views.LoginResponse{}, ErrInvalidCredentials
	}

	token := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	session := middleware.Session{
		UserID:   user.ID.String(),
		Username: user.Username,
		Role:     user.Role,
	}
	if err := s.sessions.Put(ctx, token, session, s.cnf.SessionTTL); err != nil {
		return views.LoginResponse{}, err
	}

	s.logger.Info("user logged in", zap.String("username", user.Username))
	return views.LoginResponse{
		Token:    token,
		Username: user.Username,
		Role:     string(user.Role),
	}, nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	// deleting an already-gone token is a no-op, not an error
	return s.sessions.Delete(ctx, token)
}
