// Seeds the bootstrap admin account so a fresh deployment has an operator
// login before any user registers.
//
// Example:
//
//	go run ./cmd/seed -username=admin -email=admin@example.com -password=changeme
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/panelmurah/ptero-store/internal/configs"
	"github.com/panelmurah/ptero-store/pkg"
	"github.com/panelmurah/ptero-store/pkg/database"
	"github.com/panelmurah/ptero-store/pkg/models"
	"github.com/panelmurah/ptero-store/pkg/repositories"
	"github.com/panelmurah/ptero-store/pkg/utils"
	"go.uber.org/zap"
)

var (
	username = flag.String("username", "admin", "Admin username")
	email    = flag.String("email", "admin@localhost", "Admin email")
	password = flag.String("password", "", "Admin password (required)")
)

func main() {
	flag.Parse()

	pkg.InitLogger()
	logger := pkg.Logger

	if utils.IsEmpty(*password) {
		logger.Error("missing -password flag")
		os.Exit(1)
	}

	cfg, err := configs.Load(logger)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx := context.Background()
	db, disconnect, err := database.New(ctx, logger, database.Config{
		PrimaryDSN: cfg.PrimaryDbAddr,
		MaxConns:   cfg.MaxDbCons,
		MinConns:   cfg.MinDbCons,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer disconnect()

	if err := database.RunMigrations(logger, cfg.PrimaryDbAddr); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	hash, err := utils.HashPassword(*password)
	if err != nil {
		logger.Fatal("failed to hash password", zap.Error(err))
	}

	userRepo := repositories.NewUserRepository(db)
	err = userRepo.Create(ctx, models.User{
		ID:           uuid.New(),
		Username:     *username,
		Email:        *email,
		PasswordHash: hash,
		Role:         pkg.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	switch {
	case errors.Is(err, repositories.ErrDuplicate):
		logger.Warn("admin user already exists", zap.String("username", *username))
	case err != nil:
		logger.Fatal("failed to create admin user", zap.Error(err))
	default:
		logger.Info("admin user created", zap.String("username", *username))
	}
}
