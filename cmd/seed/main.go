package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"blogdesk/internal/auth"
	"blogdesk/internal/config"
	"blogdesk/internal/db"
	"blogdesk/internal/logger"
	"blogdesk/internal/model"
	"blogdesk/internal/repository"
	"blogdesk/internal/service"
)

func main() {
	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "admin password, used only when the account is created")
	name := flag.String("name", "Administrator", "display name for a new account")
	flag.Parse()

	cfg := config.Load()
	lg := logger.New("blogdesk-seed", cfg.LogLevel)

	if strings.TrimSpace(*email) == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -email admin@example.com -password secret [-name Administrator]")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, closeStore, err := openUsers(ctx, cfg)
	if err != nil {
		lg.Fatalf("open store: %v", err)
	}
	defer closeStore()

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	user, created, err := seedAdmin(ctx, users, hasher, *name, *email, *password)
	if err != nil {
		lg.Errorj(log.JSON{"action": "seed_admin_failed", "email": *email, "error": err.Error()})
		closeStore()
		os.Exit(1)
	}

	action := "admin_promoted"
	if created {
		action = "admin_created"
	}
	lg.Infoj(log.JSON{"action": action, "user_id": user.ID, "email": user.Email, "store": cfg.StoreDriver})
}

func openUsers(ctx context.Context, cfg *config.Config) (repository.UserRepository, func(), error) {
	if cfg.StoreDriver == config.DriverMongo {
		mongo := db.NewMongo(cfg.MongoURI, cfg.MongoDatabase)
		mongo.OnConnect(repository.CreateMongoIndexes)
		if err := mongo.Ping(ctx); err != nil {
			return nil, nil, err
		}
		return repository.NewMongoUserRepository(mongo), func() { _ = mongo.Close(context.Background()) }, nil
	}

	gormDB, err := db.NewSQL(cfg.StoreDriver, cfg.SQLDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(gormDB); err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return repository.NewUserRepository(gormDB), closeFn, nil
}

// seedAdmin creates an admin account for email, or promotes the existing
// account. It reports whether a new account was created.
func seedAdmin(ctx context.Context, users repository.UserRepository, hasher auth.PasswordHasher, name, email, password string) (*model.User, bool, error) {
	email = service.NormalizeEmail(email)

	existing, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == model.RoleAdmin {
			return existing, false, nil
		}
		promoted, err := users.UpdateRole(ctx, existing.ID, model.RoleAdmin)
		if err != nil {
			return nil, false, fmt.Errorf("promote %s: %w", email, err)
		}
		return promoted, false, nil
	case !stderrors.Is(err, repository.ErrNotFound):
		return nil, false, fmt.Errorf("lookup %s: %w", email, err)
	}

	if len(password) < 6 {
		return nil, false, fmt.Errorf("password must be at least 6 characters")
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, false, err
	}

	user := &model.User{
		ID:           model.NewID(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create %s: %w", email, err)
	}
	return user, true, nil
}
