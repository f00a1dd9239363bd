// Package bootstrap wires the database, Redis and development fixtures a
// process needs before it serves requests.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"melodia/internal/cache"
	"melodia/internal/config"
	"melodia/internal/database"
	"melodia/internal/middleware"
	"melodia/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs migrations according to DB_SCHEMA_MODE.
	ApplySchema bool
	// SkipRedis leaves the Redis client nil (CLI tools that never cache).
	SkipRedis bool
}

// InitRuntime connects to DB and Redis and ensures the development root admin.
// The returned Redis client is nil when Redis is unreachable or skipped.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return nil, nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	var rdb *redis.Client
	if !opts.SkipRedis {
		rdb = cache.InitRedis(cfg.RedisURL)
	}

	if err := ensureDevRootAdmin(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	return db, rdb, nil
}

func ensureDevRootAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	username := strings.TrimSpace(cfg.DevRootUsername)
	if username == "" {
		username = "melodia_root"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@melodia.local"
	}
	password := cfg.DevRootPassword
	if password == "" {
		return errors.New("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root models.User
		findErr := tx.Where("email = ?", email).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{
				Email:    email,
				Username: &username,
				Password: string(hashedPassword),
				IsAdmin:  true,
			}
			return tx.Create(&root).Error
		case findErr != nil:
			return findErr
		default:
			return tx.Model(&models.User{}).Where("id = ?", root.ID).Update("is_admin", true).Error
		}
	})
	if err != nil {
		return err
	}

	middleware.Logger.Info("development root admin ensured", slog.String("email", email))
	return nil
}
