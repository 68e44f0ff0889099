package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/repository"
	"github.com/talkincode/toughpos/internal/service"
)

const (
	superName     = "Administrator"
	superEmail    = "admin@gmail.com"
	superPassword = "password"
)

// checkSuper creates the default administrator when no user exists yet
func (a *Application) checkSuper(ctx context.Context) {
	users := repository.NewGormUserRepository(a.gormDB)
	count, err := users.Count(ctx)
	if err != nil {
		zap.L().Error("failed to count users", zap.Error(err))
		return
	}
	if count > 0 {
		return
	}

	hashed, err := service.HashPassword(superPassword)
	if err != nil {
		zap.L().Error("failed to hash default admin password", zap.Error(err))
		return
	}
	if err := users.Create(ctx, &domain.User{
		Name:     superName,
		Email:    superEmail,
		Password: hashed,
	}); err != nil {
		zap.L().Error("failed to create default admin", zap.Error(err))
		return
	}
	zap.L().Warn("initialized default admin account, change its password",
		zap.String("email", superEmail))
}
