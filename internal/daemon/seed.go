package daemon

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/shopadmin/shop-admin/internal/config"
	"github.com/shopadmin/shop-admin/internal/db/models"
)

// seed creates the configured super admin when no super admin exists yet.
func seed(ctx context.Context, cfg *config.Config, conn *gorm.DB) error {
	b := cfg.Auth.Bootstrap

	email := strings.ToLower(strings.TrimSpace(b.Email))
	if email == "" || b.Password == "" {
		return nil
	}

	var count int64
	if err := conn.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleSuperAdmin).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count super admins: %w", err)
	}

	if count > 0 {
		return nil
	}

	if err := conn.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up bootstrap email: %w", err)
	}

	if count > 0 {
		log.Warn().Str("email", email).Msg("bootstrap email belongs to an existing account, no super admin created")
		return nil
	}

	username := b.Username
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}

	user := models.User{
		Username:   username,
		Email:      email,
		Password:   models.HashPassword(b.Password),
		Role:       models.RoleSuperAdmin,
		Status:     models.StatusActive,
		AuthSource: models.AuthSourceLocal,
	}

	if err := conn.WithContext(ctx).Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create super admin: %w", err)
	}

	log.Info().Str("email", email).Msg("created bootstrap super admin")

	return nil
}
