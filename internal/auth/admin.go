package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/shopadmin/shop-admin/internal/db/models"
)

// CreateAdmin creates an active admin account on behalf of actor.
func (s *Service) CreateAdmin(ctx context.Context, actor *models.User, in RegisterInput) (*models.User, error) {
	if err := in.check(s.validate); err != nil {
		return nil, err
	}

	if err := s.checkPassword(ctx, in.Password); err != nil {
		return nil, err
	}

	email := normalizeEmail(in.Email)
	if err := s.emailTaken(ctx, email); err != nil {
		return nil, err
	}

	user := &models.User{
		Email:      email,
		Username:   strings.TrimSpace(in.Username),
		Password:   models.HashPassword(in.Password),
		Role:       models.RoleAdmin,
		Status:     models.StatusActive,
		AuthSource: models.AuthSourceLocal,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	log.Info().Uint64("id", user.ID).Uint64("by", actor.ID).Msg("admin account created")

	if err := s.notifier.SendAdminCreated(ctx, user.Email, user.Username); err != nil {
		log.Warn().Err(err).Uint64("id", user.ID).Msg("failed to send admin welcome email")
	}

	return user, nil
}

// DeleteAdmin removes an admin account and its sessions. Only super admins
// may do this and never to themselves.
func (s *Service) DeleteAdmin(ctx context.Context, actor *models.User, id uint64) error {
	if actor.Role != models.RoleSuperAdmin {
		return ErrSuperAdminOnly
	}

	if actor.ID == id {
		return ErrSelfDelete
	}

	target, err := s.userByID(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return ErrAdminNotFound
	}

	if err != nil {
		return err
	}

	if target.Role != models.RoleAdmin {
		return ErrNotAdminAccount
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errSess := tx.Where("user_id = ?", target.ID).Delete(&models.Session{}).Error; errSess != nil {
			return errSess
		}

		return tx.Delete(target).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete admin: %w", err)
	}

	log.Info().Uint64("id", target.ID).Uint64("by", actor.ID).Msg("admin account deleted")

	return nil
}

// UserQuery filters the user listing.
type UserQuery struct {
	Skip   int
	Limit  int
	Search string
	Role   string
	Status string
}

// ListUsers returns one page of users and the total number of matches.
func (s *Service) ListUsers(ctx context.Context, q UserQuery) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
	)

	query := s.db.WithContext(ctx).Model(&models.User{})

	if q.Role != "" {
		query = query.Where("role = ?", q.Role)
	}

	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}

	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(username) LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at desc").Limit(q.Limit).Offset(q.Skip).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// SetStatus activates or deactivates userID. Deactivation closes every
// session of the user. Actors can only manage accounts ranked below them.
func (s *Service) SetStatus(ctx context.Context, actor *models.User, userID uint64, status string) (*models.User, error) {
	if userID == 0 {
		return nil, ErrUserIDRequired
	}

	next := models.Status(status)
	if next != models.StatusActive && next != models.StatusInactive {
		return nil, ErrInvalidStatus
	}

	target, err := s.userByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if target.ID == actor.ID {
		return nil, ErrSelfStatus
	}

	if target.Role.Rank() >= actor.Role.Rank() {
		return nil, ErrPeerAccount
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errUpd := tx.Model(target).Update("status", next).Error; errUpd != nil {
			return errUpd
		}

		if next == models.StatusInactive {
			return tx.Where("user_id = ?", target.ID).Delete(&models.Session{}).Error
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	target.Status = next

	log.Info().Uint64("id", target.ID).Uint64("by", actor.ID).Str("status", status).Msg("user status changed")

	if errSend := s.notifier.SendStatusChanged(ctx, target.Email, target.Username, status); errSend != nil {
		log.Warn().Err(errSend).Uint64("id", target.ID).Msg("failed to send status notice")
	}

	return target, nil
}
