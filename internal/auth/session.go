package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopadmin/shop-admin/internal/db/models"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	User    *models.User
	Session *models.Session
	Claims  *Claims
}

// seenGranularity throttles the last activity writes of Authenticate.
const seenGranularity = time.Minute

// Sessions binds access tokens to session rows.
type Sessions struct {
	db     *gorm.DB
	tokens *TokenIssuer
	policy Policy
	now    func() time.Time
}

// NewSessions creates the session manager.
func NewSessions(db *gorm.DB, tokens *TokenIssuer) *Sessions {
	return &Sessions{db: db, tokens: tokens, now: time.Now}
}

// ExpireIdle ends sessions unused for longer than the site wide session
// timeout (GlobalSettings.SessionTimeout, minutes).
func (s *Sessions) ExpireIdle(policy Policy) *Sessions {
	s.policy = policy

	return s
}

func (s *Sessions) idleTimeout(ctx context.Context) (time.Duration, error) {
	if s.policy == nil {
		return 0, nil
	}

	gs, err := s.policy.Global(ctx)
	if err != nil {
		return 0, err
	}

	return time.Duration(gs.SessionTimeout) * time.Minute, nil
}

// Create opens a session for user and returns its signed token.
func (s *Sessions) Create(ctx context.Context, user *models.User, deviceInfo string) (string, *models.Session, error) {
	now := s.now()

	sess := &models.Session{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		DeviceInfo: deviceInfo,
		IsActive:   true,
		ExpiresAt:  now.Add(s.tokens.TTL()),
		LastSeenAt: now,
	}

	token, err := s.tokens.Issue(user, sess.ID, now)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	sess.Token = token

	if err = s.db.WithContext(ctx).Create(sess).Error; err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	return token, sess, nil
}

// Authenticate resolves raw to a principal. The token must verify and its
// session row must exist, be active, unexpired and not idle, and belong to an
// active user.
func (s *Sessions) Authenticate(ctx context.Context, raw string) (*Principal, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}

	var sess models.Session

	err = s.db.WithContext(ctx).Where("id = ? AND user_id = ?", claims.SessionID, claims.UserID).
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}

	if err != nil {
		return nil, err
	}

	now := s.now()

	if !sess.IsActive || sess.Expired(now) || !SameCode(sess.Token, raw) {
		return nil, ErrSessionRevoked
	}

	idle, err := s.idleTimeout(ctx)
	if err != nil {
		return nil, err
	}

	if sess.Idle(now, idle) {
		return nil, ErrSessionRevoked
	}

	if now.Sub(sess.LastSeenAt) > seenGranularity {
		err = s.db.WithContext(ctx).Model(&sess).UpdateColumn("last_seen_at", now).Error
		if err != nil {
			return nil, fmt.Errorf("failed to touch session: %w", err)
		}
	}

	var user models.User
	if err = s.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	if !user.IsActive() {
		return nil, &AccountStatusError{Status: user.Status}
	}

	return &Principal{User: &user, Session: &sess, Claims: claims}, nil
}

// Delete removes one session.
func (s *Sessions) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// Revoke removes a session of userID.
func (s *Sessions) Revoke(ctx context.Context, userID uint64, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Session{})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteForUser removes every session of userID except the ids in keep.
func (s *Sessions) DeleteForUser(ctx context.Context, userID uint64, keep ...string) (int64, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}

	res := q.Delete(&models.Session{})

	return res.RowsAffected, res.Error
}

// List returns the active sessions of userID, newest first.
func (s *Sessions) List(ctx context.Context, userID uint64) ([]models.Session, error) {
	var list []models.Session

	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND expires_at > ?", userID, true, s.now()).
		Order("created_at desc").Find(&list).Error
	if err != nil {
		return nil, err
	}

	return list, nil
}

// PurgeExpired removes sessions past their expiry.
func (s *Sessions) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", s.now()).Delete(&models.Session{})

	return res.RowsAffected, res.Error
}
