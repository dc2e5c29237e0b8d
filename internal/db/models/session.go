package models

import "time"

// Session is the server side record a JWT points to. A token is only honored
// while its session row exists, is active and has not expired.
type Session struct {
	ID         string    `gorm:"primaryKey;size:36"    json:"id"`
	UserID     uint64    `gorm:"index;not null"        json:"userId"`
	Token      string    `gorm:"type:text"             json:"-"`
	DeviceInfo string    `gorm:"size:500"              json:"deviceInfo"`
	IsActive   bool      `gorm:"not null"              json:"isActive"`
	ExpiresAt  time.Time `gorm:"index"                 json:"expiresAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Idle reports whether the session has gone unused for longer than timeout.
// Rows without activity fall back to their creation time.
func (s *Session) Idle(now time.Time, timeout time.Duration) bool {
	last := s.LastSeenAt
	if last.IsZero() {
		last = s.CreatedAt
	}

	return timeout > 0 && !last.IsZero() && now.Sub(last) > timeout
}
