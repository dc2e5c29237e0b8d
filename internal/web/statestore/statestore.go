// Package statestore keeps the short lived OAuth state values between the
// redirect to the provider and its callback.
package statestore

import (
	"errors"
	"time"

	"github.com/gofiber/storage/mysql/v2"
	"github.com/gofiber/storage/postgres/v3"
	"github.com/patrickmn/go-cache"

	"github.com/shopadmin/shop-admin/internal/auth"
	"github.com/shopadmin/shop-admin/internal/config"
	"github.com/shopadmin/shop-admin/internal/db/dsn"
)

const (
	// Table holds the states in the sql backed storages.
	Table = "oauth_states"

	gcInterval = 10 * time.Minute
)

// ErrUnknownState is returned for a state that was never issued, already
// used or expired.
var ErrUnknownState = errors.New("unknown or expired oauth state")

// Storage is the part of the gofiber storage drivers the store needs.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Delete(key string) error
}

// Open returns a storage in the configured database. SQLite has no gofiber
// driver in this build, it gets the in-memory storage.
func Open(cfg *config.Config) Storage {
	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		return postgres.New(postgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         Table,
			GCInterval:    gcInterval,
		})
	case config.EngineSQLite:
		return NewMemory()
	default:
		return mysql.New(mysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         Table,
			GCInterval:    gcInterval,
		})
	}
}

// Memory is a Storage on top of go-cache.
type Memory struct {
	c *cache.Cache
}

// NewMemory creates an empty in-memory storage.
func NewMemory() *Memory {
	return &Memory{c: cache.New(cache.NoExpiration, gcInterval)}
}

// Get returns nil for a missing key, like the gofiber drivers.
func (m *Memory) Get(key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, nil
	}

	b, _ := v.([]byte)

	return b, nil
}

// Set stores val for exp, zero keeps it forever.
func (m *Memory) Set(key string, val []byte, exp time.Duration) error {
	if exp <= 0 {
		exp = cache.NoExpiration
	}

	m.c.Set(key, val, exp)

	return nil
}

// Delete removes key.
func (m *Memory) Delete(key string) error {
	m.c.Delete(key)

	return nil
}

// Store issues and consumes OAuth states.
type Store struct {
	storage Storage
	ttl     time.Duration
}

// New creates a store keeping states for ttl.
func New(storage Storage, ttl time.Duration) *Store {
	if storage == nil {
		panic("storage is nil")
	}

	return &Store{storage: storage, ttl: ttl}
}

// Issue creates and remembers a new state.
func (s *Store) Issue() (string, error) {
	state, err := auth.GenerateStateToken()
	if err != nil {
		return "", err
	}

	if err = s.storage.Set(key(state), []byte{1}, s.ttl); err != nil {
		return "", err
	}

	return state, nil
}

// Consume checks that state was issued and forgets it, a state is good for
// one callback.
func (s *Store) Consume(state string) error {
	if state == "" {
		return ErrUnknownState
	}

	v, err := s.storage.Get(key(state))
	if err != nil {
		return err
	}

	if len(v) == 0 {
		return ErrUnknownState
	}

	return s.storage.Delete(key(state))
}

func key(state string) string {
	return "oauth_state:" + state
}
