package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopadmin/shop-admin/internal/config"
	"github.com/shopadmin/shop-admin/internal/db/models"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		engine string
		want   string
	}{
		{config.EngineMySQL, "mysql"},
		{"", "mysql"},
		{config.EnginePostgres, "postgres"},
		{config.EngineSQLite, "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			cfg := &config.Config{DB: config.DB{GormEngine: tt.engine, Path: ":memory:"}}
			assert.Equal(t, tt.want, Dialector(cfg).Name())
		})
	}
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	cfg := &config.Config{
		DB: config.DB{
			GormEngine: config.EngineSQLite,
			Path:       filepath.Join(t.TempDir(), "shop.db"),
		},
	}

	db, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, db.Create(&models.User{Username: "a", Email: "a@example.com"}).Error)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
