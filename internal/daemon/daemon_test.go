package daemon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopadmin/shop-admin/internal/config"
	"github.com/shopadmin/shop-admin/internal/db/dbtest"
	"github.com/shopadmin/shop-admin/internal/db/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()

	return &config.Config{
		Title: "Shop Admin",
		DB: config.DB{
			GormEngine: config.EngineSQLite,
			Path:       filepath.Join(dir, "shop.db"),
		},
		Webserver: config.Webserver{
			Port:         8800,
			URL:          "http://localhost:8800",
			FrontendURL:  "http://localhost:3000",
			ShutDownTime: 1,
		},
		Auth: config.Auth{
			JWTSecret:     "test-secret",
			TokenTTL:      time.Hour,
			OTPTTL:        5 * time.Minute,
			ResetCodeTTL:  10 * time.Minute,
			OAuthStateTTL: 10 * time.Minute,
			Bootstrap: config.Bootstrap{
				Email:    "Root@Shop.test",
				Password: "changeme123",
			},
		},
		Media:  config.Media{Driver: config.MediaDriverLocal, UploadDir: filepath.Join(dir, "uploads")},
		Backup: config.Backup{Dir: filepath.Join(dir, "backups"), Timeout: time.Minute},
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.New(t)
	cfg := testConfig(t)

	require.NoError(t, seed(ctx, cfg, conn))
	require.NoError(t, seed(ctx, cfg, conn), "seeding twice must not fail")

	var users []models.User
	require.NoError(t, conn.Find(&users).Error)
	require.Len(t, users, 1)

	u := users[0]
	assert.Equal(t, "root@shop.test", u.Email)
	assert.Equal(t, "root", u.Username)
	assert.Equal(t, models.RoleSuperAdmin, u.Role)
	assert.Equal(t, models.StatusActive, u.Status)
	assert.NotEqual(t, "changeme123", u.Password)
}

func TestSeedSkips(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
		prep   func(t *testing.T, cfg *config.Config) []models.User
	}{
		{
			name:   "no bootstrap password",
			mutate: func(cfg *config.Config) { cfg.Auth.Bootstrap.Password = "" },
		},
		{
			name:   "no bootstrap email",
			mutate: func(cfg *config.Config) { cfg.Auth.Bootstrap.Email = "" },
		},
		{
			name: "email taken by a regular account",
			prep: func(_ *testing.T, _ *config.Config) []models.User {
				return []models.User{{
					Username: "root", Email: "root@shop.test", Role: models.RoleUser,
					Status: models.StatusActive, AuthSource: models.AuthSourceLocal,
				}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := dbtest.New(t)
			cfg := testConfig(t)

			if tt.mutate != nil {
				tt.mutate(cfg)
			}

			var existing []models.User
			if tt.prep != nil {
				existing = tt.prep(t, cfg)
				require.NoError(t, conn.Create(&existing).Error)
			}

			require.NoError(t, seed(context.Background(), cfg, conn))

			var admins int64
			require.NoError(t, conn.Model(&models.User{}).Where("role = ?", models.RoleSuperAdmin).Count(&admins).Error)
			assert.Zero(t, admins)
		})
	}
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	conn, err := Open(cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, errDB := conn.DB(); errDB == nil {
			_ = sqlDB.Close()
		}
	})

	deps, err := build(ctx, cfg, conn)
	require.NoError(t, err)

	assert.NotNil(t, deps.Auth)
	assert.NotNil(t, deps.States)
	assert.NotNil(t, deps.Pages)
	assert.NotNil(t, deps.Mailer)
	assert.NotNil(t, deps.MailConfig)
	assert.NotNil(t, deps.Backups)
	assert.Nil(t, deps.Google, "google sign in is disabled")

	// default settings enable weekly backups
	current := deps.Scheduler.Current()
	assert.True(t, current.Enabled)
	assert.Equal(t, models.BackupWeekly, current.Frequency)

	t.Cleanup(func() { deps.Scheduler.Stop(context.Background()) })
}
