package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopadmin/shop-admin/internal/db/dbtest"
	"github.com/shopadmin/shop-admin/internal/db/models"
)

type fakeDumper struct {
	payload string
	err     error
	calls   int
}

func (d *fakeDumper) Name() string { return "shop" }

func (d *fakeDumper) Ext() string { return ".sql" }

func (d *fakeDumper) Dump(_ context.Context, dest string) error {
	d.calls++

	if d.err != nil {
		return d.err
	}

	return os.WriteFile(dest, []byte(d.payload), 0o600)
}

type staticPolicy struct {
	gs models.GlobalSettings
}

func (p *staticPolicy) Global(context.Context) (*models.GlobalSettings, error) {
	gs := p.gs

	return &gs, nil
}

func newService(t *testing.T, gs models.GlobalSettings) (*Service, *fakeDumper, *gorm.DB) {
	t.Helper()

	db := dbtest.New(t)
	dumper := &fakeDumper{payload: "CREATE TABLE users (id int);\n"}

	return New(db, dumper, &staticPolicy{gs: gs}, t.TempDir(), time.Minute), dumper, db
}

func TestRunCompressed(t *testing.T) {
	gs := models.DefaultGlobalSettings()
	svc, _, db := newService(t, gs)

	b, err := svc.Run(context.Background(), models.TriggerManual)
	require.NoError(t, err)

	assert.True(t, b.Compressed)
	assert.Regexp(t, `^shop-backup-.*\.zip$`, b.FileName)
	assert.Equal(t, models.TriggerManual, b.Trigger)
	assert.Positive(t, b.FileSize)

	entries, err := os.ReadDir(svc.dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "the raw dump is removed after archiving")

	zr, err := zip.OpenReader(b.FilePath)
	require.NoError(t, err)

	defer zr.Close()

	require.Len(t, zr.File, 1)
	assert.Equal(t, strings.TrimSuffix(b.FileName, ".zip")+".sql", zr.File[0].Name)

	var stored models.DatabaseBackup
	require.NoError(t, db.First(&stored, b.ID).Error)
	assert.Equal(t, b.FilePath, stored.FilePath)
}

func TestRunUncompressed(t *testing.T) {
	gs := models.DefaultGlobalSettings()
	gs.EnableCompression = false
	svc, dumper, _ := newService(t, gs)

	b, err := svc.Run(context.Background(), models.TriggerScheduled)
	require.NoError(t, err)

	assert.False(t, b.Compressed)
	assert.Equal(t, filepath.Ext(b.FileName), ".sql")
	assert.Equal(t, int64(len(dumper.payload)), b.FileSize)
}

func TestRunDumpFailure(t *testing.T) {
	svc, dumper, db := newService(t, models.DefaultGlobalSettings())
	dumper.err = errors.New("mysqldump: access denied")

	_, err := svc.Run(context.Background(), models.TriggerManual)
	require.ErrorContains(t, err, "access denied")

	var n int64
	require.NoError(t, db.Model(&models.DatabaseBackup{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestPruneKeepsRecentArtifacts(t *testing.T) {
	svc, _, db := newService(t, models.DefaultGlobalSettings())
	ctx := context.Background()
	now := time.Now()

	write := func(name string, age time.Duration) string {
		path := filepath.Join(svc.dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
		require.NoError(t, os.Chtimes(path, now.Add(-age), now.Add(-age)))
		require.NoError(t, db.Create(&models.DatabaseBackup{FileName: name, FilePath: path}).Error)

		return path
	}

	expired := write("old.zip", 31*day)
	edge := write("edge.zip", 29*day)
	fresh := write("fresh.zip", time.Hour)

	n, err := svc.Prune(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.NoFileExists(t, expired)
	assert.FileExists(t, edge)
	assert.FileExists(t, fresh)

	var names []string
	require.NoError(t, db.Model(&models.DatabaseBackup{}).Order("file_name").Pluck("file_name", &names).Error)
	assert.Equal(t, []string{"edge.zip", "fresh.zip"}, names)
}

func TestPruneDefaultRetention(t *testing.T) {
	svc, _, _ := newService(t, models.DefaultGlobalSettings())
	now := time.Now()

	old := filepath.Join(svc.dir, "a.zip")
	recent := filepath.Join(svc.dir, "b.zip")

	for path, age := range map[string]time.Duration{old: 21 * day, recent: 19 * day} {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
		require.NoError(t, os.Chtimes(path, now.Add(-age), now.Add(-age)))
	}

	n, err := svc.Prune(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoFileExists(t, old)
	assert.FileExists(t, recent)
}

func TestListAndDelete(t *testing.T) {
	gs := models.DefaultGlobalSettings()
	svc, _, _ := newService(t, gs)
	ctx := context.Background()

	first, err := svc.Run(ctx, models.TriggerManual)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(time.Second) }

	second, err := svc.Run(ctx, models.TriggerManual)
	require.NoError(t, err)

	list, total, totalData, err := svc.List(ctx, ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(2), totalData)
	assert.Equal(t, second.ID, list[0].ID)

	list, total, _, err = svc.List(ctx, ListOptions{Limit: 10, Search: "nothing-like-this"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	_, err = svc.Delete(ctx, nil)
	require.ErrorIs(t, err, ErrNoIDs)

	_, err = svc.Delete(ctx, []uint64{999})
	require.ErrorIs(t, err, ErrNotFound)

	n, err := svc.Delete(ctx, []uint64{first.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoFileExists(t, first.FilePath)
	assert.FileExists(t, second.FilePath)
}

func TestSQLiteDumper(t *testing.T) {
	db := dbtest.New(t)
	require.NoError(t, db.Create(&models.DatabaseBackup{FileName: "marker"}).Error)

	d := &SQLiteDumper{db: db, name: "shop"}
	dest := filepath.Join(t.TempDir(), "copy.db")

	require.NoError(t, d.Dump(context.Background(), dest))

	st, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Positive(t, st.Size())
}
