// Package backup dumps the database on demand or on a schedule, archives the
// dump and prunes artifacts past the retention window.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/shopadmin/shop-admin/internal/db/models"
)

const (
	defaultRetentionDays = 20
	defaultTimeout       = 30 * time.Minute
	day                  = 24 * time.Hour
)

var (
	// ErrNoIDs is returned by Delete without ids.
	ErrNoIDs = errors.New("No Backup IDs provided") //nolint:stylecheck

	// ErrNotFound is returned by Delete when no id matches.
	ErrNotFound = errors.New("No matching backups found") //nolint:stylecheck
)

// Policy supplies the backup switches of the global settings.
type Policy interface {
	Global(ctx context.Context) (*models.GlobalSettings, error)
}

// Service runs and manages backups.
type Service struct {
	db      *gorm.DB
	dumper  Dumper
	policy  Policy
	dir     string
	timeout time.Duration
	now     func() time.Time
}

// New creates a backup service writing into dir.
func New(db *gorm.DB, dumper Dumper, policy Policy, dir string, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Service{
		db:      db,
		dumper:  dumper,
		policy:  policy,
		dir:     dir,
		timeout: timeout,
		now:     time.Now,
	}
}

// Timeout is the limit of a single run.
func (s *Service) Timeout() time.Duration {
	return s.timeout
}

// Run dumps the database, compresses the dump when enabled, records it and
// prunes expired artifacts.
func (s *Service) Run(ctx context.Context, trigger string) (*models.DatabaseBackup, error) {
	b, err := s.run(ctx, trigger)

	var size int64
	if b != nil {
		size = b.FileSize
	}

	observe(trigger, size, err)

	if err != nil {
		log.Error().Err(err).Str("trigger", trigger).Msg("backup failed")

		return nil, err
	}

	log.Info().Str("file", b.FileName).Int64("size", b.FileSize).Str("trigger", trigger).Msg("backup created")

	return b, nil
}

func (s *Service) run(ctx context.Context, trigger string) (*models.DatabaseBackup, error) {
	gs, err := s.policy.Global(ctx)
	if err != nil {
		return nil, err
	}

	if err = os.MkdirAll(s.dir, 0o750); err != nil { //nolint:mnd
		return nil, fmt.Errorf("failed to create backup dir: %w", err)
	}

	now := s.now()
	base := fmt.Sprintf("%s-backup-%s", s.dumper.Name(), now.UTC().Format("2006-01-02T15-04-05-000Z"))
	dumpPath := filepath.Join(s.dir, base+s.dumper.Ext())

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err = s.dumper.Dump(runCtx, dumpPath); err != nil {
		_ = os.Remove(dumpPath)

		return nil, err
	}

	b := &models.DatabaseBackup{
		FileName: filepath.Base(dumpPath),
		FilePath: dumpPath,
		Trigger:  trigger,
	}

	if gs.EnableCompression {
		zipPath := filepath.Join(s.dir, base+".zip")

		size, errZip := zipFile(dumpPath, zipPath)
		if errZip != nil {
			_ = os.Remove(dumpPath)

			return nil, errZip
		}

		if errRm := os.Remove(dumpPath); errRm != nil {
			log.Warn().Err(errRm).Str("file", dumpPath).Msg("failed to remove compressed dump")
		}

		b.FileName, b.FilePath, b.FileSize, b.Compressed = filepath.Base(zipPath), zipPath, size, true
	} else {
		st, errStat := os.Stat(dumpPath)
		if errStat != nil {
			return nil, fmt.Errorf("dump produced no file: %w", errStat)
		}

		b.FileSize = st.Size()
	}

	if err = s.db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, fmt.Errorf("failed to record backup: %w", err)
	}

	if _, err = s.Prune(ctx, gs.BackupRetentionDays); err != nil {
		log.Warn().Err(err).Msg("failed to prune old backups")
	}

	return b, nil
}

// Prune removes every artifact in the backup dir whose modification time is
// more than days old, together with its metadata row. days <= 0 falls back
// to the default window.
func (s *Service) Prune(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		days = defaultRetentionDays
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read backup dir: %w", err)
	}

	cutoff := s.now().Add(-time.Duration(days) * day)

	var removed []string

	for _, e := range entries {
		info, errInfo := e.Info()
		if errInfo != nil {
			continue
		}

		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(s.dir, e.Name())
		if errRm := os.RemoveAll(path); errRm != nil {
			log.Warn().Err(errRm).Str("file", path).Msg("failed to remove expired backup")

			continue
		}

		removed = append(removed, path)
	}

	if len(removed) == 0 {
		return 0, nil
	}

	err = s.db.WithContext(ctx).Where("file_path IN ?", removed).Delete(&models.DatabaseBackup{}).Error
	if err != nil {
		return len(removed), fmt.Errorf("failed to delete expired backup records: %w", err)
	}

	log.Info().Int("count", len(removed)).Int("days", days).Msg("pruned expired backups")

	return len(removed), nil
}

// ListOptions selects one page of backups.
type ListOptions struct {
	Skip   int
	Limit  int
	Search string
}

// List returns one page of backups, newest first, the number of matches and
// the number of all backups.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]models.DatabaseBackup, int64, int64, error) {
	var (
		list      []models.DatabaseBackup
		total     int64
		totalData int64
	)

	if err := s.db.WithContext(ctx).Model(&models.DatabaseBackup{}).Count(&totalData).Error; err != nil {
		return nil, 0, 0, err
	}

	q := s.db.WithContext(ctx).Model(&models.DatabaseBackup{})
	if search := strings.ToLower(strings.TrimSpace(opts.Search)); search != "" {
		q = q.Where("LOWER(file_name) LIKE ?", "%"+search+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, 0, err
	}

	if err := q.Order("created_at desc").Order("id desc").Offset(opts.Skip).Limit(opts.Limit).Find(&list).Error; err != nil {
		return nil, 0, 0, err
	}

	return list, total, totalData, nil
}

// Delete removes the backups ids from disk and from the database.
func (s *Service) Delete(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoIDs
	}

	var list []models.DatabaseBackup
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return 0, err
	}

	if len(list) == 0 {
		return 0, ErrNotFound
	}

	for _, b := range list {
		if err := os.RemoveAll(b.FilePath); err != nil {
			log.Warn().Err(err).Str("file", b.FilePath).Msg("failed to remove backup file")
		}
	}

	res := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.DatabaseBackup{})
	if res.Error != nil {
		return 0, res.Error
	}

	return res.RowsAffected, nil
}
