package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shopadmin/shop-admin/internal/daemon"
	"github.com/shopadmin/shop-admin/internal/db/models"
	"github.com/shopadmin/shop-admin/internal/settings"
)

var pruneOnly bool

func init() { //nolint: gochecknoinits
	backupCmd.Flags().BoolVar(&pruneOnly, "prune", false, "only remove backups past the retention window")
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:     "backup",
	Short:   "Dump the database once, the way the scheduler does",
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, _ []string) error {
		conn, err := daemon.Open(&cfg)
		if err != nil {
			return err //nolint:wrapcheck
		}

		defer func() {
			if sqlDB, errDB := conn.DB(); errDB == nil {
				_ = sqlDB.Close()
			}
		}()

		policy := settings.New(conn, nil)
		svc := daemon.NewBackupService(&cfg, conn, policy)

		ctx, cancel := context.WithTimeout(cmd.Context(), svc.Timeout())
		defer cancel()

		if pruneOnly {
			gs, errGS := policy.Global(ctx)
			if errGS != nil {
				return errGS //nolint:wrapcheck
			}

			n, errPrune := svc.Prune(ctx, gs.BackupRetentionDays)
			if errPrune != nil {
				return errPrune //nolint:wrapcheck
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d backup(s)\n", n)

			return err //nolint:wrapcheck
		}

		b, err := svc.Run(ctx, models.TriggerManual)
		if err != nil {
			return err //nolint:wrapcheck
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", b.FilePath, b.FileSize)

		return err //nolint:wrapcheck
	},
}
