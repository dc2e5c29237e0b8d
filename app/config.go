package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shopadmin/shop-admin/internal/config"
)

var dumpFormat string

func init() { //nolint: gochecknoinits
	configDumpCmd.Flags().StringVarP(&dumpFormat, "format", "f", "toml", "output format, toml or json")
	configCmd.AddCommand(configDumpCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configDumpCmd = &cobra.Command{
	Use:     "dump",
	Short:   "Print the effective configuration",
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var (
			out string
			err error
		)

		switch dumpFormat {
		case "json":
			out, err = config.DumpConfigJSON(&cfg)
		case "toml":
			out, err = config.DumpConfig(&cfg)
		default:
			return fmt.Errorf("unknown format %q", dumpFormat)
		}

		if err != nil {
			return err //nolint:wrapcheck
		}

		_, err = fmt.Fprint(cmd.OutOrStdout(), out)

		return err //nolint:wrapcheck
	},
}
