// Package app implements the main application commands.
package app

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/shopadmin/shop-admin/internal/config"
	"github.com/shopadmin/shop-admin/internal/logger"
)

var (
	configPath string // directory holding main.toml
	envFile    string // optional dotenv file
	devMode    bool

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "shop-admin",
	Short: "Shop Admin is the backend of the shop administration panel",
	Long: `Shop Admin serves the account, settings, page, email and backup
api of the shop administration panel and runs the scheduled database backups.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory of main.toml")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the configuration")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Enable dev mode")
}

// loadConfig reads the dotenv file, the configuration and sets up logging.
func loadConfig(_ *cobra.Command, _ []string) error {
	if envFile != "" {
		// a missing file is fine, the environment may be set by the runtime
		if err := godotenv.Load(envFile); err == nil {
			log.Debug().Str("file", envFile).Msg("loaded dotenv file")
		}
	}

	var err error
	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err //nolint:wrapcheck
	}

	if devMode {
		cfg.DevMode = true
	}

	return logger.Init(cfg.Log) //nolint:wrapcheck
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
