package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blogql/blogql/internal/config"
	"github.com/blogql/blogql/internal/logging"
	"github.com/blogql/blogql/internal/store"
)

var (
	cfg        *config.Config
	st         *store.Store
	logger     *zap.Logger
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "blogql",
	Short: "A GraphQL API for users, profiles, posts and subscriptions",
	Long: `blogql serves a GraphQL API over a relational database holding users,
their profiles and posts, membership tiers and author subscriptions.

Configuration is read from blogql.toml (or the file given with --config),
then overridden by BLOGQL_* environment variables. A .env file in the
working directory is loaded first if present.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		logger, err = logging.New(cfg.Log)
		if err != nil {
			return err
		}

		// Printing the schema needs no database.
		if cmd.Name() == "graphql" && querySchemaOnly {
			return nil
		}

		st, err = store.Open(cfg.Database)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if st != nil {
			if err := st.Close(); err != nil {
				logger.Warn("closing database", zap.Error(err))
			}
		}
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.ConfigFile, "Path to the config file (TOML, or YAML by extension)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
