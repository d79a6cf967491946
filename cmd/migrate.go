package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateSeed bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	Long: `Creates or updates the tables for users, profiles, posts, member types
and subscriptions. With --seed (the default) the basic and business member
types are inserted or reset to their default discount and post limit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrate(cmd.Context(), migrateSeed)
	},
}

func migrate(ctx context.Context, seed bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := st.Migrate(ctx); err != nil {
		return err
	}
	if seed {
		if err := st.Seed(ctx); err != nil {
			return err
		}
	}
	logger.Info("database migrated", zap.String("driver", cfg.Database.Driver), zap.Bool("seeded", seed))
	return nil
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateSeed, "seed", true, "Upsert the default member types")
	rootCmd.AddCommand(migrateCmd)
}
