package main

import (
	"fmt"

	"github.com/mx-space/metafields/internal/config"
	"github.com/mx-space/metafields/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := database.EnsureSchema(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema is up to date (%s)\n", cfg.Database.Driver)
		return nil
	},
}
