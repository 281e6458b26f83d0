package fitlog

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the fitlog database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *db.DB) error {
			version, err := db.SchemaVersion(sqldb)
			if err != nil {
				return err
			}
			target := cfg.Database.Path
			if sqldb.Dialect.Name == db.DriverPostgres {
				target = "postgres"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized fitlog database at %s (schema v%d)\n", target, version)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
