package fitlog

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/db"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/service"
)

var (
	doctorFix  bool
	doctorJSON bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Find meals whose totals differ from their foods",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(sqldb *db.DB, sess service.Session) error {
			report, err := service.CheckMealTotals(sqldb, sess.UserID, doctorFix)
			if err != nil {
				return err
			}
			if doctorJSON {
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				printDoctorReport(cmd.OutOrStdout(), report, doctorFix)
			}
			if doctorFix {
				logger.Info("meal totals recomputed", zap.Int64("user_id", sess.UserID), zap.Int("meals", report.Recomputed))
				return nil
			}
			if len(report.Drifted) > 0 {
				return fmt.Errorf("doctor found meals with drifted totals (run with --fix to recompute)")
			}
			return nil
		})
	},
}

func printDoctorReport(out io.Writer, report service.DoctorReport, fixed bool) {
	fmt.Fprintf(out, "Meals checked: %d\n", report.MealsChecked)
	fmt.Fprintf(out, "Meals with drifted totals: %d\n", len(report.Drifted))
	for _, d := range report.Drifted {
		fmt.Fprintf(out, "  meal %d (%s, %s): stored %s, foods sum to %s\n",
			d.MealID, d.MealDate, d.Source, formatNutrients(d.Stored), formatNutrients(d.Derived))
	}
	if fixed {
		fmt.Fprintf(out, "Recomputed meals: %d\n", report.Recomputed)
	}
}

var (
	backupOut  string
	backupJSON bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the SQLite database with a SHA-256 checksum",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.Driver != db.DriverSQLite {
			return fmt.Errorf("backup only supports the sqlite driver; use pg_dump for postgres")
		}
		// Migrate before copying so the backup carries the current schema.
		if err := withDB(func(*db.DB) error { return nil }); err != nil {
			return err
		}
		out := backupOut
		if out == "" {
			out = filepath.Join(filepath.Dir(cfg.Database.Path), "backups",
				fmt.Sprintf("fitlog-%s.db", time.Now().Format("20060102-150405")))
		}
		info, err := service.CreateBackup(cfg.Database.Path, out)
		if err != nil {
			return err
		}
		if backupJSON {
			return writeJSON(cmd.OutOrStdout(), info)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s (%d bytes, sha256 %s)\n", info.Path, info.SizeBytes, info.Checksum)
		return nil
	},
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(doctorCmd, backupCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Recompute drifted meals from their foods")
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Print the report as JSON")
	backupCmd.Flags().StringVar(&backupOut, "out", "", "Backup file path (default <db dir>/backups/fitlog-<timestamp>.db)")
	backupCmd.Flags().BoolVar(&backupJSON, "json", false, "Print the backup details as JSON")
}
