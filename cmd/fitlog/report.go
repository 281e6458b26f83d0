package fitlog

import (
	"github.com/spf13/cobra"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/db"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/service"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Calorie reports",
}

var reportDate string

var reportDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Calories in, out and balance for one day",
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseDayOrToday(reportDate)
		if err != nil {
			return err
		}
		return withSession(func(sqldb *db.DB, sess service.Session) error {
			r, err := service.Daily(sqldb, sess.UserID, day)
			if err != nil {
				return err
			}
			printDaily(cmd.OutOrStdout(), r)
			return nil
		})
	},
}

var reportWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Average meal nutrients over the 7 days ending today (or --date)",
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseDayOrToday(reportDate)
		if err != nil {
			return err
		}
		return withSession(func(sqldb *db.DB, sess service.Session) error {
			r, err := service.Weekly(sqldb, sess.UserID, day)
			if err != nil {
				return err
			}
			printWeekly(cmd.OutOrStdout(), r)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportDailyCmd, reportWeeklyCmd)
	reportCmd.PersistentFlags().StringVar(&reportDate, "date", "", "Report date YYYY-MM-DD (default today)")
}
