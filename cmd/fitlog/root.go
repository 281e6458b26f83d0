package fitlog

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/config"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/db"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/logging"
)

var (
	dbPath      string
	cfgFile     string
	sessionFile string
	verbose     bool

	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "fitlog",
	Short: "fitlog logs workouts and meals from your terminal",
	Long: "fitlog is a fitness and nutrition logger: register, log workouts and meals against shared " +
		"exercise and food catalogs, and review daily and weekly calorie reports.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(config.Options{ConfigFile: cfgFile})
		if err != nil {
			return err
		}
		if dbPath != "" {
			loaded.Database.Driver = db.DriverSQLite
			loaded.Database.Path = dbPath
		}
		if sessionFile != "" {
			loaded.Session.Path = sessionFile
		}
		cfg = loaded

		l, err := logging.New(cfg.Log.Level, verbose)
		if err != nil {
			return err
		}
		logger = l
		logger.Debug("config loaded",
			zap.String("driver", cfg.Database.Driver),
			zap.String("db", cfg.Database.Path),
			zap.String("command", cmd.CommandPath()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database (overrides database.path and selects sqlite)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (default <user config dir>/fitlog/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session", "", "Path to the login session file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
}
