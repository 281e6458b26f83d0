package fitlog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/db"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/service"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export your workouts and meals (default file user_<id>_export.json)",
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(strings.TrimSpace(exportFormat))
		if format != "json" && format != "yaml" {
			return fmt.Errorf("unsupported --format %q (use json or yaml)", exportFormat)
		}
		return withSession(func(sqldb *db.DB, sess service.Session) error {
			data, err := service.ExportUserData(sqldb, sess.UserID)
			if err != nil {
				return err
			}
			out := exportOut
			if out == "" {
				out = fmt.Sprintf("user_%d_export.%s", sess.UserID, format)
			}
			if out == "-" {
				return writeExport(cmd.OutOrStdout(), format, data)
			}
			if err := writeExportFile(out, format, data); err != nil {
				return err
			}
			logger.Info("data exported", zap.Int64("user_id", sess.UserID), zap.String("path", out))
			fmt.Fprintf(cmd.OutOrStdout(), "Data exported to %s\n", out)
			return nil
		})
	},
}

func writeExportFile(path, format string, data *service.ExportData) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := writeExport(f, format, data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	return nil
}

func writeExport(w io.Writer, format string, data *service.ExportData) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("encode yaml export: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode json export: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json or yaml")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file, or - for stdout")
}
