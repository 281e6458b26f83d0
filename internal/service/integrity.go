package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/db"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/model"
)

// totalsTolerance absorbs float drift between SUM() and stored totals.
const totalsTolerance = 0.005

// MealTotalsDrift is one meal whose stored nutrients differ from the sum
// of its line items.
type MealTotalsDrift struct {
	MealID   int64              `json:"meal_id"`
	MealDate string             `json:"meal_date"`
	Source   model.TotalsSource `json:"totals_source"`
	Stored   model.Nutrients    `json:"stored"`
	Derived  model.Nutrients    `json:"derived"`
}

type DoctorReport struct {
	MealsChecked int               `json:"meals_checked"`
	Drifted      []MealTotalsDrift `json:"drifted"`
	Recomputed   int               `json:"recomputed,omitempty"`
}

// CheckMealTotals compares every meal of userID with its line items. Meals
// without line items are skipped since their totals can only come from a
// manual override. With fix, drifted meals are recomputed in one transaction.
func CheckMealTotals(sqldb *db.DB, userID int64, fix bool) (DoctorReport, error) {
	report := DoctorReport{Drifted: make([]MealTotalsDrift, 0)}
	rows, err := sqldb.Query(`
SELECT ml.id, ml.meal_date, ml.totals_source, ml.calories, ml.protein_g, ml.carbs_g, ml.fats_g,
       SUM(f.calories_per_serving * mf.quantity),
       SUM(f.protein_g * mf.quantity),
       SUM(f.carbs_g * mf.quantity),
       SUM(f.fats_g * mf.quantity)
FROM meal_logs ml
JOIN meal_foods mf ON mf.meal_id = ml.id
JOIN foods f ON f.id = mf.food_id
WHERE ml.user_id = ?
GROUP BY ml.id, ml.meal_date, ml.totals_source, ml.calories, ml.protein_g, ml.carbs_g, ml.fats_g
ORDER BY ml.meal_date ASC, ml.id ASC
`, userID)
	if err != nil {
		return report, fmt.Errorf("doctor meal totals query: %w", err)
	}
	for rows.Next() {
		var d MealTotalsDrift
		var source string
		if err := rows.Scan(&d.MealID, &d.MealDate, &source,
			&d.Stored.Calories, &d.Stored.ProteinG, &d.Stored.CarbsG, &d.Stored.FatsG,
			&d.Derived.Calories, &d.Derived.ProteinG, &d.Derived.CarbsG, &d.Derived.FatsG); err != nil {
			_ = rows.Close()
			return report, fmt.Errorf("doctor meal totals scan: %w", err)
		}
		d.Source = model.TotalsSource(source)
		report.MealsChecked++
		if !sameNutrients(d.Stored, d.Derived) {
			report.Drifted = append(report.Drifted, d)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return report, fmt.Errorf("doctor meal totals rows: %w", err)
	}
	_ = rows.Close()

	if !fix || len(report.Drifted) == 0 {
		return report, nil
	}
	err = sqldb.InTx(func(tx *db.Tx) error {
		for _, d := range report.Drifted {
			if _, err := recomputeMealTotals(tx, d.MealID); err != nil {
				return err
			}
			report.Recomputed++
		}
		return nil
	})
	if err != nil {
		report.Recomputed = 0
		return report, fmt.Errorf("doctor fix: %w", err)
	}
	return report, nil
}

func sameNutrients(a, b model.Nutrients) bool {
	return math.Abs(a.Calories-b.Calories) < totalsTolerance &&
		math.Abs(a.ProteinG-b.ProteinG) < totalsTolerance &&
		math.Abs(a.CarbsG-b.CarbsG) < totalsTolerance &&
		math.Abs(a.FatsG-b.FatsG) < totalsTolerance
}

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

// CreateBackup copies a SQLite database file and writes a .sha256 file
// next to the copy. The source should not be open for writing.
func CreateBackup(dbPath, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(dbPath) == "" || strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, invalid("backup", "db path and output path are required")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}

	in, err := os.Open(dbPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("open database file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("create backup file: %w", err)
	}
	defer out.Close()

	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(out, h), in)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("copy database file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return BackupInfo{}, fmt.Errorf("sync backup file: %w", err)
	}
	checksum := hex.EncodeToString(h.Sum(nil))
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: time.Now(), SizeBytes: size}, nil
}
