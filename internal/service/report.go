package service

import (
	"fmt"
	"time"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/db"
)

type DailyReport struct {
	Date        string
	CaloriesIn  float64
	CaloriesOut float64
	// Balance is CaloriesIn - CaloriesOut.
	Balance float64
}

// WeeklyReport averages meal nutrients over the seven days ending on To.
type WeeklyReport struct {
	From        string
	To          string
	MealCount   int
	HasData     bool
	AvgCalories float64
	AvgProteinG float64
	AvgCarbsG   float64
	AvgFatsG    float64
}

func Daily(sqldb *db.DB, userID int64, day time.Time) (DailyReport, error) {
	out := DailyReport{Date: day.Format(dateLayout)}
	if err := sqldb.QueryRow(`
SELECT COALESCE(SUM(calories), 0)
FROM meal_logs
WHERE user_id = ? AND meal_date = ?
`, userID, out.Date).Scan(&out.CaloriesIn); err != nil {
		return DailyReport{}, fmt.Errorf("daily calories in: %w", err)
	}
	if err := sqldb.QueryRow(`
SELECT COALESCE(SUM(calories_burned), 0)
FROM workout_logs
WHERE user_id = ? AND workout_date = ?
`, userID, out.Date).Scan(&out.CaloriesOut); err != nil {
		return DailyReport{}, fmt.Errorf("daily calories out: %w", err)
	}
	out.Balance = out.CaloriesIn - out.CaloriesOut
	return out, nil
}

// Weekly covers [today-6, today]. Averages are per meal, not per day. When
// no meal falls in the window HasData is false and the averages are zero.
func Weekly(sqldb *db.DB, userID int64, today time.Time) (WeeklyReport, error) {
	out := WeeklyReport{
		From: today.AddDate(0, 0, -6).Format(dateLayout),
		To:   today.Format(dateLayout),
	}
	if err := sqldb.QueryRow(`
SELECT COUNT(*),
       COALESCE(AVG(calories), 0),
       COALESCE(AVG(protein_g), 0),
       COALESCE(AVG(carbs_g), 0),
       COALESCE(AVG(fats_g), 0)
FROM meal_logs
WHERE user_id = ? AND meal_date BETWEEN ? AND ?
`, userID, out.From, out.To).Scan(&out.MealCount, &out.AvgCalories, &out.AvgProteinG, &out.AvgCarbsG, &out.AvgFatsG); err != nil {
		return WeeklyReport{}, fmt.Errorf("weekly averages: %w", err)
	}
	out.HasData = out.MealCount > 0
	return out, nil
}
