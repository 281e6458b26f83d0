package service

import (
	"database/sql"
	"fmt"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/db"
)

type ExportWorkout struct {
	ID             int64   `json:"id" yaml:"id"`
	UserID         int64   `json:"user_id" yaml:"user_id"`
	WorkoutType    string  `json:"workout_type" yaml:"workout_type"`
	DurationMin    float64 `json:"duration_min" yaml:"duration_min"`
	Intensity      string  `json:"intensity" yaml:"intensity"`
	CaloriesBurned float64 `json:"calories_burned" yaml:"calories_burned"`
	WorkoutDate    string  `json:"workout_date" yaml:"workout_date"`
}

// ExportWorkoutExercise is a workout outer-joined with one of its line
// items. The line fields are nil for a workout without exercises.
type ExportWorkoutExercise struct {
	ExportWorkout `yaml:",inline"`
	ExerciseID    *int64   `json:"exercise_id" yaml:"exercise_id"`
	Sets          *int64   `json:"sets" yaml:"sets"`
	Reps          *int64   `json:"reps" yaml:"reps"`
	WeightUsedKg  *float64 `json:"weight_used_kg" yaml:"weight_used_kg"`
}

type ExportMeal struct {
	ID           int64   `json:"id" yaml:"id"`
	UserID       int64   `json:"user_id" yaml:"user_id"`
	MealType     string  `json:"meal_type" yaml:"meal_type"`
	MealDate     string  `json:"meal_date" yaml:"meal_date"`
	Calories     float64 `json:"calories" yaml:"calories"`
	ProteinG     float64 `json:"protein_g" yaml:"protein_g"`
	CarbsG       float64 `json:"carbs_g" yaml:"carbs_g"`
	FatsG        float64 `json:"fats_g" yaml:"fats_g"`
	TotalsSource string  `json:"totals_source" yaml:"totals_source"`
}

type ExportMealFood struct {
	ExportMeal `yaml:",inline"`
	FoodID     *int64   `json:"food_id" yaml:"food_id"`
	Quantity   *float64 `json:"quantity" yaml:"quantity"`
}

// ExportData is a per-user snapshot. Every list is ordered by date, then id.
type ExportData struct {
	UserID           int64                   `json:"user_id" yaml:"user_id"`
	Workouts         []ExportWorkout         `json:"workouts" yaml:"workouts"`
	WorkoutExercises []ExportWorkoutExercise `json:"workout_exercises" yaml:"workout_exercises"`
	Meals            []ExportMeal            `json:"meals" yaml:"meals"`
	MealFoods        []ExportMealFood        `json:"meal_foods" yaml:"meal_foods"`
}

func ExportUserData(sqldb *db.DB, userID int64) (*ExportData, error) {
	if err := requirePositiveID("user id", userID); err != nil {
		return nil, err
	}
	out := &ExportData{
		UserID:           userID,
		Workouts:         make([]ExportWorkout, 0),
		WorkoutExercises: make([]ExportWorkoutExercise, 0),
		Meals:            make([]ExportMeal, 0),
		MealFoods:        make([]ExportMealFood, 0),
	}

	rows, err := sqldb.Query(`
SELECT wl.id, wl.user_id, wl.workout_type, wl.duration_min, wl.intensity, wl.calories_burned, wl.workout_date,
       we.exercise_id, we.sets, we.reps, we.weight_used_kg
FROM workout_logs wl
LEFT JOIN workout_exercises we ON we.workout_id = wl.id
WHERE wl.user_id = ?
ORDER BY wl.workout_date ASC, wl.id ASC, we.exercise_id ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("export workouts: %w", err)
	}
	for rows.Next() {
		var line ExportWorkoutExercise
		var exerciseID, sets, reps sql.NullInt64
		var weight sql.NullFloat64
		w := &line.ExportWorkout
		if err := rows.Scan(&w.ID, &w.UserID, &w.WorkoutType, &w.DurationMin, &w.Intensity, &w.CaloriesBurned, &w.WorkoutDate,
			&exerciseID, &sets, &reps, &weight); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan export workout: %w", err)
		}
		if len(out.Workouts) == 0 || out.Workouts[len(out.Workouts)-1].ID != w.ID {
			out.Workouts = append(out.Workouts, *w)
		}
		line.ExerciseID = nullInt(exerciseID)
		line.Sets = nullInt(sets)
		line.Reps = nullInt(reps)
		line.WeightUsedKg = nullFloat(weight)
		out.WorkoutExercises = append(out.WorkoutExercises, line)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate export workouts: %w", err)
	}
	_ = rows.Close()

	rows, err = sqldb.Query(`
SELECT ml.id, ml.user_id, ml.meal_type, ml.meal_date, ml.calories, ml.protein_g, ml.carbs_g, ml.fats_g, ml.totals_source,
       mf.food_id, mf.quantity
FROM meal_logs ml
LEFT JOIN meal_foods mf ON mf.meal_id = ml.id
WHERE ml.user_id = ?
ORDER BY ml.meal_date ASC, ml.id ASC, mf.food_id ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("export meals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var line ExportMealFood
		var foodID sql.NullInt64
		var quantity sql.NullFloat64
		m := &line.ExportMeal
		if err := rows.Scan(&m.ID, &m.UserID, &m.MealType, &m.MealDate, &m.Calories, &m.ProteinG, &m.CarbsG, &m.FatsG, &m.TotalsSource,
			&foodID, &quantity); err != nil {
			return nil, fmt.Errorf("scan export meal: %w", err)
		}
		if len(out.Meals) == 0 || out.Meals[len(out.Meals)-1].ID != m.ID {
			out.Meals = append(out.Meals, *m)
		}
		line.FoodID = nullInt(foodID)
		line.Quantity = nullFloat(quantity)
		out.MealFoods = append(out.MealFoods, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate export meals: %w", err)
	}
	return out, nil
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
