package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/db"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/model"
)

// WorkoutInput describes a new workout. A blank Date means today.
type WorkoutInput struct {
	Type           string
	DurationMin    float64
	Intensity      string
	CaloriesBurned float64
	Date           string
}

// WorkoutPatch changes only the non-nil, non-blank fields.
type WorkoutPatch struct {
	Type           *string
	DurationMin    *float64
	Intensity      *string
	CaloriesBurned *float64
	Date           *string
}

type AttachExerciseInput struct {
	WorkoutID  int64
	ExerciseID int64
	Sets       int
	Reps       int
	WeightKg   float64
}

type WorkoutDetail struct {
	model.WorkoutLog
	Exercises []model.WorkoutExercise
}

const (
	SearchByDate = "date"
	SearchByType = "type"
	SearchByFood = "food"
)

type WorkoutSearch struct {
	Mode string
	// From and To bound the date mode, both inclusive.
	From string
	To   string
	// Type is a case-insensitive substring for the type mode.
	Type string
}

func AddWorkout(sqldb *db.DB, userID int64, in WorkoutInput) (int64, error) {
	if err := requirePositiveID("user id", userID); err != nil {
		return 0, err
	}
	date, err := normalizeDate("workout date", in.Date, time.Now())
	if err != nil {
		return 0, err
	}
	if err := validateNonNegativeFloat("duration", in.DurationMin); err != nil {
		return 0, err
	}
	if err := validateNonNegativeFloat("calories burned", in.CaloriesBurned); err != nil {
		return 0, err
	}

	var id int64
	err = sqldb.QueryRow(`
INSERT INTO workout_logs(user_id, workout_type, duration_min, intensity, calories_burned, workout_date)
VALUES(?, ?, ?, ?, ?, ?)
RETURNING id
`, userID, strings.TrimSpace(in.Type), in.DurationMin, strings.TrimSpace(in.Intensity), in.CaloriesBurned, date).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("add workout: %w", err)
	}
	return id, nil
}

// AttachExercise adds or overwrites the (workout, exercise) line item. The
// workout must belong to userID.
func AttachExercise(sqldb *db.DB, userID int64, in AttachExerciseInput) error {
	if err := validateNonNegativeInt("sets", in.Sets); err != nil {
		return err
	}
	if err := validateNonNegativeInt("reps", in.Reps); err != nil {
		return err
	}
	if err := validateNonNegativeFloat("weight", in.WeightKg); err != nil {
		return err
	}
	return sqldb.InTx(func(tx *db.Tx) error {
		if _, err := loadWorkout(tx, userID, in.WorkoutID); err != nil {
			return err
		}
		ok, err := exerciseExists(tx, in.ExerciseID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownExercise, in.ExerciseID)
		}
		if _, err := tx.Exec(`
INSERT INTO workout_exercises(workout_id, exercise_id, sets, reps, weight_used_kg)
VALUES(?, ?, ?, ?, ?)
ON CONFLICT(workout_id, exercise_id) DO UPDATE SET
  sets = excluded.sets,
  reps = excluded.reps,
  weight_used_kg = excluded.weight_used_kg
`, in.WorkoutID, in.ExerciseID, in.Sets, in.Reps, in.WeightKg); err != nil {
			return fmt.Errorf("attach exercise %d to workout %d: %w", in.ExerciseID, in.WorkoutID, err)
		}
		return nil
	})
}

func UpdateWorkout(sqldb *db.DB, userID, workoutID int64, patch WorkoutPatch) error {
	return sqldb.InTx(func(tx *db.Tx) error {
		w, err := loadWorkout(tx, userID, workoutID)
		if err != nil {
			return err
		}
		if patch.Type != nil && strings.TrimSpace(*patch.Type) != "" {
			w.Type = strings.TrimSpace(*patch.Type)
		}
		if patch.DurationMin != nil {
			if err := validateNonNegativeFloat("duration", *patch.DurationMin); err != nil {
				return err
			}
			w.DurationMin = *patch.DurationMin
		}
		if patch.Intensity != nil && strings.TrimSpace(*patch.Intensity) != "" {
			w.Intensity = strings.TrimSpace(*patch.Intensity)
		}
		if patch.CaloriesBurned != nil {
			if err := validateNonNegativeFloat("calories burned", *patch.CaloriesBurned); err != nil {
				return err
			}
			w.CaloriesBurned = *patch.CaloriesBurned
		}
		if patch.Date != nil && strings.TrimSpace(*patch.Date) != "" {
			date, err := parseDate("workout date", *patch.Date)
			if err != nil {
				return err
			}
			w.Date = date
		}

		if _, err := tx.Exec(`
UPDATE workout_logs
SET workout_type = ?, duration_min = ?, intensity = ?, calories_burned = ?, workout_date = ?
WHERE id = ? AND user_id = ?
`, w.Type, w.DurationMin, w.Intensity, w.CaloriesBurned, w.Date, workoutID, userID); err != nil {
			return fmt.Errorf("update workout %d: %w", workoutID, err)
		}
		return nil
	})
}

// DeleteWorkout removes the workout and its line items.
func DeleteWorkout(sqldb *db.DB, userID, workoutID int64) error {
	return sqldb.InTx(func(tx *db.Tx) error {
		if _, err := loadWorkout(tx, userID, workoutID); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM workout_exercises WHERE workout_id = ?`, workoutID); err != nil {
			return fmt.Errorf("delete workout %d exercises: %w", workoutID, err)
		}
		if _, err := tx.Exec(`DELETE FROM workout_logs WHERE id = ? AND user_id = ?`, workoutID, userID); err != nil {
			return fmt.Errorf("delete workout %d: %w", workoutID, err)
		}
		return nil
	})
}

func GetWorkout(sqldb *db.DB, userID, workoutID int64) (*WorkoutDetail, error) {
	w, err := loadWorkout(sqldb, userID, workoutID)
	if err != nil {
		return nil, err
	}
	rows, err := sqldb.Query(`
SELECT we.workout_id, we.exercise_id, e.exercise_name, we.sets, we.reps, we.weight_used_kg
FROM workout_exercises we
JOIN exercises e ON e.id = we.exercise_id
WHERE we.workout_id = ?
ORDER BY we.exercise_id ASC
`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("list workout %d exercises: %w", workoutID, err)
	}
	defer rows.Close()

	detail := &WorkoutDetail{WorkoutLog: *w, Exercises: make([]model.WorkoutExercise, 0)}
	for rows.Next() {
		var line model.WorkoutExercise
		if err := rows.Scan(&line.WorkoutID, &line.ExerciseID, &line.ExerciseName, &line.Sets, &line.Reps, &line.WeightKg); err != nil {
			return nil, fmt.Errorf("scan workout exercise: %w", err)
		}
		detail.Exercises = append(detail.Exercises, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workout exercises: %w", err)
	}
	return detail, nil
}

// SearchWorkouts returns the user's workouts with their exercises, ordered
// by (date, id) and by exercise id within a workout.
func SearchWorkouts(sqldb *db.DB, userID int64, s WorkoutSearch) ([]WorkoutDetail, error) {
	query := `
SELECT wl.id, wl.user_id, wl.workout_type, wl.duration_min, wl.intensity, wl.calories_burned, wl.workout_date,
       e.id, e.exercise_name, we.sets, we.reps, we.weight_used_kg
FROM workout_logs wl
LEFT JOIN workout_exercises we ON we.workout_id = wl.id
LEFT JOIN exercises e ON e.id = we.exercise_id
WHERE wl.user_id = ?`
	args := []any{userID}

	switch strings.ToLower(strings.TrimSpace(s.Mode)) {
	case SearchByDate:
		from, err := parseDate("start date", s.From)
		if err != nil {
			return nil, err
		}
		to, err := parseDate("end date", s.To)
		if err != nil {
			return nil, err
		}
		if from > to {
			return nil, invalid("date range", "start date must be <= end date")
		}
		query += ` AND wl.workout_date BETWEEN ? AND ?`
		args = append(args, from, to)
	case SearchByType:
		query += ` AND LOWER(COALESCE(wl.workout_type, '')) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(s.Type))
	default:
		return nil, fmt.Errorf("%w %q (use %s or %s)", ErrInvalidSearchMode, s.Mode, SearchByDate, SearchByType)
	}
	query += ` ORDER BY wl.workout_date ASC, wl.id ASC, e.id ASC`

	rows, err := sqldb.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search workouts: %w", err)
	}
	defer rows.Close()

	out := make([]WorkoutDetail, 0)
	for rows.Next() {
		var w model.WorkoutLog
		var exerciseID, sets, reps sql.NullInt64
		var exerciseName sql.NullString
		var weight sql.NullFloat64
		if err := rows.Scan(&w.ID, &w.UserID, &w.Type, &w.DurationMin, &w.Intensity, &w.CaloriesBurned, &w.Date,
			&exerciseID, &exerciseName, &sets, &reps, &weight); err != nil {
			return nil, fmt.Errorf("scan workout search row: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].ID != w.ID {
			out = append(out, WorkoutDetail{WorkoutLog: w, Exercises: make([]model.WorkoutExercise, 0)})
		}
		if exerciseID.Valid {
			cur := &out[len(out)-1]
			cur.Exercises = append(cur.Exercises, model.WorkoutExercise{
				WorkoutID:    w.ID,
				ExerciseID:   exerciseID.Int64,
				ExerciseName: exerciseName.String,
				Sets:         int(sets.Int64),
				Reps:         int(reps.Int64),
				WeightKg:     weight.Float64,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workout search rows: %w", err)
	}
	return out, nil
}

// loadWorkout returns ErrNotFoundOrNotOwned unless the workout exists and
// belongs to userID.
func loadWorkout(q db.Querier, userID, workoutID int64) (*model.WorkoutLog, error) {
	var w model.WorkoutLog
	err := q.QueryRow(`
SELECT id, user_id, workout_type, duration_min, intensity, calories_burned, workout_date
FROM workout_logs
WHERE id = ? AND user_id = ?
`, workoutID, userID).Scan(&w.ID, &w.UserID, &w.Type, &w.DurationMin, &w.Intensity, &w.CaloriesBurned, &w.Date)
	if err == sql.ErrNoRows {
		return nil, ErrNotFoundOrNotOwned
	}
	if err != nil {
		return nil, fmt.Errorf("load workout %d: %w", workoutID, err)
	}
	return &w, nil
}
