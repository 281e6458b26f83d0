package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/db"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/model"
)

type ExerciseInput struct {
	Name        string
	Category    string
	MuscleGroup string
	Equipment   string
}

type FoodInput struct {
	Name               string
	ServingSize        string
	CaloriesPerServing float64
	ProteinG           float64
	CarbsG             float64
	FatsG              float64
}

// AddExercise inserts a catalog exercise unless the name is taken. A name
// collision is not an error: it returns added=false.
func AddExercise(sqldb *db.DB, in ExerciseInput) (id int64, added bool, err error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return 0, false, invalid("exercise name", "name is required")
	}
	err = sqldb.QueryRow(`
INSERT INTO exercises(exercise_name, category, muscle_group, equipment)
VALUES(?, ?, ?, ?)
ON CONFLICT(exercise_name) DO NOTHING
RETURNING id
`, name, nullableString(in.Category), nullableString(in.MuscleGroup), nullableString(in.Equipment)).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("add exercise %q: %w", name, err)
	}
	return id, true, nil
}

// AddFood has the same create-or-ignore contract as AddExercise.
func AddFood(sqldb *db.DB, in FoodInput) (id int64, added bool, err error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return 0, false, invalid("food name", "name is required")
	}
	if err := validateNonNegativeFloat("calories per serving", in.CaloriesPerServing); err != nil {
		return 0, false, err
	}
	if err := validateNonNegativeFloat("protein", in.ProteinG); err != nil {
		return 0, false, err
	}
	if err := validateNonNegativeFloat("carbs", in.CarbsG); err != nil {
		return 0, false, err
	}
	if err := validateNonNegativeFloat("fats", in.FatsG); err != nil {
		return 0, false, err
	}
	err = sqldb.QueryRow(`
INSERT INTO foods(food_name, serving_size, calories_per_serving, protein_g, carbs_g, fats_g)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(food_name) DO NOTHING
RETURNING id
`, name, nullableString(in.ServingSize), in.CaloriesPerServing, in.ProteinG, in.CarbsG, in.FatsG).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("add food %q: %w", name, err)
	}
	return id, true, nil
}

func ListExercises(sqldb *db.DB) ([]model.Exercise, error) {
	rows, err := sqldb.Query(`
SELECT id, exercise_name, COALESCE(category, ''), COALESCE(muscle_group, ''), COALESCE(equipment, '')
FROM exercises
ORDER BY id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	defer rows.Close()

	items := make([]model.Exercise, 0)
	for rows.Next() {
		var e model.Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.Category, &e.MuscleGroup, &e.Equipment); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercises: %w", err)
	}
	return items, nil
}

func ListFoods(sqldb *db.DB) ([]model.Food, error) {
	rows, err := sqldb.Query(`
SELECT id, food_name, COALESCE(serving_size, ''), calories_per_serving, protein_g, carbs_g, fats_g
FROM foods
ORDER BY id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	defer rows.Close()

	items := make([]model.Food, 0)
	for rows.Next() {
		var f model.Food
		if err := rows.Scan(&f.ID, &f.Name, &f.ServingSize, &f.CaloriesPerServing, &f.ProteinG, &f.CarbsG, &f.FatsG); err != nil {
			return nil, fmt.Errorf("scan food: %w", err)
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foods: %w", err)
	}
	return items, nil
}

func exerciseExists(q db.Querier, id int64) (bool, error) {
	var one int
	err := q.QueryRow(`SELECT 1 FROM exercises WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup exercise %d: %w", id, err)
	}
	return true, nil
}

func foodExists(q db.Querier, id int64) (bool, error) {
	var one int
	err := q.QueryRow(`SELECT 1 FROM foods WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup food %d: %w", id, err)
	}
	return true, nil
}
