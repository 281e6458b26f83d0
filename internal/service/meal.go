package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/db"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/model"
)

// DefaultHighCalorieThreshold is the meal total above which AttachFood
// flags a high-calorie advisory.
const DefaultHighCalorieThreshold = 1200.0

// MealInput describes a new meal. A blank Date means today.
type MealInput struct {
	Type string
	Date string
}

// MealPatch changes only the non-nil, non-blank fields. Setting any of the
// nutrient fields is a manual override of the derived totals.
type MealPatch struct {
	Type     *string
	Date     *string
	Calories *float64
	ProteinG *float64
	CarbsG   *float64
	FatsG    *float64
}

func (p MealPatch) overridesNutrients() bool {
	return p.Calories != nil || p.ProteinG != nil || p.CarbsG != nil || p.FatsG != nil
}

type AttachFoodInput struct {
	MealID int64
	FoodID int64
	// Quantity is in servings; zero means one serving.
	Quantity float64
	// HighCalorieThreshold defaults to DefaultHighCalorieThreshold.
	HighCalorieThreshold float64
}

type AttachFoodResult struct {
	Totals      model.Nutrients
	Threshold   float64
	HighCalorie bool
}

type MealDetail struct {
	model.MealLog
	Foods []model.MealFood
}

type MealSearch struct {
	Mode string
	// Date is an exact YYYY-MM-DD match for the date mode.
	Date string
	// Food is a case-insensitive substring of a food name for the food mode.
	Food string
}

func AddMeal(sqldb *db.DB, userID int64, in MealInput) (int64, error) {
	if err := requirePositiveID("user id", userID); err != nil {
		return 0, err
	}
	date, err := normalizeDate("meal date", in.Date, time.Now())
	if err != nil {
		return 0, err
	}
	var id int64
	err = sqldb.QueryRow(`
INSERT INTO meal_logs(user_id, meal_type, meal_date, totals_source)
VALUES(?, ?, ?, ?)
RETURNING id
`, userID, strings.TrimSpace(in.Type), date, string(model.TotalsDerived)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("add meal: %w", err)
	}
	return id, nil
}

// AttachFood adds or overwrites the (meal, food) line item and recomputes
// the meal's nutrient totals in the same transaction.
func AttachFood(sqldb *db.DB, userID int64, in AttachFoodInput) (AttachFoodResult, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if err := validateNonNegativeFloat("quantity", in.Quantity); err != nil {
		return AttachFoodResult{}, err
	}
	threshold := in.HighCalorieThreshold
	if threshold <= 0 {
		threshold = DefaultHighCalorieThreshold
	}

	var totals model.Nutrients
	err := sqldb.InTx(func(tx *db.Tx) error {
		if _, err := loadMeal(tx, userID, in.MealID); err != nil {
			return err
		}
		ok, err := foodExists(tx, in.FoodID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownFood, in.FoodID)
		}
		if _, err := tx.Exec(`
INSERT INTO meal_foods(meal_id, food_id, quantity)
VALUES(?, ?, ?)
ON CONFLICT(meal_id, food_id) DO UPDATE SET quantity = excluded.quantity
`, in.MealID, in.FoodID, in.Quantity); err != nil {
			return fmt.Errorf("attach food %d to meal %d: %w", in.FoodID, in.MealID, err)
		}
		totals, err = recomputeMealTotals(tx, in.MealID)
		return err
	})
	if err != nil {
		return AttachFoodResult{}, err
	}
	return AttachFoodResult{
		Totals:      totals,
		Threshold:   threshold,
		HighCalorie: totals.Calories > threshold,
	}, nil
}

// recomputeMealTotals is the derived write path: the meal's nutrients become
// the quantity-weighted sum over its foods.
func recomputeMealTotals(q db.Querier, mealID int64) (model.Nutrients, error) {
	var n model.Nutrients
	err := q.QueryRow(`
SELECT COALESCE(SUM(f.calories_per_serving * mf.quantity), 0),
       COALESCE(SUM(f.protein_g * mf.quantity), 0),
       COALESCE(SUM(f.carbs_g * mf.quantity), 0),
       COALESCE(SUM(f.fats_g * mf.quantity), 0)
FROM meal_foods mf
JOIN foods f ON f.id = mf.food_id
WHERE mf.meal_id = ?
`, mealID).Scan(&n.Calories, &n.ProteinG, &n.CarbsG, &n.FatsG)
	if err != nil {
		return model.Nutrients{}, fmt.Errorf("sum meal %d foods: %w", mealID, err)
	}
	if err := writeMealTotals(q, mealID, n, model.TotalsDerived); err != nil {
		return model.Nutrients{}, err
	}
	return n, nil
}

// applyManualOverride is the manual write path. The stored totals may now
// disagree with the line items until the next recompute.
func applyManualOverride(q db.Querier, mealID int64, n model.Nutrients) error {
	return writeMealTotals(q, mealID, n, model.TotalsManual)
}

func writeMealTotals(q db.Querier, mealID int64, n model.Nutrients, source model.TotalsSource) error {
	if _, err := q.Exec(`
UPDATE meal_logs
SET calories = ?, protein_g = ?, carbs_g = ?, fats_g = ?, totals_source = ?
WHERE id = ?
`, n.Calories, n.ProteinG, n.CarbsG, n.FatsG, string(source), mealID); err != nil {
		return fmt.Errorf("write meal %d totals: %w", mealID, err)
	}
	return nil
}

func UpdateMeal(sqldb *db.DB, userID, mealID int64, patch MealPatch) error {
	return sqldb.InTx(func(tx *db.Tx) error {
		m, err := loadMeal(tx, userID, mealID)
		if err != nil {
			return err
		}
		if patch.Type != nil && strings.TrimSpace(*patch.Type) != "" {
			m.Type = strings.TrimSpace(*patch.Type)
		}
		if patch.Date != nil && strings.TrimSpace(*patch.Date) != "" {
			date, err := parseDate("meal date", *patch.Date)
			if err != nil {
				return err
			}
			m.Date = date
		}
		if _, err := tx.Exec(`UPDATE meal_logs SET meal_type = ?, meal_date = ? WHERE id = ? AND user_id = ?`, m.Type, m.Date, mealID, userID); err != nil {
			return fmt.Errorf("update meal %d: %w", mealID, err)
		}

		if !patch.overridesNutrients() {
			return nil
		}
		n := m.Nutrients
		for _, f := range []struct {
			name string
			in   *float64
			out  *float64
		}{
			{"calories", patch.Calories, &n.Calories},
			{"protein", patch.ProteinG, &n.ProteinG},
			{"carbs", patch.CarbsG, &n.CarbsG},
			{"fats", patch.FatsG, &n.FatsG},
		} {
			if f.in == nil {
				continue
			}
			if err := validateNonNegativeFloat(f.name, *f.in); err != nil {
				return err
			}
			*f.out = *f.in
		}
		return applyManualOverride(tx, mealID, n)
	})
}

// DeleteMeal removes the meal and its line items.
func DeleteMeal(sqldb *db.DB, userID, mealID int64) error {
	return sqldb.InTx(func(tx *db.Tx) error {
		if _, err := loadMeal(tx, userID, mealID); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM meal_foods WHERE meal_id = ?`, mealID); err != nil {
			return fmt.Errorf("delete meal %d foods: %w", mealID, err)
		}
		if _, err := tx.Exec(`DELETE FROM meal_logs WHERE id = ? AND user_id = ?`, mealID, userID); err != nil {
			return fmt.Errorf("delete meal %d: %w", mealID, err)
		}
		return nil
	})
}

func GetMeal(sqldb *db.DB, userID, mealID int64) (*MealDetail, error) {
	m, err := loadMeal(sqldb, userID, mealID)
	if err != nil {
		return nil, err
	}
	rows, err := sqldb.Query(`
SELECT mf.meal_id, mf.food_id, f.food_name, mf.quantity
FROM meal_foods mf
JOIN foods f ON f.id = mf.food_id
WHERE mf.meal_id = ?
ORDER BY mf.food_id ASC
`, mealID)
	if err != nil {
		return nil, fmt.Errorf("list meal %d foods: %w", mealID, err)
	}
	defer rows.Close()

	detail := &MealDetail{MealLog: *m, Foods: make([]model.MealFood, 0)}
	for rows.Next() {
		var line model.MealFood
		if err := rows.Scan(&line.MealID, &line.FoodID, &line.FoodName, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan meal food: %w", err)
		}
		detail.Foods = append(detail.Foods, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meal foods: %w", err)
	}
	return detail, nil
}

// SearchMeals returns the user's meals with their foods, grouped and ordered
// like SearchWorkouts. The food mode is an inner join: meals without a
// matching food are left out, and only the matching lines are returned.
func SearchMeals(sqldb *db.DB, userID int64, s MealSearch) ([]MealDetail, error) {
	const columns = `
SELECT ml.id, ml.user_id, ml.meal_type, ml.meal_date, ml.calories, ml.protein_g, ml.carbs_g, ml.fats_g, ml.totals_source,
       f.id, f.food_name, mf.quantity
FROM meal_logs ml`
	var query string
	args := []any{userID}

	switch strings.ToLower(strings.TrimSpace(s.Mode)) {
	case SearchByDate:
		date, err := parseDate("meal date", s.Date)
		if err != nil {
			return nil, err
		}
		query = columns + `
LEFT JOIN meal_foods mf ON mf.meal_id = ml.id
LEFT JOIN foods f ON f.id = mf.food_id
WHERE ml.user_id = ? AND ml.meal_date = ?`
		args = append(args, date)
	case SearchByFood:
		query = columns + `
JOIN meal_foods mf ON mf.meal_id = ml.id
JOIN foods f ON f.id = mf.food_id
WHERE ml.user_id = ? AND LOWER(f.food_name) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(s.Food))
	default:
		return nil, fmt.Errorf("%w %q (use %s or %s)", ErrInvalidSearchMode, s.Mode, SearchByDate, SearchByFood)
	}
	query += ` ORDER BY ml.meal_date ASC, ml.id ASC, f.id ASC`

	rows, err := sqldb.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search meals: %w", err)
	}
	defer rows.Close()

	out := make([]MealDetail, 0)
	for rows.Next() {
		var m model.MealLog
		var source string
		var foodID sql.NullInt64
		var foodName sql.NullString
		var quantity sql.NullFloat64
		if err := rows.Scan(&m.ID, &m.UserID, &m.Type, &m.Date, &m.Calories, &m.ProteinG, &m.CarbsG, &m.FatsG, &source,
			&foodID, &foodName, &quantity); err != nil {
			return nil, fmt.Errorf("scan meal search row: %w", err)
		}
		m.TotalsSource = model.TotalsSource(source)
		if len(out) == 0 || out[len(out)-1].ID != m.ID {
			out = append(out, MealDetail{MealLog: m, Foods: make([]model.MealFood, 0)})
		}
		if foodID.Valid {
			cur := &out[len(out)-1]
			cur.Foods = append(cur.Foods, model.MealFood{
				MealID:   m.ID,
				FoodID:   foodID.Int64,
				FoodName: foodName.String,
				Quantity: quantity.Float64,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meal search rows: %w", err)
	}
	return out, nil
}

func loadMeal(q db.Querier, userID, mealID int64) (*model.MealLog, error) {
	var m model.MealLog
	var source string
	err := q.QueryRow(`
SELECT id, user_id, meal_type, meal_date, calories, protein_g, carbs_g, fats_g, totals_source
FROM meal_logs
WHERE id = ? AND user_id = ?
`, mealID, userID).Scan(&m.ID, &m.UserID, &m.Type, &m.Date, &m.Calories, &m.ProteinG, &m.CarbsG, &m.FatsG, &source)
	if err == sql.ErrNoRows {
		return nil, ErrNotFoundOrNotOwned
	}
	if err != nil {
		return nil, fmt.Errorf("load meal %d: %w", mealID, err)
	}
	m.TotalsSource = model.TotalsSource(source)
	return &m, nil
}
