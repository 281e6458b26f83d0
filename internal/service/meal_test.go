package service_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/model"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/service"
)

func TestAttachFoodRecomputesTotals(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	user := mustRegister(t, sqldb, "m@example.com")
	food := mustAddFood(t, sqldb, oats)

	meal, err := service.AddMeal(sqldb, user, service.MealInput{Type: "Breakfast", Date: "2026-03-01"})
	if err != nil {
		t.Fatalf("add meal: %v", err)
	}
	res, err := service.AttachFood(sqldb, user, service.AttachFoodInput{MealID: meal, FoodID: food, Quantity: 2})
	if err != nil {
		t.Fatalf("attach food: %v", err)
	}
	want := model.Nutrients{Calories: 300, ProteinG: 10, CarbsG: 54, FatsG: 6}
	if diff := cmp.Diff(want, res.Totals); diff != "" {
		t.Fatalf("totals mismatch (-want +got):\n%s", diff)
	}
	if res.HighCalorie || res.Threshold != service.DefaultHighCalorieThreshold {
		t.Fatalf("unexpected advisory: %+v", res)
	}

	detail, err := service.GetMeal(sqldb, user, meal)
	if err != nil {
		t.Fatalf("get meal: %v", err)
	}
	if diff := cmp.Diff(want, detail.Nutrients); diff != "" {
		t.Fatalf("stored totals mismatch (-want +got):\n%s", diff)
	}
	if detail.TotalsSource != model.TotalsDerived {
		t.Fatalf("expected derived totals, got %q", detail.TotalsSource)
	}

	// Re-attaching overwrites the quantity instead of adding a second line.
	res, err = service.AttachFood(sqldb, user, service.AttachFoodInput{MealID: meal, FoodID: food})
	if err != nil {
		t.Fatalf("re-attach food: %v", err)
	}
	if res.Totals.Calories != 150 {
		t.Fatalf("expected quantity reset to 1 serving, got %+v", res.Totals)
	}
	detail, err = service.GetMeal(sqldb, user, meal)
	if err != nil {
		t.Fatalf("get meal after re-attach: %v", err)
	}
	if len(detail.Foods) != 1 || detail.Foods[0].Quantity != 1 || detail.Foods[0].FoodName != "Oats" {
		t.Fatalf("expected a single oats line, got %+v", detail.Foods)
	}
}

func TestAttachFoodHighCalorieAdvisory(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	user := mustRegister(t, sqldb, "big@example.com")
	pizza := mustAddFood(t, sqldb, service.FoodInput{Name: "Pizza", CaloriesPerServing: 700, ProteinG: 30, CarbsG: 80, FatsG: 30})
	meal, _ := service.AddMeal(sqldb, user, service.MealInput{Type: "Dinner", Date: "2026-03-01"})

	res, err := service.AttachFood(sqldb, user, service.AttachFoodInput{MealID: meal, FoodID: pizza, Quantity: 2})
	if err != nil {
		t.Fatalf("attach food: %v", err)
	}
	if !res.HighCalorie || res.Totals.Calories != 1400 {
		t.Fatalf("expected high calorie advisory, got %+v", res)
	}

	res, err = service.AttachFood(sqldb, user, service.AttachFoodInput{MealID: meal, FoodID: pizza, Quantity: 2, HighCalorieThreshold: 2000})
	if err != nil {
		t.Fatalf("attach food with custom threshold: %v", err)
	}
	if res.HighCalorie || res.Threshold != 2000 {
		t.Fatalf("expected no advisory under 2000 kcal threshold, got %+v", res)
	}
}

func TestAttachFoodErrors(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	owner := mustRegister(t, sqldb, "own@example.com")
	other := mustRegister(t, sqldb, "oth@example.com")
	food := mustAddFood(t, sqldb, oats)
	meal, _ := service.AddMeal(sqldb, owner, service.MealInput{Date: "2026-03-01"})

	if _, err := service.AttachFood(sqldb, owner, service.AttachFoodInput{MealID: meal, FoodID: 4242}); !errors.Is(err, service.ErrUnknownFood) {
		t.Fatalf("expected ErrUnknownFood, got %v", err)
	}
	if _, err := service.AttachFood(sqldb, other, service.AttachFoodInput{MealID: meal, FoodID: food}); !errors.Is(err, service.ErrNotFoundOrNotOwned) {
		t.Fatalf("expected ErrNotFoundOrNotOwned, got %v", err)
	}
	if _, err := service.AttachFood(sqldb, owner, service.AttachFoodInput{MealID: meal, FoodID: food, Quantity: -1}); !service.IsValidation(err) {
		t.Fatalf("expected validation error for negative quantity, got %v", err)
	}
	for _, q := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		if _, err := service.AttachFood(sqldb, owner, service.AttachFoodInput{MealID: meal, FoodID: food, Quantity: q}); !service.IsValidation(err) {
			t.Fatalf("expected validation error for quantity %v, got %v", q, err)
		}
	}
	var lines int
	if err := sqldb.QueryRow(`SELECT COUNT(*) FROM meal_foods WHERE meal_id = ?`, meal).Scan(&lines); err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if lines != 0 {
		t.Fatalf("expected rejected quantities to leave no line items, got %d", lines)
	}
	if _, err := service.ExportUserData(sqldb, owner); err != nil {
		t.Fatalf("export after rejected quantities: %v", err)
	}
}

func TestAttachFoodIsAtomic(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	user := mustRegister(t, sqldb, "atomic@example.com")
	food := mustAddFood(t, sqldb, oats)
	meal, _ := service.AddMeal(sqldb, user, service.MealInput{Date: "2026-03-01"})

	if _, err := sqldb.Exec(`
CREATE TRIGGER fail_meal_totals BEFORE UPDATE ON meal_logs
BEGIN
  SELECT RAISE(ABORT, 'totals write failed');
END;
`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	if _, err := service.AttachFood(sqldb, user, service.AttachFoodInput{MealID: meal, FoodID: food, Quantity: 2}); err == nil {
		t.Fatalf("expected attach to fail when the totals update fails")
	}
	var lines int
	if err := sqldb.QueryRow(`SELECT COUNT(*) FROM meal_foods WHERE meal_id = ?`, meal).Scan(&lines); err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if lines != 0 {
		t.Fatalf("line item must be rolled back with the totals, got %d rows", lines)
	}
}

func TestUpdateMealManualOverride(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	user := mustRegister(t, sqldb, "ovr@example.com")
	food := mustAddFood(t, sqldb, oats)
	meal, _ := service.AddMeal(sqldb, user, service.MealInput{Type: "Lunch", Date: "2026-03-01"})
	if _, err := service.AttachFood(sqldb, user, service.AttachFoodInput{MealID: meal, FoodID: food}); err != nil {
		t.Fatalf("attach food: %v", err)
	}

	calories := 999.0
	mealType := "Brunch"
	if err := service.UpdateMeal(sqldb, user, meal, service.MealPatch{Calories: &calories, Type: &mealType}); err != nil {
		t.Fatalf("update meal: %v", err)
	}
	detail, err := service.GetMeal(sqldb, user, meal)
	if err != nil {
		t.Fatalf("get meal: %v", err)
	}
	if detail.Calories != 999 || detail.ProteinG != 5 || detail.Type != "Brunch" {
		t.Fatalf("override should replace only the given fields: %+v", detail.MealLog)
	}
	if detail.TotalsSource != model.TotalsManual {
		t.Fatalf("expected manual totals, got %q", detail.TotalsSource)
	}

	// The next attach recomputes from the line items.
	res, err := service.AttachFood(sqldb, user, service.AttachFoodInput{MealID: meal, FoodID: food, Quantity: 1})
	if err != nil {
		t.Fatalf("attach food: %v", err)
	}
	if res.Totals.Calories != 150 {
		t.Fatalf("expected recomputed calories 150, got %v", res.Totals.Calories)
	}

	negative := -5.0
	if err := service.UpdateMeal(sqldb, user, meal, service.MealPatch{FatsG: &negative}); !service.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteMealCascadesAndChecksOwnership(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	user := mustRegister(t, sqldb, "del@example.com")
	other := mustRegister(t, sqldb, "del2@example.com")
	food := mustAddFood(t, sqldb, oats)
	meal, _ := service.AddMeal(sqldb, user, service.MealInput{Date: "2026-03-01"})
	if _, err := service.AttachFood(sqldb, user, service.AttachFoodInput{MealID: meal, FoodID: food}); err != nil {
		t.Fatalf("attach food: %v", err)
	}

	if err := service.DeleteMeal(sqldb, other, meal); !errors.Is(err, service.ErrNotFoundOrNotOwned) {
		t.Fatalf("expected ErrNotFoundOrNotOwned, got %v", err)
	}
	if err := service.DeleteMeal(sqldb, user, meal); err != nil {
		t.Fatalf("delete meal: %v", err)
	}
	var lines int
	if err := sqldb.QueryRow(`SELECT COUNT(*) FROM meal_foods`).Scan(&lines); err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if lines != 0 {
		t.Fatalf("expected meal foods removed, got %d", lines)
	}
	if _, err := service.GetMeal(sqldb, user, meal); !errors.Is(err, service.ErrNotFoundOrNotOwned) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestSearchMeals(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	user := mustRegister(t, sqldb, "sm@example.com")
	oatsID := mustAddFood(t, sqldb, oats)
	banana := mustAddFood(t, sqldb, service.FoodInput{Name: "Banana", CaloriesPerServing: 105, CarbsG: 27})

	breakfast, _ := service.AddMeal(sqldb, user, service.MealInput{Type: "Breakfast", Date: "2026-03-01"})
	snack, _ := service.AddMeal(sqldb, user, service.MealInput{Type: "Snack", Date: "2026-03-01"})
	empty, _ := service.AddMeal(sqldb, user, service.MealInput{Type: "Dinner", Date: "2026-03-01"})
	_, _ = service.AddMeal(sqldb, user, service.MealInput{Type: "Dinner", Date: "2026-03-02"})
	for _, a := range []service.AttachFoodInput{
		{MealID: breakfast, FoodID: oatsID},
		{MealID: breakfast, FoodID: banana},
		{MealID: snack, FoodID: banana},
	} {
		if _, err := service.AttachFood(sqldb, user, a); err != nil {
			t.Fatalf("attach %+v: %v", a, err)
		}
	}

	byDate, err := service.SearchMeals(sqldb, user, service.MealSearch{Mode: service.SearchByDate, Date: "2026-03-01"})
	if err != nil {
		t.Fatalf("search by date: %v", err)
	}
	if len(byDate) != 3 || byDate[0].ID != breakfast || byDate[1].ID != snack || byDate[2].ID != empty {
		t.Fatalf("expected three meals on 2026-03-01, got %+v", byDate)
	}
	if len(byDate[0].Foods) != 2 || len(byDate[2].Foods) != 0 {
		t.Fatalf("unexpected date search lines: %+v", byDate)
	}

	byFood, err := service.SearchMeals(sqldb, user, service.MealSearch{Mode: service.SearchByFood, Food: "oat"})
	if err != nil {
		t.Fatalf("search by food: %v", err)
	}
	if len(byFood) != 1 || byFood[0].ID != breakfast {
		t.Fatalf("expected only breakfast, got %+v", byFood)
	}
	if len(byFood[0].Foods) != 1 || byFood[0].Foods[0].FoodID != oatsID {
		t.Fatalf("food search returns only the matching lines, got %+v", byFood[0].Foods)
	}

	if _, err := service.SearchMeals(sqldb, user, service.MealSearch{Mode: "calories"}); !errors.Is(err, service.ErrInvalidSearchMode) {
		t.Fatalf("expected ErrInvalidSearchMode, got %v", err)
	}
}
