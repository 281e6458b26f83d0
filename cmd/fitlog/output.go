package fitlog

import (
	"fmt"
	"io"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/model"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/service"
)

func printWorkouts(out io.Writer, items []service.WorkoutDetail) {
	if len(items) == 0 {
		fmt.Fprintln(out, "No workouts found.")
		return
	}
	for _, w := range items {
		printWorkout(out, w)
	}
}

func printWorkout(out io.Writer, w service.WorkoutDetail) {
	fmt.Fprintf(out, "[%d] %s | %s | %.0f min | %s | %.1f kcal burned\n",
		w.ID, w.Date, w.Type, w.DurationMin, w.Intensity, w.CaloriesBurned)
	for _, e := range w.Exercises {
		fmt.Fprintf(out, "  - Exercise %d: %s | %d x %d @ %.1f kg\n", e.ExerciseID, e.ExerciseName, e.Sets, e.Reps, e.WeightKg)
	}
}

func printMeals(out io.Writer, items []service.MealDetail) {
	if len(items) == 0 {
		fmt.Fprintln(out, "No meals found.")
		return
	}
	for _, m := range items {
		printMeal(out, m)
	}
}

func printMeal(out io.Writer, m service.MealDetail) {
	marker := ""
	if m.TotalsSource == model.TotalsManual {
		marker = " (manual)"
	}
	fmt.Fprintf(out, "[%d] %s | %s | %s%s\n", m.ID, m.Date, m.Type, formatNutrients(m.Nutrients), marker)
	for _, f := range m.Foods {
		fmt.Fprintf(out, "  - Food %d: %s | qty=%g\n", f.FoodID, f.FoodName, f.Quantity)
	}
}

func formatNutrients(n model.Nutrients) string {
	return fmt.Sprintf("%.1f kcal, P %.1fg, C %.1fg, F %.1fg", n.Calories, n.ProteinG, n.CarbsG, n.FatsG)
}

func printAttachFoodResult(out io.Writer, mealID int64, res service.AttachFoodResult) {
	fmt.Fprintf(out, "Meal %d totals: %s\n", mealID, formatNutrients(res.Totals))
	if res.HighCalorie {
		fmt.Fprintf(out, "Advisory: this meal is over %.0f kcal.\n", res.Threshold)
	}
}

func printDaily(out io.Writer, r service.DailyReport) {
	fmt.Fprintf(out, "Date: %s\n", r.Date)
	fmt.Fprintf(out, "Calories in : %.2f\n", r.CaloriesIn)
	fmt.Fprintf(out, "Calories out: %.2f\n", r.CaloriesOut)
	fmt.Fprintf(out, "Balance     : %.2f (positive = surplus)\n", r.Balance)
}

func printWeekly(out io.Writer, r service.WeeklyReport) {
	fmt.Fprintf(out, "Window: %s to %s\n", r.From, r.To)
	if !r.HasData {
		fmt.Fprintln(out, "No meals logged in the last 7 days.")
		return
	}
	fmt.Fprintf(out, "Meals       : %d\n", r.MealCount)
	fmt.Fprintf(out, "Avg calories: %.2f\n", r.AvgCalories)
	fmt.Fprintf(out, "Avg protein : %.2f g\n", r.AvgProteinG)
	fmt.Fprintf(out, "Avg carbs   : %.2f g\n", r.AvgCarbsG)
	fmt.Fprintf(out, "Avg fats    : %.2f g\n", r.AvgFatsG)
}
