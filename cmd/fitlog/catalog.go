package fitlog

import (
	"context"
	"fmt"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/db"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/provider/openfoodfacts"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/service"
)

var exerciseCmd = &cobra.Command{
	Use:   "exercise",
	Short: "Manage the shared exercise catalog",
}

var (
	exName        string
	exCategory    string
	exMuscleGroup string
	exEquipment   string
)

var exerciseAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an exercise (ignored when the name exists)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *db.DB) error {
			id, added, err := service.AddExercise(sqldb, service.ExerciseInput{
				Name:        exName,
				Category:    exCategory,
				MuscleGroup: exMuscleGroup,
				Equipment:   exEquipment,
			})
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintln(cmd.OutOrStdout(), "Exercise already exists (by name); nothing added")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added exercise %d\n", id)
			return nil
		})
	},
}

var exerciseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog exercises",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *db.DB) error {
			items, err := service.ListExercises(sqldb)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No exercises found.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tMUSCLE GROUP\tEQUIPMENT")
			for _, e := range items {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Category, e.MuscleGroup, e.Equipment)
			}
			return w.Flush()
		})
	},
}

var foodCmd = &cobra.Command{
	Use:   "food",
	Short: "Manage the shared food catalog",
}

var (
	foodName     string
	foodServing  string
	foodCalories float64
	foodProtein  float64
	foodCarbs    float64
	foodFats     float64
)

var foodAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a food (ignored when the name exists)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *db.DB) error {
			return addFood(cmd, sqldb, service.FoodInput{
				Name:               foodName,
				ServingSize:        foodServing,
				CaloriesPerServing: foodCalories,
				ProteinG:           foodProtein,
				CarbsG:             foodCarbs,
				FatsG:              foodFats,
			})
		})
	},
}

func addFood(cmd *cobra.Command, sqldb *db.DB, in service.FoodInput) error {
	id, added, err := service.AddFood(sqldb, in)
	if err != nil {
		return err
	}
	if !added {
		fmt.Fprintln(cmd.OutOrStdout(), "Food already exists (by name); nothing added")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added food %d\n", id)
	return nil
}

var foodListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog foods",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *db.DB) error {
			items, err := service.ListFoods(sqldb)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No foods found.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSERVING\tKCAL\tPROTEIN\tCARBS\tFATS")
			for _, f := range items {
				fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\t%.1f\t%.1f\t%.1f\n", f.ID, f.Name, f.ServingSize, f.CaloriesPerServing, f.ProteinG, f.CarbsG, f.FatsG)
			}
			return w.Flush()
		})
	},
}

var (
	lookupBarcode string
	lookupQuery   string
	lookupLimit   int
	lookupAdd     bool
)

var foodLookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up foods on Open Food Facts (by --barcode or --query)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if (lookupBarcode == "") == (lookupQuery == "") {
			return fmt.Errorf("set exactly one of --barcode or --query")
		}
		client := &openfoodfacts.Client{
			BaseURL:    cfg.OpenFoodFacts.BaseURL,
			HTTPClient: &http.Client{Timeout: 12 * time.Second},
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		var items []openfoodfacts.FoodLookup
		if lookupBarcode != "" {
			item, err := client.LookupBarcode(ctx, lookupBarcode)
			if err != nil {
				return err
			}
			items = append(items, item)
		} else {
			found, err := client.SearchFoods(ctx, lookupQuery, lookupLimit)
			if err != nil {
				return err
			}
			items = found
		}
		logger.Debug("openfoodfacts lookup", zap.String("barcode", lookupBarcode), zap.String("query", lookupQuery), zap.Int("results", len(items)))

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "BARCODE\tNAME\tSERVING\tKCAL\tPROTEIN\tCARBS\tFATS")
		for _, it := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%.1f\t%.1f\t%.1f\n", it.Barcode, it.DisplayName(), it.ServingSize, it.Calories, it.ProteinG, it.CarbsG, it.FatsG)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if !lookupAdd {
			return nil
		}
		// Only the first hit is added; refine the query to pick another.
		it := items[0]
		return withDB(func(sqldb *db.DB) error {
			return addFood(cmd, sqldb, service.FoodInput{
				Name:               it.DisplayName(),
				ServingSize:        it.ServingSize,
				CaloriesPerServing: it.Calories,
				ProteinG:           it.ProteinG,
				CarbsG:             it.CarbsG,
				FatsG:              it.FatsG,
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(exerciseCmd, foodCmd)
	exerciseCmd.AddCommand(exerciseAddCmd, exerciseListCmd)
	foodCmd.AddCommand(foodAddCmd, foodListCmd, foodLookupCmd)

	exerciseAddCmd.Flags().StringVar(&exName, "name", "", "Exercise name (unique)")
	exerciseAddCmd.Flags().StringVar(&exCategory, "category", "", "Category")
	exerciseAddCmd.Flags().StringVar(&exMuscleGroup, "muscle-group", "", "Muscle group")
	exerciseAddCmd.Flags().StringVar(&exEquipment, "equipment", "", "Equipment")
	_ = exerciseAddCmd.MarkFlagRequired("name")

	foodAddCmd.Flags().StringVar(&foodName, "name", "", "Food name (unique)")
	foodAddCmd.Flags().StringVar(&foodServing, "serving", "", "Serving size, e.g. 100g")
	foodAddCmd.Flags().Float64Var(&foodCalories, "calories", 0, "Calories per serving")
	foodAddCmd.Flags().Float64Var(&foodProtein, "protein", 0, "Protein grams per serving")
	foodAddCmd.Flags().Float64Var(&foodCarbs, "carbs", 0, "Carb grams per serving")
	foodAddCmd.Flags().Float64Var(&foodFats, "fats", 0, "Fat grams per serving")
	_ = foodAddCmd.MarkFlagRequired("name")

	foodLookupCmd.Flags().StringVar(&lookupBarcode, "barcode", "", "Product barcode")
	foodLookupCmd.Flags().StringVar(&lookupQuery, "query", "", "Free-text search")
	foodLookupCmd.Flags().IntVar(&lookupLimit, "limit", 5, "Maximum search results")
	foodLookupCmd.Flags().BoolVar(&lookupAdd, "add", false, "Add the first result to the food catalog")
}
