package fitlog

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/db"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/service"
)

var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Log and search meals",
}

var (
	mealType string
	mealDate string
)

var mealAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a meal (date defaults to today)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(sqldb *db.DB, sess service.Session) error {
			id, err := service.AddMeal(sqldb, sess.UserID, service.MealInput{Type: mealType, Date: mealDate})
			if err != nil {
				return err
			}
			logger.Info("meal added", zap.Int64("user_id", sess.UserID), zap.Int64("meal_id", id))
			fmt.Fprintf(cmd.OutOrStdout(), "Added meal %d\n", id)
			return nil
		})
	},
}

var mealQuantity float64

var mealAttachCmd = &cobra.Command{
	Use:   "attach <meal-id> <food-id>",
	Short: "Attach a catalog food to a meal and recompute its totals",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mealID, err := parseInt64Arg("meal id", args[0])
		if err != nil {
			return err
		}
		foodID, err := parseInt64Arg("food id", args[1])
		if err != nil {
			return err
		}
		return withSession(func(sqldb *db.DB, sess service.Session) error {
			return attachFood(cmd, sqldb, sess, mealID, foodID, mealQuantity)
		})
	},
}

func attachFood(cmd *cobra.Command, sqldb *db.DB, sess service.Session, mealID, foodID int64, quantity float64) error {
	res, err := service.AttachFood(sqldb, sess.UserID, service.AttachFoodInput{
		MealID:               mealID,
		FoodID:               foodID,
		Quantity:             quantity,
		HighCalorieThreshold: cfg.Meals.HighCalorieThreshold,
	})
	if err != nil {
		return err
	}
	if res.HighCalorie {
		logger.Info("high calorie meal",
			zap.Int64("user_id", sess.UserID),
			zap.Int64("meal_id", mealID),
			zap.Float64("calories", res.Totals.Calories),
			zap.Float64("threshold", res.Threshold))
	}
	printAttachFoodResult(cmd.OutOrStdout(), mealID, res)
	return nil
}

var (
	mealCalories float64
	mealProtein  float64
	mealCarbs    float64
	mealFats     float64
)

var mealUpdateCmd = &cobra.Command{
	Use:   "update <meal-id>",
	Short: "Update meal fields; nutrient flags manually override the totals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("meal id", args[0])
		if err != nil {
			return err
		}
		patch := service.MealPatch{
			Type:     changedString(cmd, "type", mealType),
			Date:     changedString(cmd, "date", mealDate),
			Calories: changedFloat(cmd, "calories", mealCalories),
			ProteinG: changedFloat(cmd, "protein", mealProtein),
			CarbsG:   changedFloat(cmd, "carbs", mealCarbs),
			FatsG:    changedFloat(cmd, "fats", mealFats),
		}
		return withSession(func(sqldb *db.DB, sess service.Session) error {
			if err := service.UpdateMeal(sqldb, sess.UserID, id, patch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated meal %d\n", id)
			return nil
		})
	},
}

var mealDeleteCmd = &cobra.Command{
	Use:   "delete <meal-id>",
	Short: "Delete a meal and its foods",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("meal id", args[0])
		if err != nil {
			return err
		}
		return withSession(func(sqldb *db.DB, sess service.Session) error {
			if err := service.DeleteMeal(sqldb, sess.UserID, id); err != nil {
				return err
			}
			logger.Info("meal deleted", zap.Int64("user_id", sess.UserID), zap.Int64("meal_id", id))
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted meal %d\n", id)
			return nil
		})
	},
}

var mealShowCmd = &cobra.Command{
	Use:   "show <meal-id>",
	Short: "Show a meal with its foods",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("meal id", args[0])
		if err != nil {
			return err
		}
		return withSession(func(sqldb *db.DB, sess service.Session) error {
			m, err := service.GetMeal(sqldb, sess.UserID, id)
			if err != nil {
				return err
			}
			printMeal(cmd.OutOrStdout(), *m)
			return nil
		})
	},
}

var (
	mealSearchDate string
	mealSearchFood string
)

var mealSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search meals by exact --date or by --food name",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := service.MealSearch{Mode: service.SearchByDate, Date: mealSearchDate}
		if cmd.Flags().Changed("food") {
			s = service.MealSearch{Mode: service.SearchByFood, Food: mealSearchFood}
		}
		return withSession(func(sqldb *db.DB, sess service.Session) error {
			items, err := service.SearchMeals(sqldb, sess.UserID, s)
			if err != nil {
				return err
			}
			printMeals(cmd.OutOrStdout(), items)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(mealCmd)
	mealCmd.AddCommand(mealAddCmd, mealAttachCmd, mealUpdateCmd, mealDeleteCmd, mealShowCmd, mealSearchCmd)

	for _, c := range []*cobra.Command{mealAddCmd, mealUpdateCmd} {
		c.Flags().StringVar(&mealType, "type", "", "Meal type, e.g. Breakfast")
		c.Flags().StringVar(&mealDate, "date", "", "Meal date YYYY-MM-DD")
	}
	mealUpdateCmd.Flags().Float64Var(&mealCalories, "calories", 0, "Total calories (manual override)")
	mealUpdateCmd.Flags().Float64Var(&mealProtein, "protein", 0, "Total protein grams (manual override)")
	mealUpdateCmd.Flags().Float64Var(&mealCarbs, "carbs", 0, "Total carb grams (manual override)")
	mealUpdateCmd.Flags().Float64Var(&mealFats, "fats", 0, "Total fat grams (manual override)")

	mealAttachCmd.Flags().Float64Var(&mealQuantity, "quantity", 1, "Servings")

	mealSearchCmd.Flags().StringVar(&mealSearchDate, "date", "", "Meal date YYYY-MM-DD")
	mealSearchCmd.Flags().StringVar(&mealSearchFood, "food", "", "Part of a food name")
	mealSearchCmd.MarkFlagsMutuallyExclusive("date", "food")
}
