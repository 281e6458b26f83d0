package fitlog

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/db"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/service"
)

var workoutCmd = &cobra.Command{
	Use:   "workout",
	Short: "Log and search workouts",
}

var (
	workoutType      string
	workoutDuration  float64
	workoutIntensity string
	workoutCalories  float64
	workoutDate      string
)

var workoutAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a workout (date defaults to today)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(sqldb *db.DB, sess service.Session) error {
			id, err := service.AddWorkout(sqldb, sess.UserID, service.WorkoutInput{
				Type:           workoutType,
				DurationMin:    workoutDuration,
				Intensity:      workoutIntensity,
				CaloriesBurned: workoutCalories,
				Date:           workoutDate,
			})
			if err != nil {
				return err
			}
			logger.Info("workout added", zap.Int64("user_id", sess.UserID), zap.Int64("workout_id", id))
			fmt.Fprintf(cmd.OutOrStdout(), "Added workout %d\n", id)
			return nil
		})
	},
}

var (
	attachSets   int
	attachReps   int
	attachWeight float64
)

var workoutAttachCmd = &cobra.Command{
	Use:   "attach <workout-id> <exercise-id>",
	Short: "Attach a catalog exercise to a workout (re-attaching overwrites)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		workoutID, err := parseInt64Arg("workout id", args[0])
		if err != nil {
			return err
		}
		exerciseID, err := parseInt64Arg("exercise id", args[1])
		if err != nil {
			return err
		}
		return withSession(func(sqldb *db.DB, sess service.Session) error {
			if err := service.AttachExercise(sqldb, sess.UserID, service.AttachExerciseInput{
				WorkoutID:  workoutID,
				ExerciseID: exerciseID,
				Sets:       attachSets,
				Reps:       attachReps,
				WeightKg:   attachWeight,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Attached exercise %d to workout %d\n", exerciseID, workoutID)
			return nil
		})
	},
}

var workoutUpdateCmd = &cobra.Command{
	Use:   "update <workout-id>",
	Short: "Update the given workout fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("workout id", args[0])
		if err != nil {
			return err
		}
		patch := service.WorkoutPatch{
			Type:           changedString(cmd, "type", workoutType),
			DurationMin:    changedFloat(cmd, "duration", workoutDuration),
			Intensity:      changedString(cmd, "intensity", workoutIntensity),
			CaloriesBurned: changedFloat(cmd, "calories", workoutCalories),
			Date:           changedString(cmd, "date", workoutDate),
		}
		return withSession(func(sqldb *db.DB, sess service.Session) error {
			if err := service.UpdateWorkout(sqldb, sess.UserID, id, patch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated workout %d\n", id)
			return nil
		})
	},
}

var workoutDeleteCmd = &cobra.Command{
	Use:   "delete <workout-id>",
	Short: "Delete a workout and its exercises",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("workout id", args[0])
		if err != nil {
			return err
		}
		return withSession(func(sqldb *db.DB, sess service.Session) error {
			if err := service.DeleteWorkout(sqldb, sess.UserID, id); err != nil {
				return err
			}
			logger.Info("workout deleted", zap.Int64("user_id", sess.UserID), zap.Int64("workout_id", id))
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted workout %d\n", id)
			return nil
		})
	},
}

var workoutShowCmd = &cobra.Command{
	Use:   "show <workout-id>",
	Short: "Show a workout with its exercises",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("workout id", args[0])
		if err != nil {
			return err
		}
		return withSession(func(sqldb *db.DB, sess service.Session) error {
			w, err := service.GetWorkout(sqldb, sess.UserID, id)
			if err != nil {
				return err
			}
			printWorkout(cmd.OutOrStdout(), *w)
			return nil
		})
	},
}

var (
	searchFrom string
	searchTo   string
	searchType string
)

var workoutSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search workouts by --from/--to date range or by --type",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := service.WorkoutSearch{Mode: service.SearchByDate, From: searchFrom, To: searchTo}
		if cmd.Flags().Changed("type") {
			s = service.WorkoutSearch{Mode: service.SearchByType, Type: searchType}
		}
		return withSession(func(sqldb *db.DB, sess service.Session) error {
			items, err := service.SearchWorkouts(sqldb, sess.UserID, s)
			if err != nil {
				return err
			}
			printWorkouts(cmd.OutOrStdout(), items)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(workoutCmd)
	workoutCmd.AddCommand(workoutAddCmd, workoutAttachCmd, workoutUpdateCmd, workoutDeleteCmd, workoutShowCmd, workoutSearchCmd)

	for _, c := range []*cobra.Command{workoutAddCmd, workoutUpdateCmd} {
		c.Flags().StringVar(&workoutType, "type", "", "Workout type, e.g. Upper body")
		c.Flags().Float64Var(&workoutDuration, "duration", 0, "Duration in minutes")
		c.Flags().StringVar(&workoutIntensity, "intensity", "", "Intensity, e.g. Light/Moderate/Hard")
		c.Flags().Float64Var(&workoutCalories, "calories", 0, "Calories burned")
		c.Flags().StringVar(&workoutDate, "date", "", "Workout date YYYY-MM-DD")
	}

	workoutAttachCmd.Flags().IntVar(&attachSets, "sets", 0, "Sets")
	workoutAttachCmd.Flags().IntVar(&attachReps, "reps", 0, "Reps")
	workoutAttachCmd.Flags().Float64Var(&attachWeight, "weight", 0, "Weight used in kg")

	workoutSearchCmd.Flags().StringVar(&searchFrom, "from", "", "Start date YYYY-MM-DD (inclusive)")
	workoutSearchCmd.Flags().StringVar(&searchTo, "to", "", "End date YYYY-MM-DD (inclusive)")
	workoutSearchCmd.Flags().StringVar(&searchType, "type", "", "Workout type keyword")
	workoutSearchCmd.MarkFlagsMutuallyExclusive("type", "from")
	workoutSearchCmd.MarkFlagsMutuallyExclusive("type", "to")
}
