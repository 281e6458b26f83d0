package fitlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/auth"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/db"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/service"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive menu (register, log in, then log workouts and meals)",
	RunE: func(cmd *cobra.Command, args []string) error {
		hasher, err := newHasher()
		if err != nil {
			return err
		}
		return withDB(func(sqldb *db.DB) error {
			sh := &shell{
				in:        bufio.NewReader(cmd.InOrStdin()),
				out:       cmd.OutOrStdout(),
				sqldb:     sqldb,
				hasher:    hasher,
				exportDir: shellExportDir,
			}
			if fd, ok := terminalFd(cmd.InOrStdin()); ok {
				sh.termFd = fd
				sh.isTerm = true
			}
			return sh.run()
		})
	},
}

var shellExportDir string

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().StringVar(&shellExportDir, "export-dir", ".", "Directory for JSON exports")
}

var errQuit = errors.New("quit")

type shell struct {
	in     *bufio.Reader
	out    io.Writer
	sqldb  *db.DB
	hasher auth.Hasher
	// Passwords are read without echo when stdin is a terminal.
	termFd int
	isTerm bool
	// exportDir receives the JSON export files.
	exportDir string
	// sess is nil until login succeeds.
	sess *service.Session
}

func (s *shell) run() error {
	for {
		var err error
		if s.sess == nil {
			err = s.authMenu()
		} else {
			err = s.mainMenu()
		}
		switch {
		case errors.Is(err, errQuit), errors.Is(err, io.EOF):
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		case err != nil:
			// Operation errors are reported and the loop continues.
			logger.Debug("shell operation failed", zap.Error(err))
			fmt.Fprintf(s.out, "Error: %v\n\n", err)
		}
	}
}

func (s *shell) authMenu() error {
	fmt.Fprintln(s.out, "=== Fitness & Nutrition Logger ===")
	fmt.Fprintln(s.out, "1) Register")
	fmt.Fprintln(s.out, "2) Login")
	fmt.Fprintln(s.out, "0) Quit")
	choice, err := s.ask("Choose: ")
	if err != nil {
		return err
	}
	switch choice {
	case "1":
		return s.register()
	case "2":
		return s.login()
	case "0":
		return errQuit
	default:
		fmt.Fprintln(s.out, "Invalid choice.")
		fmt.Fprintln(s.out)
		return nil
	}
}

func (s *shell) mainMenu() error {
	fmt.Fprintf(s.out, "=== Main Menu (logged in as %s) ===\n", s.sess.Name)
	for _, line := range []string{
		"1) Add workout", "2) Add exercise to workout", "3) Update workout", "4) Delete workout", "5) Search workouts", "",
		"6) Add meal", "7) Add food to meal", "8) Update meal", "9) Delete meal", "10) Search meals", "",
		"11) Add exercise (catalog)", "12) List exercises", "13) Add food (catalog)", "14) List foods", "",
		"15) Daily report", "16) Weekly report", "17) Export all data as JSON", "0) Logout",
	} {
		fmt.Fprintln(s.out, line)
	}
	choice, err := s.ask("Choose: ")
	if err != nil {
		return err
	}
	actions := map[string]func() error{
		"1": s.addWorkout, "2": s.attachExercise, "3": s.updateWorkout, "4": s.deleteWorkout, "5": s.searchWorkouts,
		"6": s.addMeal, "7": s.attachFood, "8": s.updateMeal, "9": s.deleteMeal, "10": s.searchMeals,
		"11": s.addExercise, "12": s.listExercises, "13": s.addFood, "14": s.listFoods,
		"15": s.dailyReport, "16": s.weeklyReport, "17": s.export,
	}
	if choice == "0" {
		if err := service.CloseSession(s.sqldb, s.sess.Token); err != nil {
			return err
		}
		s.sess = nil
		fmt.Fprintln(s.out, "Logging out.")
		fmt.Fprintln(s.out)
		return nil
	}
	action, ok := actions[choice]
	if !ok {
		fmt.Fprintln(s.out, "Invalid choice.")
		fmt.Fprintln(s.out)
		return nil
	}
	if err := action(); err != nil {
		return err
	}
	fmt.Fprintln(s.out)
	return nil
}

// ask prints label and returns the trimmed line. io.EOF is returned only
// when nothing was read.
func (s *shell) ask(label string) (string, error) {
	fmt.Fprint(s.out, label)
	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *shell) askPassword(label string) (string, error) {
	if !s.isTerm {
		return s.ask(label)
	}
	fmt.Fprint(s.out, label)
	return readHiddenLine(s.termFd, s.out)
}

func (s *shell) askFloat(label string, blank float64) (float64, error) {
	v, err := s.ask(label)
	if err != nil || v == "" {
		return blank, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", v)
	}
	return f, nil
}

func (s *shell) askInt(label string) (int, error) {
	v, err := s.ask(label)
	if err != nil || v == "" {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}

func (s *shell) askID(label string) (int64, error) {
	v, err := s.ask(label)
	if err != nil {
		return 0, err
	}
	if v == "" {
		return 0, fmt.Errorf("no id provided")
	}
	return parseInt64Arg("id", v)
}

// askOptionalFloat returns nil for a blank answer.
func (s *shell) askOptionalFloat(label string) (*float64, error) {
	v, err := s.ask(label)
	if err != nil || v == "" {
		return nil, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", v)
	}
	return &f, nil
}

func (s *shell) askOptionalString(label string) (*string, error) {
	v, err := s.ask(label)
	if err != nil || v == "" {
		return nil, err
	}
	return &v, nil
}

func (s *shell) register() error {
	var in service.RegisterInput
	var err error
	if in.Name, err = s.ask("Name: "); err != nil {
		return err
	}
	if in.Email, err = s.ask("Email: "); err != nil {
		return err
	}
	if in.Password, err = s.askPassword("Password: "); err != nil {
		return err
	}
	if in.Age, err = s.askInt("Age: "); err != nil {
		return err
	}
	if in.Gender, err = s.ask("Gender: "); err != nil {
		return err
	}
	if in.HeightCm, err = s.askFloat("Height (cm): ", 0); err != nil {
		return err
	}
	if in.WeightKg, err = s.askFloat("Weight (kg): ", 0); err != nil {
		return err
	}
	id, err := service.Register(s.sqldb, s.hasher, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Registered user %d (BMI %.2f). You can now log in.\n\n", id, service.BMI(in.WeightKg, in.HeightCm))
	return nil
}

func (s *shell) login() error {
	email, err := s.ask("Email: ")
	if err != nil {
		return err
	}
	password, err := s.askPassword("Password: ")
	if err != nil {
		return err
	}
	sess, err := service.Login(s.sqldb, email, password)
	if err != nil {
		return err
	}
	if sess, err = service.OpenSession(s.sqldb, sess); err != nil {
		return err
	}
	s.sess = &sess
	fmt.Fprintf(s.out, "Welcome, %s!\n\n", sess.Name)
	return nil
}

func (s *shell) addWorkout() error {
	var in service.WorkoutInput
	var err error
	if in.Type, err = s.ask("Workout type (e.g., 'Upper body'): "); err != nil {
		return err
	}
	if in.DurationMin, err = s.askFloat("Duration (minutes): ", 0); err != nil {
		return err
	}
	if in.Intensity, err = s.ask("Intensity (e.g., 'Light/Moderate/Hard'): "); err != nil {
		return err
	}
	if in.CaloriesBurned, err = s.askFloat("Calories burned: ", 0); err != nil {
		return err
	}
	if in.Date, err = s.ask("Workout date (YYYY-MM-DD, blank = today): "); err != nil {
		return err
	}
	id, err := service.AddWorkout(s.sqldb, s.sess.UserID, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Workout created with id %d.\n", id)
	return nil
}

func (s *shell) attachExercise() error {
	workoutID, err := s.askID("Workout id: ")
	if err != nil {
		return err
	}
	items, err := service.ListExercises(s.sqldb)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(s.out, "No exercises exist yet. Use 'Add exercise (catalog)' first.")
		return nil
	}
	fmt.Fprintln(s.out, "Exercises:")
	for _, e := range items {
		fmt.Fprintf(s.out, "  %d: %s\n", e.ID, e.Name)
	}
	in := service.AttachExerciseInput{WorkoutID: workoutID}
	if in.ExerciseID, err = s.askID("Exercise id: "); err != nil {
		return err
	}
	if in.Sets, err = s.askInt("Sets: "); err != nil {
		return err
	}
	if in.Reps, err = s.askInt("Reps: "); err != nil {
		return err
	}
	if in.WeightKg, err = s.askFloat("Weight used (kg): ", 0); err != nil {
		return err
	}
	if err := service.AttachExercise(s.sqldb, s.sess.UserID, in); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Exercise added to workout.")
	return nil
}

func (s *shell) updateWorkout() error {
	id, err := s.askID("Workout id to update: ")
	if err != nil {
		return err
	}
	var p service.WorkoutPatch
	if p.Type, err = s.askOptionalString("New workout type (blank = no change): "); err != nil {
		return err
	}
	if p.DurationMin, err = s.askOptionalFloat("New duration minutes (blank = no change): "); err != nil {
		return err
	}
	if p.Intensity, err = s.askOptionalString("New intensity (blank = no change): "); err != nil {
		return err
	}
	if p.CaloriesBurned, err = s.askOptionalFloat("New calories burned (blank = no change): "); err != nil {
		return err
	}
	if p.Date, err = s.askOptionalString("New workout date YYYY-MM-DD (blank = no change): "); err != nil {
		return err
	}
	if err := service.UpdateWorkout(s.sqldb, s.sess.UserID, id, p); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Workout updated successfully.")
	return nil
}

func (s *shell) deleteWorkout() error {
	id, err := s.askID("Workout id to delete: ")
	if err != nil {
		return err
	}
	if err := service.DeleteWorkout(s.sqldb, s.sess.UserID, id); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Workout deleted successfully.")
	return nil
}

func (s *shell) searchWorkouts() error {
	fmt.Fprintln(s.out, "Search by:")
	fmt.Fprintln(s.out, "1) Date range")
	fmt.Fprintln(s.out, "2) Workout type (partial match)")
	mode, err := s.ask("Choose (1/2): ")
	if err != nil {
		return err
	}
	var q service.WorkoutSearch
	switch mode {
	case "1":
		q.Mode = service.SearchByDate
		if q.From, err = s.ask("Start date (YYYY-MM-DD): "); err != nil {
			return err
		}
		if q.To, err = s.ask("End date (YYYY-MM-DD): "); err != nil {
			return err
		}
	case "2":
		q.Mode = service.SearchByType
		if q.Type, err = s.ask("Enter workout type keyword: "); err != nil {
			return err
		}
	default:
		q.Mode = mode
	}
	items, err := service.SearchWorkouts(s.sqldb, s.sess.UserID, q)
	if err != nil {
		return err
	}
	printWorkouts(s.out, items)
	return nil
}

func (s *shell) addMeal() error {
	var in service.MealInput
	var err error
	if in.Type, err = s.ask("Meal type (Breakfast/Lunch/etc.): "); err != nil {
		return err
	}
	if in.Date, err = s.ask("Meal date (YYYY-MM-DD, blank = today): "); err != nil {
		return err
	}
	id, err := service.AddMeal(s.sqldb, s.sess.UserID, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Meal created with id %d.\n", id)
	return nil
}

func (s *shell) attachFood() error {
	mealID, err := s.askID("Meal id: ")
	if err != nil {
		return err
	}
	foods, err := service.ListFoods(s.sqldb)
	if err != nil {
		return err
	}
	if len(foods) == 0 {
		fmt.Fprintln(s.out, "No foods exist yet. Use 'Add food (catalog)' first.")
		return nil
	}
	fmt.Fprintln(s.out, "Foods:")
	for _, f := range foods {
		fmt.Fprintf(s.out, "  %d: %s\n", f.ID, f.Name)
	}
	foodID, err := s.askID("Food id: ")
	if err != nil {
		return err
	}
	quantity, err := s.askFloat("Quantity (servings): ", 1)
	if err != nil {
		return err
	}
	res, err := service.AttachFood(s.sqldb, s.sess.UserID, service.AttachFoodInput{
		MealID:               mealID,
		FoodID:               foodID,
		Quantity:             quantity,
		HighCalorieThreshold: cfg.Meals.HighCalorieThreshold,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Food added.")
	printAttachFoodResult(s.out, mealID, res)
	return nil
}

func (s *shell) updateMeal() error {
	id, err := s.askID("Meal id to update: ")
	if err != nil {
		return err
	}
	var p service.MealPatch
	if p.Type, err = s.askOptionalString("New meal type (blank = no change): "); err != nil {
		return err
	}
	if p.Date, err = s.askOptionalString("New meal date YYYY-MM-DD (blank = no change): "); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Manual nutrient override (blank = keep current values):")
	if p.Calories, err = s.askOptionalFloat("New total calories (blank = no change): "); err != nil {
		return err
	}
	if p.ProteinG, err = s.askOptionalFloat("New protein_g (blank = no change): "); err != nil {
		return err
	}
	if p.CarbsG, err = s.askOptionalFloat("New carbs_g (blank = no change): "); err != nil {
		return err
	}
	if p.FatsG, err = s.askOptionalFloat("New fats_g (blank = no change): "); err != nil {
		return err
	}
	if err := service.UpdateMeal(s.sqldb, s.sess.UserID, id, p); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Meal updated successfully.")
	return nil
}

func (s *shell) deleteMeal() error {
	id, err := s.askID("Meal id to delete: ")
	if err != nil {
		return err
	}
	if err := service.DeleteMeal(s.sqldb, s.sess.UserID, id); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Meal deleted successfully.")
	return nil
}

func (s *shell) searchMeals() error {
	fmt.Fprintln(s.out, "Search by:")
	fmt.Fprintln(s.out, "1) Date (exact)")
	fmt.Fprintln(s.out, "2) Food name keyword")
	mode, err := s.ask("Choose (1/2): ")
	if err != nil {
		return err
	}
	var q service.MealSearch
	switch mode {
	case "1":
		q.Mode = service.SearchByDate
		if q.Date, err = s.ask("Meal date (YYYY-MM-DD): "); err != nil {
			return err
		}
	case "2":
		q.Mode = service.SearchByFood
		if q.Food, err = s.ask("Enter part of food name: "); err != nil {
			return err
		}
	default:
		q.Mode = mode
	}
	items, err := service.SearchMeals(s.sqldb, s.sess.UserID, q)
	if err != nil {
		return err
	}
	printMeals(s.out, items)
	return nil
}

func (s *shell) addExercise() error {
	var in service.ExerciseInput
	var err error
	if in.Name, err = s.ask("Exercise name: "); err != nil {
		return err
	}
	if in.Category, err = s.ask("Category (optional): "); err != nil {
		return err
	}
	if in.MuscleGroup, err = s.ask("Muscle group (optional): "); err != nil {
		return err
	}
	if in.Equipment, err = s.ask("Equipment (optional): "); err != nil {
		return err
	}
	id, added, err := service.AddExercise(s.sqldb, in)
	if err != nil {
		return err
	}
	if !added {
		fmt.Fprintln(s.out, "Exercise already exists (by name) or was not added.")
		return nil
	}
	fmt.Fprintf(s.out, "Exercise added with id %d.\n", id)
	return nil
}

func (s *shell) listExercises() error {
	items, err := service.ListExercises(s.sqldb)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(s.out, "No exercises found.")
		return nil
	}
	for _, e := range items {
		fmt.Fprintf(s.out, "%d: %s | %s | %s | %s\n", e.ID, e.Name, e.Category, e.MuscleGroup, e.Equipment)
	}
	return nil
}

func (s *shell) addFood() error {
	var in service.FoodInput
	var err error
	if in.Name, err = s.ask("Food name: "); err != nil {
		return err
	}
	if in.ServingSize, err = s.ask("Serving size (optional, e.g., '100g'): "); err != nil {
		return err
	}
	if in.CaloriesPerServing, err = s.askFloat("Calories per serving (blank=0): ", 0); err != nil {
		return err
	}
	if in.ProteinG, err = s.askFloat("Protein g per serving (blank=0): ", 0); err != nil {
		return err
	}
	if in.CarbsG, err = s.askFloat("Carbs g per serving (blank=0): ", 0); err != nil {
		return err
	}
	if in.FatsG, err = s.askFloat("Fats g per serving (blank=0): ", 0); err != nil {
		return err
	}
	id, added, err := service.AddFood(s.sqldb, in)
	if err != nil {
		return err
	}
	if !added {
		fmt.Fprintln(s.out, "Food already exists (by name) or was not added.")
		return nil
	}
	fmt.Fprintf(s.out, "Food added with id %d.\n", id)
	return nil
}

func (s *shell) listFoods() error {
	items, err := service.ListFoods(s.sqldb)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(s.out, "No foods found.")
		return nil
	}
	for _, f := range items {
		fmt.Fprintf(s.out, "%d: %s | %s | %.1f kcal | P %.1fg | C %.1fg | F %.1fg\n",
			f.ID, f.Name, f.ServingSize, f.CaloriesPerServing, f.ProteinG, f.CarbsG, f.FatsG)
	}
	return nil
}

func (s *shell) dailyReport() error {
	v, err := s.ask("Date (YYYY-MM-DD, blank = today): ")
	if err != nil {
		return err
	}
	day, err := parseDayOrToday(v)
	if err != nil {
		return err
	}
	r, err := service.Daily(s.sqldb, s.sess.UserID, day)
	if err != nil {
		return err
	}
	printDaily(s.out, r)
	return nil
}

func (s *shell) weeklyReport() error {
	r, err := service.Weekly(s.sqldb, s.sess.UserID, time.Now())
	if err != nil {
		return err
	}
	printWeekly(s.out, r)
	return nil
}

func (s *shell) export() error {
	data, err := service.ExportUserData(s.sqldb, s.sess.UserID)
	if err != nil {
		return err
	}
	path := filepath.Join(s.exportDir, fmt.Sprintf("user_%d_export.json", s.sess.UserID))
	if err := writeExportFile(path, "json", data); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Data exported to %s\n", path)
	return nil
}
