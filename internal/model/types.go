package model

type User struct {
	ID       int64
	Name     string
	Age      int
	Gender   string
	HeightCm float64
	WeightKg float64
	BMI      float64
	Email    string
}

type Exercise struct {
	ID          int64
	Name        string
	Category    string
	MuscleGroup string
	Equipment   string
}

type Food struct {
	ID                 int64
	Name               string
	ServingSize        string
	CaloriesPerServing float64
	ProteinG           float64
	CarbsG             float64
	FatsG              float64
}

type WorkoutLog struct {
	ID             int64
	UserID         int64
	Type           string
	DurationMin    float64
	Intensity      string
	CaloriesBurned float64
	Date           string
}

// WorkoutExercise is one exercise line item attached to a workout.
type WorkoutExercise struct {
	WorkoutID    int64
	ExerciseID   int64
	ExerciseName string
	Sets         int
	Reps         int
	WeightKg     float64
}

type Nutrients struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatsG    float64 `json:"fats_g"`
}

// TotalsSource records which write path last set a meal's nutrients.
type TotalsSource string

const (
	TotalsDerived TotalsSource = "derived"
	TotalsManual  TotalsSource = "manual"
)

type MealLog struct {
	ID     int64
	UserID int64
	Type   string
	Date   string
	Nutrients
	TotalsSource TotalsSource
}

// MealFood is one food line item attached to a meal.
type MealFood struct {
	MealID   int64
	FoodID   int64
	FoodName string
	Quantity float64
}
