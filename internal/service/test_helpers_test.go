package service_test

import (
	"path/filepath"
	"testing"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/auth"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/db"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/service"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fitlog.db")
	sqldb, err := db.Open(db.Options{Driver: db.DriverSQLite, Path: path})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	return sqldb
}

func mustRegister(t *testing.T, sqldb *db.DB, email string) int64 {
	t.Helper()
	id, err := service.Register(sqldb, auth.SHA256Hasher{}, service.RegisterInput{
		Name:     "Test " + email,
		Email:    email,
		Password: "secret",
		Age:      30,
		Gender:   "F",
		HeightCm: 170,
		WeightKg: 65,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return id
}

func mustAddFood(t *testing.T, sqldb *db.DB, in service.FoodInput) int64 {
	t.Helper()
	id, added, err := service.AddFood(sqldb, in)
	if err != nil {
		t.Fatalf("add food %q: %v", in.Name, err)
	}
	if !added {
		t.Fatalf("expected food %q to be added", in.Name)
	}
	return id
}

func mustAddExercise(t *testing.T, sqldb *db.DB, name string) int64 {
	t.Helper()
	id, added, err := service.AddExercise(sqldb, service.ExerciseInput{Name: name, Category: "strength"})
	if err != nil {
		t.Fatalf("add exercise %q: %v", name, err)
	}
	if !added {
		t.Fatalf("expected exercise %q to be added", name)
	}
	return id
}

var oats = service.FoodInput{
	Name:               "Oats",
	ServingSize:        "40g",
	CaloriesPerServing: 150,
	ProteinG:           5,
	CarbsG:             27,
	FatsG:              3,
}
