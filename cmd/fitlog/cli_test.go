package fitlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/service"
)

func registerAndLogin(t *testing.T, path string) {
	t.Helper()
	out, err := runFitlog(t, "", "--db", path, "register",
		"--name", "Ana", "--email", "ana@example.com", "--password", "secret",
		"--age", "30", "--gender", "F", "--height", "170", "--weight", "65")
	require.NoError(t, err, out)
	require.Contains(t, out, "Registered user 1 (BMI 22.49)")

	out, err = runFitlog(t, "", "--db", path, "login", "--email", "ana@example.com", "--password", "secret")
	require.NoError(t, err, out)
	require.Contains(t, out, "Logged in as Ana")
}

func TestWorkoutAndMealFlow(t *testing.T) {
	path := newCLIEnv(t)
	registerAndLogin(t, path)

	steps := []struct {
		args []string
		want string
	}{
		{[]string{"whoami"}, "ana@example.com"},
		{[]string{"exercise", "add", "--name", "Squat", "--category", "strength"}, "Added exercise 1"},
		{[]string{"exercise", "add", "--name", "Squat"}, "already exists"},
		{[]string{"workout", "add", "--type", "Strength", "--duration", "45", "--calories", "300", "--date", "2026-03-01"}, "Added workout 1"},
		{[]string{"workout", "attach", "1", "1", "--sets", "3", "--reps", "10", "--weight", "60"}, "Attached exercise 1 to workout 1"},
		{[]string{"workout", "update", "1", "--intensity", "Hard"}, "Updated workout 1"},
		{[]string{"workout", "show", "1"}, "Hard"},
		{[]string{"workout", "search", "--from", "2026-03-01", "--to", "2026-03-01"}, "Squat | 3 x 10 @ 60.0 kg"},
		{[]string{"workout", "search", "--type", "yoga"}, "No workouts found."},
		{[]string{"food", "add", "--name", "Oats", "--serving", "40g", "--calories", "150", "--protein", "5", "--carbs", "27", "--fats", "3"}, "Added food 1"},
		{[]string{"food", "list"}, "Oats"},
		{[]string{"meal", "add", "--type", "Breakfast", "--date", "2026-03-01"}, "Added meal 1"},
		{[]string{"meal", "attach", "1", "1", "--quantity", "2"}, "300.0 kcal, P 10.0g, C 54.0g, F 6.0g"},
		{[]string{"meal", "search", "--food", "oat"}, "Food 1: Oats | qty=2"},
		{[]string{"report", "daily", "--date", "2026-03-01"}, "Balance     : 0.00"},
		{[]string{"report", "weekly", "--date", "2026-03-03"}, "Avg calories: 300.00"},
	}
	for _, step := range steps {
		out, err := runFitlog(t, "", append([]string{"--db", path}, step.args...)...)
		require.NoError(t, err, "%v: %s", step.args, out)
		assert.Contains(t, out, step.want, "%v", step.args)
	}

	out, err := runFitlog(t, "", "--db", path, "workout", "search", "--type", "x", "--from", "2026-03-01")
	require.Error(t, err, out)

	out, err = runFitlog(t, "", "--db", path, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	_, err = runFitlog(t, "", "--db", path, "whoami")
	assert.True(t, errors.Is(err, service.ErrNoSession), "got %v", err)
}

func TestMealHighCalorieAdvisoryAndDoctor(t *testing.T) {
	path := newCLIEnv(t)
	registerAndLogin(t, path)

	for _, args := range [][]string{
		{"food", "add", "--name", "Pizza", "--calories", "700", "--protein", "30", "--carbs", "80", "--fats", "30"},
		{"meal", "add", "--type", "Dinner", "--date", "2026-03-02"},
	} {
		out, err := runFitlog(t, "", append([]string{"--db", path}, args...)...)
		require.NoError(t, err, out)
	}

	out, err := runFitlog(t, "", "--db", path, "meal", "attach", "1", "1", "--quantity", "2")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Advisory: this meal is over 1200 kcal.")

	out, err = runFitlog(t, "", "--db", path, "doctor")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Meals with drifted totals: 0")

	out, err = runFitlog(t, "", "--db", path, "meal", "update", "1", "--calories", "500")
	require.NoError(t, err, out)
	out, err = runFitlog(t, "", "--db", path, "meal", "show", "1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "500.0 kcal")
	assert.Contains(t, out, "(manual)")

	_, err = runFitlog(t, "", "--db", path, "doctor")
	require.Error(t, err)

	out, err = runFitlog(t, "", "--db", path, "doctor", "--fix")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Recomputed meals: 1")
	out, err = runFitlog(t, "", "--db", path, "meal", "show", "1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "1400.0 kcal")
}

func TestCommandsRequireLogin(t *testing.T) {
	path := newCLIEnv(t)
	for _, args := range [][]string{
		{"workout", "add", "--type", "Run"},
		{"meal", "search", "--date", "2026-03-01"},
		{"report", "daily"},
		{"export"},
	} {
		_, err := runFitlog(t, "", append([]string{"--db", path}, args...)...)
		assert.True(t, errors.Is(err, service.ErrNoSession), "%v: got %v", args, err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	path := newCLIEnv(t)
	registerAndLogin(t, path)
	_, err := runFitlog(t, "", "--db", path, "logout")
	require.NoError(t, err)

	// Password read from stdin when the flag is omitted.
	_, err = runFitlog(t, "wrong\n", "--db", path, "login", "--email", "ana@example.com")
	assert.True(t, errors.Is(err, service.ErrAuthenticationFailed), "got %v", err)
	out, err := runFitlog(t, "secret\n", "--db", path, "login", "--email", "ANA@example.com")
	require.NoError(t, err, out)
}

func TestExportFormats(t *testing.T) {
	path := newCLIEnv(t)
	registerAndLogin(t, path)
	for _, args := range [][]string{
		{"workout", "add", "--type", "Run", "--calories", "200", "--date", "2026-03-01"},
		{"meal", "add", "--type", "Lunch", "--date", "2026-03-01"},
	} {
		out, err := runFitlog(t, "", append([]string{"--db", path}, args...)...)
		require.NoError(t, err, out)
	}

	jsonPath := filepath.Join(filepath.Dir(path), "export.json")
	out, err := runFitlog(t, "", "--db", path, "export", "--out", jsonPath)
	require.NoError(t, err, out)
	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var data service.ExportData
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, int64(1), data.UserID)
	require.Len(t, data.Workouts, 1)
	assert.Equal(t, "2026-03-01", data.Workouts[0].WorkoutDate)
	require.Len(t, data.MealFoods, 1)
	assert.Nil(t, data.MealFoods[0].FoodID)

	out, err = runFitlog(t, "", "--db", path, "export", "--format", "yaml", "--out", "-")
	require.NoError(t, err, out)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Contains(t, out, "workout_type: Run")
	assert.Len(t, doc["meals"], 1)

	_, err = runFitlog(t, "", "--db", path, "export", "--format", "csv")
	assert.ErrorContains(t, err, "unsupported --format")
}

func TestBackupCommand(t *testing.T) {
	path := newCLIEnv(t)
	out := filepath.Join(filepath.Dir(path), "copy.db")
	msg, err := runFitlog(t, "", "--db", path, "backup", "--out", out)
	require.NoError(t, err, msg)
	assert.Contains(t, msg, "Backup written to "+out)
	_, err = os.Stat(out + ".sha256")
	assert.NoError(t, err)
}

func TestShellSession(t *testing.T) {
	path := newCLIEnv(t)
	exportDir := filepath.Dir(path)
	input := strings.Join([]string{
		"2", "nobody@example.com", "x", // failed login keeps the loop alive
		"1", "Bo", "bo@example.com", "pw", "41", "M", "180", "81",
		"2", "bo@example.com", "pw",
		"13", "Oats", "40g", "150", "5", "27", "3",
		"6", "Breakfast", "2026-03-01",
		"7", "1", "1", "",
		"99",
		"15", "2026-03-01",
		"10", "2", "oat",
		"17",
		"0",
		"0",
	}, "\n") + "\n"

	out, err := runFitlog(t, input, "--db", path, "shell", "--export-dir", exportDir)
	require.NoError(t, err, out)
	for _, want := range []string{
		"Error: invalid email or password",
		"Registered user 1 (BMI 25.00)",
		"Welcome, Bo!",
		"Food added with id 1.",
		"Meal created with id 1.",
		"Meal 1 totals: 150.0 kcal",
		"Invalid choice.",
		"Calories in : 150.00",
		"Food 1: Oats | qty=1",
		"Data exported to " + filepath.Join(exportDir, "user_1_export.json"),
		"Logging out.",
		"Goodbye!",
	} {
		assert.Contains(t, out, want)
	}
	_, err = os.Stat(filepath.Join(exportDir, "user_1_export.json"))
	assert.NoError(t, err)
}

func TestShellStopsAtEOF(t *testing.T) {
	path := newCLIEnv(t)
	out, err := runFitlog(t, "1\nOnly a name", "--db", path, "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "Goodbye!")
}

func TestShellPasswordFromPipedInput(t *testing.T) {
	_, ok := terminalFd(strings.NewReader("secret\n"))
	assert.False(t, ok)

	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer f.Close()
	_, ok = terminalFd(f)
	assert.False(t, ok, "regular files are not terminals")

	var out strings.Builder
	sh := &shell{in: bufio.NewReader(strings.NewReader("s3cret\n")), out: &out}
	pw, err := sh.askPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)
	assert.Equal(t, "Password: ", out.String())
}

func TestLoginFailureEmailOnlyAtDebug(t *testing.T) {
	prev := logger
	t.Cleanup(func() { logger = prev })

	core, logs := observer.New(zap.WarnLevel)
	logger = zap.New(core)
	logLoginFailure(" Ana@Example.com ")
	assert.Zero(t, logs.Len(), "default level must not record the address")

	core, logs = observer.New(zap.DebugLevel)
	logger = zap.New(core)
	logLoginFailure(" Ana@Example.com ")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "ana@example.com", logs.All()[0].ContextMap()["email"])
}

func TestDoctorAndBackupJSON(t *testing.T) {
	path := newCLIEnv(t)
	registerAndLogin(t, path)
	for _, args := range [][]string{
		{"food", "add", "--name", "Oats", "--calories", "150", "--protein", "5", "--carbs", "27", "--fats", "3"},
		{"meal", "add", "--type", "Breakfast", "--date", "2026-03-01"},
		{"meal", "attach", "1", "1"},
		{"meal", "update", "1", "--calories", "500"},
	} {
		out, err := runFitlog(t, "", append([]string{"--db", path}, args...)...)
		require.NoError(t, err, out)
	}

	// Drift still fails the command; the report is printed first.
	out, err := runFitlog(t, "", "--db", path, "doctor", "--json")
	require.Error(t, err)
	var report service.DoctorReport
	require.NoError(t, json.NewDecoder(strings.NewReader(out)).Decode(&report), out)
	assert.Equal(t, 1, report.MealsChecked)
	require.Len(t, report.Drifted, 1)
	assert.Equal(t, 500.0, report.Drifted[0].Stored.Calories)
	assert.Equal(t, 150.0, report.Drifted[0].Derived.Calories)
	assert.Contains(t, out, `"protein_g": 5`)

	out, err = runFitlog(t, "", "--db", path, "doctor", "--fix", "--json")
	require.NoError(t, err, out)
	report = service.DoctorReport{}
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	assert.Equal(t, 1, report.Recomputed)

	dest := filepath.Join(filepath.Dir(path), "snap.db")
	out, err = runFitlog(t, "", "--db", path, "backup", "--out", dest, "--json")
	require.NoError(t, err, out)
	var info service.BackupInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info), out)
	assert.Equal(t, dest, info.Path)
	assert.Len(t, info.Checksum, 64)
	assert.Positive(t, info.SizeBytes)
}
