package db

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version  int
	name     string
	sqlite   string
	postgres string
}

func (m migration) statement(d Dialect) string {
	if d.Name == DriverPostgres {
		return m.postgres
	}
	return m.sqlite
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sqlite: `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  age INTEGER NOT NULL DEFAULT 0 CHECK(age >= 0),
  gender TEXT NOT NULL DEFAULT '',
  height_cm REAL NOT NULL CHECK(height_cm > 0),
  weight_kg REAL NOT NULL CHECK(weight_kg > 0),
  bmi REAL NOT NULL,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS user_profiles (
  user_id INTEGER PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS exercises (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  exercise_name TEXT NOT NULL UNIQUE,
  category TEXT,
  muscle_group TEXT,
  equipment TEXT
);

CREATE TABLE IF NOT EXISTS foods (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  food_name TEXT NOT NULL UNIQUE,
  serving_size TEXT,
  calories_per_serving REAL NOT NULL DEFAULT 0 CHECK(calories_per_serving >= 0),
  protein_g REAL NOT NULL DEFAULT 0 CHECK(protein_g >= 0),
  carbs_g REAL NOT NULL DEFAULT 0 CHECK(carbs_g >= 0),
  fats_g REAL NOT NULL DEFAULT 0 CHECK(fats_g >= 0)
);

CREATE TABLE IF NOT EXISTS workout_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  workout_type TEXT NOT NULL DEFAULT '',
  duration_min REAL NOT NULL DEFAULT 0 CHECK(duration_min >= 0),
  intensity TEXT NOT NULL DEFAULT '',
  calories_burned REAL NOT NULL DEFAULT 0 CHECK(calories_burned >= 0),
  workout_date TEXT NOT NULL,
  FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_workout_logs_user_date ON workout_logs(user_id, workout_date);

CREATE TABLE IF NOT EXISTS workout_exercises (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  workout_id INTEGER NOT NULL,
  exercise_id INTEGER NOT NULL,
  sets INTEGER NOT NULL DEFAULT 0 CHECK(sets >= 0),
  reps INTEGER NOT NULL DEFAULT 0 CHECK(reps >= 0),
  weight_used_kg REAL NOT NULL DEFAULT 0 CHECK(weight_used_kg >= 0),
  UNIQUE(workout_id, exercise_id),
  FOREIGN KEY(workout_id) REFERENCES workout_logs(id) ON DELETE CASCADE,
  FOREIGN KEY(exercise_id) REFERENCES exercises(id)
);

CREATE TABLE IF NOT EXISTS meal_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  meal_type TEXT NOT NULL DEFAULT '',
  meal_date TEXT NOT NULL,
  calories REAL NOT NULL DEFAULT 0,
  protein_g REAL NOT NULL DEFAULT 0,
  carbs_g REAL NOT NULL DEFAULT 0,
  fats_g REAL NOT NULL DEFAULT 0,
  FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_meal_logs_user_date ON meal_logs(user_id, meal_date);

CREATE TABLE IF NOT EXISTS meal_foods (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  meal_id INTEGER NOT NULL,
  food_id INTEGER NOT NULL,
  quantity REAL NOT NULL DEFAULT 1 CHECK(quantity > 0),
  UNIQUE(meal_id, food_id),
  FOREIGN KEY(meal_id) REFERENCES meal_logs(id) ON DELETE CASCADE,
  FOREIGN KEY(food_id) REFERENCES foods(id)
);
`,
		postgres: `
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  age INTEGER NOT NULL DEFAULT 0 CHECK(age >= 0),
  gender TEXT NOT NULL DEFAULT '',
  height_cm DOUBLE PRECISION NOT NULL CHECK(height_cm > 0),
  weight_kg DOUBLE PRECISION NOT NULL CHECK(weight_kg > 0),
  bmi DOUBLE PRECISION NOT NULL,
  created_at TEXT NOT NULL DEFAULT (now()::text)
);

CREATE TABLE IF NOT EXISTS user_profiles (
  user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS exercises (
  id BIGSERIAL PRIMARY KEY,
  exercise_name TEXT NOT NULL UNIQUE,
  category TEXT,
  muscle_group TEXT,
  equipment TEXT
);

CREATE TABLE IF NOT EXISTS foods (
  id BIGSERIAL PRIMARY KEY,
  food_name TEXT NOT NULL UNIQUE,
  serving_size TEXT,
  calories_per_serving DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK(calories_per_serving >= 0),
  protein_g DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK(protein_g >= 0),
  carbs_g DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK(carbs_g >= 0),
  fats_g DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK(fats_g >= 0)
);

CREATE TABLE IF NOT EXISTS workout_logs (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  workout_type TEXT NOT NULL DEFAULT '',
  duration_min DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK(duration_min >= 0),
  intensity TEXT NOT NULL DEFAULT '',
  calories_burned DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK(calories_burned >= 0),
  workout_date TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_workout_logs_user_date ON workout_logs(user_id, workout_date);

CREATE TABLE IF NOT EXISTS workout_exercises (
  id BIGSERIAL PRIMARY KEY,
  workout_id BIGINT NOT NULL REFERENCES workout_logs(id) ON DELETE CASCADE,
  exercise_id BIGINT NOT NULL REFERENCES exercises(id),
  sets INTEGER NOT NULL DEFAULT 0 CHECK(sets >= 0),
  reps INTEGER NOT NULL DEFAULT 0 CHECK(reps >= 0),
  weight_used_kg DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK(weight_used_kg >= 0),
  UNIQUE(workout_id, exercise_id)
);

CREATE TABLE IF NOT EXISTS meal_logs (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  meal_type TEXT NOT NULL DEFAULT '',
  meal_date TEXT NOT NULL,
  calories DOUBLE PRECISION NOT NULL DEFAULT 0,
  protein_g DOUBLE PRECISION NOT NULL DEFAULT 0,
  carbs_g DOUBLE PRECISION NOT NULL DEFAULT 0,
  fats_g DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_meal_logs_user_date ON meal_logs(user_id, meal_date);

CREATE TABLE IF NOT EXISTS meal_foods (
  id BIGSERIAL PRIMARY KEY,
  meal_id BIGINT NOT NULL REFERENCES meal_logs(id) ON DELETE CASCADE,
  food_id BIGINT NOT NULL REFERENCES foods(id),
  quantity DOUBLE PRECISION NOT NULL DEFAULT 1 CHECK(quantity > 0),
  UNIQUE(meal_id, food_id)
);
`,
	},
	{
		version: 2,
		name:    "sessions",
		sqlite: `
CREATE TABLE IF NOT EXISTS sessions (
  token TEXT PRIMARY KEY,
  user_id INTEGER NOT NULL,
  created_at TEXT NOT NULL,
  FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
`,
		postgres: `
CREATE TABLE IF NOT EXISTS sessions (
  token TEXT PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
`,
	},
	{
		version: 3,
		name:    "meal_totals_source",
		sqlite: `
ALTER TABLE meal_logs ADD COLUMN totals_source TEXT NOT NULL DEFAULT 'derived' CHECK(totals_source IN ('derived', 'manual'));
`,
		postgres: `
ALTER TABLE meal_logs ADD COLUMN IF NOT EXISTS totals_source TEXT NOT NULL DEFAULT 'derived' CHECK(totals_source IN ('derived', 'manual'));
`,
	},
}

const schemaMigrationsSQLite = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const schemaMigrationsPostgres = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func ApplyMigrations(d *DB) error {
	ensure := schemaMigrationsSQLite
	if d.Dialect.Name == DriverPostgres {
		ensure = schemaMigrationsPostgres
	}
	if _, err := d.Exec(ensure); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := d.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := d.Begin()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}
		if _, err := tx.Exec(m.statement(d.Dialect)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration version.
func SchemaVersion(d *DB) (int, error) {
	var v sql.NullInt64
	if err := d.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}
