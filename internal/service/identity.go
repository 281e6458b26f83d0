package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/auth"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/db"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/model"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      int
	Gender   string
	HeightCm float64
	WeightKg float64
}

// BMI is weight_kg / height_cm² × 10000.
func BMI(weightKg, heightCm float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	return weightKg / heightCm / heightCm * 10000
}

func Register(sqldb *db.DB, hasher auth.Hasher, in RegisterInput) (int64, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeName(in.Email)
	in.Gender = strings.TrimSpace(in.Gender)
	if in.Name == "" {
		return 0, invalid("name", "name is required")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return 0, invalid("email", "%q is not an email address", in.Email)
	}
	if in.Password == "" {
		return 0, invalid("password", "password is required")
	}
	if err := validateNonNegativeInt("age", in.Age); err != nil {
		return 0, err
	}
	if in.HeightCm <= 0 {
		return 0, invalid("height_cm", "must be > 0")
	}
	if in.WeightKg <= 0 {
		return 0, invalid("weight_kg", "must be > 0")
	}
	if hasher == nil {
		hasher = auth.SHA256Hasher{}
	}
	digest, err := hasher.Hash(in.Password)
	if err != nil {
		return 0, err
	}

	var userID int64
	err = sqldb.InTx(func(tx *db.Tx) error {
		var exists int
		err := tx.QueryRow(`SELECT 1 FROM user_profiles WHERE email = ?`, in.Email).Scan(&exists)
		if err == nil {
			return ErrDuplicateEmail
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check email: %w", err)
		}

		if err := tx.QueryRow(`
INSERT INTO users(name, age, gender, height_cm, weight_kg, bmi)
VALUES(?, ?, ?, ?, ?, ?)
RETURNING id
`, in.Name, in.Age, in.Gender, in.HeightCm, in.WeightKg, BMI(in.WeightKg, in.HeightCm)).Scan(&userID); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if _, err := tx.Exec(`INSERT INTO user_profiles(user_id, email, password_hash) VALUES(?, ?, ?)`, userID, in.Email, digest); err != nil {
			if db.IsUniqueViolation(err) {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("create user profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// Login verifies the credentials. Unknown email and wrong password both
// return ErrAuthenticationFailed.
func Login(sqldb *db.DB, email, password string) (Session, error) {
	var sess Session
	var digest string
	err := sqldb.QueryRow(`
SELECT u.id, u.name, up.password_hash
FROM user_profiles up
JOIN users u ON u.id = up.user_id
WHERE up.email = ?
`, normalizeName(email)).Scan(&sess.UserID, &sess.Name, &digest)
	if err == sql.ErrNoRows {
		return Session{}, ErrAuthenticationFailed
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup credentials: %w", err)
	}
	if !auth.Verify(digest, password) {
		return Session{}, ErrAuthenticationFailed
	}
	return sess, nil
}

func UserByID(sqldb *db.DB, id int64) (*model.User, error) {
	var u model.User
	err := sqldb.QueryRow(`
SELECT u.id, u.name, u.age, u.gender, u.height_cm, u.weight_kg, u.bmi, COALESCE(up.email, '')
FROM users u
LEFT JOIN user_profiles up ON up.user_id = u.id
WHERE u.id = ?
`, id).Scan(&u.ID, &u.Name, &u.Age, &u.Gender, &u.HeightCm, &u.WeightKg, &u.BMI, &u.Email)
	if err == sql.ErrNoRows {
		return nil, ErrNotFoundOrNotOwned
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user %d: %w", id, err)
	}
	return &u, nil
}

// OpenSession stores a new session token for an authenticated user.
func OpenSession(sqldb *db.DB, sess Session) (Session, error) {
	if err := requirePositiveID("user id", sess.UserID); err != nil {
		return Session{}, err
	}
	sess.Token = uuid.NewString()
	if _, err := sqldb.Exec(`INSERT INTO sessions(token, user_id, created_at) VALUES(?, ?, ?)`, sess.Token, sess.UserID, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return Session{}, fmt.Errorf("open session: %w", err)
	}
	return sess, nil
}

func ResolveSession(sqldb *db.DB, token string) (Session, error) {
	token = strings.TrimSpace(token)
	if _, err := uuid.Parse(token); err != nil {
		return Session{}, ErrNoSession
	}
	sess := Session{Token: token}
	err := sqldb.QueryRow(`
SELECT s.user_id, u.name
FROM sessions s
JOIN users u ON u.id = s.user_id
WHERE s.token = ?
`, token).Scan(&sess.UserID, &sess.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("resolve session: %w", err)
	}
	return sess, nil
}

func CloseSession(sqldb *db.DB, token string) error {
	if _, err := sqldb.Exec(`DELETE FROM sessions WHERE token = ?`, strings.TrimSpace(token)); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}
