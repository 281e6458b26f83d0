package service

import (
	"math"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Session identifies the logged-in user. It is passed explicitly into every
// user-scoped operation.
type Session struct {
	UserID int64
	Name   string
	Token  string
}

func validateNonNegativeInt(name string, value int) error {
	if value < 0 {
		return invalid(name, "must be >= 0")
	}
	return nil
}

func validateNonNegativeFloat(name string, value float64) error {
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return invalid(name, "must be >= 0")
	}
	return nil
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

func nullableString(value string) any {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return value
}

// normalizeDate validates a YYYY-MM-DD date. Blank means today.
func normalizeDate(field, value string, today time.Time) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return today.Format(dateLayout), nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return "", invalid(field, "%q (expected YYYY-MM-DD)", value)
	}
	return t.Format(dateLayout), nil
}

// parseDate is normalizeDate without the blank-means-today default.
func parseDate(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalid(field, "date is required")
	}
	return normalizeDate(field, value, time.Time{})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a substring pattern for LIKE ... ESCAPE '\'; wildcards
// in term match literally.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}

func requirePositiveID(field string, id int64) error {
	if id <= 0 {
		return invalid(field, "must be > 0")
	}
	return nil
}
