package fitlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/app"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/auth"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/db"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/service"
)

func openDB() (*db.DB, error) {
	if cfg.Database.Driver == "" || cfg.Database.Driver == db.DriverSQLite {
		if err := app.EnsureDBDir(cfg.Database.Path); err != nil {
			return nil, err
		}
	}
	sqldb, err := db.Open(db.Options{Driver: cfg.Database.Driver, Path: cfg.Database.Path, DSN: cfg.Database.DSN})
	if err != nil {
		return nil, err
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return sqldb, nil
}

func withDB(run func(*db.DB) error) error {
	sqldb, err := openDB()
	if err != nil {
		return err
	}
	defer sqldb.Close()
	return run(sqldb)
}

// withSession resolves the saved login token before running.
func withSession(run func(*db.DB, service.Session) error) error {
	return withDB(func(sqldb *db.DB) error {
		token, err := readSessionToken()
		if err != nil {
			return err
		}
		sess, err := service.ResolveSession(sqldb, token)
		if err != nil {
			if errors.Is(err, service.ErrNoSession) {
				return fmt.Errorf("%w: run `fitlog login` first", err)
			}
			return err
		}
		logger.Debug("session resolved", zap.Int64("user_id", sess.UserID))
		return run(sqldb, sess)
	})
}

func readSessionToken() (string, error) {
	b, err := os.ReadFile(cfg.SessionPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: run `fitlog login` first", service.ErrNoSession)
	}
	if err != nil {
		return "", fmt.Errorf("read session file: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func writeSessionToken(token string) error {
	path := cfg.SessionPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func removeSessionToken() error {
	if err := os.Remove(cfg.SessionPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func newHasher() (auth.Hasher, error) {
	return auth.NewHasher(cfg.Auth.Hasher)
}

// readPassword prompts without echo on a terminal and reads a plain line
// otherwise.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	if fd, ok := terminalFd(cmd.InOrStdin()); ok {
		return readHiddenLine(fd, cmd.ErrOrStderr())
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// terminalFd reports the file descriptor of r when r is an interactive
// terminal.
func terminalFd(r io.Reader) (int, bool) {
	f, ok := r.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	return int(f.Fd()), true
}

func readHiddenLine(fd int, echo io.Writer) (string, error) {
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(echo)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

func parseInt64Arg(name, value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

func parseDayOrToday(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", value)
	}
	return t, nil
}

// changedString returns a pointer to value when the flag was set.
func changedString(cmd *cobra.Command, flag, value string) *string {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	return &value
}

func changedFloat(cmd *cobra.Command, flag string, value float64) *float64 {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	return &value
}
