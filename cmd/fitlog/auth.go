package fitlog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/db"
	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/service"
)

var (
	regName     string
	regEmail    string
	regPassword string
	regAge      int
	regGender   string
	regHeight   float64
	regWeight   float64

	loginEmail    string
	loginPassword string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		password := regPassword
		if password == "" {
			var err error
			if password, err = readPassword(cmd, "Password: "); err != nil {
				return err
			}
		}
		hasher, err := newHasher()
		if err != nil {
			return err
		}
		return withDB(func(sqldb *db.DB) error {
			id, err := service.Register(sqldb, hasher, service.RegisterInput{
				Name:     regName,
				Email:    regEmail,
				Password: password,
				Age:      regAge,
				Gender:   regGender,
				HeightCm: regHeight,
				WeightKg: regWeight,
			})
			if err != nil {
				return err
			}
			logger.Info("user registered", zap.Int64("user_id", id), zap.String("hasher", hasher.Name()))
			fmt.Fprintf(cmd.OutOrStdout(), "Registered user %d (BMI %.2f)\n", id, service.BMI(regWeight, regHeight))
			return nil
		})
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and remember the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		password := loginPassword
		if password == "" {
			var err error
			if password, err = readPassword(cmd, "Password: "); err != nil {
				return err
			}
		}
		return withDB(func(sqldb *db.DB) error {
			sess, err := service.Login(sqldb, loginEmail, password)
			if err != nil {
				if errors.Is(err, service.ErrAuthenticationFailed) {
					logLoginFailure(loginEmail)
				}
				return err
			}
			sess, err = service.OpenSession(sqldb, sess)
			if err != nil {
				return err
			}
			if err := writeSessionToken(sess.Token); err != nil {
				return err
			}
			logger.Info("session opened", zap.Int64("user_id", sess.UserID))
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", sess.Name)
			return nil
		})
	},
}

// logLoginFailure keeps the address out of the default warn-level output.
func logLoginFailure(email string) {
	logger.Debug("login failed", zap.String("email", strings.ToLower(strings.TrimSpace(email))))
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := readSessionToken()
		if errors.Is(err, service.ErrNoSession) {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
			return nil
		}
		if err != nil {
			return err
		}
		if err := withDB(func(sqldb *db.DB) error {
			return service.CloseSession(sqldb, token)
		}); err != nil {
			return err
		}
		if err := removeSessionToken(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(sqldb *db.DB, sess service.Session) error {
			u, err := service.UserByID(sqldb, sess.UserID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %d: %s <%s>\n", u.ID, u.Name, u.Email)
			fmt.Fprintf(cmd.OutOrStdout(), "Age %d, %s, %.1f cm, %.1f kg, BMI %.2f\n", u.Age, u.Gender, u.HeightCm, u.WeightKg, u.BMI)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)

	registerCmd.Flags().StringVar(&regName, "name", "", "Full name")
	registerCmd.Flags().StringVar(&regEmail, "email", "", "Email address (login name)")
	registerCmd.Flags().StringVar(&regPassword, "password", "", "Password (prompted when omitted)")
	registerCmd.Flags().IntVar(&regAge, "age", 0, "Age in years")
	registerCmd.Flags().StringVar(&regGender, "gender", "", "Gender")
	registerCmd.Flags().Float64Var(&regHeight, "height", 0, "Height in cm")
	registerCmd.Flags().Float64Var(&regWeight, "weight", 0, "Weight in kg")
	_ = registerCmd.MarkFlagRequired("name")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("height")
	_ = registerCmd.MarkFlagRequired("weight")

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email address")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (prompted when omitted)")
	_ = loginCmd.MarkFlagRequired("email")
}
