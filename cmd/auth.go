package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
	"github.com/kamal-hamza/assetctl/internal/core/services"
	"github.com/kamal-hamza/assetctl/pkg/ui"
)

var (
	loginEmail    string
	loginPassword string

	registerName  string
	registerEmail string
	registerPhone string
	registerBase  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the backend",
	Long: `Log in with email and password. The session token is stored in the
assetctl data directory and shared by every command and the ui shell.

Examples:
  assetctl login
  assetctl login --email officer@example.mil`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationPublic: "true"},
	RunE:        runLogin,
}

var registerCmd = &cobra.Command{
	Use:         "register",
	Short:       "Create an account and log in",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationPublic: "true"},
	RunE:        runRegister,
}

var logoutCmd = &cobra.Command{
	Use:         "logout",
	Short:       "Forget the stored session",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationPublic: "true"},
	RunE:        runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")

	registerCmd.Flags().StringVar(&registerName, "name", "", "Full name")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "Account email")
	registerCmd.Flags().StringVar(&registerPhone, "phone", "", "Phone number")
	registerCmd.Flags().StringVar(&registerBase, "base", "", "Home base")
}

// requireValue prompts for value unless it was given on the command line
func requireValue(label, value string) (string, error) {
	for strings.TrimSpace(value) == "" {
		var err error
		value, err = promptLine(label, "")
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(value) == "" {
			fmt.Fprintln(stdout, ui.FormatWarning(label+" is required."))
		}
	}
	return strings.TrimSpace(value), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, err := requireValue("Email", loginEmail)
	if err != nil {
		return err
	}
	password := loginPassword
	if password == "" {
		if password, err = promptSecret("Password"); err != nil {
			return err
		}
	}

	sess, err := appShell.Login(getContext(), domain.Credentials{Email: email, Password: password})
	if err != nil {
		fmt.Fprintln(stdout, ui.FormatError("Login failed"))
		return err
	}

	fmt.Fprintln(stdout, ui.FormatSuccess("Logged in as "+sess.User.FullName))
	return nil
}

// registerBaseChoices lists the bases a new account can pick
func registerBaseChoices() []services.Choice {
	list := bases()
	if len(list) == 0 {
		list = domain.DefaultBases
	}
	choices := make([]services.Choice, 0, len(list))
	for _, b := range list {
		choices = append(choices, services.Choice{Value: b, Label: b})
	}
	return choices
}

func runRegister(cmd *cobra.Command, args []string) error {
	name, err := requireValue("Full Name", registerName)
	if err != nil {
		return err
	}
	email, err := requireValue("Email", registerEmail)
	if err != nil {
		return err
	}
	password, err := promptSecret("Password")
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("%w: Password", services.ErrRequired)
	}
	phone := registerPhone
	if phone == "" && cmd.Flags().NFlag() == 0 {
		if phone, err = promptLine("Phone", ""); err != nil {
			return err
		}
	}
	base := registerBase
	if base == "" {
		if base, err = pickChoice("Base", registerBaseChoices()); err != nil {
			return err
		}
	}

	sess, err := appShell.Register(getContext(), domain.Registration{
		FullName: name,
		Email:    email,
		Password: password,
		Phone:    phone,
		Base:     base,
	})
	if err != nil {
		fmt.Fprintln(stdout, ui.FormatError("Registration failed"))
		return err
	}

	fmt.Fprintln(stdout, ui.FormatRocket("Account created. Logged in as "+sess.User.FullName))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if appShell.State() != services.Authenticated {
		fmt.Fprintln(stdout, ui.FormatInfo("Not logged in."))
		return nil
	}
	if err := appShell.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(stdout, ui.FormatSuccess("Logged out"))
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	sess := appShell.Session()
	if sess == nil {
		return services.ErrNotAuthenticated
	}
	user := sess.User

	fmt.Fprintln(stdout, ui.FormatTitle(ui.IconPerson+" "+user.FullName))
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, ui.RenderKeyValue("Email", user.Email))
	fmt.Fprintln(stdout, ui.RenderKeyValue("Phone", orDash(user.Phone)))
	fmt.Fprintln(stdout, ui.RenderKeyValue("Role", orDash(user.Role)))
	fmt.Fprintln(stdout, ui.RenderKeyValue("Base", orDash(user.Base)))
	fmt.Fprintln(stdout, ui.RenderKeyValue("Session", sessionExpiry(sess, appClock.Now())))
	return nil
}

// sessionExpiry describes how long the session stays valid
func sessionExpiry(sess *domain.Session, now time.Time) string {
	left := services.ExpiresIn(sess, now)
	if left <= 0 {
		return "no expiry"
	}
	return fmt.Sprintf("expires in %s (%s)", left.Round(time.Minute), sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
}
