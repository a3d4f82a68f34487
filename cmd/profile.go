package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
	"github.com/kamal-hamza/assetctl/internal/core/services"
	"github.com/kamal-hamza/assetctl/pkg/ui"
)

var profileFormFlags formFlags

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your profile",
	Long: `Show or update the profile of the logged in user.

Only admins can change their base.

Examples:
  assetctl profile
  assetctl profile update --set phone="+1 555 0100"`,
	Args: cobra.NoArgs,
	RunE: runProfileShow,
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	Args:  cobra.NoArgs,
	RunE:  runProfileShow,
}

var profileUpdateCmd = &cobra.Command{
	Use:     "update",
	Aliases: []string{"edit"},
	Short:   "Update your profile",
	Args:    cobra.NoArgs,
	RunE:    runProfileUpdate,
}

func init() {
	profileFormFlags.register(profileUpdateCmd)
	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd)
}

func newProfileForm() *services.FormSession[domain.User, services.ProfileDraft] {
	return services.NewFormSession(services.NewProfileForm(backend, appShell.UpdateUser), appShell, formOptions()...)
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	user := appShell.User()
	if user == nil {
		return services.ErrNotAuthenticated
	}

	form := newProfileForm()
	if err := form.Open(getContext(), user); err != nil {
		return err
	}
	defer form.Close()

	fmt.Fprintln(stdout, ui.FormatTitle(ui.IconPerson+" Profile"))
	fmt.Fprintln(stdout)
	printForm(form)
	fmt.Fprintln(stdout, ui.RenderKeyValue("Role", orDash(user.Role)))
	return nil
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	user := appShell.User()
	if user == nil {
		return services.ErrNotAuthenticated
	}

	form := newProfileForm()
	if err := form.Open(getContext(), user); err != nil {
		return err
	}
	defer form.Close()

	fmt.Fprintln(stdout, ui.FormatTitle("Update Profile"))
	if err := fillForm(form, profileFormFlags); err != nil {
		return err
	}
	return submitForm(form, "Profile updated")
}
