package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/assetctl/pkg/ui"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove exported charts",
	Long: `Remove every file written to the exports directory, such as the
status charts of 'assetctl metrics --chart'.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoInit: "true"},
	RunE:        runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	if err := loadSettings(); err != nil {
		return err
	}

	fmt.Fprint(stdout, ui.StyleWarning.Render("Cleaning exports... "))
	if err := appVault.CleanExports(); err != nil {
		fmt.Fprintln(stdout, ui.FormatError("Failed"))
		return err
	}

	fmt.Fprintln(stdout, ui.FormatSuccess("Done"))
	fmt.Fprintln(stdout, ui.FormatMuted(appVault.ExportsPath))
	return nil
}
