package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/assetctl/pkg/ui"
)

// Version information - these can be set during build with ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Display version information",
	Long:        `Display the current version of assetctl along with build information.`,
	Annotations: map[string]string{annotationNoInit: "true"},
	Run:         runVersion,
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Fprintln(stdout, ui.StyleTitle.Render("assetctl")+" - Asset Tracking Client")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, ui.RenderKeyValue("Version", Version))
	fmt.Fprintln(stdout, ui.RenderKeyValue("Commit", GitCommit))
	fmt.Fprintln(stdout, ui.RenderKeyValue("Build Date", BuildDate))
}
