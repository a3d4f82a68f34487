package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/assetctl/internal/core/services"
	"github.com/kamal-hamza/assetctl/pkg/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of your assetctl setup",
	Long: `Diagnose issues with your assetctl setup.

Checks for:
  - Data directory and configuration file
  - Stored session and its expiry
  - Backend reachability
  - Tools used to open charts and edit the config`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationPublic: "true"},
	Run:         runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) {
	fmt.Fprintln(stdout, ui.FormatTitle("🏥 assetctl Doctor"))
	fmt.Fprintln(stdout)

	// 1. Local files
	checkStep("Data Directory", func() error {
		if !appVault.Exists() {
			return fmt.Errorf("not found at %s", appVault.RootPath)
		}
		return nil
	})

	checkStep("Configuration File", func() error {
		if _, err := os.Stat(configFilePath()); os.IsNotExist(err) {
			return fmt.Errorf("missing at %s (defaults in use, run 'assetctl config edit')", configFilePath())
		}
		return nil
	})

	// 2. Session
	checkStep("Session", func() error {
		sess := appShell.Session()
		if sess == nil {
			return fmt.Errorf("not logged in")
		}
		if left := services.ExpiresIn(sess, appClock.Now()); left > 0 && left < time.Hour {
			return fmt.Errorf("expires in %s", left.Round(time.Minute))
		}
		return nil
	})

	// 3. Backend
	checkStep("Backend ("+appConfig.APIURL+")", func() error {
		if appShell.State() != services.Authenticated {
			return fmt.Errorf("skipped, log in to check")
		}
		ctx, cancel := context.WithTimeout(getContext(), time.Duration(appConfig.TimeoutSeconds)*time.Second)
		defer cancel()
		if _, err := backend.Me(ctx); err != nil {
			return fmt.Errorf("%s", describeError(err))
		}
		return nil
	})

	// 4. Tools
	opener := "xdg-open"
	switch runtime.GOOS {
	case "darwin":
		opener = "open"
	case "windows":
		opener = ""
	}
	if opener != "" {
		checkStep(opener+" (Charts)", func() error {
			if _, err := exec.LookPath(opener); err != nil {
				return fmt.Errorf("not found (required for 'assetctl metrics --open')")
			}
			return nil
		})
	}

	checkStep("EDITOR Variable", func() error {
		if os.Getenv("VISUAL") == "" && os.Getenv("EDITOR") == "" {
			return fmt.Errorf("not set (using fallback 'vi')")
		}
		return nil
	})
}

// checkStep runs a check function and prints the result nicely
func checkStep(name string, check func() error) {
	if err := check(); err != nil {
		fmt.Fprintf(stdout, "%s %s\n", ui.FormatError(""), name)
		fmt.Fprintf(stdout, "    %s\n", ui.StyleMuted.Render(err.Error()))
		return
	}
	fmt.Fprintf(stdout, "%s %s\n", ui.FormatSuccess(""), name)
}
