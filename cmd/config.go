package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kamal-hamza/assetctl/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Show or edit the assetctl configuration",
	Annotations: map[string]string{annotationNoInit: "true"},
	RunE:        runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after the config file, .env files and
ASSETCTL_* environment variables have been applied.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadSettings(); err != nil {
			return err
		}
		fmt.Fprintln(stdout, configFilePath())
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in your editor",
	Args:  cobra.NoArgs,
	RunE:  runConfigEdit,
}

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd, configEditCmd)
}

// configFilePath is the file the configuration was read from
func configFilePath() string {
	if configPathFlag != "" {
		return configPathFlag
	}
	return appVault.ConfigPath
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if err := loadSettings(); err != nil {
		return err
	}

	data, err := yaml.Marshal(appConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	fmt.Fprintln(stdout, ui.FormatTitle("Configuration"))
	fmt.Fprintln(stdout, ui.FormatMuted(configFilePath()))
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, strings.TrimRight(string(data), "\n"))
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	if err := loadSettings(); err != nil {
		return err
	}
	path := configFilePath()

	// Write the defaults first so the editor opens a complete file
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := appConfig.Save(path); err != nil {
			return err
		}
		fmt.Fprintln(stdout, ui.FormatInfo("Created config: "+path))
	}

	fmt.Fprintln(stdout, ui.FormatInfo("Opening config: "+path))
	return OpenEditor(path)
}
