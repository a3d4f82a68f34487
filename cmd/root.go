package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/assetctl/internal/adapters/api"
	"github.com/kamal-hamza/assetctl/internal/adapters/session"
	"github.com/kamal-hamza/assetctl/internal/core/ports"
	"github.com/kamal-hamza/assetctl/internal/core/services"
	"github.com/kamal-hamza/assetctl/pkg/config"
	"github.com/kamal-hamza/assetctl/pkg/logging"
	"github.com/kamal-hamza/assetctl/pkg/ui"
	"github.com/kamal-hamza/assetctl/pkg/vault"
)

// Command annotations read by initializeApp
const (
	// annotationPublic commands run without a session
	annotationPublic = "assetctl/public"

	// annotationNoInit commands do not need the gateway at all
	annotationNoInit = "assetctl/no-init"
)

var (
	// Global vault instance
	appVault *vault.Vault

	// Configuration and logging
	appConfig *config.Config
	appLogger *logrus.Logger
	logFile   *os.File

	// Session and backend
	sessionStore    *session.FileStore
	backend         ports.Gateway
	metricsRegistry *prometheus.Registry

	// Shell
	capabilities *services.Capabilities
	appShell     *services.Shell
	appClock     clockwork.Clock = clockwork.NewRealClock()

	// Root context, cancelled on SIGINT/SIGTERM
	appCtx = context.Background()

	// Global flags
	apiURLFlag     string
	configPathFlag string
	verboseFlag    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "assetctl",
	Short: "assetctl - military asset tracking from the terminal",
	Long: ui.StyleTitle.Render("assetctl") + " - Asset Tracking Client\n\n" +
		"Track assets, transfers between bases and personnel assignments\n" +
		"against the asset-tracking backend, from the command line or the\n" +
		"full-screen shell (assetctl ui).",
	SilenceUsage:       true,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: closeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	appCtx = ctx

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errCancelled) {
			fmt.Fprintln(os.Stdout, "Operation cancelled.")
			return
		}
		fmt.Fprintln(os.Stderr, ui.FormatError(describeError(err)))
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true

	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "Path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(assetsCmd)
	rootCmd.AddCommand(transfersCmd)
	rootCmd.AddCommand(assignmentsCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(uiCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the application components
func initializeApp(cmd *cobra.Command, args []string) error {
	if hasAnnotation(cmd, annotationNoInit) {
		return nil
	}

	if err := loadSettings(); err != nil {
		return err
	}

	// Logging goes to a file: the terminal belongs to the output and the TUI
	logPath := appConfig.LogFile
	if logPath == "" {
		logPath = appVault.LogPath()
	}
	f, logger, err := logging.FileLogger(logging.ParseLevel(appConfig.LogLevel, verboseFlag), logPath)
	if err != nil {
		return err
	}
	logFile = f
	appLogger = logger

	// Session store and gateway
	sessionStore = session.NewFileStore(appVault.SessionPath())
	metricsRegistry = prometheus.NewRegistry()
	backend = api.NewClient(appConfig.APIURL, sessionStore,
		api.WithTimeout(time.Duration(appConfig.TimeoutSeconds)*time.Second),
		api.WithLogger(appLogger),
		api.WithMetrics(api.NewMetrics(metricsRegistry)),
	)

	// Capabilities and shell
	capabilities, err = services.NewCapabilities(appConfig.PolicyPath, appLogger)
	if err != nil {
		return err
	}
	appShell, err = services.NewShell(sessionStore, backend, capabilities, appClock, appLogger)
	if err != nil {
		return err
	}

	appLogger.WithFields(logrus.Fields{
		"command": cmd.CommandPath(),
		"api_url": appConfig.APIURL,
	}).Debug("initialized")

	if !hasAnnotation(cmd, annotationPublic) && appShell.State() != services.Authenticated {
		return services.ErrNotAuthenticated
	}
	return nil
}

// loadSettings resolves the vault, the .env files and the config file
func loadSettings() error {
	v, err := vault.New()
	if err != nil {
		return fmt.Errorf("failed to initialize vault: %w", err)
	}
	if err := v.Initialize(); err != nil {
		return err
	}
	appVault = v

	if _, err := config.LoadDotEnv(".env", filepath.Join(appVault.RootPath, ".env")); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	path := configPathFlag
	if path == "" {
		path = appVault.ConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if apiURLFlag != "" {
		cfg.APIURL = apiURLFlag
	}
	appConfig = cfg

	ui.SetTheme(appConfig.ColorTheme)
	return nil
}

// closeApp releases what initializeApp opened
func closeApp(cmd *cobra.Command, args []string) error {
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}

// hasAnnotation looks for annotation on cmd and its parents
func hasAnnotation(cmd *cobra.Command, annotation string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotation] == "true" {
			return true
		}
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
	}
	return false
}

// describeError turns well-known failures into a hint for the user
func describeError(err error) string {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated), errors.Is(err, api.ErrNoToken):
		return "Not logged in. Run 'assetctl login' first."
	case api.IsUnauthorized(err):
		return "Session rejected by the backend. Run 'assetctl login' again."
	default:
		return err.Error()
	}
}

// getContext returns a context for operations
func getContext() context.Context {
	return appCtx
}

// pageSize returns the configured page size
func pageSize() int {
	if appConfig == nil {
		return services.DefaultPageSize
	}
	return appConfig.PageSize
}

// bases returns the configured base list
func bases() []string {
	if appConfig == nil {
		return nil
	}
	return appConfig.Bases
}

// formOptions returns the options every form session is built with
func formOptions(extra ...services.FormOption) []services.FormOption {
	opts := []services.FormOption{
		services.WithClock(appClock),
		services.WithFormLogger(appLogger),
	}
	if b := bases(); len(b) > 0 {
		opts = append(opts, services.WithBases(b))
	}
	return append(opts, extra...)
}
