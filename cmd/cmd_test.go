package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
	"github.com/kamal-hamza/assetctl/internal/core/services"
)

// TestCommandStructure verifies that all commands are properly registered
func TestCommandStructure(t *testing.T) {
	commands := [][]string{
		{"login"}, {"register"}, {"logout"}, {"whoami"},
		{"assets"}, {"assets", "list"}, {"assets", "show"}, {"assets", "add"}, {"assets", "edit"}, {"assets", "delete"},
		{"transfers"}, {"transfers", "list"}, {"transfers", "add"}, {"transfers", "status"}, {"transfers", "delete"},
		{"assignments"}, {"assignments", "list"}, {"assignments", "add"}, {"assignments", "status"}, {"assignments", "delete"},
		{"metrics"}, {"profile"}, {"profile", "show"}, {"profile", "update"},
		{"ui"}, {"config"}, {"config", "show"}, {"config", "path"}, {"config", "edit"},
		{"doctor"}, {"clean"}, {"version"},
	}

	for _, args := range commands {
		name := strings.Join(args, " ")
		t.Run(name, func(t *testing.T) {
			cmd, _, err := rootCmd.Find(args)
			if err != nil {
				t.Fatalf("Command '%s' not found: %v", name, err)
			}
			if cmd == nil {
				t.Fatalf("Command '%s' is nil", name)
			}
			if cmd.Name() != args[len(args)-1] {
				t.Errorf("Command '%s' resolved to '%s'", name, cmd.CommandPath())
			}
		})
	}
}

// TestCommandAliases verifies the short forms resolve to their commands
func TestCommandAliases(t *testing.T) {
	aliases := map[string]string{
		"asset":      "assets",
		"transfer":   "transfers",
		"assignment": "assignments",
		"stats":      "metrics",
		"tui":        "ui",
	}

	for alias, want := range aliases {
		cmd, _, err := rootCmd.Find([]string{alias})
		if err != nil {
			t.Errorf("Alias '%s' not found: %v", alias, err)
			continue
		}
		if cmd.Name() != want {
			t.Errorf("Alias '%s' resolved to '%s', want '%s'", alias, cmd.Name(), want)
		}
	}
}

// TestRootCommandExists verifies the root command is properly configured
func TestRootCommandExists(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("Root command is nil")
	}

	if rootCmd.Use != "assetctl" {
		t.Errorf("Expected root command Use to be 'assetctl', got '%s'", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Root command Short description is empty")
	}
}

// TestCommandsHaveHelp verifies all commands have help text
func TestCommandsHaveHelp(t *testing.T) {
	commands := rootCmd.Commands()

	if len(commands) == 0 {
		t.Fatal("No commands registered")
	}

	for _, cmd := range commands {
		t.Run(cmd.Name(), func(t *testing.T) {
			if cmd.Short == "" {
				t.Errorf("Command '%s' has no Short description", cmd.Name())
			}
			for _, sub := range cmd.Commands() {
				if sub.Short == "" {
					t.Errorf("Command '%s' has no Short description", sub.CommandPath())
				}
			}
		})
	}
}

// TestPublicCommands verifies which commands run without a session
func TestPublicCommands(t *testing.T) {
	public := []string{"login", "register", "logout", "ui", "doctor"}
	for _, name := range public {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil {
			t.Fatalf("Command '%s' not found: %v", name, err)
		}
		if cmd.Annotations[annotationPublic] != "true" {
			t.Errorf("Command '%s' should be public", name)
		}
	}

	cmd, _, err := rootCmd.Find([]string{"assets", "list"})
	if err != nil {
		t.Fatalf("Command 'assets list' not found: %v", err)
	}
	if cmd.Annotations[annotationPublic] == "true" {
		t.Error("Command 'assets list' should require a session")
	}
}

func TestSessionExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	if got := sessionExpiry(nil, now); got != "no expiry" {
		t.Errorf("Expected 'no expiry' for nil session, got '%s'", got)
	}

	sess := &domain.Session{Token: "t"}
	if got := sessionExpiry(sess, now); got != "no expiry" {
		t.Errorf("Expected 'no expiry' without exp claim, got '%s'", got)
	}

	sess.ExpiresAt = now.Add(90 * time.Minute)
	if got := sessionExpiry(sess, now); !strings.HasPrefix(got, "expires in 1h30m0s") {
		t.Errorf("Unexpected expiry text: '%s'", got)
	}
}

func TestRenderStatusBars(t *testing.T) {
	points := []services.SeriesPoint{
		{Label: "AVAILABLE", Value: 4},
		{Label: "ASSIGNED", Value: 2},
		{Label: "MAINTENANCE", Value: 0},
	}

	out := renderStatusBars(points, 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}

	wantBars := []int{10, 5, 0}
	for i, line := range lines {
		if got := strings.Count(line, "█"); got != wantBars[i] {
			t.Errorf("Line %d: expected %d bar cells, got %d", i, wantBars[i], got)
		}
		if !strings.Contains(line, points[i].Label) {
			t.Errorf("Line %d: missing label %s", i, points[i].Label)
		}
	}

	// Backend order is kept, not sorted by count
	if strings.Index(out, "AVAILABLE") > strings.Index(out, "ASSIGNED") {
		t.Error("Expected bars in backend order")
	}
}

func TestRenderStatusBarsAllZero(t *testing.T) {
	out := renderStatusBars([]services.SeriesPoint{{Label: "AVAILABLE", Value: 0}}, 10)
	if strings.Contains(out, "█") {
		t.Errorf("Expected empty bar, got %q", out)
	}
}
