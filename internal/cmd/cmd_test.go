package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/xcstatus/internal/status"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// withLogsDir points statusline persistence at a temp directory for the test.
func withLogsDir(t *testing.T, dir string) {
	t.Helper()
	viper.Set("statusline.logs_dir", dir)
	t.Cleanup(func() { viper.Set("statusline.logs_dir", "") })
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "xcstatus" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "xcstatus")
	}

	expectedCmds := []string{"serve", "watch", "statusline", "toggle", "context", "config"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range expectedCmds {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestToggleCommand(t *testing.T) {
	dir := t.TempDir()
	withLogsDir(t, dir)

	output, err := executeCommand(rootCmd, "toggle", "false")
	if err != nil {
		t.Fatalf("toggle false: %v", err)
	}
	if !strings.Contains(output, "Statusline disabled") {
		t.Errorf("output = %q, want disabled confirmation", output)
	}
	if status.Enabled(dir) {
		t.Error("statusline still enabled after toggle false")
	}

	output, err = executeCommand(rootCmd, "toggle", "true")
	if err != nil {
		t.Fatalf("toggle true: %v", err)
	}
	if !strings.Contains(output, "Statusline enabled") {
		t.Errorf("output = %q, want enabled confirmation", output)
	}
	if !status.Enabled(dir) {
		t.Error("statusline still disabled after toggle true")
	}
}

func TestToggleCommandRejectsBadArgument(t *testing.T) {
	withLogsDir(t, t.TempDir())

	if _, err := executeCommand(rootCmd, "toggle", "maybe"); err == nil {
		t.Error("toggle maybe succeeded, want error")
	}
}

func TestContextCommand(t *testing.T) {
	dir := t.TempDir()
	withLogsDir(t, dir)

	if err := status.NewWriter(dir).Write(status.Snapshot{
		XcodeRunning: true,
		ProjectName:  "MyApp",
	}); err != nil {
		t.Fatal(err)
	}

	output, err := executeCommand(rootCmd, "context")
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	if !strings.Contains(output, "<xcode-context>") || !strings.Contains(output, "Current project: MyApp") {
		t.Errorf("output = %q, want context block with project", output)
	}
}

func TestContextCommandNoStatusFile(t *testing.T) {
	withLogsDir(t, t.TempDir())

	output, err := executeCommand(rootCmd, "context")
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	if !strings.Contains(output, "logs not found") {
		t.Errorf("output = %q, want missing-logs message", output)
	}
}

func TestConfigShowCommand(t *testing.T) {
	output, err := executeCommand(rootCmd, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"server:", "xcode:", "build:", "statusline:", "logging:"} {
		if !strings.Contains(output, want) {
			t.Errorf("config show output missing %q", want)
		}
	}
}

func TestConfigSetRejectsUnknownKey(t *testing.T) {
	if _, err := executeCommand(rootCmd, "config", "set", "nope.nothing", "1"); err == nil {
		t.Error("config set with unknown key succeeded, want error")
	}
}

func TestConfigSetRejectsBadValue(t *testing.T) {
	if _, err := executeCommand(rootCmd, "config", "set", "server.port", "not-a-number"); err == nil {
		t.Error("config set with bad int succeeded, want error")
	}
	if _, err := executeCommand(rootCmd, "config", "set", "logging.enabled", "maybe"); err == nil {
		t.Error("config set with bad bool succeeded, want error")
	}
}

func TestConfigPathCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	output, err := executeCommand(rootCmd, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if !strings.Contains(output, filepath.Join("xcstatus", "config.yaml")) {
		t.Errorf("output = %q, want config.yaml path", output)
	}
}

func TestConfigInitCommand(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	output, err := executeCommand(rootCmd, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	configFile := filepath.Join(xdg, "xcstatus", "config.yaml")
	if !strings.Contains(output, configFile) {
		t.Errorf("output = %q, want created path", output)
	}
	data, err := os.ReadFile(configFile)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "derived_data_dir") {
		t.Error("config file missing expected keys")
	}

	// Second init refuses to overwrite.
	if _, err := executeCommand(rootCmd, "config", "init"); err == nil {
		t.Error("second config init succeeded, want error")
	}
}
