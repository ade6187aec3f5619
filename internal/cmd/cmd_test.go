package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/cook/internal/errors"
	"github.com/Iron-Ham/cook/internal/tui/styles"
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

// setupTestEnvironment points the config directory at a temp dir and
// keeps retries and logging out of the way.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("COOK_SCHEDULER_RETRY_ATTEMPTS", "0")
	t.Setenv("COOK_LOGGING_ENABLED", "false")
	t.Cleanup(func() {
		runWatch, runDelay, runFail, runNoColor = false, 0, nil, false
		historyLimit, historySession = 20, ""
	})
	return dir
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "cook", rootCmd.Use)

	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "parse", "plan", "templates", "history", "config"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestBuildInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "separate words",
			args: []string{"architecture", "Design X", "--team", "mini"},
			want: `/cook architecture "Design X" --team mini`,
		},
		{
			name: "single prefixed string",
			args: []string{`  /cook testing "checkout" --parallel`},
			want: `/cook testing "checkout" --parallel`,
		},
		{
			name: "prefix as first word",
			args: []string{"/cook", "help"},
			want: "/cook help",
		},
		{
			name: "quotes and backslashes escaped",
			args: []string{"custom", `say "hi" \ bye`},
			want: `/cook custom "say \"hi\" \\ bye"`,
		},
		{
			name: "empty argument kept",
			args: []string{"custom", ""},
			want: `/cook custom ""`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildInput("/cook", tt.args))
		})
	}
}

func TestParseConfigValue(t *testing.T) {
	tests := []struct {
		key, value string
		want       any
		wantErr    string
	}{
		{key: "scheduler.max_concurrent_agents", value: "5", want: 5},
		{key: "scheduler.agent_timeout", value: "90s", want: "1m30s"},
		{key: "audit.enabled", value: "true", want: true},
		{key: "logging.level", value: "debug", want: "debug"},
		{key: "templates.dir", value: "/tmp/t", want: "/tmp/t"},
		{key: "scheduler.max_concurrent_agents", value: "-1", wantErr: "non-negative"},
		{key: "scheduler.retry_backoff", value: "soon", wantErr: "duration"},
		{key: "audit.enabled", value: "maybe", wantErr: "true or false"},
		{key: "logging.level", value: "loud", wantErr: "Valid options"},
		{key: "command.prefix", value: " ", wantErr: "must not be empty"},
		{key: "nope.key", value: "1", wantErr: "unknown configuration key"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			got, err := parseConfigValue(tt.key, tt.value)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColorize(t *testing.T) {
	in := "Session:    abc\nStatus:     failed (deadlock)\nItems:      2\n"
	out := colorize(in)

	assert.Contains(t, out, "Session:    abc\n")
	assert.Contains(t, out, "Items:      2\n")
	assert.Contains(t, out, "failed")
	assert.Equal(t, strings.Count(in, "\n"), strings.Count(out, "\n"))
	assert.Contains(t, styles.Fit(out, 200), "Status:")
}

func TestParseCommand(t *testing.T) {
	setupTestEnvironment(t)

	out, err := executeCommand(rootCmd, "parse", "architecture", "Design X", "--team", "mini", "--parallel")
	require.NoError(t, err)

	var v commandView
	require.NoError(t, yaml.Unmarshal([]byte(out), &v))
	assert.Equal(t, "architecture", v.RequestType)
	assert.Equal(t, "Design X", v.TaskDescription)
	assert.Equal(t, "mini", v.Options.Team)
	assert.True(t, v.Options.Parallel)
	assert.Equal(t, "summary", v.Options.Output)
	assert.NotEmpty(t, v.ID)
}

func TestParseCommand_Error(t *testing.T) {
	setupTestEnvironment(t)

	_, err := executeCommand(rootCmd, "parse", "architecure", "Design X")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "architecture")
}

func TestPlanCommand(t *testing.T) {
	setupTestEnvironment(t)

	out, err := executeCommand(rootCmd, "plan", `/cook testing "checkout" --template test-suite`)
	require.NoError(t, err)
	assert.Contains(t, out, "5 work items")
	assert.Contains(t, out, "template test-suite")
	assert.Contains(t, out, "Stage 0 (sequential, start)")
}

func TestTemplatesCommands(t *testing.T) {
	setupTestEnvironment(t)

	out, err := executeCommand(rootCmd, "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "test-suite")
	assert.Contains(t, out, "api-design")

	out, err = executeCommand(rootCmd, "templates", "show", "TEST-SUITE")
	require.NoError(t, err)
	assert.Contains(t, out, "name: test-suite")

	_, err = executeCommand(rootCmd, "templates", "show", "missing")
	require.Error(t, err)
}

func TestTemplatesValidate(t *testing.T) {
	setupTestEnvironment(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "review.yaml"), []byte(`
description: two reviewers
parallel:
  - - agent: reviewer
      task: "Review [task]"
    - agent: security-reviewer
      task: "Audit [task]"
`), 0644))

	out, err := executeCommand(rootCmd, "templates", "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "ok  review (2 steps)")
	assert.Contains(t, out, "1 templates valid")
}

func TestRunCommand(t *testing.T) {
	setupTestEnvironment(t)

	out, err := executeCommand(rootCmd, "run", "--delay", "0", "architecture", "Design the billing API", "--team", "mini")
	require.NoError(t, err)
	assert.Contains(t, out, "Status:     completed")
	assert.Contains(t, out, "Completed:  5")
}

func TestRunCommand_Help(t *testing.T) {
	setupTestEnvironment(t)

	out, err := executeCommand(rootCmd, "run", "help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage: /cook")
}

func TestRunCommand_ItemFailureStillSucceeds(t *testing.T) {
	setupTestEnvironment(t)

	out, err := executeCommand(rootCmd, "run", "--delay", "0", "--fail", "unit-tester",
		"testing", "checkout", "--output", "detailed")
	require.NoError(t, err)
	assert.Contains(t, out, "Failed:     1")
	assert.Contains(t, out, "simulated failure")
}

func TestConfigCommands(t *testing.T) {
	dir := setupTestEnvironment(t)

	out, err := executeCommand(rootCmd, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "max_concurrent_agents: 3")

	out, err = executeCommand(rootCmd, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "cook", "config.yaml"))

	_, err = executeCommand(rootCmd, "config", "init")
	require.Error(t, err)

	out, err = executeCommand(rootCmd, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, "COOK_")
}

func TestHistoryCommand_NoDatabase(t *testing.T) {
	setupTestEnvironment(t)

	out, err := executeCommand(rootCmd, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No audit trail")
	assert.Contains(t, out, "audit.enabled")
}

func TestHistoryCommand_AfterRun(t *testing.T) {
	setupTestEnvironment(t)
	t.Setenv("COOK_AUDIT_ENABLED", "true")

	_, err := executeCommand(rootCmd, "run", "--delay", "0", "custom", "tidy the backlog")
	require.NoError(t, err)

	out, err := executeCommand(rootCmd, "history", "--limit", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "started")
	assert.Contains(t, out, "finished")
}

func TestPrintError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
		excludes []string
	}{
		{
			name:     "parse error gets grammar hint",
			err:      errors.NewParseError(errors.KindMissingRequestType, "missing request type"),
			contains: []string{"Error: parse error [MissingRequestType]: missing request type", "cook run help"},
			excludes: []string{"log file"},
		},
		{
			name:     "user-facing error printed plainly",
			err:      errors.NewNotFoundError("template", "nope"),
			contains: []string{"Error: template 'nope' not found"},
			excludes: []string{"cook run help", "log file"},
		},
		{
			name:     "internal error flagged with severity",
			err:      errors.Wrap(errors.New("disk full"), "failed to load templates"),
			contains: []string{"Error (error): failed to load templates: disk full", "log file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printError(&buf, tt.err)
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, buf.String(), unwanted)
			}
		})
	}
}
