package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/cook/internal/config"
	"github.com/Iron-Ham/cook/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify cook configuration",
	Long: `View or modify cook configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  cook config set scheduler.max_concurrent_agents 5
  cook config set scheduler.agent_timeout 2m
  cook config set audit.enabled true

Run 'cook config show' to list every key.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/cook/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

type keyKind int

const (
	kindString keyKind = iota
	kindBool
	kindInt
	kindDuration
)

// settableKeys lists every key config set accepts.
var settableKeys = map[string]keyKind{
	"command.prefix":                      kindString,
	"scheduler.max_concurrent_agents":     kindInt,
	"scheduler.agent_timeout":             kindDuration,
	"scheduler.retry_attempts":            kindInt,
	"scheduler.retry_backoff":             kindDuration,
	"scheduler.enable_parallel_execution": kindBool,
	"scheduler.progress_reporting":        kindBool,
	"sessions.ttl":                        kindDuration,
	"sessions.max_sessions":               kindInt,
	"templates.dir":                       kindString,
	"templates.watch":                     kindBool,
	"report.log_tail":                     kindInt,
	"logging.enabled":                     kindBool,
	"logging.level":                       kindString,
	"logging.dir":                         kindString,
	"logging.max_size_mb":                 kindInt,
	"logging.max_backups":                 kindInt,
	"audit.enabled":                       kindBool,
	"audit.db_path":                       kindString,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out)
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "command:")
	fmt.Fprintf(out, "  prefix: %s\n", cfg.Command.Prefix)

	fmt.Fprintln(out, "scheduler:")
	fmt.Fprintf(out, "  max_concurrent_agents: %d\n", cfg.Scheduler.MaxConcurrentAgents)
	fmt.Fprintf(out, "  agent_timeout: %s\n", cfg.Scheduler.AgentTimeout)
	fmt.Fprintf(out, "  retry_attempts: %d\n", cfg.Scheduler.RetryAttempts)
	fmt.Fprintf(out, "  retry_backoff: %s\n", cfg.Scheduler.RetryBackoff)
	fmt.Fprintf(out, "  enable_parallel_execution: %v\n", cfg.Scheduler.EnableParallelExecution)
	fmt.Fprintf(out, "  progress_reporting: %v\n", cfg.Scheduler.ProgressReporting)

	fmt.Fprintln(out, "sessions:")
	fmt.Fprintf(out, "  ttl: %s\n", cfg.Sessions.TTL)
	fmt.Fprintf(out, "  max_sessions: %d\n", cfg.Sessions.MaxSessions)

	fmt.Fprintln(out, "templates:")
	fmt.Fprintf(out, "  dir: %s\n", cfg.Templates.Dir)
	fmt.Fprintf(out, "  watch: %v\n", cfg.Templates.Watch)

	fmt.Fprintln(out, "report:")
	fmt.Fprintf(out, "  log_tail: %d\n", cfg.Report.LogTail)

	fmt.Fprintln(out, "logging:")
	fmt.Fprintf(out, "  enabled: %v\n", cfg.Logging.Enabled)
	fmt.Fprintf(out, "  level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  dir: %s\n", cfg.Logging.Dir)
	fmt.Fprintf(out, "  max_size_mb: %d\n", cfg.Logging.MaxSizeMB)
	fmt.Fprintf(out, "  max_backups: %d\n", cfg.Logging.MaxBackups)

	fmt.Fprintln(out, "audit:")
	fmt.Fprintf(out, "  enabled: %v\n", cfg.Audit.Enabled)
	fmt.Fprintf(out, "  db_path: %s\n", cfg.Audit.DBPath)

	return nil
}

// parseConfigValue converts value to the type key expects.
func parseConfigValue(key, value string) (any, error) {
	kind, ok := settableKeys[key]
	if !ok {
		keys := make([]string, 0, len(settableKeys))
		for k := range settableKeys {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown configuration key: %s\nValid keys:\n  %s", key, strings.Join(keys, "\n  "))
	}

	switch kind {
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return b, nil
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if n < 0 {
			return nil, fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		return n, nil
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected a duration such as 30s or 5m", key)
		}
		if d < 0 {
			return nil, fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		return d.String(), nil
	}

	if key == "logging.level" {
		if !slices.Contains(logging.ValidLevels(), strings.ToUpper(value)) {
			return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.ToLower(strings.Join(logging.ValidLevels(), ", ")))
		}
	}
	if key == "command.prefix" && strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("invalid value for %s: must not be empty", key)
	}
	return value, nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	typed, err := parseConfigValue(key, value)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(config.ConfigDir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.Set(key, typed)

	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, typed)
	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", configFile)
	return nil
}

const defaultConfigContent = `# cook configuration

# How raw command strings are recognized
command:
  prefix: /cook

# Dispatch loop
scheduler:
  # Work items started per round
  max_concurrent_agents: 3
  # Upper bound on one attempt of a work item (0 disables)
  agent_timeout: 5m
  # Extra attempts after a failed one
  retry_attempts: 2
  # Multiplied by the attempt number before each retry
  retry_backoff: 1s
  # When false, one item runs per round
  enable_parallel_execution: true
  # Log a line per dispatch round
  progress_reporting: true

# In-memory session store
sessions:
  # How long finished sessions are kept (0 keeps them forever)
  ttl: 1h
  # Oldest sessions are evicted beyond this count (0 is unlimited)
  max_sessions: 100

# Execution templates layered over the built-ins
templates:
  dir: ""
  # Reload the directory when files change
  watch: false

report:
  # Trailing session log lines included in reports
  log_tail: 10

logging:
  enabled: true
  # debug, info, warn or error
  level: info
  # Directory for cook.log; empty logs warnings to stderr
  dir: ""
  max_size_mb: 10
  max_backups: 3

# SQLite record of session lifecycle events
audit:
  enabled: false
  # db_path: ~/.config/cook/audit.db
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'cook config set' to modify values", configFile)
	}
	if err := os.MkdirAll(config.ConfigDir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintf(out, "  2. ./config.yaml (current directory)\n")
	fmt.Fprintln(out, "\nEnvironment variables: COOK_* (e.g., COOK_SCHEDULER_MAX_CONCURRENT_AGENTS)")
	return nil
}
