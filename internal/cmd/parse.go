package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/cook/internal/command"
	"github.com/Iron-Ham/cook/internal/config"
)

var parseCmd = &cobra.Command{
	Use:   "parse <command>",
	Short: "Parse a /cook command and print the result as YAML",
	Long: `Parse a /cook command without planning or running it.

  cook parse '/cook architecture "Design X" --team mini --parallel'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().SetInterspersed(false)
}

type optionsView struct {
	Team     string   `yaml:"team,omitempty"`
	Priority string   `yaml:"priority,omitempty"`
	Output   string   `yaml:"output"`
	Parallel bool     `yaml:"parallel"`
	Agents   []string `yaml:"agents,omitempty"`
	Template string   `yaml:"template,omitempty"`
	Quick    bool     `yaml:"quick,omitempty"`
	Deep     bool     `yaml:"deep,omitempty"`
}

type commandView struct {
	ID              string      `yaml:"id"`
	RequestType     string      `yaml:"request_type,omitempty"`
	TaskDescription string      `yaml:"task_description,omitempty"`
	Help            bool        `yaml:"help,omitempty"`
	List            bool        `yaml:"list,omitempty"`
	Options         optionsView `yaml:"options"`
	CreatedAt       string      `yaml:"created_at"`
}

func viewCommand(c command.Command) commandView {
	return commandView{
		ID:              c.ID,
		RequestType:     string(c.RequestType),
		TaskDescription: c.TaskDescription,
		Help:            c.IsHelp(),
		List:            c.IsList(),
		Options: optionsView{
			Team:     string(c.Options.Team),
			Priority: string(c.Options.Priority),
			Output:   string(c.Options.OutputOrDefault()),
			Parallel: c.Options.Parallel,
			Agents:   c.Options.Agents,
			Template: c.Options.Template,
			Quick:    c.Options.Quick,
			Deep:     c.Options.Deep,
		},
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	parsed, err := command.NewParser(cfg.Command.Prefix).Parse(buildInput(cfg.Command.Prefix, args))
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(viewCommand(parsed))
	if err != nil {
		return fmt.Errorf("failed to encode command: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
