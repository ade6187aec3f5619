package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/cook/internal/cook"
	"github.com/Iron-Ham/cook/internal/errors"
	"github.com/Iron-Ham/cook/internal/templates"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List execution templates",
	Long: `List the execution templates available to --template.

Templates from templates.dir take precedence over the built-in ones.`,
	RunE: runTemplatesList,
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a template as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesShow,
}

var templatesValidateCmd = &cobra.Command{
	Use:   "validate <dir>",
	Short: "Check every template file in a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesValidate,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesShowCmd)
	templatesCmd.AddCommand(templatesValidateCmd)
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cook.SimulatedTask{})
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	names := a.cook.TemplateNames()
	if len(names) == 0 {
		fmt.Fprintln(out, "No templates available.")
		return nil
	}
	for _, name := range names {
		t, _ := a.cook.Templates().Resolve(name)
		fmt.Fprintf(out, "%-20s %2d steps  %s\n", t.Name, t.StepCount(), t.Description)
	}
	return nil
}

func runTemplatesShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cook.SimulatedTask{})
	if err != nil {
		return err
	}
	defer a.close()

	t, ok := a.cook.Templates().Resolve(args[0])
	if !ok {
		return errors.NewNotFoundError("template", args[0])
	}
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode template: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runTemplatesValidate(cmd *cobra.Command, args []string) error {
	tmpls, err := templates.LoadDir(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, t := range tmpls {
		fmt.Fprintf(out, "ok  %s (%d steps)\n", t.Name, t.StepCount())
	}
	fmt.Fprintf(out, "%d templates valid\n", len(tmpls))
	return nil
}
