package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/cook/internal/cook"
	"github.com/Iron-Ham/cook/internal/plan"
)

var planCmd = &cobra.Command{
	Use:   "plan <command>",
	Short: "Show the execution plan a /cook command would run",
	Long: `Build the execution plan for a /cook command and print its stages
without running anything.

  cook plan '/cook testing "checkout" --template test-suite'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().SetInterspersed(false)
}

func runPlan(cmd *cobra.Command, args []string) error {
	a, err := newApp(cook.SimulatedTask{})
	if err != nil {
		return err
	}
	defer a.close()

	_, p, err := a.cook.Plan(buildInput(a.cfg.Command.Prefix, args))
	if err != nil {
		return err
	}
	printPlan(cmd, p)
	return nil
}

func printPlan(cmd *cobra.Command, p plan.Plan) {
	out := cmd.OutOrStdout()
	source := "default agents"
	if p.Template != "" {
		source = "template " + p.Template
	}
	fmt.Fprintf(out, "%d work items in %d stages (%s)\n", len(p.Items), p.StageCount(), source)

	current := plan.NoStage - 1
	for _, it := range p.Items {
		if it.Stage.Index != current {
			current = it.Stage.Index
			after := "start"
			if it.Stage.After != plan.NoStage {
				after = fmt.Sprintf("after stage %d", it.Stage.After)
			}
			group := "sequential"
			if it.Stage.Group != "" {
				group = it.Stage.Group
			}
			fmt.Fprintf(out, "\nStage %d (%s, %s)\n", it.Stage.Index, group, after)
		}
		fmt.Fprintf(out, "  - %-22s %s\n", it.Agent, it.Task)
	}
}
