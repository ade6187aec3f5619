package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/cook/internal/cook"
	"github.com/Iron-Ham/cook/internal/session"
	"github.com/Iron-Ham/cook/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <request-type> <task description> [options]",
	Short: "Run a /cook command and print its report",
	Long: `Run a /cook command to completion and print the session report.

The command may be given as one quoted string or as separate words; the
"/cook" prefix is added when missing. Flags for run itself must come
before the command words.

Agents are simulated: each one waits for --delay and returns a canned
result. Use --fail to make specific agents fail.

  cook run architecture "Design the billing API" --team mini --parallel
  cook run --watch '/cook testing "checkout" --template test-suite'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

var (
	runWatch   bool
	runDelay   time.Duration
	runFail    []string
	runNoColor bool
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().SetInterspersed(false)
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "show a live progress view while the session runs")
	runCmd.Flags().DurationVar(&runDelay, "delay", 300*time.Millisecond, "simulated time each agent takes")
	runCmd.Flags().StringSliceVar(&runFail, "fail", nil, "agents that should fail (comma separated)")
	runCmd.Flags().BoolVar(&runNoColor, "no-color", false, "disable colored output")
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := newApp(cook.SimulatedTask{Delay: runDelay, Fail: runFail})
	if err != nil {
		return err
	}
	defer a.close()

	input := buildInput(a.cfg.Command.Prefix, args)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	parsed, err := a.cook.Parse(input)
	if err != nil {
		return err
	}

	var res *cook.Result
	if runWatch && isTTY() && !parsed.IsHelp() && !parsed.IsList() {
		res, err = runWatched(ctx, a, input)
	} else {
		res, err = a.cook.Execute(ctx, input)
	}
	if err != nil {
		return err
	}

	out := res.Report
	if isTTY() && !runNoColor {
		out = colorize(out)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)

	if res.Failed() {
		return fmt.Errorf("session %s %s", res.Snapshot.ID, res.Snapshot.Status)
	}
	return nil
}

// runWatched starts the session, shows the live view and then waits for
// the session to finish, even if the user left the view early.
func runWatched(ctx context.Context, a *app, input string) (*cook.Result, error) {
	sess, err := a.cook.Start(ctx, input)
	if err != nil {
		return nil, err
	}
	cancel := func() bool { return a.cook.Cancel(sess.ID()) }
	if err := tui.Run(ctx, a.bus, sess, cancel); err != nil {
		return nil, err
	}

	// ctx cancellation already reaches the scheduler; wait for the drain.
	snap, err := a.cook.Wait(context.Background(), sess.ID())
	if err != nil {
		return nil, err
	}
	return resultFor(a.cook, snap)
}

func resultFor(c *cook.Cook, snap session.Snapshot) (*cook.Result, error) {
	text, err := c.Report(snap, "")
	if err != nil {
		return nil, err
	}
	return &cook.Result{Command: snap.Command, Snapshot: snap, Report: text}, nil
}

// buildInput turns command-line words back into a /cook command string.
// A single argument that already carries the prefix is used verbatim.
func buildInput(prefix string, args []string) string {
	if len(args) == 1 && strings.HasPrefix(strings.TrimSpace(args[0]), prefix) {
		return strings.TrimSpace(args[0])
	}
	parts := make([]string, 0, len(args)+1)
	if len(args) == 0 || args[0] != prefix {
		parts = append(parts, prefix)
	}
	for _, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \t\"\\") {
			arg = quote(arg)
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
