package report

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/cook/internal/command"
	"github.com/Iron-Ham/cook/internal/errors"
	"github.com/Iron-Ham/cook/internal/plan"
	"github.com/Iron-Ham/cook/internal/session"
)

var t0 = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

// finishedSnapshot runs a three-item session by hand: the first item
// completes, the second fails, the third never starts.
func finishedSnapshot(t *testing.T) session.Snapshot {
	t.Helper()
	cmd, err := command.NewParser("").Parse(`/cook testing "login flow" --agents unit-tester,e2e-tester,qa-reviewer`)
	require.NoError(t, err)
	p, err := plan.NewBuilder(nil, nil).Build(cmd)
	require.NoError(t, err)

	// Chain the third item behind a stage that never drains.
	p.Items[2].Stage = plan.Stage{Index: 1, After: 0}
	sess := session.New(cmd, p)
	require.NoError(t, sess.Begin(t0))
	sess.StartItem(0, t0)
	sess.FinishItem(0, "12 tests written\nall green", nil, 1, t0.Add(2*time.Second))
	sess.StartItem(1, t0)
	sess.FinishItem(1, "", errors.New("browser crashed"), 3, t0.Add(3*time.Second))
	for i := 0; i < 15; i++ {
		sess.Logf(t0.Add(time.Duration(i)*time.Second), "line %02d", i)
	}
	sess.Finish(session.StatusFailed, errors.NewDeadlockError(sess.ID(), []string{"qa-reviewer"}), t0.Add(4*time.Second))
	return sess.Snapshot()
}

func TestRender_SummaryHasRequiredFields(t *testing.T) {
	snap := finishedSnapshot(t)
	out, err := String(snap, command.OutputSummary, 5)
	require.NoError(t, err)

	for _, want := range []string{
		"Session:    " + snap.ID,
		`Command:    /cook testing "login flow" --agents unit-tester,e2e-tester,qa-reviewer`,
		"Status:     failed (deadlock",
		"Duration:   4s",
		"Items:      3",
		"Completed:  1",
		"Failed:     1",
		"Pending:    1",
		"Recent log:",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Work items:")
}

func TestRender_LogTail(t *testing.T) {
	snap := finishedSnapshot(t)
	out, err := String(snap, command.OutputSummary, 3)
	require.NoError(t, err)

	logPart := out[strings.Index(out, "Recent log:"):]
	assert.Equal(t, 4, strings.Count(logPart, "\n"), "heading plus three lines")
	assert.Contains(t, logPart, "session failed")
	assert.NotContains(t, logPart, "line 12")
}

func TestRender_DefaultTail(t *testing.T) {
	snap := finishedSnapshot(t)
	data := NewData(snap, 0)
	assert.Len(t, data.Log, DefaultLogTail)
}

func TestRender_DetailedKeepsPlanOrder(t *testing.T) {
	snap := finishedSnapshot(t)
	out, err := String(snap, command.OutputDetailed, 5)
	require.NoError(t, err)

	unit := strings.Index(out, "1. [completed] unit-tester")
	e2e := strings.Index(out, "2. [failed] e2e-tester")
	qa := strings.Index(out, "3. [pending] qa-reviewer")
	require.True(t, unit >= 0 && e2e >= 0 && qa >= 0, out)
	assert.Less(t, unit, e2e)
	assert.Less(t, e2e, qa)

	assert.Contains(t, out, "12 tests written ...", "multi-line results are shortened")
	assert.Contains(t, out, "error: browser crashed")
	assert.Contains(t, out, "3 attempts")
	assert.Contains(t, out, "Session:    "+snap.ID)
}

func TestRender_Executive(t *testing.T) {
	snap := finishedSnapshot(t)
	out, err := String(snap, command.OutputExecutive, 5)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "testing: login flow", lines[0])
	assert.Equal(t, fmt.Sprintf("Session %s failed in 4s: 1/3 completed, 1 failed, 1 pending", snap.ID), lines[1])
	assert.Contains(t, out, "Recent log:")
	assert.NotContains(t, out, "Work items:")
}

func TestRender_UnknownFormatFallsBack(t *testing.T) {
	snap := finishedSnapshot(t)
	got, err := String(snap, command.OutputFormat("fancy"), 5)
	require.NoError(t, err)
	want, err := String(snap, command.OutputSummary, 5)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCommandEcho_WithoutRaw(t *testing.T) {
	c := command.Command{RequestType: command.RequestArchitecture, TaskDescription: "Design X"}
	assert.Equal(t, `/cook architecture "Design X"`, commandEcho(c))
}
