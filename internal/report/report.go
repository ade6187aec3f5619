// Package report renders human-readable session reports.
//
// Every layout includes the session id, the originating command, the
// terminal status, the duration, per-item counts and the tail of the
// session log, so a failed session still shows its partial progress.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/Iron-Ham/cook/internal/command"
	"github.com/Iron-Ham/cook/internal/session"
)

// DefaultLogTail is the number of log lines included when none is given.
const DefaultLogTail = 10

// ItemLine is one work item as shown in a detailed report.
type ItemLine struct {
	Index    int
	Agent    string
	Stage    int
	Group    string
	Status   session.ItemStatus
	Attempts int
	Duration time.Duration
	Result   string
	Error    string
}

// Data is the view model every layout is rendered from.
type Data struct {
	SessionID string
	Command   string
	Request   string
	Task      string
	Template  string
	Status    session.Status
	Progress  int
	Duration  time.Duration
	Counts    session.Counts
	Error     string
	Items     []ItemLine
	Log       []string
}

// NewData builds the view model from a snapshot, keeping the last tail log
// lines. Items stay in plan order.
func NewData(snap session.Snapshot, tail int) Data {
	if tail <= 0 {
		tail = DefaultLogTail
	}

	d := Data{
		SessionID: snap.ID,
		Command:   commandEcho(snap.Command),
		Request:   string(snap.Command.RequestType),
		Task:      snap.Command.TaskDescription,
		Template:  snap.Template,
		Status:    snap.Status,
		Progress:  snap.Progress,
		Duration:  snap.Duration().Round(time.Millisecond),
		Counts:    snap.Counts(),
	}
	if snap.Err != nil {
		d.Error = snap.Err.Error()
	}

	for i, it := range snap.Items {
		line := ItemLine{
			Index:    i + 1,
			Agent:    it.Agent,
			Stage:    it.Stage.Index,
			Group:    it.Stage.Group,
			Status:   it.Status,
			Attempts: it.Attempts,
			Result:   firstLine(it.Result),
		}
		if !it.StartedAt.IsZero() && !it.EndedAt.IsZero() {
			line.Duration = it.EndedAt.Sub(it.StartedAt).Round(time.Millisecond)
		}
		if it.Err != nil {
			line.Error = it.Err.Error()
		}
		d.Items = append(d.Items, line)
	}

	for _, e := range snap.LogTail(tail) {
		d.Log = append(d.Log, e.String())
	}
	return d
}

func commandEcho(c command.Command) string {
	if c.Raw != "" {
		return strings.TrimSpace(c.Raw)
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s %q", command.DefaultPrefix, c.RequestType, c.TaskDescription))
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

const header = `Session:    {{.SessionID}}
Command:    {{.Command}}
Status:     {{.Status}}{{if .Error}} ({{.Error}}){{end}}
Duration:   {{.Duration}}
Items:      {{.Counts.Total}}
Completed:  {{.Counts.Completed}}
Failed:     {{.Counts.Failed}}
Pending:    {{.Counts.Pending}}
{{- if .Template}}
Template:   {{.Template}}
{{- end}}
`

const logSection = `{{if .Log}}
Recent log:
{{range .Log}}  {{.}}
{{end}}{{end}}`

const summaryLayout = header + logSection

const detailedLayout = header + `
Work items:
{{range .Items}}  {{printf "%2d" .Index}}. [{{.Status}}] {{.Agent}} (stage {{.Stage}}{{if .Group}}, {{.Group}}{{end}}{{if gt .Attempts 1}}, {{.Attempts}} attempts{{end}}{{if .Duration}}, {{.Duration}}{{end}})
{{- if .Error}}
      error: {{.Error}}
{{- else if .Result}}
      {{.Result}}
{{- end}}
{{end}}` + logSection

const executiveLayout = `{{.Request}}: {{.Task}}
Session {{.SessionID}} {{.Status}} in {{.Duration}}: {{.Counts.Completed}}/{{.Counts.Total}} completed, {{.Counts.Failed}} failed, {{.Counts.Pending}} pending
Session:    {{.SessionID}}
Command:    {{.Command}}
Status:     {{.Status}}
Duration:   {{.Duration}}
Items:      {{.Counts.Total}}
Completed:  {{.Counts.Completed}}
Failed:     {{.Counts.Failed}}
Pending:    {{.Counts.Pending}}
` + logSection

var layouts = map[command.OutputFormat]*template.Template{
	command.OutputSummary:   template.Must(template.New("summary").Parse(summaryLayout)),
	command.OutputDetailed:  template.Must(template.New("detailed").Parse(detailedLayout)),
	command.OutputExecutive: template.Must(template.New("executive").Parse(executiveLayout)),
}

// Render writes the report for snap in the given format. An empty or
// unknown format renders the summary layout.
func Render(w io.Writer, snap session.Snapshot, format command.OutputFormat, tail int) error {
	tmpl, ok := layouts[format]
	if !ok {
		tmpl = layouts[command.OutputSummary]
	}
	if err := tmpl.Execute(w, NewData(snap, tail)); err != nil {
		return fmt.Errorf("failed to render %s report: %w", tmpl.Name(), err)
	}
	return nil
}

// String renders the report into a string.
func String(snap session.Snapshot, format command.OutputFormat, tail int) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, snap, format, tail); err != nil {
		return "", err
	}
	return buf.String(), nil
}
