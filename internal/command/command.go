// Package command parses "/cook" command strings into structured Commands.
package command

import (
	"slices"
	"time"
)

// DefaultPrefix is the token every command starts with unless configured otherwise.
const DefaultPrefix = "/cook"

// RequestType is the closed set of request kinds a command can ask for.
type RequestType string

const (
	RequestArchitecture   RequestType = "architecture"
	RequestImplementation RequestType = "implementation"
	RequestTesting        RequestType = "testing"
	RequestDocumentation  RequestType = "documentation"
	RequestOptimization   RequestType = "optimization"
	RequestCustom         RequestType = "custom"
)

// RequestTypes returns every request type in declaration order.
func RequestTypes() []RequestType {
	return []RequestType{
		RequestArchitecture,
		RequestImplementation,
		RequestTesting,
		RequestDocumentation,
		RequestOptimization,
		RequestCustom,
	}
}

// ParseRequestType reports whether s names a request type.
func ParseRequestType(s string) (RequestType, bool) {
	rt := RequestType(s)
	return rt, slices.Contains(RequestTypes(), rt)
}

// Team selects how much of the default role set is used.
type Team string

const (
	TeamFull   Team = "full"
	TeamMini   Team = "mini"
	TeamCustom Team = "custom"
)

// Priority is carried through to work items; the scheduler does not reorder by it.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// OutputFormat selects the report layout.
type OutputFormat string

const (
	OutputSummary   OutputFormat = "summary"
	OutputDetailed  OutputFormat = "detailed"
	OutputExecutive OutputFormat = "executive"
)

func teamValues() []string {
	return []string{string(TeamFull), string(TeamMini), string(TeamCustom)}
}

func priorityValues() []string {
	return []string{string(PriorityHigh), string(PriorityMedium), string(PriorityLow)}
}

func outputValues() []string {
	return []string{string(OutputSummary), string(OutputDetailed), string(OutputExecutive)}
}

// Options holds the recognized flags of a command. Zero values mean the
// flag was not given.
type Options struct {
	Team     Team
	Priority Priority
	Output   OutputFormat
	Parallel bool
	Agents   []string
	Template string
	Quick    bool
	Deep     bool
}

// OutputOrDefault returns the requested output format, or summary.
func (o Options) OutputOrDefault() OutputFormat {
	if o.Output == "" {
		return OutputSummary
	}
	return o.Output
}

// Command is one parsed invocation. It is never modified after Parse
// returns it; Options.Agents must be treated as read-only.
type Command struct {
	ID              string
	RequestType     RequestType
	TaskDescription string
	Options         Options
	CreatedAt       time.Time
	Raw             string
}

const (
	helpSentinel = "help"
	listSentinel = "list"
)

// IsHelp reports whether c is the sentinel produced by --help / -h.
func (c Command) IsHelp() bool {
	return c.RequestType == "" && c.TaskDescription == helpSentinel
}

// IsList reports whether c is the sentinel produced by --list / -l.
func (c Command) IsList() bool {
	return c.RequestType == "" && c.TaskDescription == listSentinel
}
