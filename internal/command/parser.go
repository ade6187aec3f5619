package command

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Iron-Ham/cook/internal/errors"
)

// Long option names, without the leading "--".
const (
	optTeam     = "team"
	optPriority = "priority"
	optOutput   = "output"
	optParallel = "parallel"
	optAgents   = "agents"
	optTemplate = "template"
	optQuick    = "quick"
	optDeep     = "deep"
)

// valueOptions take an argument; the rest are boolean switches.
var valueOptions = []string{optTeam, optPriority, optOutput, optAgents, optTemplate}

var switchOptions = []string{optParallel, optQuick, optDeep}

// LongOptions returns every recognized long option name without dashes.
func LongOptions() []string {
	return append(slices.Clone(valueOptions), switchOptions...)
}

// shortOptions are fixed shorthands that do not take a value.
var shortOptions = map[string]func(*Options){
	"-t": func(o *Options) { o.Team = TeamFull },
	"-p": func(o *Options) { o.Priority = PriorityMedium },
	"-o": func(o *Options) { o.Output = OutputSummary },
}

// Parser turns raw command strings into Commands.
// It holds no mutable state and is safe for concurrent use.
type Parser struct {
	prefix string
	now    func() time.Time
	newID  func() string
}

// NewParser returns a Parser for commands starting with prefix.
// An empty prefix means DefaultPrefix.
func NewParser(prefix string) *Parser {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Parser{
		prefix: prefix,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Prefix returns the command prefix this parser accepts.
func (p *Parser) Prefix() string {
	return p.prefix
}

// Parse validates input and returns the Command it describes. All failures
// are *errors.ParseError values.
func (p *Parser) Parse(input string) (Command, error) {
	trimmed := strings.TrimLeftFunc(input, unicode.IsSpace)
	if !strings.HasPrefix(trimmed, p.prefix) {
		return Command{}, errors.NewParseError(errors.KindNotACommand,
			fmt.Sprintf("command must start with %s", p.prefix)).WithValue(firstWord(trimmed))
	}
	rest := trimmed[len(p.prefix):]
	if r, _ := utf8.DecodeRuneInString(rest); rest != "" && !unicode.IsSpace(r) {
		return Command{}, errors.NewParseError(errors.KindNotACommand,
			fmt.Sprintf("command must start with %s", p.prefix)).WithValue(firstWord(trimmed))
	}

	tokens := Tokenize(rest)
	cmd := Command{
		ID:        p.newID(),
		CreatedAt: p.now(),
		Raw:       strings.TrimSpace(input),
	}

	if len(tokens) > 0 && !tokens[0].Quoted {
		switch tokens[0].Text {
		case "help", "--help", "-h":
			cmd.TaskDescription = helpSentinel
			return cmd, nil
		case "list", "--list", "-l":
			cmd.TaskDescription = listSentinel
			return cmd, nil
		}
	}

	var (
		description []string
		descStarted bool
		strayWord   string
	)

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if !tok.Quoted && isLongOption(tok.Text) {
			consumed, err := parseLongOption(tokens, i, &cmd.Options)
			if err != nil {
				return Command{}, err
			}
			i += consumed
			continue
		}
		if !tok.Quoted && isShortOption(tok.Text) {
			apply, ok := shortOptions[tok.Text]
			if !ok {
				return Command{}, errors.NewParseError(errors.KindUnknownShortOption, "unknown short option").
					WithToken(tok.Text).
					WithValid(shortOptionNames()...)
			}
			apply(&cmd.Options)
			continue
		}

		if !descStarted && cmd.RequestType == "" && !tok.Quoted {
			if rt, ok := ParseRequestType(tok.Text); ok {
				cmd.RequestType = rt
				continue
			}
		}
		if tok.Text == "" {
			continue
		}
		if !descStarted && cmd.RequestType == "" && !tok.Quoted {
			strayWord = tok.Text
		}
		descStarted = true
		description = append(description, tok.Text)
	}

	if cmd.RequestType == "" {
		return Command{}, errors.NewParseError(errors.KindMissingRequestType, "missing request type").
			WithValue(strayWord).
			WithValid(requestTypeNames()...).
			WithSuggestions(suggest(strayWord, requestTypeNames())...)
	}

	cmd.TaskDescription = strings.Join(description, " ")
	if strings.TrimSpace(cmd.TaskDescription) == "" {
		return Command{}, errors.NewParseError(errors.KindMissingTaskDescription,
			fmt.Sprintf("missing task description for %s", cmd.RequestType))
	}

	return cmd, nil
}

func isLongOption(s string) bool {
	return len(s) > 2 && strings.HasPrefix(s, "--")
}

func isShortOption(s string) bool {
	return len(s) > 1 && s[0] == '-' && !strings.HasPrefix(s, "--")
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

// parseLongOption applies tokens[i] to opts and returns how many following
// tokens it consumed as a value.
func parseLongOption(tokens []Token, i int, opts *Options) (int, error) {
	tok := tokens[i].Text
	name, inline, hasInline := strings.Cut(tok[2:], "=")

	if slices.Contains(switchOptions, name) {
		if hasInline {
			return 0, errors.NewParseError(errors.KindInvalidOptionValue, "option takes no value").
				WithToken("--" + name).
				WithValue(inline)
		}
		switch name {
		case optParallel:
			opts.Parallel = true
		case optQuick:
			opts.Quick = true
		case optDeep:
			opts.Deep = true
		}
		return 0, nil
	}

	if !slices.Contains(valueOptions, name) {
		suggestions := suggest(name, LongOptions())
		for j := range suggestions {
			suggestions[j] = "--" + suggestions[j]
		}
		return 0, errors.NewParseError(errors.KindUnknownOption, "unknown option").
			WithToken(tok).
			WithSuggestions(suggestions...)
	}

	value, consumed := inline, 0
	if !hasInline {
		if i+1 >= len(tokens) || (!tokens[i+1].Quoted && strings.HasPrefix(tokens[i+1].Text, "-") && len(tokens[i+1].Text) > 1) {
			return 0, errors.NewParseError(errors.KindInvalidOptionValue, "missing value").WithToken("--" + name)
		}
		value, consumed = tokens[i+1].Text, 1
	}

	if err := applyValue(name, value, opts); err != nil {
		return 0, err
	}
	return consumed, nil
}

func applyValue(name, value string, opts *Options) error {
	invalid := func(msg string, valid []string) error {
		return errors.NewParseError(errors.KindInvalidOptionValue, msg).
			WithToken("--" + name).
			WithValue(value).
			WithValid(valid...)
	}

	switch name {
	case optTeam:
		v := strings.ToLower(value)
		if !slices.Contains(teamValues(), v) {
			return invalid("invalid team", teamValues())
		}
		opts.Team = Team(v)
	case optPriority:
		v := strings.ToLower(value)
		if !slices.Contains(priorityValues(), v) {
			return invalid("invalid priority", priorityValues())
		}
		opts.Priority = Priority(v)
	case optOutput:
		v := strings.ToLower(value)
		if !slices.Contains(outputValues(), v) {
			return invalid("invalid output format", outputValues())
		}
		opts.Output = OutputFormat(v)
	case optAgents:
		agents := splitAgents(value)
		if len(agents) == 0 {
			return invalid("agent list is empty", nil)
		}
		opts.Agents = agents
	case optTemplate:
		v := strings.TrimSpace(value)
		if v == "" {
			return invalid("template name is empty", nil)
		}
		opts.Template = v
	}
	return nil
}

// splitAgents splits a comma list, trimming blanks and dropping duplicates.
func splitAgents(value string) []string {
	var agents []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" || slices.Contains(agents, part) {
			continue
		}
		agents = append(agents, part)
	}
	return agents
}

func shortOptionNames() []string {
	names := make([]string, 0, len(shortOptions))
	for k := range shortOptions {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
