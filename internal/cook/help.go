package cook

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/cook/internal/command"
	"github.com/Iron-Ham/cook/internal/plan"
	"github.com/Iron-Ham/cook/internal/templates"
)

// HelpText describes the command grammar.
func (c *Cook) HelpText() string {
	p := c.parser.Prefix()
	types := make([]string, 0, len(command.RequestTypes()))
	for _, rt := range command.RequestTypes() {
		types = append(types, string(rt))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Usage: %s <request-type> \"<task description>\" [options]\n", p)
	fmt.Fprintf(&b, "       %s help | %s list\n\n", p, p)
	fmt.Fprintf(&b, "Request types: %s\n\n", strings.Join(types, ", "))
	b.WriteString("Options:\n")
	b.WriteString("  --team full|mini|custom            team label (custom requires --agents)\n")
	b.WriteString("  --priority high|medium|low         priority passed to every agent\n")
	b.WriteString("  --output summary|detailed|executive report layout\n")
	b.WriteString("  --parallel                         run every step in one parallel stage\n")
	b.WriteString("  --agents a,b,c                     explicit agent list\n")
	b.WriteString("  --template name                    use a named template\n")
	b.WriteString("  --quick | --deep                   analysis depth (--deep wins)\n")
	b.WriteString("  -t | -p | -o                       shorthand for --team full, --priority medium, --output summary\n\n")
	fmt.Fprintf(&b, "Example: %s architecture \"Design the billing API\" --team mini --parallel\n", p)
	return b.String()
}

// ListText lists request types with their default agents, followed by the
// available templates.
func (c *Cook) ListText() string {
	var b strings.Builder
	b.WriteString("Request types:\n")
	for _, rt := range command.RequestTypes() {
		roles := plan.DefaultRoles(rt)
		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = r.String()
		}
		fmt.Fprintf(&b, "  %-15s %s\n", rt, strings.Join(names, ", "))
	}

	b.WriteString("\nTemplates:\n")
	names := c.TemplateNames()
	if len(names) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, n := range names {
		desc := ""
		if t, ok := c.templates.Resolve(n); ok && t.Description != "" {
			desc = t.Description
		}
		fmt.Fprintf(&b, "  %-20s %s\n", n, desc)
	}
	return strings.TrimRight(b.String(), " \n") + "\n"
}

// TemplateNames returns the names the template provider can enumerate.
func (c *Cook) TemplateNames() []string {
	if l, ok := c.templates.(templates.Lister); ok {
		return l.Names()
	}
	return nil
}
