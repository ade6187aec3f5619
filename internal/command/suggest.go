package command

import "github.com/sahilm/fuzzy"

const maxSuggestions = 3

// suggest returns up to three candidates that contain pattern's characters
// in order, best match first.
func suggest(pattern string, candidates []string) []string {
	if pattern == "" {
		return nil
	}
	matches := fuzzy.Find(pattern, candidates)
	out := make([]string, 0, min(len(matches), maxSuggestions))
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

func requestTypeNames() []string {
	types := RequestTypes()
	names := make([]string, len(types))
	for i, rt := range types {
		names[i] = string(rt)
	}
	return names
}
