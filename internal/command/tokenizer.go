package command

import (
	"strings"
	"unicode"
)

// Token is one shell-like word. Quoted is set when any part of the word
// came from a double-quoted span; such tokens are never treated as options.
type Token struct {
	Text   string
	Quoted bool
}

// Tokenize splits s on whitespace. Double quotes group words and are
// stripped, and a backslash escapes the next character inside or outside
// quotes. An unterminated quote closes at the end of input.
func Tokenize(s string) []Token {
	var (
		tokens  []Token
		cur     strings.Builder
		inWord  bool
		quoted  bool
		inQuote bool
		escape  bool
	)

	flush := func() {
		if inWord {
			tokens = append(tokens, Token{Text: cur.String(), Quoted: quoted})
		}
		cur.Reset()
		inWord, quoted = false, false
	}

	for _, r := range s {
		switch {
		case escape:
			cur.WriteRune(r)
			escape = false
		case r == '\\':
			inWord = true
			escape = true
		case r == '"':
			inWord, quoted = true, true
			inQuote = !inQuote
		case unicode.IsSpace(r) && !inQuote:
			flush()
		default:
			inWord = true
			cur.WriteRune(r)
		}
	}
	if escape {
		// A trailing backslash has nothing to escape; keep it literally.
		cur.WriteRune('\\')
	}
	flush()

	return tokens
}
