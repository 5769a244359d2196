package sql

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokenIdent tokenKind = iota
	tokenNumber
	tokenString
	tokenSymbol
	tokenEOF
)

type token struct {
	kind tokenKind
	text string
}

// tokenize splits query into identifiers, integer literals, single-quoted
// string literals and the symbols the grammar knows about. Keywords stay
// plain identifiers; the parser matches them case-insensitively.
func tokenize(query string) ([]token, error) {
	tokens := []token{}
	runes := []rune(query)
	i := 0

	for i < len(runes) {
		c := runes[i]

		switch {
		case unicode.IsSpace(c):
			i++
		case c == '\'':
			i++
			start := i
			for i < len(runes) && runes[i] != '\'' {
				i++
			}
			if i == len(runes) {
				return nil, fmt.Errorf("unterminated string literal")
			}
			tokens = append(tokens, token{tokenString, string(runes[start:i])})
			i++
		case unicode.IsDigit(c) || (c == '-' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			start := i
			i++
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
			tokens = append(tokens, token{tokenNumber, string(runes[start:i])})
		case unicode.IsLetter(c) || c == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, token{tokenIdent, string(runes[start:i])})
		case c == '|':
			if i+1 < len(runes) && runes[i+1] == '|' {
				tokens = append(tokens, token{tokenSymbol, "||"})
				i += 2
			} else {
				return nil, fmt.Errorf("unexpected character %q", c)
			}
		case strings.ContainsRune("(),*=<>+;", c):
			tokens = append(tokens, token{tokenSymbol, string(c)})
			i++
		default:
			return nil, fmt.Errorf("unexpected character %q", c)
		}
	}

	tokens = append(tokens, token{tokenEOF, ""})
	return tokens, nil
}

func (t token) isKeyword(word string) bool {
	return t.kind == tokenIdent && strings.EqualFold(t.text, word)
}

func (t token) isSymbol(sym string) bool {
	return t.kind == tokenSymbol && t.text == sym
}
