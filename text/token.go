package text

import "unicode"

type tokenType int

const (
	tokLParen tokenType = iota
	tokRParen
	tokIdent
	tokNumber
)

func (t tokenType) String() string {
	switch t {
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	}
	return "unknown"
}

type token struct {
	value string
	typ   tokenType
	line  int
}

// tokenize splits directive source into s-expression tokens. The
// syntax follows WAT conventions: ";;" line comments, "(;" ";)" block
// comments, "@"-prefixed directive names and "$"-prefixed symbolic
// indices are identifiers.
func tokenize(input string) []token {
	var tokens []token
	line := 1
	runes := []rune(input)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' {
			line++
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}

		// Line comment
		if r == ';' && i+1 < len(runes) && runes[i+1] == ';' {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			line++
			continue
		}

		// Block comment or left paren
		if r == '(' {
			if i+1 < len(runes) && runes[i+1] == ';' {
				depth := 1
				i += 2
				for i < len(runes) && depth > 0 {
					if runes[i] == '(' && i+1 < len(runes) && runes[i+1] == ';' {
						depth++
						i++
					} else if runes[i] == ';' && i+1 < len(runes) && runes[i+1] == ')' {
						depth--
						i++
					} else if runes[i] == '\n' {
						line++
					}
					i++
				}
				i--
				continue
			}
			tokens = append(tokens, token{"(", tokLParen, line})
			continue
		}

		if r == ')' {
			tokens = append(tokens, token{")", tokRParen, line})
			continue
		}

		// Number (possibly fractional or in scientific notation)
		if unicode.IsDigit(r) || ((r == '-' || r == '+') && i+1 < len(runes) && unicode.IsDigit(runes[i+1])) {
			start := i
			i++
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.' || runes[i] == 'e' || runes[i] == 'E' ||
				((runes[i] == '-' || runes[i] == '+') && (runes[i-1] == 'e' || runes[i-1] == 'E')) ||
				runes[i] == '_' || runes[i] == 'x' || isHexDigit(runes[i])) {
				i++
			}
			tokens = append(tokens, token{string(runes[start:i]), tokNumber, line})
			i--
			continue
		}

		// Identifier: directive names, field names, sentinels,
		// symbolic function references
		if isIdentStart(r) {
			start := i
			i++
			for i < len(runes) && isIdentRune(runes[i]) {
				i++
			}
			tokens = append(tokens, token{string(runes[start:i]), tokIdent, line})
			i--
			continue
		}

		// Anything else is kept as a one-rune identifier so the parser
		// can report it.
		tokens = append(tokens, token{string(r), tokIdent, line})
	}

	return tokens
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '@' || r == '$' || r == '_'
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-'
}

func isHexDigit(r rune) bool {
	return (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
