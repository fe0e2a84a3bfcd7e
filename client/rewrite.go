package client

import (
	"strings"

	"github.com/shrek82/jsql/dialect"
)

// rewriteNamed replaces @name placeholders in text with the dialect's
// positional placeholders and returns the argument list in encounter order.
// A parameter referenced more than once is bound once per occurrence; bound
// parameters the text never references are simply not sent. Tokens inside
// single-quoted literals and @tokens that match no bound parameter
// (e.g. @@version) are left untouched.
func rewriteNamed(text string, params []Param, d dialect.Dialect) (string, []any, error) {
	byName := make(map[string]Param, len(params))
	for _, p := range params {
		byName[p.Name] = p
	}

	var sb strings.Builder
	var args []any
	index := 0
	inLiteral := false

	for i := 0; i < len(text); {
		ch := text[i]
		if ch == '\'' {
			inLiteral = !inLiteral
			sb.WriteByte(ch)
			i++
			continue
		}
		if inLiteral || ch != '@' {
			sb.WriteByte(ch)
			i++
			continue
		}

		j := i + 1
		for j < len(text) && isNameByte(text[j]) {
			j++
		}
		name := text[i+1 : j]
		p, ok := byName[name]
		if name == "" || !ok {
			sb.WriteString(text[i:j])
			i = j
			continue
		}

		index++
		sb.WriteString(d.Placeholder(index))
		args = append(args, p.Value)
		i = j
	}

	return sb.String(), args, nil
}

func isNameByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
