package analyzer

import "strings"

// Normalize blanks out string-literal bodies and comments in SQL text so
// that downstream keyword matching never fires on quoted or commented
// content. It is total over any input, pure, and idempotent.
//
// Quoted content (single or double) is replaced character by character with
// spaces, quote characters included, so byte positions outside the literal
// are preserved. A `--` line comment is blanked through the next newline,
// with the newline itself kept. A `/* ... */` block comment collapses to a
// single space; an unterminated block comment consumes the rest of the
// input and contributes no replacement character.
func Normalize(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))

	inSingle := false
	inDouble := false

	for i := 0; i < len(sql); i++ {
		c := sql[i]

		switch {
		case inSingle:
			if c == '\'' {
				inSingle = false
			}
			b.WriteByte(' ')

		case inDouble:
			if c == '"' {
				inDouble = false
			}
			b.WriteByte(' ')

		case c == '\'':
			inSingle = true
			b.WriteByte(' ')

		case c == '"':
			inDouble = true
			b.WriteByte(' ')

		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			for i < len(sql) && sql[i] != '\n' {
				b.WriteByte(' ')
				i++
			}
			if i < len(sql) {
				b.WriteByte('\n')
			}

		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			i += 2
			terminated := false
			for i < len(sql) {
				if sql[i] == '*' && i+1 < len(sql) && sql[i+1] == '/' {
					i++
					terminated = true
					break
				}
				i++
			}
			if terminated {
				b.WriteByte(' ')
			}

		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}
