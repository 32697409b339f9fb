package merge

import (
	"regexp"
	"strings"
)

// LastMatch locates the line after the statement starting on the last line
// matching re, keeping that line's indentation, so a wrapped include(...)
// call is never split. When nothing matches re, each fallback is tried in
// turn. The block spans the whole document.
func LastMatch(re *regexp.Regexp, fallbacks ...*regexp.Regexp) Locator {
	return func(lines []string) ([]string, Block, bool) {
		for _, r := range append([]*regexp.Regexp{re}, fallbacks...) {
			last := -1
			for i, l := range lines {
				if r.MatchString(l) {
					last = i
				}
			}
			if last < 0 {
				continue
			}
			return lines, Block{
				Start:    0,
				End:      len(lines),
				Insert:   statementEnd(lines, last) + 1,
				Indent:   leadingSpace(lines[last]),
				NonEmpty: true,
			}, true
		}
		return lines, Block{}, false
	}
}

// Section locates a TOML table such as "[libraries]", also when written as
// "[ libraries ]" or followed by a comment. Entries are appended after the
// table's last non-blank line.
func Section(header string) Locator {
	want := tableHeader(header)
	return func(lines []string) ([]string, Block, bool) {
		start := -1
		for i, l := range lines {
			if tableHeader(l) == want {
				start = i
				break
			}
		}
		if start < 0 {
			return lines, Block{}, false
		}
		end := len(lines)
		for i := start + 1; i < len(lines); i++ {
			if strings.HasPrefix(strings.TrimSpace(lines[i]), "[") {
				end = i
				break
			}
		}
		insert := start + 1
		for i := end - 1; i > start; i-- {
			if strings.TrimSpace(lines[i]) != "" {
				insert = i + 1
				break
			}
		}
		return lines, Block{
			Start:    start + 1,
			End:      end,
			Insert:   insert,
			NonEmpty: insert > start+1,
		}, true
	}
}

// tableHeader drops a trailing comment and all whitespace from a TOML line.
func tableHeader(line string) string {
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}
	return strings.Join(strings.Fields(line), "")
}

// BraceBlock locates the first brace-delimited block whose opening line
// matches re. Entries go before the closing brace, indented one level deeper
// than the opening line.
func BraceBlock(re *regexp.Regexp) Locator {
	return braceBlock(re, false)
}

// BraceBlockHead is BraceBlock inserting right after the opening line.
func BraceBlockHead(re *regexp.Regexp) Locator {
	return braceBlock(re, true)
}

const indentUnit = "    "

func braceBlock(re *regexp.Regexp, atHead bool) Locator {
	return func(lines []string) ([]string, Block, bool) {
		for i, l := range lines {
			if !re.MatchString(l) || !strings.Contains(stripCode(l), "{") {
				continue
			}
			work := lines
			end, ok := matchingClose(lines, i)
			if !ok {
				return lines, Block{}, false
			}
			if end == i {
				// "dependencies { ... }" on one line: the body and the
				// closing brace get lines of their own so entries fit between.
				open, rest, _ := strings.Cut(l, "{")
				cut := strings.LastIndex(rest, "}")
				body, tail := strings.TrimSpace(rest[:cut]), strings.TrimSpace(rest[cut:])
				work = make([]string, 0, len(lines)+2)
				work = append(work, lines[:i]...)
				work = append(work, strings.TrimRight(open, " ")+" {")
				if body != "" {
					work = append(work, leadingSpace(l)+indentUnit+body)
				}
				end = len(work)
				work = append(work, leadingSpace(l)+tail)
				work = append(work, lines[i+1:]...)
			}
			b := Block{
				Start:  i + 1,
				End:    end,
				Insert: end,
				Indent: leadingSpace(l) + indentUnit,
			}
			for _, inner := range work[b.Start:b.End] {
				if strings.TrimSpace(inner) != "" {
					b.NonEmpty = true
					break
				}
			}
			if atHead {
				b.Insert = b.Start
			}
			return work, b, true
		}
		return lines, Block{}, false
	}
}

// matchingClose returns the index of the line holding the brace that closes
// the first brace opened on line open.
func matchingClose(lines []string, open int) (int, bool) {
	depth := 0
	opened := false
	for i := open; i < len(lines); i++ {
		for _, c := range stripCode(lines[i]) {
			switch c {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
				if opened && depth == 0 {
					return i, true
				}
			}
		}
	}
	return 0, false
}

// statementEnd returns the line on which the statement starting at line i
// ends: the first line where its parentheses are balanced again. An unclosed
// statement runs to the end of lines.
func statementEnd(lines []string, i int) int {
	depth := 0
	for j := i; j < len(lines); j++ {
		for _, c := range stripCode(lines[j]) {
			switch c {
			case '(':
				depth++
			case ')':
				depth--
			}
		}
		if depth <= 0 {
			return j
		}
	}
	return len(lines) - 1
}

// stripCode drops string literals and line comments so braces inside them
// are not counted.
func stripCode(line string) string {
	var b strings.Builder
	inString := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inString && c == '\\':
			i++
		case c == '"':
			inString = !inString
			b.WriteByte(c)
		case !inString && c == '/' && i+1 < len(line) && line[i+1] == '/':
			return b.String()
		case !inString:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func leadingSpace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
