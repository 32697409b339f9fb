// Package merge decides whether declarations are already present in a text
// file and, when they are not, inserts them with a minimal edit.
//
// Every call site (settings includes, version catalog aliases, dependency
// blocks, DI bindings) supplies a Target describing how entries are
// identified and where they live; the decide/insert algorithm is shared.
package merge

import (
	"fmt"
	"strings"

	"github.com/santiagomed/modkit/fs"
)

// Status is the outcome of merging into one file.
type Status int

const (
	Unchanged Status = iota
	Created
	Merged
)

func (s Status) String() string {
	switch s {
	case Created:
		return "created"
	case Merged:
		return "merged"
	default:
		return "unchanged"
	}
}

// Outcome reports what happened to one merge target.
type Outcome struct {
	Path   string
	Status Status
	Added  []string
}

// Changed reports whether the file was written.
func (o Outcome) Changed() bool {
	return o.Status != Unchanged
}

// Entry is one declaration to ensure. Key is its identity as returned by the
// target's Keys function; Lines is the rendered declaration without indentation.
type Entry struct {
	Key   string
	Lines []string
}

// Line builds a single-line entry.
func Line(key, line string) Entry {
	return Entry{Key: key, Lines: []string{line}}
}

// Block is the region of a document holding a target's entries. Start and End
// are line indices, End exclusive. New entries go before line Insert, prefixed
// with Indent.
type Block struct {
	Start  int
	End    int
	Insert int
	Indent string
	// NonEmpty is set when the block already holds declarations.
	NonEmpty bool
}

// Locator finds the block in lines. It may return a reshaped copy of lines
// (e.g. "dependencies {}" split in two) that insertion should operate on.
type Locator func(lines []string) ([]string, Block, bool)

// Target describes one kind of merge.
type Target struct {
	Name string

	// Keys returns the identities a statement declares. A statement is one
	// line, or several joined when a parenthesis spans them (see Statements).
	// Defaults to the statement with whitespace collapsed.
	Keys func(line string) []string

	// Locate finds the block entries belong to. Nil means the whole file.
	Locate Locator

	// Global scans the whole document for keys even when a block is found.
	Global bool

	// Wrap renders a fresh block around entry lines when no block is found.
	// Defaults to the lines themselves.
	Wrap func(body []string) []string

	// Prepend places a fresh block at the top of the document instead of the end.
	Prepend bool

	// Create renders a whole new document. Defaults to Wrap.
	Create func(body []string) []string

	// Separate puts a blank line before each inserted entry when the block
	// already has content. Used for multi-line declarations.
	Separate bool
}

// Result is the computed edit for one document.
type Result struct {
	Status Status
	Text   string
	Added  []string
}

// Apply merges entries into existing. present is false when the file does
// not exist yet. When every entry key is already declared the result is
// Unchanged and Text is existing byte for byte; a declaration with the same
// key but different content is kept as is.
func Apply(existing string, present bool, entries []Entry, t Target) Result {
	entries = dedupe(entries)
	keys := t.Keys
	if keys == nil {
		keys = NormalizedLine
	}

	if !present {
		create := t.Create
		if create == nil {
			create = t.wrap
		}
		return Result{
			Status: Created,
			Text:   joinLines(create(flatten(entries))),
			Added:  entryKeys(entries),
		}
	}

	lines := splitLines(existing)
	work, block, found := lines, Block{End: len(lines), Insert: len(lines)}, false
	if t.Locate != nil {
		work, block, found = t.Locate(lines)
	}

	scan := lines
	if found && !t.Global {
		scan = work[block.Start:block.End]
	}
	declared := make(map[string]bool)
	for _, stmt := range Statements(scan) {
		for _, k := range keys(stmt) {
			declared[k] = true
		}
	}

	var missing []Entry
	for _, e := range entries {
		if !declared[e.Key] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return Result{Status: Unchanged, Text: existing}
	}

	var out []string
	if found {
		var insert []string
		nonEmpty := block.NonEmpty
		for _, e := range missing {
			if t.Separate && nonEmpty {
				insert = append(insert, "")
			}
			for _, l := range e.Lines {
				insert = append(insert, indent(block.Indent, l))
			}
			nonEmpty = true
		}
		out = make([]string, 0, len(work)+len(insert))
		out = append(out, work[:block.Insert]...)
		out = append(out, insert...)
		out = append(out, work[block.Insert:]...)
	} else {
		fresh := t.wrap(flatten(missing))
		body := trimTrailingBlank(lines)
		switch {
		case len(body) == 0:
			out = fresh
		case t.Prepend:
			out = append(append(fresh, ""), lines...)
		default:
			out = append(append(body, ""), fresh...)
		}
	}

	return Result{Status: Merged, Text: joinLines(out), Added: entryKeys(missing)}
}

// Locates reports whether text holds the target's block. A target without a
// locator spans any text.
func (t Target) Locates(text string) bool {
	if t.Locate == nil {
		return true
	}
	_, _, found := t.Locate(splitLines(text))
	return found
}

// Statements groups lines into statements. A line that leaves a parenthesis
// open continues on the following lines until it closes; the lines of one
// statement are trimmed and joined with single spaces.
func Statements(lines []string) []string {
	var out []string
	for i := 0; i < len(lines); {
		end := statementEnd(lines, i)
		parts := make([]string, 0, end-i+1)
		for _, l := range lines[i : end+1] {
			parts = append(parts, strings.TrimSpace(l))
		}
		out = append(out, strings.Join(parts, " "))
		i = end + 1
	}
	return out
}

// File applies a merge to the file at path through the file system
// collaborator. Nothing is written when the outcome is Unchanged.
func File(fsys *fs.FileSystem, path string, entries []Entry, t Target) (Outcome, error) {
	existing, present, err := fsys.ReadText(path)
	if err != nil {
		return Outcome{Path: path}, err
	}
	res := Apply(existing, present, entries, t)
	if res.Status == Unchanged {
		return Outcome{Path: path, Status: Unchanged}, nil
	}
	if _, err := fsys.WriteText(path, res.Text, true); err != nil {
		return Outcome{Path: path}, fmt.Errorf("failed to merge %s into %s: %w", t.Name, path, err)
	}
	return Outcome{Path: path, Status: res.Status, Added: res.Added}, nil
}

// NormalizedLine is the default identity: the trimmed line with inner
// whitespace collapsed. Blank lines declare nothing.
func NormalizedLine(line string) []string {
	f := strings.Fields(line)
	if len(f) == 0 {
		return nil
	}
	return []string{strings.Join(f, " ")}
}

func (t Target) wrap(body []string) []string {
	if t.Wrap == nil {
		return body
	}
	return t.Wrap(body)
}

func dedupe(entries []Entry) []Entry {
	seen := make(map[string]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if seen[e.Key] {
			continue
		}
		seen[e.Key] = true
		out = append(out, e)
	}
	return out
}

func flatten(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Lines...)
	}
	return out
}

func entryKeys(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key)
	}
	return out
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func trimTrailingBlank(lines []string) []string {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return append([]string(nil), lines[:end]...)
}

func indent(prefix, line string) string {
	if strings.TrimSpace(line) == "" {
		return ""
	}
	return prefix + line
}
