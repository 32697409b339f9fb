package gradle

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/santiagomed/modkit/fs"
	"github.com/santiagomed/modkit/merge"
)

const CatalogFile = "gradle/libs.versions.toml"

var aliasRe = regexp.MustCompile(`^\s*([A-Za-z0-9_.-]+)\s*=`)

// Gradle treats '-', '_' and '.' in aliases as the same separator.
var aliasSeparators = strings.NewReplacer("-", ".", "_", ".")

// AliasKey is the identity of a catalog alias: "hilt_android", "hilt-android"
// and "hilt.android" all declare "hilt.android".
func AliasKey(alias string) string {
	return aliasSeparators.Replace(alias)
}

// Version is a [versions] entry.
type Version struct {
	Alias string
	Value string
}

func (v Version) line() string {
	return fmt.Sprintf("%s = %q", v.Alias, v.Value)
}

// Library is a [libraries] entry referencing a version alias.
type Library struct {
	Alias      string
	Module     string
	VersionRef string
}

func (l Library) line() string {
	if l.VersionRef == "" {
		return fmt.Sprintf("%s = { module = %q }", l.Alias, l.Module)
	}
	return fmt.Sprintf("%s = { module = %q, version.ref = %q }", l.Alias, l.Module, l.VersionRef)
}

// Plugin is a [plugins] entry referencing a version alias.
type Plugin struct {
	Alias      string
	ID         string
	VersionRef string
}

func (p Plugin) line() string {
	if p.VersionRef == "" {
		return fmt.Sprintf("%s = { id = %q }", p.Alias, p.ID)
	}
	return fmt.Sprintf("%s = { id = %q, version.ref = %q }", p.Alias, p.ID, p.VersionRef)
}

// CatalogEntries is everything one generator needs declared in the catalog.
type CatalogEntries struct {
	Versions  []Version
	Libraries []Library
	Plugins   []Plugin
}

func (c CatalogEntries) Empty() bool {
	return len(c.Versions) == 0 && len(c.Libraries) == 0 && len(c.Plugins) == 0
}

// AliasKeys keys a catalog line on its normalized alias.
func AliasKeys(line string) []string {
	if m := aliasRe.FindStringSubmatch(line); m != nil {
		return []string{AliasKey(m[1])}
	}
	return nil
}

// CatalogSection is the alias-keyed target for one TOML table. An alias that
// already exists wins over the requested declaration, whatever its version.
func CatalogSection(table string) merge.Target {
	header := "[" + table + "]"
	return merge.Target{
		Name:   "catalog " + table,
		Keys:   AliasKeys,
		Locate: merge.Section(header),
		Wrap: func(body []string) []string {
			return append([]string{header}, body...)
		},
	}
}

// EnsureCatalog merges versions, libraries and plugins into the version
// catalog under base, writing the file at most once.
func EnsureCatalog(fsys *fs.FileSystem, base string, c CatalogEntries) (merge.Outcome, error) {
	file := path.Join(base, CatalogFile)
	out := merge.Outcome{Path: file}
	if c.Empty() {
		return out, nil
	}

	existing, present, err := fsys.ReadText(file)
	if err != nil {
		return out, err
	}

	aliases := make(map[string]string)
	for _, v := range c.Versions {
		aliases[AliasKey(v.Alias)] = v.Alias
	}
	for _, l := range c.Libraries {
		aliases[AliasKey(l.Alias)] = l.Alias
	}
	for _, p := range c.Plugins {
		aliases[AliasKey(p.Alias)] = p.Alias
	}

	text := existing
	sections := []struct {
		table   string
		entries []merge.Entry
	}{
		{"versions", versionEntries(c.Versions)},
		{"libraries", libraryEntries(c.Libraries)},
		{"plugins", pluginEntries(c.Plugins)},
	}
	for _, s := range sections {
		if len(s.entries) == 0 {
			continue
		}
		res := merge.Apply(text, true, s.entries, CatalogSection(s.table))
		if res.Status != merge.Unchanged {
			text = res.Text
			for _, k := range res.Added {
				out.Added = append(out.Added, aliases[k])
			}
		}
	}

	if present && text == existing {
		return out, nil
	}
	if _, err := fsys.WriteText(file, text, true); err != nil {
		return merge.Outcome{Path: file}, fmt.Errorf("failed to update version catalog %s: %w", file, err)
	}
	out.Status = merge.Merged
	if !present {
		out.Status = merge.Created
	}
	return out, nil
}

func versionEntries(vs []Version) []merge.Entry {
	out := make([]merge.Entry, 0, len(vs))
	for _, v := range vs {
		out = append(out, merge.Line(AliasKey(v.Alias), v.line()))
	}
	return out
}

func libraryEntries(ls []Library) []merge.Entry {
	out := make([]merge.Entry, 0, len(ls))
	for _, l := range ls {
		out = append(out, merge.Line(AliasKey(l.Alias), l.line()))
	}
	return out
}

func pluginEntries(ps []Plugin) []merge.Entry {
	out := make([]merge.Entry, 0, len(ps))
	for _, p := range ps {
		out = append(out, merge.Line(AliasKey(p.Alias), p.line()))
	}
	return out
}
