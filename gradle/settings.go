// Package gradle keeps Gradle build configuration in step with generated
// modules: settings includes, composite builds, the version catalog and
// project dependencies.
package gradle

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/santiagomed/modkit/fs"
	"github.com/santiagomed/modkit/merge"
)

const (
	SettingsFile = "settings.gradle.kts"
	BuildLogic   = "build-logic"
)

var (
	includeRe      = regexp.MustCompile(`^\s*include\b`)
	projectPathRe  = regexp.MustCompile(`["'](:[^"']+)["']`)
	includeBuildRe = regexp.MustCompile(`includeBuild\(\s*["']([^"']+)["']\s*\)`)
	pluginMgmtRe   = regexp.MustCompile(`^\s*pluginManagement\b`)
)

// ModulePath builds a Gradle project path such as ":app:checkout:domain".
func ModulePath(segments ...string) string {
	var parts []string
	for _, s := range segments {
		for _, p := range strings.Split(strings.Trim(s, ":/"), ":") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
	}
	return ":" + strings.Join(parts, ":")
}

// ModuleDir converts a project path to its directory relative to the root.
func ModuleDir(modulePath string) string {
	return strings.ReplaceAll(strings.Trim(modulePath, ":"), ":", "/")
}

// IncludeKeys returns every project path an include(...) statement declares.
func IncludeKeys(line string) []string {
	if !includeRe.MatchString(line) {
		return nil
	}
	var keys []string
	for _, m := range projectPathRe.FindAllStringSubmatch(line, -1) {
		keys = append(keys, m[1])
	}
	return keys
}

// SettingsIncludes merges include(...) lines after the last existing include.
var SettingsIncludes = merge.Target{
	Name:   "settings include",
	Keys:   IncludeKeys,
	Locate: merge.LastMatch(includeRe),
	Global: true,
}

// IncludeBuildKeys returns the build path an includeBuild(...) line declares.
func IncludeBuildKeys(line string) []string {
	if m := includeBuildRe.FindStringSubmatch(line); m != nil {
		return []string{m[1]}
	}
	return nil
}

// IncludeBuild merges includeBuild(...) as the first statement of
// pluginManagement, creating that block at the top of the file if needed.
var IncludeBuild = merge.Target{
	Name:    "composite build include",
	Keys:    IncludeBuildKeys,
	Locate:  merge.BraceBlockHead(pluginMgmtRe),
	Global:  true,
	Prepend: true,
	Wrap: func(body []string) []string {
		out := []string{"pluginManagement {"}
		for _, l := range body {
			out = append(out, "    "+l)
		}
		return append(out, "}")
	},
}

// EnsureIncludes declares root:feature:layer for each layer in the settings
// file under base.
func EnsureIncludes(fsys *fs.FileSystem, base, root, feature string, layers []string) (merge.Outcome, error) {
	paths := make([]string, 0, len(layers))
	for _, layer := range layers {
		paths = append(paths, ModulePath(root, feature, layer))
	}
	return EnsureModuleIncludes(fsys, base, paths)
}

// EnsureModuleIncludes declares each project path in the settings file under base.
func EnsureModuleIncludes(fsys *fs.FileSystem, base string, modulePaths []string) (merge.Outcome, error) {
	entries := make([]merge.Entry, 0, len(modulePaths))
	for _, p := range modulePaths {
		entries = append(entries, merge.Line(p, fmt.Sprintf("include(%q)", p)))
	}
	return merge.File(fsys, path.Join(base, SettingsFile), entries, SettingsIncludes)
}

// EnsureIncludeBuild declares includeBuild(buildPath) in the settings file under base.
func EnsureIncludeBuild(fsys *fs.FileSystem, base, buildPath string) (merge.Outcome, error) {
	entry := merge.Line(buildPath, fmt.Sprintf("includeBuild(%q)", buildPath))
	return merge.File(fsys, path.Join(base, SettingsFile), []merge.Entry{entry}, IncludeBuild)
}
