package gradle

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/santiagomed/modkit/fs"
	"github.com/santiagomed/modkit/merge"
)

// AppBuildFile is the app module build script relative to the project root.
const AppBuildFile = "app/build.gradle.kts"

var (
	projectDepRe  = regexp.MustCompile(`project\(\s*["'](:[^"']+)["']\s*\)`)
	accessorDepRe = regexp.MustCompile(`\bprojects\.([A-Za-z0-9_.]+)`)
	// top level only: nested buildscript dependencies are indented.
	dependenciesRe = regexp.MustCompile(`^dependencies\s*\{`)
)

// DependencyKeys keys a dependency line on the project path it references,
// whether written as project(":a:b") or as the projects.a.b accessor. The
// configuration (implementation, api, ...) is not part of the identity.
func DependencyKeys(line string) []string {
	var keys []string
	for _, m := range projectDepRe.FindAllStringSubmatch(line, -1) {
		keys = append(keys, m[1])
	}
	for _, m := range accessorDepRe.FindAllStringSubmatch(line, -1) {
		keys = append(keys, accessorPath(m[1]))
	}
	return keys
}

// accessorPath maps projects.app.checkoutApi back to ":app:checkout-api".
func accessorPath(accessor string) string {
	parts := strings.Split(accessor, ".")
	for i, p := range parts {
		var b strings.Builder
		for j, r := range p {
			if j > 0 && unicode.IsUpper(r) {
				b.WriteRune('-')
			}
			b.WriteRune(unicode.ToLower(r))
		}
		parts[i] = b.String()
	}
	return ":" + strings.Join(parts, ":")
}

// ProjectDependencies merges project dependencies into the top-level
// dependencies block, appending one when missing.
var ProjectDependencies = merge.Target{
	Name:   "project dependency",
	Keys:   DependencyKeys,
	Locate: merge.BraceBlock(dependenciesRe),
	Wrap: func(body []string) []string {
		out := []string{"dependencies {"}
		for _, l := range body {
			out = append(out, "    "+l)
		}
		return append(out, "}")
	},
}

// EnsureProjectDependencies declares configuration(project(path)) for every
// module path in the build script at buildFile.
func EnsureProjectDependencies(fsys *fs.FileSystem, buildFile, configuration string, modulePaths []string) (merge.Outcome, error) {
	if configuration == "" {
		configuration = "implementation"
	}
	entries := make([]merge.Entry, 0, len(modulePaths))
	for _, p := range modulePaths {
		entries = append(entries, merge.Line(p, fmt.Sprintf("%s(project(%q))", configuration, p)))
	}
	return merge.File(fsys, buildFile, entries, ProjectDependencies)
}
