// Package discovery answers questions about modules that already exist in a
// project: the package a module declares, and the repository and data source
// interfaces it defines. Answers are cached per module directory.
package discovery

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/santiagomed/modkit/fs"
)

const (
	DefaultCacheSize = 256
	buildFile        = "build.gradle.kts"
)

var (
	namespaceRe  = regexp.MustCompile(`(?m)^\s*namespace\s*=\s*["']([\w.]+)["']`)
	packageRe    = regexp.MustCompile(`(?m)^\s*package\s+([\w.]+)`)
	repositoryRe = regexp.MustCompile(`(?m)^\s*(?:public\s+|internal\s+)?(?:fun\s+)?interface\s+(\w+Repository)\b`)
	dataSourceRe = regexp.MustCompile(`(?m)^\s*(?:public\s+|internal\s+)?(?:fun\s+)?interface\s+(\w+DataSource)\b`)
)

// Discovery scans module directories through the file system collaborator.
type Discovery struct {
	fs       *fs.FileSystem
	packages *lru.Cache[string, string]
	names    *lru.Cache[string, []string]
}

// New returns a Discovery holding up to size cached answers per query kind.
func New(fsys *fs.FileSystem, size int) (*Discovery, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	packages, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating package cache: %w", err)
	}
	names, err := lru.New[string, []string](size)
	if err != nil {
		return nil, fmt.Errorf("creating name cache: %w", err)
	}
	return &Discovery{fs: fsys, packages: packages, names: names}, nil
}

// PackageOf returns the package a module declares: the Android namespace in
// its build script, else the package of its first Kotlin source. ok is false
// when neither exists.
func (d *Discovery) PackageOf(moduleDir string) (pkg string, ok bool, err error) {
	if pkg, ok := d.packages.Get(moduleDir); ok {
		return pkg, true, nil
	}

	script, present, err := d.fs.ReadText(path.Join(moduleDir, buildFile))
	if err != nil {
		return "", false, err
	}
	if present {
		if m := namespaceRe.FindStringSubmatch(script); m != nil {
			d.packages.Add(moduleDir, m[1])
			return m[1], true, nil
		}
	}

	sources, err := d.sources(moduleDir)
	if err != nil {
		return "", false, err
	}
	for _, src := range sources {
		text, _, err := d.fs.ReadText(src)
		if err != nil {
			return "", false, err
		}
		if m := packageRe.FindStringSubmatch(text); m != nil {
			d.packages.Add(moduleDir, m[1])
			return m[1], true, nil
		}
	}
	return "", false, nil
}

// Repositories lists the repository interfaces declared in a module, sorted.
func (d *Discovery) Repositories(moduleDir string) ([]string, error) {
	return d.declared("repositories:"+moduleDir, moduleDir, repositoryRe)
}

// DataSources lists the data source interfaces declared in a module, sorted.
func (d *Discovery) DataSources(moduleDir string) ([]string, error) {
	return d.declared("datasources:"+moduleDir, moduleDir, dataSourceRe)
}

// Purge drops every cached answer. Callers purge after writing sources.
func (d *Discovery) Purge() {
	d.packages.Purge()
	d.names.Purge()
}

func (d *Discovery) declared(key, moduleDir string, re *regexp.Regexp) ([]string, error) {
	if names, ok := d.names.Get(key); ok {
		return append([]string(nil), names...), nil
	}

	sources, err := d.sources(moduleDir)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var names []string
	for _, src := range sources {
		text, _, err := d.fs.ReadText(src)
		if err != nil {
			return nil, err
		}
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				names = append(names, m[1])
			}
		}
	}
	sort.Strings(names)
	d.names.Add(key, names)
	return append([]string(nil), names...), nil
}

// sources lists the Kotlin files under moduleDir/src.
func (d *Discovery) sources(moduleDir string) ([]string, error) {
	root := path.Join(moduleDir, "src")
	if !d.fs.IsDir(root) {
		return nil, nil
	}
	files, err := d.fs.Walk(root)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, f := range files {
		if strings.HasSuffix(f, ".kt") {
			out = append(out, f)
		}
	}
	return out, nil
}
