// Package templates supplies the raw bodies of generated files.
//
// Bodies are text/template files embedded in the binary. Rendering fills in
// names and lists but leaves the PACKAGE placeholder alone: resolving it is
// the token resolver's job, so one normalized segment is used for every form
// of the token in every file of a run.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"text/template"

	modfs "github.com/santiagomed/modkit/fs"
)

//go:embed kotlin/*.tmpl gradle/*.tmpl
var embedded embed.FS

// Template names.
const (
	ModuleBuild        = "module.gradle.kts.tmpl"
	BuildLogicSettings = "build_logic_settings.gradle.kts.tmpl"
	ConventionBuild    = "convention.gradle.kts.tmpl"
	ConventionPlugin   = "convention_plugin.kt.tmpl"
	Repository         = "repository.kt.tmpl"
	RepositoryImpl     = "repository_impl.kt.tmpl"
	DataSource         = "datasource.kt.tmpl"
	UseCase            = "usecase.kt.tmpl"
	ViewModel          = "viewmodel.kt.tmpl"
	UiState            = "uistate.kt.tmpl"
	Screen             = "screen.kt.tmpl"

	// partials holds the shared header and constructor definitions.
	partials = "partials.tmpl"
)

// Param is one constructor parameter.
type Param struct {
	Name string
	Type string
}

// Data contains data for template rendering.
type Data struct {
	// Package is the Kotlin package or Android namespace, usually still
	// carrying the PACKAGE placeholder (e.g. "com.PACKAGE.checkout.data").
	Package string
	Imports []string

	// Name is the PascalCase feature or class stem (e.g. "Checkout").
	Name string

	Annotations []string
	Inject      bool
	Params      []Param

	// Factory is the Compose view model factory function, if any.
	Factory string

	// Build script fields.
	Plugin       string
	Plugins      []string
	Libraries    []string
	Processors   []string
	Dependencies []string
}

// Renderer renders named templates.
type Renderer struct {
	set *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	set, err := parseEmbedded()
	if err != nil {
		return nil, err
	}
	return &Renderer{set: set}, nil
}

// NewRendererWithOverrides parses the embedded templates and lets every
// template found in dir replace the embedded one of the same name. Unknown
// names are ignored.
func NewRendererWithOverrides(fsys *modfs.FileSystem, dir string) (*Renderer, error) {
	set, err := parseEmbedded()
	if err != nil {
		return nil, err
	}
	names, err := fsys.ListDir(dir)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if set.Lookup(name) == nil || name == partials {
			continue
		}
		content, ok, err := fsys.ReadText(path.Join(dir, name))
		if err != nil || !ok {
			continue
		}
		if _, err := set.New(name).Parse(content); err != nil {
			return nil, fmt.Errorf("parsing template override %s: %w", name, err)
		}
	}
	return &Renderer{set: set}, nil
}

func parseEmbedded() (*template.Template, error) {
	set, err := template.New("modkit").ParseFS(embedded, "kotlin/*.tmpl", "gradle/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing embedded templates: %w", err)
	}
	return set, nil
}

// Render executes the named template and returns the raw body.
func (r *Renderer) Render(name string, data Data) (string, error) {
	t := r.set.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("unknown template: %s", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.String(), nil
}

// Names lists the renderable templates, sorted.
func (r *Renderer) Names() []string {
	var names []string
	for _, t := range r.set.Templates() {
		if strings.HasSuffix(t.Name(), ".tmpl") && t.Name() != partials {
			names = append(names, t.Name())
		}
	}
	sort.Strings(names)
	return names
}
