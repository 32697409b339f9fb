// Package generator holds what the feature generators share: where a
// feature's modules live, how generated files are written, and which DI
// module collects a feature's bindings.
package generator

import (
	"path"
	"strings"

	"github.com/santiagomed/modkit/core"
	"github.com/santiagomed/modkit/fs"
	"github.com/santiagomed/modkit/gradle"
	"github.com/santiagomed/modkit/token"
)

// Layer names of a feature's modules.
const (
	Domain       = "domain"
	Data         = "data"
	Presentation = "presentation"
	API          = "api"
	DataSource   = "datasource"
	Remote       = "remote"
	Local        = "local"
)

// ConventionPlugin is the plugin id every generated module applies.
const ConventionPlugin = "com.PACKAGE.android.library"

// Feature locates one feature's modules inside a project.
type Feature struct {
	// Base is the project directory on the file system.
	Base string
	// Root is the parent module path, e.g. "app" for ":app:checkout:domain".
	Root string
	// Name is the feature name as given.
	Name string
	// Segment is the normalized organization package segment.
	Segment string

	resolver *token.Resolver
}

// NewFeature normalizes organization once for every path and package of the
// feature. It fails with core.ErrConfiguration when the segment is empty.
func NewFeature(resolver *token.Resolver, base, root, name, organization string) (Feature, error) {
	segment, err := resolver.Normalize(organization)
	if err != nil {
		return Feature{}, err
	}
	return Feature{
		Base:     base,
		Root:     strings.Trim(root, ":/"),
		Name:     name,
		Segment:  segment,
		resolver: resolver,
	}, nil
}

// ClassName is the feature's class stem, e.g. "Checkout".
func (f Feature) ClassName() string {
	return ClassName(f.Name)
}

// ModulePath is the Gradle path of a layer module.
func (f Feature) ModulePath(layer string) string {
	return gradle.ModulePath(strings.ReplaceAll(f.Root, "/", ":"), Slug(f.Name), layer)
}

// ModuleDir is the directory of a layer module on the file system.
func (f Feature) ModuleDir(layer string) string {
	return path.Join(f.Base, gradle.ModuleDir(f.ModulePath(layer)))
}

// Package is the layer's package with the organization still a placeholder,
// as template bodies expect it.
func (f Feature) Package(layer string, sub ...string) string {
	parts := append([]string{"com", token.DefaultPlaceholder, PackageName(f.Name), layer}, sub...)
	return strings.Join(parts, ".")
}

// ResolvedPackage is Package with the organization segment substituted.
func (f Feature) ResolvedPackage(layer string, sub ...string) string {
	return f.Resolve(f.Package(layer, sub...))
}

// SourceDir is the Kotlin source directory of a layer's package.
func (f Feature) SourceDir(layer string, sub ...string) string {
	pkgPath := strings.ReplaceAll(f.Package(layer, sub...), ".", "/")
	return path.Join(f.ModuleDir(layer), "src", "main", "kotlin", f.Resolve(pkgPath))
}

// Resolve substitutes the organization segment for every placeholder form.
func (f Feature) Resolve(body string) string {
	if f.resolver == nil {
		return body
	}
	return f.resolver.Replace(body, f.Segment)
}

// RequireModule fails validation when a layer module has not been generated.
func (f Feature) RequireModule(fsys *fs.FileSystem, layer string) error {
	if !fsys.IsDir(f.ModuleDir(layer)) {
		return core.ValidationErrorf("module %s does not exist; generate the feature module first", f.ModulePath(layer))
	}
	return nil
}
