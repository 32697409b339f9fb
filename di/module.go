// Package di renders DI module source files and merges bindings into them.
// One module file per feature layer holds every binding the generators add;
// bindings are keyed on the type they provide so a binding the user already
// wrote, in any form, is never duplicated.
package di

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/santiagomed/modkit/fs"
	"github.com/santiagomed/modkit/merge"
)

// ErrModuleNotFound is returned when a module file exists but does not
// declare the expected module, so there is nowhere to merge bindings.
var ErrModuleNotFound = errors.New("DI module not found")

// Framework selects the module shape and binding syntax.
type Framework int

const (
	Hilt Framework = iota
	Koin
	KoinAnnotations
	Metro
)

func (f Framework) String() string {
	switch f {
	case Hilt:
		return "hilt"
	case Koin:
		return "koin"
	case KoinAnnotations:
		return "koin-annotations"
	case Metro:
		return "metro"
	default:
		return fmt.Sprintf("framework(%d)", int(f))
	}
}

// Scope is the lifetime a binding is declared with.
type Scope int

const (
	Single Scope = iota
	Factory
	ViewModel
)

// Binding provides Type, implemented by Impl. Both are fully qualified class
// names. Type may be empty when Impl is bound as itself.
type Binding struct {
	Type  string
	Impl  string
	Scope Scope
}

// Key is the identity a binding is merged under: the provided type.
func (b Binding) Key() string {
	if b.Type != "" {
		return simpleName(b.Type)
	}
	return simpleName(b.Impl)
}

// Module describes one DI module source file.
type Module struct {
	Framework Framework
	Package   string
	// Name is the class or binding container name, e.g. "CheckoutModule".
	Name string
	// ScanPackage is the @ComponentScan root for Koin annotations.
	// Defaults to the parent of Package.
	ScanPackage string
}

// FileName is the Kotlin source file name.
func (m Module) FileName() string {
	return m.Name + ".kt"
}

// VarName is the Koin DSL property name, e.g. "checkoutModule".
func (m Module) VarName() string {
	return lowerFirst(m.Name)
}

var (
	// fun bindX(impl: XImpl): X  |  fun provideX(impl: XImpl): X = impl
	funKeyRe = regexp.MustCompile(`\bfun\s+[\w.]+\s*\([^)]*\)\s*:\s*([\w.]+)`)
	// @Binds val XImpl.bind: X
	valKeyRe = regexp.MustCompile(`\bval\s+[\w.]+\.\w+\s*:\s*([\w.]+)`)
	// singleOf(::XImpl) { bind<X>() }  |  single<X> { XImpl(get()) }
	koinOfRe    = regexp.MustCompile(`\b(?:singleOf|factoryOf|viewModelOf|scopedOf)\s*\(\s*::([\w.]+)`)
	koinBindRe  = regexp.MustCompile(`\bbind\s*<\s*([\w.]+)\s*>`)
	koinBindsRe = regexp.MustCompile(`\bbinds?\s+([\w.]+)::class`)
	koinTypedRe = regexp.MustCompile(`\b(?:single|factory|viewModel|scoped)\s*<\s*([\w.]+)\s*>`)
	importRe    = regexp.MustCompile(`^import\s+`)
	packageRe   = regexp.MustCompile(`^package\s+`)
)

// BindingKeys returns the provided types a line of module source declares.
func (m Module) BindingKeys(line string) []string {
	var keys []string
	add := func(re *regexp.Regexp) {
		for _, sm := range re.FindAllStringSubmatch(line, -1) {
			keys = append(keys, simpleName(sm[1]))
		}
	}
	switch m.Framework {
	case Koin:
		add(koinBindRe)
		add(koinBindsRe)
		add(koinTypedRe)
		add(koinOfRe)
	case Metro:
		add(valKeyRe)
		add(funKeyRe)
	default:
		add(funKeyRe)
	}
	return keys
}

// Entry renders the lines that declare b inside this module's body.
func (m Module) Entry(b Binding) merge.Entry {
	impl := simpleName(b.Impl)
	typ := b.Key()
	var lines []string
	switch m.Framework {
	case Hilt:
		lines = []string{"@Binds", fmt.Sprintf("abstract fun bind%s(impl: %s): %s", typ, impl, typ)}
	case Metro:
		lines = []string{fmt.Sprintf("@Binds val %s.bind: %s", impl, typ)}
	case KoinAnnotations:
		lines = []string{annotationFor(b.Scope), fmt.Sprintf("fun provide%s(impl: %s): %s = impl", typ, impl, typ)}
	case Koin:
		fn := map[Scope]string{Single: "singleOf", Factory: "factoryOf", ViewModel: "viewModelOf"}[b.Scope]
		line := fmt.Sprintf("%s(::%s)", fn, impl)
		if b.Type != "" && typ != impl {
			line += fmt.Sprintf(" { bind<%s>() }", typ)
		}
		lines = []string{line}
	}
	return merge.Entry{Key: typ, Lines: lines}
}

// Bindings is the merge target for this module's body.
func (m Module) Bindings(bs []Binding) merge.Target {
	return merge.Target{
		Name:     m.Framework.String() + " binding",
		Keys:     m.BindingKeys,
		Locate:   merge.BraceBlock(m.declRe()),
		Separate: m.Framework == Hilt || m.Framework == KoinAnnotations,
		Create: func([]string) []string {
			return m.render(bs)
		},
	}
}

// Imports is the merge target for import lines. New imports follow the last
// existing import, or the package line when there are none.
func (m Module) Imports() merge.Target {
	return merge.Target{
		Name:   "import",
		Locate: merge.LastMatch(importRe, packageRe),
		Global: true,
	}
}

// Ensure creates the module file at path, or merges the missing bindings and
// their imports into it. With no bindings it only makes sure the module exists.
func (m Module) Ensure(fsys *fs.FileSystem, path string, bs []Binding) (merge.Outcome, error) {
	existing, present, err := fsys.ReadText(path)
	if err != nil {
		return merge.Outcome{Path: path}, err
	}

	bs = uniqueBindings(bs)
	target := m.Bindings(bs)
	if present && len(bs) > 0 && !target.Locates(existing) {
		return merge.Outcome{Path: path}, fmt.Errorf("%w: %s is not declared in %s", ErrModuleNotFound, m.declName(), path)
	}
	entries := make([]merge.Entry, 0, len(bs))
	for _, b := range bs {
		entries = append(entries, m.Entry(b))
	}
	res := merge.Apply(existing, present, entries, target)
	if res.Status == merge.Unchanged {
		return merge.Outcome{Path: path, Status: merge.Unchanged}, nil
	}

	text := res.Text
	if res.Status == merge.Merged {
		var added []Binding
		for _, b := range bs {
			for _, k := range res.Added {
				if b.Key() == k {
					added = append(added, b)
				}
			}
		}
		var imports []merge.Entry
		for _, imp := range m.importsFor(added) {
			imports = append(imports, merge.Line("import "+imp, "import "+imp))
		}
		if len(imports) > 0 && !hasImports(text) {
			// the first import follows the package line
			imports[0].Lines = append([]string{""}, imports[0].Lines...)
		}
		if r := merge.Apply(text, true, imports, m.Imports()); r.Status != merge.Unchanged {
			text = r.Text
		}
	}

	if _, err := fsys.WriteText(path, text, true); err != nil {
		return merge.Outcome{Path: path}, fmt.Errorf("failed to write DI module %s: %w", path, err)
	}
	return merge.Outcome{Path: path, Status: res.Status, Added: res.Added}, nil
}

func (m Module) declName() string {
	if m.Framework == Koin {
		return "val " + m.VarName()
	}
	return m.Name
}

func hasImports(text string) bool {
	for _, l := range strings.Split(text, "\n") {
		if importRe.MatchString(l) {
			return true
		}
	}
	return false
}

func (m Module) declRe() *regexp.Regexp {
	if m.Framework == Koin {
		return regexp.MustCompile(`\bval\s+` + regexp.QuoteMeta(m.VarName()) + `\b.*\bmodule\b`)
	}
	return regexp.MustCompile(`\b(?:class|interface|object)\s+` + regexp.QuoteMeta(m.Name) + `\b`)
}

func (m Module) render(bs []Binding) []string {
	out := []string{"package " + m.Package, ""}
	for _, imp := range m.importsFor(bs) {
		out = append(out, "import "+imp)
	}
	out = append(out, "")
	out = append(out, m.header()...)

	var body []string
	for i, b := range bs {
		e := m.Entry(b)
		if i > 0 && (m.Framework == Hilt || m.Framework == KoinAnnotations) {
			body = append(body, "")
		}
		for _, l := range e.Lines {
			body = append(body, "    "+l)
		}
	}
	return append(append(out, body...), "}")
}

func (m Module) header() []string {
	switch m.Framework {
	case Hilt:
		return []string{"@Module", "@InstallIn(SingletonComponent::class)", "abstract class " + m.Name + " {"}
	case Metro:
		return []string{"@ContributesTo(AppScope::class)", "@BindingContainer", "interface " + m.Name + " {"}
	case KoinAnnotations:
		return []string{"@Module", fmt.Sprintf("@ComponentScan(%q)", m.scanPackage()), "class " + m.Name + " {"}
	default:
		return []string{"val " + m.VarName() + " = module {"}
	}
}

func (m Module) scanPackage() string {
	if m.ScanPackage != "" {
		return m.ScanPackage
	}
	if i := strings.LastIndex(m.Package, "."); i > 0 {
		return m.Package[:i]
	}
	return m.Package
}

// frameworkImports are always present in a generated module.
func (m Module) frameworkImports(bs []Binding) []string {
	switch m.Framework {
	case Hilt:
		return []string{"dagger.Binds", "dagger.Module", "dagger.hilt.InstallIn", "dagger.hilt.components.SingletonComponent"}
	case Metro:
		return []string{"dev.zacsweers.metro.AppScope", "dev.zacsweers.metro.BindingContainer", "dev.zacsweers.metro.Binds", "dev.zacsweers.metro.ContributesTo"}
	case KoinAnnotations:
		return []string{"org.koin.core.annotation.ComponentScan", "org.koin.core.annotation.Factory", "org.koin.core.annotation.Module", "org.koin.core.annotation.Single"}
	default:
		imports := []string{"org.koin.dsl.module"}
		for _, b := range bs {
			switch b.Scope {
			case Single:
				imports = append(imports, "org.koin.core.module.dsl.singleOf")
				if b.Type != "" {
					imports = append(imports, "org.koin.core.module.dsl.bind")
				}
			case Factory:
				imports = append(imports, "org.koin.core.module.dsl.factoryOf")
			case ViewModel:
				imports = append(imports, "org.koin.core.module.dsl.viewModelOf")
			}
		}
		return imports
	}
}

// importsFor lists the sorted, de-duplicated imports bs need, leaving out
// classes that live in the module's own package.
func (m Module) importsFor(bs []Binding) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(q string) {
		if q == "" || seen[q] || packageOf(q) == m.Package || packageOf(q) == "" {
			return
		}
		seen[q] = true
		out = append(out, q)
	}
	for _, q := range m.frameworkImports(bs) {
		add(q)
	}
	for _, b := range bs {
		add(b.Type)
		add(b.Impl)
	}
	sort.Strings(out)
	return out
}

func uniqueBindings(bs []Binding) []Binding {
	seen := make(map[string]bool, len(bs))
	out := make([]Binding, 0, len(bs))
	for _, b := range bs {
		if !seen[b.Key()] {
			seen[b.Key()] = true
			out = append(out, b)
		}
	}
	return out
}

func annotationFor(s Scope) string {
	if s == Single {
		return "@Single"
	}
	return "@Factory"
}

func simpleName(qualified string) string {
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

func packageOf(qualified string) string {
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		return qualified[:i]
	}
	return ""
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
