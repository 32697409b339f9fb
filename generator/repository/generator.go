// Package repository generates a repository interface in a feature's domain
// module, its implementation in the data module, and the DI binding between
// the two.
package repository

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/santiagomed/modkit/core"
	"github.com/santiagomed/modkit/di"
	"github.com/santiagomed/modkit/generator"
	"github.com/santiagomed/modkit/templates"
)

const (
	StepFiles   = "repository-files"
	StepBinding = "repository-binding"
)

// DiStrategy is the DI framework the repository is bound with: Hilt or Koin.
type DiStrategy interface {
	isRepositoryDi()
}

type Hilt struct{}

type Koin struct {
	UseAnnotations bool
}

func (Hilt) isRepositoryDi() {}
func (Koin) isRepositoryDi() {}

// ParseDiStrategy accepts hilt, koin and koin-annotations.
func ParseDiStrategy(s string) (DiStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hilt", "":
		return Hilt{}, nil
	case "koin":
		return Koin{}, nil
	case "koin-annotations":
		return Koin{UseAnnotations: true}, nil
	default:
		return nil, fmt.Errorf("unknown DI strategy %q for repositories", s)
	}
}

func framework(s DiStrategy) di.Framework {
	if k, ok := s.(Koin); ok {
		if k.UseAnnotations {
			return di.KoinAnnotations
		}
		return di.Koin
	}
	return di.Hilt
}

// Params describes one repository to generate.
type Params struct {
	RootPath     string
	FeatureName  string
	Organization string
	BasePath     string
	// Name is the repository stem: "Payment" gives PaymentRepository.
	// Defaults to the feature name.
	Name string
	// DataSources are injected into the implementation. When nil they are
	// discovered from the feature's data source modules.
	DataSources []string
	DI          DiStrategy
}

// NewParams returns params for the feature's own repository, bound with Hilt.
func NewParams(basePath, rootPath, feature, organization string) Params {
	return Params{
		RootPath:     rootPath,
		FeatureName:  feature,
		Organization: organization,
		BasePath:     basePath,
		DI:           Hilt{},
	}
}

func (p Params) WithName(name string) Params {
	p.Name = name
	return p
}

func (p Params) WithDataSources(names ...string) Params {
	p.DataSources = names
	return p
}

func (p Params) WithDI(s DiStrategy) Params {
	p.DI = s
	return p
}

// ClassName is the repository interface name.
func (p Params) ClassName() string {
	name := p.Name
	if strings.TrimSpace(name) == "" {
		name = p.FeatureName
	}
	return strings.TrimSuffix(generator.ClassName(name), "Repository") + "Repository"
}

// dataSourceLayers are searched, in order, for data source interfaces.
var dataSourceLayers = []string{generator.DataSource, generator.Remote, generator.Local, generator.Data}

// Generator generates repositories.
type Generator struct {
	env generator.Env
}

func New(env generator.Env) *Generator {
	return &Generator{env: env}
}

func (g *Generator) Steps() []core.Step[Params] {
	return []core.Step[Params]{
		core.NewStep(StepFiles, core.PhaseGenerate, g.files),
		core.NewStep(StepBinding, core.PhaseDI, g.binding),
	}
}

func (g *Generator) Pipeline() *core.Pipeline[Params] {
	opts := append(generator.PipelineOptions[Params](g.env),
		core.RequireScaffold[Params](),
		core.WithValidator(g.Validate),
	)
	return core.NewPipeline(g.Steps(), opts...)
}

// Generate writes the repository described by p and binds it.
func (g *Generator) Generate(ctx context.Context, p Params) (*core.GenerationResult, error) {
	g.env.Logger.Info(fmt.Sprintf("Generating repository %s", p.ClassName()))
	return g.Pipeline().Run(ctx, p)
}

// Validate requires the feature's domain and data modules to exist.
func (g *Generator) Validate(p Params) error {
	if strings.TrimSpace(p.FeatureName) == "" {
		return core.ValidationErrorf("feature name is required")
	}
	if p.ClassName() == "Repository" {
		return core.ValidationErrorf("repository name %q has no letters or digits", p.Name)
	}
	if p.DI == nil {
		return core.ValidationErrorf("DI strategy is required")
	}
	f, err := g.feature(p)
	if err != nil {
		return err
	}
	for _, layer := range []string{generator.Domain, generator.Data} {
		if err := f.RequireModule(g.env.FS, layer); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) feature(p Params) (generator.Feature, error) {
	return generator.NewFeature(g.env.Resolver, p.BasePath, p.RootPath, p.FeatureName, p.Organization)
}

func (g *Generator) files(ctx context.Context, p Params) core.StepResult {
	f, err := g.feature(p)
	if err != nil {
		return core.Fail(err)
	}
	name := strings.TrimSuffix(p.ClassName(), "Repository")
	fw := framework(p.DI)

	params, imports, err := g.dataSources(f, p)
	if err != nil {
		return core.Fail(err)
	}
	imports = append(imports, f.ResolvedPackage(generator.Domain)+"."+p.ClassName())

	impl := templates.Data{
		Package: f.Package(generator.Data),
		Name:    name,
		Params:  params,
	}
	switch fw {
	case di.Hilt:
		impl.Inject = true
		imports = append(imports, "javax.inject.Inject")
	case di.KoinAnnotations:
		impl.Annotations = []string{"@Factory"}
		imports = append(imports, "org.koin.core.annotation.Factory")
	}
	sort.Strings(imports)
	impl.Imports = imports

	var out core.ScaffoldOutput
	iface := path.Join(f.SourceDir(generator.Domain), p.ClassName()+".kt")
	if err := g.env.WriteTemplate(f, &out, iface, templates.Repository, templates.Data{Package: f.Package(generator.Domain), Name: name}); err != nil {
		return core.Fail(err)
	}
	implFile := path.Join(f.SourceDir(generator.Data), p.ClassName()+"Impl.kt")
	if err := g.env.WriteTemplate(f, &out, implFile, templates.RepositoryImpl, impl); err != nil {
		return core.Fail(err)
	}
	g.env.Discovery.Purge()

	out.Message = fmt.Sprintf("Repository %s: %d files created, %d skipped", p.ClassName(), len(out.Created), len(out.Skipped))
	return core.Scaffold{Output: out}
}

// dataSources resolves the constructor parameters of the implementation and
// the imports they need.
func (g *Generator) dataSources(f generator.Feature, p Params) ([]templates.Param, []string, error) {
	var params []templates.Param
	var imports []string
	seen := make(map[string]bool)
	add := func(name, pkg string) {
		if seen[name] {
			return
		}
		seen[name] = true
		params = append(params, templates.Param{Name: generator.LowerFirst(name), Type: name})
		if pkg != "" && pkg != f.ResolvedPackage(generator.Data) {
			imports = append(imports, pkg+"."+name)
		}
	}

	if p.DataSources != nil {
		for _, name := range p.DataSources {
			if name = generator.ClassName(name); name != "" {
				add(name, "")
			}
		}
		return params, imports, nil
	}

	for _, layer := range dataSourceLayers {
		dir := f.ModuleDir(layer)
		names, err := g.env.Discovery.DataSources(dir)
		if err != nil {
			return nil, nil, err
		}
		if len(names) == 0 {
			continue
		}
		pkg, _, err := g.env.Discovery.PackageOf(dir)
		if err != nil {
			return nil, nil, err
		}
		for _, name := range names {
			add(name, pkg)
		}
	}
	return params, imports, nil
}

func (g *Generator) binding(ctx context.Context, p Params) core.StepResult {
	f, err := g.feature(p)
	if err != nil {
		return core.Fail(err)
	}
	m, file := generator.DataModule(f, framework(p.DI))
	b := di.Binding{
		Type:  f.ResolvedPackage(generator.Domain) + "." + p.ClassName(),
		Impl:  f.ResolvedPackage(generator.Data) + "." + p.ClassName() + "Impl",
		Scope: di.Single,
	}
	o, err := m.Ensure(g.env.FS, file, []di.Binding{b})
	if err != nil {
		return core.Fail(err)
	}
	return core.Success{Message: generator.OutcomeMessage(o)}
}
