// Package usecase generates a use case class in a feature's domain module.
//
// Use case runs have no primary scaffold payload: the result carries the
// step messages only.
package usecase

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
	StepFile    = "usecase-file"
	StepBinding = "usecase-binding"
)

// DiStrategy is how the use case is provided: Hilt, Metro or Koin.
type DiStrategy interface {
	isUseCaseDi()
}

type Hilt struct{}

type Metro struct{}

type Koin struct {
	UseAnnotations bool
}

func (Hilt) isUseCaseDi()  {}
func (Metro) isUseCaseDi() {}
func (Koin) isUseCaseDi()  {}

// ParseDiStrategy accepts hilt, metro, koin and koin-annotations.
func ParseDiStrategy(s string) (DiStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hilt", "":
		return Hilt{}, nil
	case "metro":
		return Metro{}, nil
	case "koin":
		return Koin{}, nil
	case "koin-annotations":
		return Koin{UseAnnotations: true}, nil
	default:
		return nil, fmt.Errorf("unknown DI strategy %q for use cases", s)
	}
}

func framework(s DiStrategy) di.Framework {
	switch s := s.(type) {
	case Metro:
		return di.Metro
	case Koin:
		if s.UseAnnotations {
			return di.KoinAnnotations
		}
		return di.Koin
	default:
		return di.Hilt
	}
}

type Params struct {
	RootPath     string
	FeatureName  string
	Organization string
	BasePath     string
	// UseCaseName is the class stem: "GetCart" gives GetCartUseCase.
	UseCaseName string
	// Repositories are injected into the use case. When nil every repository
	// the domain module declares is injected.
	Repositories []string
	DI           DiStrategy
}

func NewParams(basePath, rootPath, feature, organization, useCase string) Params {
	return Params{
		RootPath:     rootPath,
		FeatureName:  feature,
		Organization: organization,
		BasePath:     basePath,
		UseCaseName:  useCase,
		DI:           Hilt{},
	}
}

func (p Params) WithRepositories(names ...string) Params {
	p.Repositories = names
	if p.Repositories == nil {
		p.Repositories = []string{}
	}
	return p
}

func (p Params) WithDI(s DiStrategy) Params {
	p.DI = s
	return p
}

// ClassName is the use case class name.
func (p Params) ClassName() string {
	return strings.TrimSuffix(generator.ClassName(p.UseCaseName), "UseCase") + "UseCase"
}

type Generator struct {
	env generator.Env
}

func New(env generator.Env) *Generator {
	return &Generator{env: env}
}

func (g *Generator) Steps() []core.Step[Params] {
	return []core.Step[Params]{
		core.NewStep(StepFile, core.PhaseGenerate, g.file),
		core.NewStep(StepBinding, core.PhaseDI, g.binding),
	}
}

func (g *Generator) Pipeline() *core.Pipeline[Params] {
	opts := append(generator.PipelineOptions[Params](g.env), core.WithValidator(g.Validate))
	return core.NewPipeline(g.Steps(), opts...)
}

// Generate writes the use case described by p.
func (g *Generator) Generate(ctx context.Context, p Params) (*core.GenerationResult, error) {
	g.env.Logger.Info(fmt.Sprintf("Generating use case %s", p.ClassName()))
	return g.Pipeline().Run(ctx, p)
}

// Validate requires the domain module, and the data module when the binding
// goes into a Koin DSL module.
func (g *Generator) Validate(p Params) error {
	if strings.TrimSpace(p.FeatureName) == "" {
		return core.ValidationErrorf("feature name is required")
	}
	if strings.TrimSpace(p.UseCaseName) == "" {
		return core.ValidationErrorf("use case name is required")
	}
	if p.ClassName() == "UseCase" {
		return core.ValidationErrorf("use case name %q has no letters or digits", p.UseCaseName)
	}
	if p.DI == nil {
		return core.ValidationErrorf("DI strategy is required")
	}
	f, err := g.feature(p)
	if err != nil {
		return err
	}
	layers := []string{generator.Domain}
	if framework(p.DI) == di.Koin {
		layers = append(layers, generator.Data)
	}
	for _, layer := range layers {
		if err := f.RequireModule(g.env.FS, layer); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) feature(p Params) (generator.Feature, error) {
	return generator.NewFeature(g.env.Resolver, p.BasePath, p.RootPath, p.FeatureName, p.Organization)
}

func (g *Generator) file(ctx context.Context, p Params) core.StepResult {
	f, err := g.feature(p)
	if err != nil {
		return core.Fail(err)
	}
	repos, err := g.repositories(f, p)
	if err != nil {
		return core.Fail(err)
	}

	data := templates.Data{
		Package: f.Package(generator.Domain, "usecase"),
		Name:    strings.TrimSuffix(p.ClassName(), "UseCase"),
	}
	var imports []string
	for _, r := range repos {
		data.Params = append(data.Params, templates.Param{Name: generator.LowerFirst(r.name), Type: r.name})
		imports = append(imports, r.pkg+"."+r.name)
	}
	switch framework(p.DI) {
	case di.Hilt:
		data.Inject = true
		imports = append(imports, "javax.inject.Inject")
	case di.Metro:
		data.Inject = true
		imports = append(imports, "dev.zacsweers.metro.Inject")
	case di.KoinAnnotations:
		data.Annotations = []string{"@Factory"}
		imports = append(imports, "org.koin.core.annotation.Factory")
	}
	sort.Strings(imports)
	data.Imports = imports

	var out core.ScaffoldOutput
	file := path.Join(f.SourceDir(generator.Domain, "usecase"), p.ClassName()+".kt")
	if err := g.env.WriteTemplate(f, &out, file, templates.UseCase, data); err != nil {
		return core.Fail(err)
	}
	if len(out.Created) == 0 {
		return core.Success{Message: fmt.Sprintf("Use case %s already exists: %s", p.ClassName(), file)}
	}
	return core.Success{Message: fmt.Sprintf("Use case %s created: %s", p.ClassName(), file)}
}

type repository struct {
	name string
	pkg  string
}

// repositories resolves the repositories to inject and their packages.
func (g *Generator) repositories(f generator.Feature, p Params) ([]repository, error) {
	if p.Repositories != nil {
		var out []repository
		for _, name := range p.Repositories {
			if name = generator.ClassName(name); name != "" {
				out = append(out, repository{name: name, pkg: f.ResolvedPackage(generator.Domain)})
			}
		}
		return out, nil
	}

	dir := f.ModuleDir(generator.Domain)
	names, err := g.env.Discovery.Repositories(dir)
	if err != nil {
		return nil, err
	}
	pkg, ok, err := g.env.Discovery.PackageOf(dir)
	if err != nil {
		return nil, err
	}
	if !ok {
		pkg = f.ResolvedPackage(generator.Domain)
	}
	out := make([]repository, 0, len(names))
	for _, name := range names {
		out = append(out, repository{name: name, pkg: pkg})
	}
	return out, nil
}

// binding declares the use case in the feature's Koin DSL module. Hilt, Metro
// and Koin annotations pick the class up from its own annotations.
func (g *Generator) binding(ctx context.Context, p Params) core.StepResult {
	fw := framework(p.DI)
	if fw != di.Koin {
		return core.Success{}
	}
	f, err := g.feature(p)
	if err != nil {
		return core.Fail(err)
	}
	m, file := generator.DataModule(f, fw)
	b := di.Binding{
		Impl:  f.ResolvedPackage(generator.Domain, "usecase") + "." + p.ClassName(),
		Scope: di.Factory,
	}
	o, err := m.Ensure(g.env.FS, file, []di.Binding{b})
	if err != nil {
		return core.Fail(err)
	}
	return core.Success{Message: generator.OutcomeMessage(o)}
}
