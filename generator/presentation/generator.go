// Package presentation generates a screen for a feature's presentation
// module: a view model, its UI state and the composable that observes it.
package presentation

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
	StepFiles   = "viewmodel-files"
	StepBinding = "viewmodel-binding"
)

// DiStrategy is how the view model is provided: Hilt or Koin.
type DiStrategy interface {
	isPresentationDi()
}

type Hilt struct{}

type Koin struct {
	UseAnnotations bool
}

func (Hilt) isPresentationDi() {}
func (Koin) isPresentationDi() {}

func ParseDiStrategy(s string) (DiStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hilt", "":
		return Hilt{}, nil
	case "koin":
		return Koin{}, nil
	case "koin-annotations":
		return Koin{UseAnnotations: true}, nil
	default:
		return nil, fmt.Errorf("unknown DI strategy %q for view models", s)
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

type Params struct {
	RootPath     string
	FeatureName  string
	Organization string
	BasePath     string
	// ScreenName is the class stem of the generated files. Defaults to the
	// feature name.
	ScreenName string
	// UseCases are injected into the view model, from the domain module's
	// usecase package.
	UseCases []string
	DI       DiStrategy
}

func NewParams(basePath, rootPath, feature, organization string) Params {
	return Params{
		RootPath:     rootPath,
		FeatureName:  feature,
		Organization: organization,
		BasePath:     basePath,
		DI:           Hilt{},
	}
}

func (p Params) WithScreenName(name string) Params {
	p.ScreenName = name
	return p
}

func (p Params) WithUseCases(names ...string) Params {
	p.UseCases = names
	return p
}

func (p Params) WithDI(s DiStrategy) Params {
	p.DI = s
	return p
}

// Stem is the class stem shared by the view model, state and screen.
func (p Params) Stem() string {
	name := p.ScreenName
	if strings.TrimSpace(name) == "" {
		name = p.FeatureName
	}
	return strings.TrimSuffix(strings.TrimSuffix(generator.ClassName(name), "Screen"), "ViewModel")
}

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
	opts := append(generator.PipelineOptions[Params](g.env), core.WithValidator(g.Validate))
	return core.NewPipeline(g.Steps(), opts...)
}

// Generate writes the screen described by p.
func (g *Generator) Generate(ctx context.Context, p Params) (*core.GenerationResult, error) {
	g.env.Logger.Info(fmt.Sprintf("Generating presentation for %s", p.Stem()))
	return g.Pipeline().Run(ctx, p)
}

// Validate requires the feature's presentation module to exist.
func (g *Generator) Validate(p Params) error {
	if strings.TrimSpace(p.FeatureName) == "" {
		return core.ValidationErrorf("feature name is required")
	}
	if p.Stem() == "" {
		return core.ValidationErrorf("screen name %q has no letters or digits", p.ScreenName)
	}
	if p.DI == nil {
		return core.ValidationErrorf("DI strategy is required")
	}
	f, err := g.feature(p)
	if err != nil {
		return err
	}
	return f.RequireModule(g.env.FS, generator.Presentation)
}

func (g *Generator) feature(p Params) (generator.Feature, error) {
	return generator.NewFeature(g.env.Resolver, p.BasePath, p.RootPath, p.FeatureName, p.Organization)
}

// flavor is what a DI framework adds to the generated files.
type flavor struct {
	viewModelImports []string
	screenImports    []string
	annotations      []string
	inject           bool
	factory          string
}

func flavorOf(fw di.Framework) flavor {
	switch fw {
	case di.Hilt:
		return flavor{
			viewModelImports: []string{"dagger.hilt.android.lifecycle.HiltViewModel", "javax.inject.Inject"},
			screenImports:    []string{"androidx.hilt.navigation.compose.hiltViewModel"},
			annotations:      []string{"@HiltViewModel"},
			inject:           true,
			factory:          "hiltViewModel",
		}
	case di.KoinAnnotations:
		return flavor{
			viewModelImports: []string{"org.koin.android.annotation.KoinViewModel"},
			screenImports:    []string{"org.koin.androidx.compose.koinViewModel"},
			annotations:      []string{"@KoinViewModel"},
			factory:          "koinViewModel",
		}
	default:
		return flavor{
			screenImports: []string{"org.koin.androidx.compose.koinViewModel"},
			factory:       "koinViewModel",
		}
	}
}

func (g *Generator) files(ctx context.Context, p Params) core.StepResult {
	f, err := g.feature(p)
	if err != nil {
		return core.Fail(err)
	}
	stem := p.Stem()
	fl := flavorOf(framework(p.DI))
	pkg := f.Package(generator.Presentation)

	vm := templates.Data{
		Package:     pkg,
		Name:        stem,
		Annotations: fl.annotations,
		Inject:      fl.inject,
	}
	vmImports := append([]string{
		"androidx.lifecycle.ViewModel",
		"kotlinx.coroutines.flow.MutableStateFlow",
		"kotlinx.coroutines.flow.StateFlow",
		"kotlinx.coroutines.flow.asStateFlow",
	}, fl.viewModelImports...)
	for _, uc := range p.UseCases {
		name := generator.ClassName(uc)
		if name == "" {
			continue
		}
		name = strings.TrimSuffix(name, "UseCase") + "UseCase"
		vm.Params = append(vm.Params, templates.Param{Name: generator.LowerFirst(name), Type: name})
		vmImports = append(vmImports, f.ResolvedPackage(generator.Domain, "usecase")+"."+name)
	}
	sort.Strings(vmImports)
	vm.Imports = vmImports

	screenImports := append([]string{
		"androidx.compose.runtime.Composable",
		"androidx.compose.runtime.getValue",
		"androidx.lifecycle.compose.collectAsStateWithLifecycle",
	}, fl.screenImports...)
	sort.Strings(screenImports)

	dir := f.SourceDir(generator.Presentation)
	files := []struct {
		file, template string
		data           templates.Data
	}{
		{path.Join(dir, stem+"ViewModel.kt"), templates.ViewModel, vm},
		{path.Join(dir, stem+"UiState.kt"), templates.UiState, templates.Data{Package: pkg, Name: stem}},
		{path.Join(dir, stem+"Screen.kt"), templates.Screen, templates.Data{Package: pkg, Name: stem, Imports: screenImports, Factory: fl.factory}},
	}

	var out core.ScaffoldOutput
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return core.Fail(err)
		}
		if err := g.env.WriteTemplate(f, &out, file.file, file.template, file.data); err != nil {
			return core.Fail(err)
		}
	}
	return core.Success{Message: fmt.Sprintf("Screen %s: %d files created, %d skipped", stem, len(out.Created), len(out.Skipped))}
}

// binding declares the view model in the feature's Koin DSL presentation
// module. Hilt and Koin annotations need no module entry.
func (g *Generator) binding(ctx context.Context, p Params) core.StepResult {
	fw := framework(p.DI)
	if fw != di.Koin {
		return core.Success{}
	}
	f, err := g.feature(p)
	if err != nil {
		return core.Fail(err)
	}
	m, file := generator.PresentationModule(f, fw)
	b := di.Binding{
		Impl:  f.ResolvedPackage(generator.Presentation) + "." + p.Stem() + "ViewModel",
		Scope: di.ViewModel,
	}
	o, err := m.Ensure(g.env.FS, file, []di.Binding{b})
	if err != nil {
		return core.Fail(err)
	}
	return core.Success{Message: generator.OutcomeMessage(o)}
}
