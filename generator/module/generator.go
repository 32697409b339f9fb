package module

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/santiagomed/modkit/core"
	"github.com/santiagomed/modkit/generator"
	"github.com/santiagomed/modkit/gradle"
	"github.com/santiagomed/modkit/templates"
)

// Step identities.
const (
	StepScaffoldModules = "scaffold-modules"
	StepBuildLogic      = "build-logic-convention"
	StepSettings        = "settings-includes"
	StepIncludeBuild    = "include-build"
	StepVersionCatalog  = "version-catalog"
	StepAppDependencies = "app-dependencies"
	StepDIModule        = "di-module"
)

// Generator scaffolds feature modules.
type Generator struct {
	env generator.Env
}

func New(env generator.Env) *Generator {
	return &Generator{env: env}
}

// Steps returns the module generation steps, unordered.
func (g *Generator) Steps() []core.Step[Params] {
	return []core.Step[Params]{
		core.NewStep(StepScaffoldModules, core.PhaseScaffold, g.scaffoldModules),
		core.NewStep(StepBuildLogic, core.PhaseGenerate, g.buildLogic),
		core.NewStep(StepSettings, core.PhaseConfigure, g.settingsIncludes),
		core.NewStep(StepIncludeBuild, core.PhaseConfigure, g.includeBuild),
		core.NewStep(StepVersionCatalog, core.PhaseConfigure, g.versionCatalog),
		core.NewStep(StepAppDependencies, core.PhaseConfigure, g.appDependencies),
		core.NewStep(StepDIModule, core.PhaseDI, g.diModule),
	}
}

// Pipeline assembles the steps into a pipeline that requires the scaffold
// result and validates params first.
func (g *Generator) Pipeline() *core.Pipeline[Params] {
	opts := append(generator.PipelineOptions[Params](g.env),
		core.RequireScaffold[Params](),
		core.WithValidator(g.Validate),
	)
	return core.NewPipeline(g.Steps(), opts...)
}

// Generate scaffolds the feature described by p.
func (g *Generator) Generate(ctx context.Context, p Params) (*core.GenerationResult, error) {
	g.env.Logger.Info(fmt.Sprintf("Generating feature module %q", p.FeatureName))
	return g.Pipeline().Run(ctx, p)
}

// Validate rejects params no step can work with.
func (g *Generator) Validate(p Params) error {
	if strings.TrimSpace(p.FeatureName) == "" {
		return core.ValidationErrorf("feature name is required")
	}
	if len(generator.Words(p.FeatureName)) == 0 {
		return core.ValidationErrorf("feature name %q has no letters or digits", p.FeatureName)
	}
	if p.DI == nil {
		return core.ValidationErrorf("DI strategy is required")
	}
	if p.Datasource < DatasourceNone || p.Datasource > DatasourceRemoteAndLocal {
		return core.ValidationErrorf("unknown datasource strategy %d", int(p.Datasource))
	}
	_, err := g.feature(p)
	return err
}

func (g *Generator) feature(p Params) (generator.Feature, error) {
	return generator.NewFeature(g.env.Resolver, p.BasePath, p.RootPath, p.FeatureName, p.Organization)
}

func (g *Generator) scaffoldModules(ctx context.Context, p Params) core.StepResult {
	f, err := g.feature(p)
	if err != nil {
		return core.Fail(err)
	}
	fw := framework(p.DI)

	var out core.ScaffoldOutput
	layers := p.Layers()
	for _, layer := range layers {
		if err := ctx.Err(); err != nil {
			return core.Fail(err)
		}
		deps := depsFor(fw, layer)
		data := templates.Data{
			Package:      f.Package(layer),
			Plugin:       generator.ConventionPlugin,
			Plugins:      deps.plugins,
			Libraries:    deps.libraries,
			Processors:   deps.processors,
			Dependencies: moduleDependencies(f, p, layer),
		}
		build := path.Join(f.ModuleDir(layer), "build.gradle.kts")
		if err := g.env.WriteTemplate(f, &out, build, templates.ModuleBuild, data); err != nil {
			return core.Fail(err)
		}
		if err := g.env.FS.CreateDirectories(f.SourceDir(layer)); err != nil {
			return core.Fail(err)
		}
		if name := dataSourceName(f, layer); name != "" {
			src := path.Join(f.SourceDir(layer), name+".kt")
			err := g.env.WriteTemplate(f, &out, src, templates.DataSource, templates.Data{Package: f.Package(layer), Name: name})
			if err != nil {
				return core.Fail(err)
			}
		}
	}

	out.Message = fmt.Sprintf("Feature %s: %d modules, %d files created, %d skipped",
		f.Name, len(layers), len(out.Created), len(out.Skipped))
	return core.Scaffold{Output: out}
}

func (g *Generator) buildLogic(ctx context.Context, p Params) core.StepResult {
	f, err := g.feature(p)
	if err != nil {
		return core.Fail(err)
	}
	root := path.Join(p.BasePath, gradle.BuildLogic)
	files := []struct{ file, template string }{
		{path.Join(root, "settings.gradle.kts"), templates.BuildLogicSettings},
		{path.Join(root, "convention", "build.gradle.kts"), templates.ConventionBuild},
		{path.Join(root, "convention", "src", "main", "kotlin", "AndroidLibraryConventionPlugin.kt"), templates.ConventionPlugin},
	}

	var out core.ScaffoldOutput
	for _, file := range files {
		err := g.env.WriteTemplate(f, &out, file.file, file.template, templates.Data{Plugin: generator.ConventionPlugin})
		if err != nil {
			return core.Fail(err)
		}
	}
	if len(out.Created) == 0 {
		return core.BuildLogic{}
	}
	return core.BuildLogic{
		Updated: true,
		Message: fmt.Sprintf("created %s convention plugin (%d files)", gradle.BuildLogic, len(out.Created)),
	}
}

func (g *Generator) settingsIncludes(ctx context.Context, p Params) core.StepResult {
	f, err := g.feature(p)
	if err != nil {
		return core.Fail(err)
	}
	root := strings.ReplaceAll(f.Root, "/", ":")
	o, err := gradle.EnsureIncludes(g.env.FS, p.BasePath, root, generator.Slug(f.Name), p.Layers())
	if err != nil {
		return core.Fail(err)
	}
	return core.Settings{Updated: o.Changed(), Message: generator.OutcomeMessage(o)}
}

func (g *Generator) includeBuild(ctx context.Context, p Params) core.StepResult {
	o, err := gradle.EnsureIncludeBuild(g.env.FS, p.BasePath, gradle.BuildLogic)
	if err != nil {
		return core.Fail(err)
	}
	return core.BuildLogic{Updated: o.Changed(), Message: generator.OutcomeMessage(o)}
}

func (g *Generator) versionCatalog(ctx context.Context, p Params) core.StepResult {
	o, err := gradle.EnsureCatalog(g.env.FS, p.BasePath, catalogFor(framework(p.DI)))
	if err != nil {
		return core.Fail(err)
	}
	return core.BuildLogic{Updated: o.Changed(), Message: generator.OutcomeMessage(o)}
}

func (g *Generator) appDependencies(ctx context.Context, p Params) core.StepResult {
	f, err := g.feature(p)
	if err != nil {
		return core.Fail(err)
	}
	appBuild := path.Join(p.BasePath, gradle.AppBuildFile)
	if !g.env.FS.Exists(appBuild) {
		g.env.Logger.Warn(fmt.Sprintf("%s not found, skipping app dependencies", appBuild))
		return core.Success{}
	}

	modules := []string{f.ModulePath(generator.Data)}
	if p.IncludePresentation {
		modules = append(modules, f.ModulePath(generator.Presentation))
	}
	o, err := gradle.EnsureProjectDependencies(g.env.FS, appBuild, "implementation", modules)
	if err != nil {
		return core.Fail(err)
	}
	return core.Success{Message: generator.OutcomeMessage(o)}
}

func (g *Generator) diModule(ctx context.Context, p Params) core.StepResult {
	f, err := g.feature(p)
	if err != nil {
		return core.Fail(err)
	}
	m, file := generator.DataModule(f, framework(p.DI))
	o, err := m.Ensure(g.env.FS, file, nil)
	if err != nil {
		return core.Fail(err)
	}
	return core.Success{Message: generator.OutcomeMessage(o)}
}

// moduleDependencies lists the project paths a layer's build script depends on.
func moduleDependencies(f generator.Feature, p Params, layer string) []string {
	switch layer {
	case generator.Data:
		deps := []string{f.ModulePath(generator.Domain)}
		for _, ds := range p.Datasource.Layers() {
			deps = append(deps, f.ModulePath(ds))
		}
		return deps
	case generator.Presentation, generator.DataSource, generator.Remote, generator.Local:
		return []string{f.ModulePath(generator.Domain)}
	default:
		return nil
	}
}

// dataSourceName is the interface a data source layer declares, if any.
func dataSourceName(f generator.Feature, layer string) string {
	switch layer {
	case generator.DataSource:
		return f.ClassName() + "DataSource"
	case generator.Remote:
		return f.ClassName() + "RemoteDataSource"
	case generator.Local:
		return f.ClassName() + "LocalDataSource"
	default:
		return ""
	}
}
