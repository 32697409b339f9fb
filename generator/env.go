package generator

import (
	"fmt"
	"path"
	"strings"

	"github.com/santiagomed/modkit/core"
	"github.com/santiagomed/modkit/di"
	"github.com/santiagomed/modkit/discovery"
	"github.com/santiagomed/modkit/fs"
	"github.com/santiagomed/modkit/logger"
	"github.com/santiagomed/modkit/merge"
	"github.com/santiagomed/modkit/templates"
	"github.com/santiagomed/modkit/token"
)

// Env is the set of collaborators every generator runs against.
type Env struct {
	FS        *fs.FileSystem
	Renderer  *templates.Renderer
	Resolver  *token.Resolver
	Discovery *discovery.Discovery
	Logger    logger.Logger
	Publisher core.StepPublisher
}

// NewEnv fills every collaborator with its default over fsys.
func NewEnv(fsys *fs.FileSystem) (Env, error) {
	renderer, err := templates.NewRenderer()
	if err != nil {
		return Env{}, err
	}
	disc, err := discovery.New(fsys, discovery.DefaultCacheSize)
	if err != nil {
		return Env{}, err
	}
	return Env{
		FS:        fsys,
		Renderer:  renderer,
		Resolver:  token.NewResolver(),
		Discovery: disc,
		Logger:    logger.NewNullLogger(),
		Publisher: &core.DefaultStepPublisher{},
	}, nil
}

// PipelineOptions are the options every generator passes to its pipeline.
func PipelineOptions[P any](e Env) []core.Option[P] {
	return []core.Option[P]{
		core.WithLogger[P](e.Logger),
		core.WithPublisher[P](e.Publisher),
	}
}

// WriteTemplate renders name, substitutes the feature's organization segment
// and writes the result to file unless a file is already there. The outcome
// is recorded in out.
func (e Env) WriteTemplate(f Feature, out *core.ScaffoldOutput, file, name string, data templates.Data) error {
	body, err := e.Renderer.Render(name, data)
	if err != nil {
		return err
	}
	written, err := e.FS.WriteText(file, f.Resolve(body), false)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	out.Record(file, written)
	if written {
		e.Logger.Debug(fmt.Sprintf("Created %s", file))
	} else {
		e.Logger.Debug(fmt.Sprintf("Skipped existing %s", file))
	}
	return nil
}

// DataModule is the DI module in the data layer that collects a feature's
// repository and use case bindings, and the path of its source file.
func DataModule(f Feature, fw di.Framework) (di.Module, string) {
	name := f.ClassName() + "Module"
	if fw == di.Metro {
		name = f.ClassName() + "Bindings"
	}
	return diModule(f, fw, Data, name)
}

// PresentationModule is the DI module in the presentation layer that
// collects view model bindings.
func PresentationModule(f Feature, fw di.Framework) (di.Module, string) {
	return diModule(f, fw, Presentation, f.ClassName()+"PresentationModule")
}

func diModule(f Feature, fw di.Framework, layer, name string) (di.Module, string) {
	m := di.Module{
		Framework:   fw,
		Package:     f.ResolvedPackage(layer, "di"),
		Name:        name,
		ScanPackage: f.Resolve("com." + token.DefaultPlaceholder + "." + PackageName(f.Name)),
	}
	return m, path.Join(f.SourceDir(layer, "di"), m.FileName())
}

// OutcomeMessage summarizes a merge for the run summary, e.g.
// "merged settings.gradle.kts (:app:checkout:domain)". It is blank when the
// file was left unchanged.
func OutcomeMessage(o merge.Outcome) string {
	if !o.Changed() {
		return ""
	}
	if len(o.Added) == 0 {
		return fmt.Sprintf("%s %s", o.Status, o.Path)
	}
	return fmt.Sprintf("%s %s (%s)", o.Status, o.Path, strings.Join(o.Added, ", "))
}
