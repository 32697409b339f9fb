// Package module scaffolds a feature's Gradle modules and wires them into the
// project's build configuration.
package module

import (
	"fmt"
	"strings"

	"github.com/santiagomed/modkit/di"
	"github.com/santiagomed/modkit/generator"
)

// DatasourceStrategy decides which data source modules a feature gets.
type DatasourceStrategy int

const (
	DatasourceNone DatasourceStrategy = iota
	DatasourceCombined
	DatasourceRemoteOnly
	DatasourceLocalOnly
	DatasourceRemoteAndLocal
)

var datasourceNames = []string{"none", "combined", "remote-only", "local-only", "remote-and-local"}

func (s DatasourceStrategy) String() string {
	if s < 0 || int(s) >= len(datasourceNames) {
		return fmt.Sprintf("datasource(%d)", int(s))
	}
	return datasourceNames[s]
}

// Layers lists the auxiliary module layers the strategy declares.
func (s DatasourceStrategy) Layers() []string {
	switch s {
	case DatasourceCombined:
		return []string{generator.DataSource}
	case DatasourceRemoteOnly:
		return []string{generator.Remote}
	case DatasourceLocalOnly:
		return []string{generator.Local}
	case DatasourceRemoteAndLocal:
		return []string{generator.Remote, generator.Local}
	default:
		return nil
	}
}

// ParseDatasource accepts the String form of a strategy; blank means none.
func ParseDatasource(s string) (DatasourceStrategy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DatasourceNone, nil
	}
	for i, name := range datasourceNames {
		if s == name {
			return DatasourceStrategy(i), nil
		}
	}
	return DatasourceNone, fmt.Errorf("unknown datasource strategy %q (want one of %s)", s, strings.Join(datasourceNames, ", "))
}

// DiStrategy is the DI framework a feature module is wired with:
// Hilt, Metro or Koin.
type DiStrategy interface {
	isModuleDi()
}

type Hilt struct{}

type Metro struct{}

type Koin struct {
	UseAnnotations bool
}

func (Hilt) isModuleDi()  {}
func (Metro) isModuleDi() {}
func (Koin) isModuleDi()  {}

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
		return nil, fmt.Errorf("unknown DI strategy %q for feature modules", s)
	}
}

func framework(s DiStrategy) di.Framework {
	switch v := s.(type) {
	case Metro:
		return di.Metro
	case Koin:
		if v.UseAnnotations {
			return di.KoinAnnotations
		}
		return di.Koin
	default:
		return di.Hilt
	}
}

// Params describes one feature to scaffold. It is a value: the With methods
// return adjusted copies.
type Params struct {
	// RootPath is the parent module path, e.g. "app" or "feature".
	RootPath            string
	FeatureName         string
	Organization        string
	IncludePresentation bool
	IncludeAPI          bool
	Datasource          DatasourceStrategy
	DI                  DiStrategy
	// BasePath is the project directory.
	BasePath string
}

// NewParams returns params for feature with Hilt, a presentation layer and no
// data source modules.
func NewParams(basePath, rootPath, feature, organization string) Params {
	return Params{
		RootPath:            rootPath,
		FeatureName:         feature,
		Organization:        organization,
		IncludePresentation: true,
		DI:                  Hilt{},
		BasePath:            basePath,
	}
}

func (p Params) WithRootPath(root string) Params {
	p.RootPath = root
	return p
}

func (p Params) WithFeatureName(name string) Params {
	p.FeatureName = name
	return p
}

func (p Params) WithOrganization(org string) Params {
	p.Organization = org
	return p
}

func (p Params) WithPresentation(include bool) Params {
	p.IncludePresentation = include
	return p
}

func (p Params) WithAPI(include bool) Params {
	p.IncludeAPI = include
	return p
}

func (p Params) WithDatasource(s DatasourceStrategy) Params {
	p.Datasource = s
	return p
}

func (p Params) WithDI(s DiStrategy) Params {
	p.DI = s
	return p
}

func (p Params) WithBasePath(base string) Params {
	p.BasePath = base
	return p
}

// Layers lists every module layer the params declare, in include order.
func (p Params) Layers() []string {
	layers := []string{generator.Domain, generator.Data}
	if p.IncludePresentation {
		layers = append(layers, generator.Presentation)
	}
	if p.IncludeAPI {
		layers = append(layers, generator.API)
	}
	return append(layers, p.Datasource.Layers()...)
}
