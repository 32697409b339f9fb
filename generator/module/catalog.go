package module

import (
	"github.com/santiagomed/modkit/di"
	"github.com/santiagomed/modkit/generator"
	"github.com/santiagomed/modkit/gradle"
)

// buildLogicCatalog is what the convention plugin build compiles against.
var buildLogicCatalog = gradle.CatalogEntries{
	Versions: []gradle.Version{
		{Alias: "agp", Value: "8.7.3"},
		{Alias: "kotlin", Value: "2.1.0"},
	},
	Libraries: []gradle.Library{
		{Alias: "android-gradlePlugin", Module: "com.android.tools.build:gradle", VersionRef: "agp"},
		{Alias: "kotlin-gradlePlugin", Module: "org.jetbrains.kotlin:kotlin-gradle-plugin", VersionRef: "kotlin"},
	},
}

var kspPlugin = gradle.Plugin{Alias: "ksp", ID: "com.google.devtools.ksp", VersionRef: "ksp"}

var kspVersion = gradle.Version{Alias: "ksp", Value: "2.1.0-1.0.29"}

// frameworkCatalog lists the catalog aliases a DI framework needs.
func frameworkCatalog(fw di.Framework) gradle.CatalogEntries {
	switch fw {
	case di.Hilt:
		return gradle.CatalogEntries{
			Versions: []gradle.Version{{Alias: "hilt", Value: "2.54"}, {Alias: "hiltNavigationCompose", Value: "1.2.0"}, {Alias: "javaxInject", Value: "1"}, kspVersion},
			Libraries: []gradle.Library{
				{Alias: "hilt-android", Module: "com.google.dagger:hilt-android", VersionRef: "hilt"},
				{Alias: "hilt-compiler", Module: "com.google.dagger:hilt-compiler", VersionRef: "hilt"},
				{Alias: "hilt-navigation-compose", Module: "androidx.hilt:hilt-navigation-compose", VersionRef: "hiltNavigationCompose"},
				{Alias: "javax-inject", Module: "javax.inject:javax.inject", VersionRef: "javaxInject"},
			},
			Plugins: []gradle.Plugin{{Alias: "hilt", ID: "com.google.dagger.hilt.android", VersionRef: "hilt"}, kspPlugin},
		}
	case di.Metro:
		return gradle.CatalogEntries{
			Versions: []gradle.Version{{Alias: "metro", Value: "0.1.1"}},
			Plugins:  []gradle.Plugin{{Alias: "metro", ID: "dev.zacsweers.metro", VersionRef: "metro"}},
		}
	case di.KoinAnnotations:
		return gradle.CatalogEntries{
			Versions: []gradle.Version{{Alias: "koin", Value: "4.0.0"}, {Alias: "koinAnnotations", Value: "1.4.0"}, kspVersion},
			Libraries: []gradle.Library{
				{Alias: "koin-android", Module: "io.insert-koin:koin-android", VersionRef: "koin"},
				{Alias: "koin-androidx-compose", Module: "io.insert-koin:koin-androidx-compose", VersionRef: "koin"},
				{Alias: "koin-annotations", Module: "io.insert-koin:koin-annotations", VersionRef: "koinAnnotations"},
				{Alias: "koin-ksp-compiler", Module: "io.insert-koin:koin-ksp-compiler", VersionRef: "koinAnnotations"},
			},
			Plugins: []gradle.Plugin{kspPlugin},
		}
	default:
		return gradle.CatalogEntries{
			Versions: []gradle.Version{{Alias: "koin", Value: "4.0.0"}},
			Libraries: []gradle.Library{
				{Alias: "koin-android", Module: "io.insert-koin:koin-android", VersionRef: "koin"},
				{Alias: "koin-androidx-compose", Module: "io.insert-koin:koin-androidx-compose", VersionRef: "koin"},
			},
		}
	}
}

// catalogFor merges the build-logic aliases with the framework's.
func catalogFor(fw di.Framework) gradle.CatalogEntries {
	fc := frameworkCatalog(fw)
	return gradle.CatalogEntries{
		Versions:  append(append([]gradle.Version(nil), buildLogicCatalog.Versions...), fc.Versions...),
		Libraries: append(append([]gradle.Library(nil), buildLogicCatalog.Libraries...), fc.Libraries...),
		Plugins:   fc.Plugins,
	}
}

// buildDeps are the catalog accessors a layer's build script applies.
type buildDeps struct {
	plugins    []string
	libraries  []string
	processors []string
}

// depsFor returns the DI dependencies of a layer. The data layer holds the DI
// module, the presentation layer hosts view models and the domain layer hosts
// injectable use cases. Other layers are framework free.
func depsFor(fw di.Framework, layer string) buildDeps {
	presentation := layer == generator.Presentation
	switch layer {
	case generator.Domain:
		switch fw {
		case di.Hilt:
			return buildDeps{libraries: []string{"javax.inject"}}
		case di.Metro:
			return buildDeps{plugins: []string{"metro"}}
		case di.KoinAnnotations:
			return buildDeps{plugins: []string{"ksp"}, libraries: []string{"koin.annotations"}, processors: []string{"koin.ksp.compiler"}}
		default:
			return buildDeps{}
		}
	case generator.Data, generator.Presentation:
	default:
		return buildDeps{}
	}

	switch fw {
	case di.Hilt:
		d := buildDeps{plugins: []string{"hilt", "ksp"}, libraries: []string{"hilt.android"}, processors: []string{"hilt.compiler"}}
		if presentation {
			d.libraries = append(d.libraries, "hilt.navigation.compose")
		}
		return d
	case di.Metro:
		return buildDeps{plugins: []string{"metro"}}
	case di.KoinAnnotations:
		d := buildDeps{plugins: []string{"ksp"}, libraries: []string{"koin.android", "koin.annotations"}, processors: []string{"koin.ksp.compiler"}}
		if presentation {
			d.libraries = append(d.libraries, "koin.androidx.compose")
		}
		return d
	default:
		d := buildDeps{libraries: []string{"koin.android"}}
		if presentation {
			d.libraries = append(d.libraries, "koin.androidx.compose")
		}
		return d
	}
}
