package templates

import (
	"testing"

	modfs "github.com/santiagomed/modkit/fs"
	"github.com/santiagomed/modkit/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	return r
}

func TestNames(t *testing.T) {
	names := newRenderer(t).Names()
	assert.Contains(t, names, ModuleBuild)
	assert.Contains(t, names, Repository)
	assert.Contains(t, names, Screen)
	assert.NotContains(t, names, partials)
	assert.NotContains(t, names, "header")
}

func TestRender_Repository(t *testing.T) {
	out, err := newRenderer(t).Render(Repository, Data{Package: "com.PACKAGE.checkout.domain", Name: "Checkout"})
	require.NoError(t, err)
	assert.Equal(t, "package com.PACKAGE.checkout.domain\n\ninterface CheckoutRepository\n", out)
}

func TestRender_RepositoryImpl(t *testing.T) {
	out, err := newRenderer(t).Render(RepositoryImpl, Data{
		Package: "com.PACKAGE.checkout.data",
		Imports: []string{"com.PACKAGE.checkout.domain.CheckoutRepository", "javax.inject.Inject"},
		Name:    "Checkout",
		Inject:  true,
		Params:  []Param{{Name: "remote", Type: "CheckoutRemoteDataSource"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "package com.PACKAGE.checkout.data\n\n"+
		"import com.PACKAGE.checkout.domain.CheckoutRepository\n"+
		"import javax.inject.Inject\n\n"+
		"class CheckoutRepositoryImpl @Inject constructor(\n"+
		"    private val remote: CheckoutRemoteDataSource,\n"+
		") : CheckoutRepository\n", out)
}

func TestRender_ViewModelAnnotations(t *testing.T) {
	out, err := newRenderer(t).Render(ViewModel, Data{
		Package:     "com.PACKAGE.checkout.presentation",
		Name:        "Checkout",
		Annotations: []string{"@HiltViewModel"},
		Inject:      true,
	})
	require.NoError(t, err)
	assert.Contains(t, out, "@HiltViewModel\nclass CheckoutViewModel @Inject constructor(\n) : ViewModel() {\n")
	assert.Contains(t, out, "MutableStateFlow<CheckoutUiState>(CheckoutUiState.Loading)")
}

func TestRender_Screen(t *testing.T) {
	out, err := newRenderer(t).Render(Screen, Data{Package: "p", Name: "Checkout", Factory: "koinViewModel"})
	require.NoError(t, err)
	assert.Contains(t, out, "    viewModel: CheckoutViewModel = koinViewModel(),\n")

	out, err = newRenderer(t).Render(Screen, Data{Package: "p", Name: "Checkout"})
	require.NoError(t, err)
	assert.Contains(t, out, "    viewModel: CheckoutViewModel,\n")
}

func TestRender_ModuleBuild(t *testing.T) {
	r := newRenderer(t)

	out, err := r.Render(ModuleBuild, Data{
		Package:      "com.PACKAGE.checkout.data",
		Plugin:       "com.PACKAGE.android.library",
		Plugins:      []string{"hilt", "ksp"},
		Libraries:    []string{"hilt.android"},
		Processors:   []string{"hilt.compiler"},
		Dependencies: []string{":app:checkout:domain"},
	})
	require.NoError(t, err)
	assert.Equal(t, `plugins {
    id("com.PACKAGE.android.library")
    alias(libs.plugins.hilt)
    alias(libs.plugins.ksp)
}

android {
    namespace = "com.PACKAGE.checkout.data"
}

dependencies {
    implementation(project(":app:checkout:domain"))
    implementation(libs.hilt.android)
    ksp(libs.hilt.compiler)
}
`, out)

	out, err = r.Render(ModuleBuild, Data{Package: "com.PACKAGE.checkout.domain", Plugin: "com.PACKAGE.android.library"})
	require.NoError(t, err)
	assert.Equal(t, "plugins {\n    id(\"com.PACKAGE.android.library\")\n}\n\nandroid {\n    namespace = \"com.PACKAGE.checkout.domain\"\n}\n", out)
}

func TestRender_ResolvesWithToken(t *testing.T) {
	out, err := newRenderer(t).Render(UseCase, Data{
		Package: "com.PACKAGE.checkout.domain",
		Name:    "GetCheckout",
		Params:  []Param{{Name: "repository", Type: "CheckoutRepository"}},
	})
	require.NoError(t, err)

	resolved, err := token.NewResolver().Apply(out, "com.Example-Org")
	require.NoError(t, err)
	assert.Contains(t, resolved, "package com.exampleOrg.checkout.domain\n")
	assert.NotContains(t, resolved, "PACKAGE")
}

func TestRender_Unknown(t *testing.T) {
	_, err := newRenderer(t).Render("nope.tmpl", Data{})
	assert.Error(t, err)
}

func TestNewRendererWithOverrides(t *testing.T) {
	memFS := modfs.NewMemoryFileSystem()
	_, _ = memFS.WriteText("overrides/repository.kt.tmpl", "// custom {{.Name}}\n", false)
	_, _ = memFS.WriteText("overrides/unknown.kt.tmpl", "ignored", false)

	r, err := NewRendererWithOverrides(memFS, "overrides")
	require.NoError(t, err)

	out, err := r.Render(Repository, Data{Name: "Checkout"})
	require.NoError(t, err)
	assert.Equal(t, "// custom Checkout\n", out)
	assert.NotContains(t, r.Names(), "unknown.kt.tmpl")

	// untouched templates still use the embedded partials
	out, err = r.Render(DataSource, Data{Package: "p", Name: "CheckoutRemoteDataSource"})
	require.NoError(t, err)
	assert.Equal(t, "package p\n\ninterface CheckoutRemoteDataSource\n", out)
}

func TestNewRendererWithOverrides_MissingDir(t *testing.T) {
	r, err := NewRendererWithOverrides(modfs.NewMemoryFileSystem(), "absent")
	require.NoError(t, err)
	assert.Equal(t, newRenderer(t).Names(), r.Names())
}

func TestNewRendererWithOverrides_BadTemplate(t *testing.T) {
	memFS := modfs.NewMemoryFileSystem()
	_, _ = memFS.WriteText("o/usecase.kt.tmpl", "{{ .Name ", false)
	_, err := NewRendererWithOverrides(memFS, "o")
	assert.Error(t, err)
}
