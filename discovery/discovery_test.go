package discovery

import (
	"testing"

	"github.com/santiagomed/modkit/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*fs.FileSystem, *Discovery) {
	t.Helper()
	memFS := fs.NewMemoryFileSystem()
	d, err := New(memFS, 0)
	require.NoError(t, err)
	return memFS, d
}

func TestPackageOf_Namespace(t *testing.T) {
	memFS, d := setup(t)
	_, _ = memFS.WriteText("app/checkout/data/build.gradle.kts", "android {\n    namespace = \"com.acme.checkout.data\"\n}\n", false)

	pkg, ok, err := d.PackageOf("app/checkout/data")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "com.acme.checkout.data", pkg)
}

func TestPackageOf_SourceFallback(t *testing.T) {
	memFS, d := setup(t)
	_, _ = memFS.WriteText("core/build.gradle.kts", "plugins {}\n", false)
	_, _ = memFS.WriteText("core/src/main/kotlin/com/acme/core/Util.kt", "package com.acme.core\n\nfun x() = 1\n", false)

	pkg, ok, err := d.PackageOf("core")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "com.acme.core", pkg)
}

func TestPackageOf_Absent(t *testing.T) {
	_, d := setup(t)
	pkg, ok, err := d.PackageOf("missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, pkg)
}

func TestRepositoriesAndDataSources(t *testing.T) {
	memFS, d := setup(t)
	dir := "app/checkout/domain/src/main/kotlin/com/acme/checkout/domain/"
	_, _ = memFS.WriteText(dir+"PaymentRepository.kt", "package x\n\ninterface PaymentRepository {\n}\n", false)
	_, _ = memFS.WriteText(dir+"CheckoutRepository.kt", "package x\n\ninternal interface CheckoutRepository\nclass CheckoutRepositoryImpl : CheckoutRepository\n", false)
	_, _ = memFS.WriteText(dir+"Sources.kt", "interface CheckoutRemoteDataSource\ninterface CheckoutLocalDataSource\n", false)
	_, _ = memFS.WriteText(dir+"notes.txt", "interface IgnoredRepository\n", false)

	repos, err := d.Repositories("app/checkout/domain")
	require.NoError(t, err)
	assert.Equal(t, []string{"CheckoutRepository", "PaymentRepository"}, repos)

	sources, err := d.DataSources("app/checkout/domain")
	require.NoError(t, err)
	assert.Equal(t, []string{"CheckoutLocalDataSource", "CheckoutRemoteDataSource"}, sources)

	none, err := d.Repositories("app/other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCacheAndPurge(t *testing.T) {
	memFS, d := setup(t)
	dir := "m/src/main/kotlin/"
	_, _ = memFS.WriteText(dir+"A.kt", "interface ARepository\n", false)

	repos, err := d.Repositories("m")
	require.NoError(t, err)
	assert.Equal(t, []string{"ARepository"}, repos)

	_, _ = memFS.WriteText(dir+"B.kt", "interface BRepository\n", false)
	repos, _ = d.Repositories("m")
	assert.Equal(t, []string{"ARepository"}, repos, "cached answer")

	repos[0] = "mutated"
	again, _ := d.Repositories("m")
	assert.Equal(t, []string{"ARepository"}, again)

	d.Purge()
	repos, _ = d.Repositories("m")
	assert.Equal(t, []string{"ARepository", "BRepository"}, repos)
}
