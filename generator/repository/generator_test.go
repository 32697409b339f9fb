package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/santiagomed/modkit/core"
	"github.com/santiagomed/modkit/fs"
	"github.com/santiagomed/modkit/generator"
	"github.com/santiagomed/modkit/generator/module"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	domainSrc = "shop/app/checkout/domain/src/main/kotlin/com/exampleOrg/checkout/domain"
	dataSrc   = "shop/app/checkout/data/src/main/kotlin/com/exampleOrg/checkout/data"
)

func scaffolded(t *testing.T, di module.DiStrategy) (*fs.FileSystem, *Generator) {
	t.Helper()
	memFS := fs.NewMemoryFileSystem()
	env, err := generator.NewEnv(memFS)
	require.NoError(t, err)

	p := module.NewParams("shop", "app", "checkout", "com.Example-Org").
		WithDatasource(module.DatasourceRemoteAndLocal).
		WithDI(di)
	_, err = module.New(env).Generate(context.Background(), p)
	require.NoError(t, err)
	return memFS, New(env)
}

func params() Params {
	return NewParams("shop", "app", "checkout", "com.Example-Org")
}

func TestGenerate_HiltRepository(t *testing.T) {
	memFS, g := scaffolded(t, module.Hilt{})

	res, err := g.Generate(context.Background(), params())
	require.NoError(t, err)
	assert.Equal(t, []string{
		domainSrc + "/CheckoutRepository.kt",
		dataSrc + "/CheckoutRepositoryImpl.kt",
	}, res.Created)
	assert.Contains(t, res.Message, "Repository CheckoutRepository: 2 files created, 0 skipped")

	iface, _, _ := memFS.ReadText(domainSrc + "/CheckoutRepository.kt")
	assert.Equal(t, "package com.exampleOrg.checkout.domain\n\ninterface CheckoutRepository\n", iface)

	impl, _, _ := memFS.ReadText(dataSrc + "/CheckoutRepositoryImpl.kt")
	assert.Equal(t, `package com.exampleOrg.checkout.data

import com.exampleOrg.checkout.domain.CheckoutRepository
import com.exampleOrg.checkout.local.CheckoutLocalDataSource
import com.exampleOrg.checkout.remote.CheckoutRemoteDataSource
import javax.inject.Inject

class CheckoutRepositoryImpl @Inject constructor(
    private val checkoutRemoteDataSource: CheckoutRemoteDataSource,
    private val checkoutLocalDataSource: CheckoutLocalDataSource,
) : CheckoutRepository
`, impl)

	diModule, _, _ := memFS.ReadText(dataSrc + "/di/CheckoutModule.kt")
	assert.Contains(t, diModule, "abstract class CheckoutModule {\n"+
		"    @Binds\n"+
		"    abstract fun bindCheckoutRepository(impl: CheckoutRepositoryImpl): CheckoutRepository\n}\n")
	assert.Contains(t, diModule, "import com.exampleOrg.checkout.domain.CheckoutRepository\n")
	assert.Contains(t, diModule, "import com.exampleOrg.checkout.data.CheckoutRepositoryImpl\n")
}

func TestGenerate_SecondRepositoryKeepsFirstBinding(t *testing.T) {
	memFS, g := scaffolded(t, module.Hilt{})
	ctx := context.Background()

	_, err := g.Generate(ctx, params())
	require.NoError(t, err)
	_, err = g.Generate(ctx, params().WithName("Payment"))
	require.NoError(t, err)

	diModule, _, _ := memFS.ReadText(dataSrc + "/di/CheckoutModule.kt")
	assert.Contains(t, diModule, "bindCheckoutRepository")
	assert.Contains(t, diModule, "\n\n    @Binds\n    abstract fun bindPaymentRepository(impl: PaymentRepositoryImpl): PaymentRepository\n}\n")

	impl, _, _ := memFS.ReadText(dataSrc + "/PaymentRepositoryImpl.kt")
	assert.Contains(t, impl, "class PaymentRepositoryImpl @Inject constructor(\n    private val checkoutRemoteDataSource")
}

func TestGenerate_Idempotent(t *testing.T) {
	memFS, g := scaffolded(t, module.Hilt{})
	ctx := context.Background()

	_, err := g.Generate(ctx, params())
	require.NoError(t, err)
	before, _ := memFS.Snapshot("shop")

	res, err := g.Generate(ctx, params())
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Len(t, res.Skipped, 2)

	after, _ := memFS.Snapshot("shop")
	assert.Equal(t, before, after)
}

func TestGenerate_KoinBinding(t *testing.T) {
	memFS, g := scaffolded(t, module.Koin{})

	_, err := g.Generate(context.Background(), params().WithDI(Koin{}).WithDataSources("CheckoutApi"))
	require.NoError(t, err)

	impl, _, _ := memFS.ReadText(dataSrc + "/CheckoutRepositoryImpl.kt")
	assert.Contains(t, impl, "class CheckoutRepositoryImpl(\n    private val checkoutApi: CheckoutApi,\n) : CheckoutRepository\n")
	assert.NotContains(t, impl, "Inject")

	diModule, _, _ := memFS.ReadText(dataSrc + "/di/CheckoutModule.kt")
	assert.Contains(t, diModule, "val checkoutModule = module {\n"+
		"    singleOf(::CheckoutRepositoryImpl) { bind<CheckoutRepository>() }\n}\n")
	assert.Contains(t, diModule, "import org.koin.core.module.dsl.singleOf\n")
}

func TestGenerate_KoinAnnotations(t *testing.T) {
	memFS, g := scaffolded(t, module.Koin{UseAnnotations: true})

	_, err := g.Generate(context.Background(), params().WithDI(Koin{UseAnnotations: true}))
	require.NoError(t, err)

	impl, _, _ := memFS.ReadText(dataSrc + "/CheckoutRepositoryImpl.kt")
	assert.Contains(t, impl, "@Factory\nclass CheckoutRepositoryImpl(\n")
	assert.Contains(t, impl, "import org.koin.core.annotation.Factory\n")

	diModule, _, _ := memFS.ReadText(dataSrc + "/di/CheckoutModule.kt")
	assert.Contains(t, diModule, "    @Single\n    fun provideCheckoutRepository(impl: CheckoutRepositoryImpl): CheckoutRepository = impl\n")
}

func TestGenerate_RequiresModules(t *testing.T) {
	env, err := generator.NewEnv(fs.NewMemoryFileSystem())
	require.NoError(t, err)

	res, err := New(env).Generate(context.Background(), params())
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, core.ErrValidation))
	assert.Contains(t, err.Error(), ":app:checkout:domain")
}

func TestValidate_Names(t *testing.T) {
	_, g := scaffolded(t, module.Hilt{})
	assert.True(t, errors.Is(g.Validate(params().WithDI(nil)), core.ErrValidation))

	p := params()
	p.FeatureName = " "
	assert.True(t, errors.Is(g.Validate(p), core.ErrValidation))
}

func TestParams_ClassName(t *testing.T) {
	assert.Equal(t, "CheckoutRepository", params().ClassName())
	assert.Equal(t, "PaymentRepository", params().WithName("payment").ClassName())
	assert.Equal(t, "PaymentRepository", params().WithName("PaymentRepository").ClassName())
}
