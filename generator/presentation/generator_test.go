package presentation

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

const presentationDir = "shop/app/checkout/presentation/src/main/kotlin/com/exampleOrg/checkout/presentation"

func scaffolded(t *testing.T, p module.Params) (*fs.FileSystem, *Generator) {
	t.Helper()
	memFS := fs.NewMemoryFileSystem()
	env, err := generator.NewEnv(memFS)
	require.NoError(t, err)
	_, err = module.New(env).Generate(context.Background(), p)
	require.NoError(t, err)
	return memFS, New(env)
}

func moduleParams() module.Params {
	return module.NewParams("shop", "app", "checkout", "com.Example-Org")
}

func params() Params {
	return NewParams("shop", "app", "checkout", "com.Example-Org")
}

func TestGenerate_HiltScreen(t *testing.T) {
	memFS, g := scaffolded(t, moduleParams())

	res, err := g.Generate(context.Background(), params().WithUseCases("getCart"))
	require.NoError(t, err)
	assert.Equal(t, "Screen Checkout: 3 files created, 0 skipped", res.Message)
	assert.Empty(t, res.Created)

	vm, ok, _ := memFS.ReadText(presentationDir + "/CheckoutViewModel.kt")
	require.True(t, ok)
	assert.Equal(t, `package com.exampleOrg.checkout.presentation

import androidx.lifecycle.ViewModel
import com.exampleOrg.checkout.domain.usecase.GetCartUseCase
import dagger.hilt.android.lifecycle.HiltViewModel
import javax.inject.Inject
import kotlinx.coroutines.flow.MutableStateFlow
import kotlinx.coroutines.flow.StateFlow
import kotlinx.coroutines.flow.asStateFlow

@HiltViewModel
class CheckoutViewModel @Inject constructor(
    private val getCartUseCase: GetCartUseCase,
) : ViewModel() {
    private val _uiState = MutableStateFlow<CheckoutUiState>(CheckoutUiState.Loading)
    val uiState: StateFlow<CheckoutUiState> = _uiState.asStateFlow()
}
`, vm)

	screen, _, _ := memFS.ReadText(presentationDir + "/CheckoutScreen.kt")
	assert.Equal(t, `package com.exampleOrg.checkout.presentation

import androidx.compose.runtime.Composable
import androidx.compose.runtime.getValue
import androidx.hilt.navigation.compose.hiltViewModel
import androidx.lifecycle.compose.collectAsStateWithLifecycle

@Composable
fun CheckoutScreen(
    viewModel: CheckoutViewModel = hiltViewModel(),
) {
    val uiState by viewModel.uiState.collectAsStateWithLifecycle()
}
`, screen)

	state, _, _ := memFS.ReadText(presentationDir + "/CheckoutUiState.kt")
	assert.Contains(t, state, "sealed interface CheckoutUiState {\n")

	assert.False(t, memFS.Exists(presentationDir+"/di/CheckoutPresentationModule.kt"))
}

func TestGenerate_KoinViewModelBinding(t *testing.T) {
	memFS, g := scaffolded(t, moduleParams().WithDI(module.Koin{}))
	ctx := context.Background()

	res, err := g.Generate(ctx, params().WithDI(Koin{}).WithScreenName("CartScreen"))
	require.NoError(t, err)
	assert.Contains(t, res.Message, "Screen Cart: 3 files created, 0 skipped\ncreated ")

	vm, _, _ := memFS.ReadText(presentationDir + "/CartViewModel.kt")
	assert.Contains(t, vm, "\nclass CartViewModel(\n) : ViewModel() {\n")

	screen, _, _ := memFS.ReadText(presentationDir + "/CartScreen.kt")
	assert.Contains(t, screen, "import org.koin.androidx.compose.koinViewModel\n")
	assert.Contains(t, screen, "viewModel: CartViewModel = koinViewModel(),\n")

	bindings, ok, _ := memFS.ReadText(presentationDir + "/di/CheckoutPresentationModule.kt")
	require.True(t, ok)
	assert.Equal(t, `package com.exampleOrg.checkout.presentation.di

import com.exampleOrg.checkout.presentation.CartViewModel
import org.koin.core.module.dsl.viewModelOf
import org.koin.dsl.module

val checkoutPresentationModule = module {
    viewModelOf(::CartViewModel)
}
`, bindings)

	_, err = g.Generate(ctx, params().WithDI(Koin{}))
	require.NoError(t, err)
	bindings, _, _ = memFS.ReadText(presentationDir + "/di/CheckoutPresentationModule.kt")
	assert.Contains(t, bindings, "    viewModelOf(::CartViewModel)\n    viewModelOf(::CheckoutViewModel)\n}\n")
	assert.Contains(t, bindings, "import com.exampleOrg.checkout.presentation.CheckoutViewModel\n")
}

func TestGenerate_KoinAnnotations(t *testing.T) {
	memFS, g := scaffolded(t, moduleParams().WithDI(module.Koin{UseAnnotations: true}))

	_, err := g.Generate(context.Background(), params().WithDI(Koin{UseAnnotations: true}))
	require.NoError(t, err)

	vm, _, _ := memFS.ReadText(presentationDir + "/CheckoutViewModel.kt")
	assert.Contains(t, vm, "import org.koin.android.annotation.KoinViewModel\n")
	assert.Contains(t, vm, "@KoinViewModel\nclass CheckoutViewModel(\n")
	assert.False(t, memFS.Exists(presentationDir+"/di/CheckoutPresentationModule.kt"))
}

func TestGenerate_Idempotent(t *testing.T) {
	memFS, g := scaffolded(t, moduleParams().WithDI(module.Koin{}))
	ctx := context.Background()

	_, err := g.Generate(ctx, params().WithDI(Koin{}))
	require.NoError(t, err)
	before, _ := memFS.Snapshot("shop")

	res, err := g.Generate(ctx, params().WithDI(Koin{}))
	require.NoError(t, err)
	assert.Equal(t, "Screen Checkout: 0 files created, 3 skipped", res.Message)

	after, _ := memFS.Snapshot("shop")
	assert.Equal(t, before, after)
}

func TestGenerate_RequiresPresentationModule(t *testing.T) {
	memFS, g := scaffolded(t, moduleParams().WithPresentation(false))
	before, _ := memFS.Snapshot("shop")

	res, err := g.Generate(context.Background(), params())
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, core.ErrValidation))
	assert.Contains(t, err.Error(), ":app:checkout:presentation")

	after, _ := memFS.Snapshot("shop")
	assert.Equal(t, before, after)
}

func TestParams_Stem(t *testing.T) {
	assert.Equal(t, "Checkout", params().Stem())
	assert.Equal(t, "Cart", params().WithScreenName("cart-screen").Stem())
	assert.Equal(t, "Cart", params().WithScreenName("CartViewModel").Stem())
	assert.Equal(t, "", params().WithScreenName("Screen").Stem())
}
