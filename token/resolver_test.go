package token

import (
	"testing"

	"github.com/santiagomed/modkit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	r := NewResolver()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"reverse domain with dash", "com.Example-Org", "exampleOrg"},
		{"plain", "acme", "acme"},
		{"uppercase", "ACME", "acme"},
		{"nested segments", "com.acme.mobile", "acmeMobile"},
		{"underscores and spaces", "my_cool org", "myCoolOrg"},
		{"only prefix", "com", "com"},
		{"wrapped", "${com.example}", "example"},
		{"wrapped with spaces", "${ acme-labs }", "acmeLabs"},
		{"leading digit", "42labs", "_42labs"},
		{"double prefix", "io.dev.tools", "tools"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_BlankFallback(t *testing.T) {
	r := NewResolver()
	for _, in := range []string{"", "   ", "\t\n", "${}", "${  }"} {
		got, err := r.Normalize(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, DefaultFallback, got, "input %q", in)
	}
}

func TestNormalize_WrappedMatchesUnwrapped(t *testing.T) {
	r := NewResolver()
	for _, in := range []string{"com.example", "Acme-Org", "org.some.thing"} {
		plain, err := r.Normalize(in)
		require.NoError(t, err)
		wrapped, err := r.Normalize("${" + in + "}")
		require.NoError(t, err)
		assert.Equal(t, plain, wrapped)
	}
}

func TestNormalize_EmptyAfterNormalization(t *testing.T) {
	r := NewResolver()
	for _, in := range []string{"---", "com.", "${...}"} {
		_, err := r.Normalize(in)
		assert.ErrorIs(t, err, core.ErrConfiguration, "input %q", in)
	}
}

func TestApply_AllFormsConsistent(t *testing.T) {
	r := NewResolver()
	body := "package com.PACKAGE.checkout\n" +
		"// source: src/main/kotlin/com/PACKAGE/checkout\n" +
		"val org = \"PACKAGE\"\n" +
		"val wrapped = \"${PACKAGE}\"\n" +
		"val untouched = PACKAGE_NAME\n"

	got, err := r.Apply(body, "com.Example-Org")
	require.NoError(t, err)
	assert.Equal(t, "package com.exampleOrg.checkout\n"+
		"// source: src/main/kotlin/com/exampleOrg/checkout\n"+
		"val org = \"exampleOrg\"\n"+
		"val wrapped = \"exampleOrg\"\n"+
		"val untouched = PACKAGE_NAME\n", got)
	assert.NotContains(t, got, "PACKAGE\"")
}

func TestApply_PackageDeclaration(t *testing.T) {
	got, err := NewResolver().Apply("package ${PACKAGE}", "com.Example-Org")
	require.NoError(t, err)
	assert.Equal(t, "package exampleOrg", got)
}

func TestApply_PropagatesConfigurationError(t *testing.T) {
	_, err := NewResolver().Apply("package PACKAGE", "--")
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestQualifiedAndPath(t *testing.T) {
	r := NewResolver()
	q, err := r.Qualified("com.Acme", "checkout", "", "domain")
	require.NoError(t, err)
	assert.Equal(t, "com.acme.checkout.domain", q)

	p, err := r.Path("com.Acme", "checkout", "domain")
	require.NoError(t, err)
	assert.Equal(t, "com/acme/checkout/domain", p)
}

func TestQualified_PrefixIsAlwaysCom(t *testing.T) {
	r := NewResolver()
	for _, org := range []string{"org.acme", "io.acme", "acme"} {
		q, err := r.Qualified(org, "checkout")
		require.NoError(t, err)
		assert.Equal(t, "com.acme.checkout", q, org)
	}
}

func TestCustomPlaceholder(t *testing.T) {
	r := NewResolverFor("ORG", "sample")
	got, err := r.Apply("com.ORG.app ORG", "  ")
	require.NoError(t, err)
	assert.Equal(t, "com.sample.app sample", got)
}
