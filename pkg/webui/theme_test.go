package webui

import (
	"testing"

	theme "github.com/goliatone/go-theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acmeManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#123456", "ink": "#000"},
		Templates: map[string]string{
			"page": "acme/page.html",
		},
		Assets: theme.Assets{
			Prefix: "/assets/acme",
			Files:  map[string]string{"stylesheet": "acme.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{"brand": "#654321"},
				Assets: theme.Assets{
					Files: map[string]string{"stylesheet": "acme.dark.css"},
				},
			},
		},
	}
}

func TestThemeRegistryHoldsDefaultManifest(t *testing.T) {
	registry, err := NewThemeRegistry(acmeManifest())
	require.NoError(t, err)

	var names []string
	for _, ref := range registry.Themes() {
		names = append(names, ref.Name)
	}
	assert.ElementsMatch(t, []string{"acme", DefaultTheme}, names)
}

func TestThemeRegistryRejectsInvalidManifest(t *testing.T) {
	_, err := NewThemeRegistry(&theme.Manifest{Name: "broken"})
	assert.ErrorContains(t, err, `register theme "broken"`)
}

func TestResolveThemeMergesVariant(t *testing.T) {
	registry, err := NewThemeRegistry(acmeManifest())
	require.NoError(t, err)
	selector := theme.Selector{Registry: registry}

	cfg, err := resolveTheme(selector, "acme", "dark")
	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.Theme)
	assert.Equal(t, "dark", cfg.Variant)
	assert.Equal(t, "#654321", cfg.Tokens["brand"])
	assert.Equal(t, "#000", cfg.Tokens["ink"])
	assert.Equal(t, "#654321", cfg.CSSVars["--brand"])
	assert.Equal(t, "acme/page.html", cfg.Partials["page"])
	assert.Equal(t, "/assets/acme/acme.dark.css", cfg.AssetURL("stylesheet"))
	assert.Equal(t, "", cfg.AssetURL("missing"))

	base, err := resolveTheme(selector, "acme", "")
	require.NoError(t, err)
	assert.Equal(t, "#123456", base.CSSVars["--brand"])
	assert.Equal(t, "/assets/acme/acme.css", base.AssetURL("stylesheet"))
}

func TestResolveThemeFallsBackToEmbeddedPage(t *testing.T) {
	manifest := acmeManifest()
	manifest.Templates = nil
	registry, err := NewThemeRegistry(manifest)
	require.NoError(t, err)

	cfg, err := resolveTheme(theme.Selector{Registry: registry}, "acme", "")
	require.NoError(t, err)
	assert.Equal(t, "page", cfg.Partials["page"])
}

func TestResolveThemeErrors(t *testing.T) {
	registry, err := NewThemeRegistry()
	require.NoError(t, err)
	selector := theme.Selector{Registry: registry}

	_, err = resolveTheme(selector, "nope", "")
	assert.ErrorIs(t, err, theme.ErrThemeNotFound)

	_, err = resolveTheme(selector, DefaultTheme, "sepia")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestCSSVarsStyleIsSorted(t *testing.T) {
	got := CSSVarsStyle(map[string]string{"--b": "2", "--a": "1"})
	assert.Equal(t, "--a: 1; --b: 2;", got)
	assert.Empty(t, CSSVarsStyle(nil))
}
