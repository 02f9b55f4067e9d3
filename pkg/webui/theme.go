package webui

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// DefaultTheme names the built-in manifest.
const DefaultTheme = "default"

// ErrUnknownVariant is returned when a manifest lacks the requested variant.
var ErrUnknownVariant = errors.New("webui: unknown theme variant")

// pageFallbacks maps the partials the page needs to the embedded templates.
var pageFallbacks = map[string]string{"page": "page"}

// NewThemeRegistry returns a go-theme registry holding the built-in manifest
// plus manifests.
func NewThemeRegistry(manifests ...*theme.Manifest) (*theme.MemoryRegistry, error) {
	registry := theme.NewRegistry()
	for _, manifest := range append([]*theme.Manifest{DefaultManifest()}, manifests...) {
		if err := registry.Register(manifest); err != nil {
			name := ""
			if manifest != nil {
				name = manifest.Name
			}
			return nil, fmt.Errorf("webui: register theme %q: %w", name, err)
		}
	}
	return registry, nil
}

// resolveTheme selects name and variant and flattens the selection into the
// renderer config the page consumes.
func resolveTheme(selector theme.ThemeSelector, name, variant string) (*theme.RendererConfig, error) {
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("webui: select theme %q: %w", name, err)
	}
	if selection == nil {
		return nil, fmt.Errorf("webui: select theme %q: empty selection", name)
	}
	if selection.Variant != "" && selection.Manifest != nil {
		if _, ok := selection.Manifest.Variants[selection.Variant]; !ok {
			return nil, fmt.Errorf("%w: %q for theme %q", ErrUnknownVariant, selection.Variant, selection.Theme)
		}
	}
	cfg := selection.RendererTheme(pageFallbacks)
	return &cfg, nil
}

// CSSVarsStyle renders CSS custom properties as a declaration list sorted by
// name.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	var builder strings.Builder
	for _, key := range slices.Sorted(maps.Keys(vars)) {
		builder.WriteString(key)
		builder.WriteString(": ")
		builder.WriteString(vars[key])
		builder.WriteString("; ")
	}
	return strings.TrimSpace(builder.String())
}

// DefaultManifest is the built-in light theme with a dark variant.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultTheme,
		Version: "1.0.0",
		Templates: map[string]string{
			"page": "page.html",
		},
		Assets: theme.Assets{
			Prefix: StaticPrefix,
			Files: map[string]string{
				"stylesheet": "formflow.css",
			},
		},
		Tokens: map[string]string{
			"ff-accent":  "#2563eb",
			"ff-surface": "#ffffff",
			"ff-text":    "#111827",
			"ff-muted":   "#6b7280",
			"ff-pass":    "#15803d",
			"ff-fail":    "#b91c1c",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"ff-surface": "#111827",
					"ff-text":    "#f9fafb",
					"ff-muted":   "#9ca3af",
				},
			},
		},
	}
}
