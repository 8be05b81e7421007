// Package theme defines named design-token sets for the render surfaces.
//
// A Theme is an explicit value passed to renderers, never process-global
// state: callers resolve a theme once (from config or a stored preference)
// and hand it down. Renderers emit the tokens as CSS variables, so the
// generated markup stays theme-agnostic.
package theme

import (
	"fmt"
	"sort"
	"strings"
)

// Theme is a named set of design tokens.
type Theme struct {
	Name   string
	Tokens map[string]string
}

// Light is the default light theme.
func Light() Theme {
	return Theme{
		Name: "light",
		Tokens: map[string]string{
			"bg":      "#ffffff",
			"fg":      "#1a1a2e",
			"accent":  "#4f46e5",
			"muted":   "#6b7280",
			"surface": "#f3f4f6",
		},
	}
}

// Dark is the default dark theme.
func Dark() Theme {
	return Theme{
		Name: "dark",
		Tokens: map[string]string{
			"bg":      "#0f1117",
			"fg":      "#e5e7eb",
			"accent":  "#818cf8",
			"muted":   "#9ca3af",
			"surface": "#1f2430",
		},
	}
}

// ByName resolves a theme name, falling back to Light for unknown names.
func ByName(name string) Theme {
	if name == "dark" {
		return Dark()
	}
	return Light()
}

// CSSVariables renders the token set as a CSS custom-property block for the
// :root selector. Tokens are emitted in sorted order for deterministic
// output.
func (t Theme) CSSVariables() string {
	names := make([]string, 0, len(t.Tokens))
	for name := range t.Tokens {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(":root {")
	for _, name := range names {
		fmt.Fprintf(&b, " --gp-%s: %s;", name, t.Tokens[name])
	}
	b.WriteString(" }")
	return b.String()
}
