package theme

import (
	"strings"
	"testing"
)

func TestByName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"light", "light"},
		{"dark", "dark"},
		{"", "light"},
		{"solarized", "light"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ByName(tt.name); got.Name != tt.want {
				t.Errorf("ByName(%q).Name = %q, want %q", tt.name, got.Name, tt.want)
			}
		})
	}
}

func TestCSSVariables(t *testing.T) {
	css := Light().CSSVariables()

	if !strings.HasPrefix(css, ":root {") || !strings.HasSuffix(css, "}") {
		t.Errorf("CSSVariables should be a :root block: %q", css)
	}
	for _, token := range []string{"--gp-bg", "--gp-fg", "--gp-accent", "--gp-muted", "--gp-surface"} {
		if !strings.Contains(css, token) {
			t.Errorf("CSSVariables missing %s: %q", token, css)
		}
	}

	// Deterministic output
	if css != Light().CSSVariables() {
		t.Error("CSSVariables should be deterministic")
	}

	// Themes must disagree somewhere or switching is a no-op
	if css == Dark().CSSVariables() {
		t.Error("light and dark variables should differ")
	}
}
