package confkit_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"marketdash-api/pkg/confkit"
)

func TestResolvePath(t *testing.T) {
	t.Setenv("CONFKIT_TEST_DIR", "shared")

	tests := []struct {
		name     string
		base     string
		file     string
		expected string
	}{
		{name: "absolute path", base: "/base/dir", file: "/etc/marketdash/llm.yaml", expected: "/etc/marketdash/llm.yaml"},
		{name: "relative path", base: "/base/dir", file: "providers.yaml", expected: "/base/dir/providers.yaml"},
		{name: "env var", base: "/base/dir", file: "${CONFKIT_TEST_DIR}/llm.yaml", expected: "/base/dir/shared/llm.yaml"},
		{name: "surrounding space", base: "/base", file: "  llm.yaml ", expected: "/base/llm.yaml"},
		{name: "blank", base: "/base", file: "  ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := confkit.ResolvePath(tt.base, tt.file); got != tt.expected {
				t.Errorf("ResolvePath() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSection_Hydrate(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		section := &confkit.Section[string]{}
		err := section.Hydrate("/base", func(string) (*string, error) {
			t.Error("loader should not be called for empty file")
			return nil, nil
		})
		if err != nil {
			t.Fatalf("Hydrate() error = %v", err)
		}
		if section.Value != nil {
			t.Error("Value should remain nil for empty file")
		}
	})

	t.Run("successful hydration", func(t *testing.T) {
		section := &confkit.Section[string]{File: "providers.yaml"}
		want := "loaded"
		err := section.Hydrate("/base", func(path string) (*string, error) {
			if path != "/base/providers.yaml" {
				t.Errorf("loader received %q", path)
			}
			return &want, nil
		})
		if err != nil {
			t.Fatalf("Hydrate() error = %v", err)
		}
		if section.Value == nil || *section.Value != want {
			t.Errorf("Value = %v, want %q", section.Value, want)
		}
		if section.File != "/base/providers.yaml" {
			t.Errorf("File = %q, want resolved path", section.File)
		}
	})

	t.Run("loader error", func(t *testing.T) {
		boom := errors.New("boom")
		section := &confkit.Section[string]{File: "llm.yaml"}
		err := section.Hydrate("/base", func(string) (*string, error) { return nil, boom })
		if !errors.Is(err, boom) {
			t.Fatalf("Hydrate() error = %v, want %v", err, boom)
		}
		if section.File != "llm.yaml" {
			t.Errorf("File changed on failure: %q", section.File)
		}
	})
}

func TestSection_Or(t *testing.T) {
	def := "default"
	section := &confkit.Section[string]{}
	if got := section.Or(func() *string { return &def }); *got != def {
		t.Errorf("Or() = %q, want %q", *got, def)
	}

	loaded := "loaded"
	section.Value = &loaded
	if got := section.Or(func() *string {
		t.Error("default should not be built when a value is loaded")
		return &def
	}); *got != loaded {
		t.Errorf("Or() = %q, want %q", *got, loaded)
	}
}

func TestProjectRoot(t *testing.T) {
	root, err := confkit.ProjectRoot()
	if err != nil {
		t.Fatalf("ProjectRoot() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "go.mod")); err != nil {
		t.Errorf("go.mod not found under %s: %v", root, err)
	}
	if got := confkit.MustProjectPath("etc"); got != filepath.Join(root, "etc") {
		t.Errorf("MustProjectPath() = %q", got)
	}
}
