package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	candid "github.com/wippyai/candid-go"
	cerrors "github.com/wippyai/candid-go/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	want := candid.DefaultConfig()
	want.MaxDepth = 256
	want.MaxVecLength = 65536

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "limits.yaml", "max_depth: 256\nmax_vec_length: 65536\n"},
		{"yml", "limits.yml", "max_depth: 256\nmax_vec_length: 65536\n"},
		{"json", "limits.json", `{"max_depth": 256, "max_vec_length": 65536}`},
		{
			"jsonc",
			"limits.jsonc",
			"{\n  // nesting\n  \"max_depth\": 256,\n  /* vectors */ \"max_vec_length\": 65536,\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got != want {
				t.Errorf("got %+v, want %+v", got, want)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	got, err := Parse(nil, YAML)
	if err != nil {
		t.Fatal(err)
	}
	if got != candid.DefaultConfig() {
		t.Errorf("got %+v", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown extension", "limits.toml", "max_depth = 1"},
		{"unknown yaml key", "limits.yaml", "max_dept: 1\n"},
		{"unknown json key", "limits.json", `{"max_dept": 1}`},
		{"bad yaml", "limits.yaml", "max_depth: [\n"},
		{"negative limit", "limits.yaml", "max_blob_length: -1\n"},
		{"wrong type", "limits.json", `{"max_depth": "deep"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			var e *cerrors.Error
			if !errors.As(err, &e) || e.Phase != cerrors.PhaseConfig {
				t.Fatalf("err = %v, want a config phase error", err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: err = %v, want wrapped ErrNotExist", err)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvVar, "")
	got, err := FromEnv()
	if err != nil || got != candid.DefaultConfig() {
		t.Fatalf("unset: got %+v, %v", got, err)
	}

	t.Setenv(EnvVar, writeFile(t, "limits.yaml", "max_table_entries: 10\n"))
	got, err = FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if got.MaxTableEntries != 10 {
		t.Errorf("MaxTableEntries = %d", got.MaxTableEntries)
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{
		"a.yaml":  YAML,
		"a.YML":   YAML,
		"a.json":  JSONC,
		"a.jsonc": JSONC,
		"a":       "",
	}
	for path, want := range tests {
		got, _ := FormatOf(path)
		if got != want {
			t.Errorf("FormatOf(%q) = %q, want %q", path, got, want)
		}
	}
}
