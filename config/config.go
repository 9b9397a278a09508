// Package config loads decoder limits from a file.
//
// The format follows the file extension: .yaml and .yml are YAML, .json and
// .jsonc are JSON with optional comments and trailing commas. Keys are the
// snake_case names of the candid.Config fields; absent keys keep their
// defaults.
//
//	max_depth: 256
//	max_vec_length: 65536
package config

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	candid "github.com/wippyai/candid-go"
	"github.com/wippyai/candid-go/errors"
)

// EnvVar names the environment variable FromEnv reads the config path from.
const EnvVar = "CANDID_CONFIG"

// Format is a config file syntax.
type Format string

const (
	YAML  Format = "yaml"
	JSONC Format = "jsonc"
)

// FormatOf maps a file extension to its Format.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, true
	case ".json", ".jsonc":
		return JSONC, true
	}
	return "", false
}

// Load reads the config file at path.
func Load(path string) (candid.Config, error) {
	format, ok := FormatOf(path)
	if !ok {
		return candid.Config{}, errors.New(errors.PhaseConfig, errors.KindInvalidData).
			Detail("unsupported config extension %q", filepath.Ext(path)).
			Build()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return candid.Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "read "+path)
	}
	return Parse(data, format)
}

// FromEnv loads the file named by EnvVar, or returns DefaultConfig when the
// variable is unset.
func FromEnv() (candid.Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return candid.DefaultConfig(), nil
	}
	return Load(path)
}

// Parse decodes data in the given format over DefaultConfig. Unknown keys are
// rejected so that a misspelt limit does not silently keep its default.
func Parse(data []byte, format Format) (candid.Config, error) {
	cfg := candid.DefaultConfig()
	var err error
	switch format {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&cfg); err == io.EOF {
			err = nil
		}
	case JSONC:
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	default:
		return candid.Config{}, errors.New(errors.PhaseConfig, errors.KindInvalidData).
			Detail("unknown format %q", format).
			Build()
	}
	if err != nil {
		return candid.Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "parse "+string(format)+" config")
	}
	if err := validate(cfg); err != nil {
		return candid.Config{}, err
	}
	return cfg, nil
}

func validate(cfg candid.Config) error {
	limits := []struct {
		name  string
		value int
	}{
		{"max_table_entries", cfg.MaxTableEntries},
		{"max_depth", cfg.MaxDepth},
		{"max_vec_length", cfg.MaxVecLength},
		{"max_zero_sized_vec_length", cfg.MaxZeroSizedVecLength},
		{"max_blob_length", cfg.MaxBlobLength},
	}
	for _, l := range limits {
		if l.value < 0 {
			return errors.New(errors.PhaseConfig, errors.KindInvalidData).
				Path(l.name).
				Value(l.value).
				Detail("limit must not be negative").
				Build()
		}
	}
	return nil
}
