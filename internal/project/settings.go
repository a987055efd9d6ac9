// Package project persists PadNest settings. Files are TOML or JSON,
// chosen by extension, and are always decoded on top of
// model.DefaultSettings so a file only needs the keys it overrides.
package project

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	apperr "github.com/piwi3910/PadNest/internal/errors"
	"github.com/piwi3910/PadNest/internal/model"
)

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.padnest/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".padnest")
}

// DefaultConfigPath returns the default path for the settings file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.toml")
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// LoadSettings reads settings from path over the defaults and validates
// the result. If the file does not exist, it returns DefaultSettings with
// no error. Unknown TOML keys are rejected.
func LoadSettings(path string) (model.Settings, error) {
	s := model.DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return model.Settings{}, apperr.Wrap(apperr.ErrCodeIO, err, "cannot read settings %s", path)
	}

	if err := DecodeSettings(data, isJSON(path), &s); err != nil {
		return model.Settings{}, apperr.Wrap(apperr.ErrCodeInvalidConfiguration, err, "%s", path)
	}
	if err := s.Validate(); err != nil {
		return model.Settings{}, err
	}
	return s, nil
}

// DecodeSettings decodes TOML (or JSON when asJSON is set) into s,
// leaving fields the document does not mention untouched.
func DecodeSettings(data []byte, asJSON bool, s *model.Settings) error {
	if asJSON {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(s)
	}

	md, err := toml.Decode(string(data), s)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return apperr.New(apperr.ErrCodeInvalidConfiguration, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// EncodeSettings renders s as TOML, or indented JSON when asJSON is set.
func EncodeSettings(s model.Settings, asJSON bool) ([]byte, error) {
	if asJSON {
		return json.MarshalIndent(s, "", "  ")
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveSettings validates s and writes it to path, creating any missing
// parent directories.
func SaveSettings(path string, s model.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := EncodeSettings(s, isJSON(path))
	if err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidConfiguration, err, "cannot encode settings")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperr.Wrap(apperr.ErrCodeIO, err, "cannot create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperr.Wrap(apperr.ErrCodeIO, err, "cannot write settings %s", path)
	}
	return nil
}
