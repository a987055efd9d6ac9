package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperr "github.com/piwi3910/PadNest/internal/errors"
	"github.com/piwi3910/PadNest/internal/model"
)

// backupFormat is the major version of the backup layout this build reads.
const backupFormat = "1"

const backupVersion = backupFormat + ".1.0"

// BackupData is the portable snapshot written by `padnest config export`.
// Source records the settings file the snapshot was taken from, empty when
// the defaults were exported.
type BackupData struct {
	Version   string         `json:"version"`
	CreatedAt string         `json:"created_at"`
	Source    string         `json:"source,omitempty"`
	Settings  model.Settings `json:"settings"`
}

// backupEnvelope defers decoding settings so they go through the same
// strict decoder as settings files.
type backupEnvelope struct {
	Version   string          `json:"version"`
	CreatedAt string          `json:"created_at"`
	Source    string          `json:"source"`
	Settings  json.RawMessage `json:"settings"`
}

// ExportBackup writes settings loaded from source to a timestamped JSON
// snapshot at exportPath. Invalid settings are not exported.
func ExportBackup(exportPath, source string, s model.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if source != "" {
		if _, err := os.Stat(source); err != nil {
			source = ""
		}
	}
	backup := BackupData{
		Version:   backupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Source:    source,
		Settings:  s,
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return apperr.Wrap(apperr.ErrCodeIO, err, "cannot encode backup")
	}
	if err := os.MkdirAll(filepath.Dir(exportPath), 0755); err != nil {
		return apperr.Wrap(apperr.ErrCodeIO, err, "cannot create backup directory")
	}
	if err := os.WriteFile(exportPath, append(data, '\n'), 0644); err != nil {
		return apperr.Wrap(apperr.ErrCodeIO, err, "cannot write backup %s", exportPath)
	}
	return nil
}

// ImportBackup reads a snapshot written by ExportBackup. Settings missing
// from the snapshot keep their defaults; unknown settings keys and backups
// from another major format are rejected.
func ImportBackup(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, apperr.Wrap(apperr.ErrCodeIO, err, "cannot read backup %s", importPath)
	}

	var env backupEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return BackupData{}, apperr.Wrap(apperr.ErrCodeInvalidConfiguration, err, "cannot parse backup %s", importPath)
	}
	if env.Version == "" {
		return BackupData{}, apperr.New(apperr.ErrCodeInvalidConfiguration, "backup %s has no version", importPath)
	}
	if major, _, _ := strings.Cut(env.Version, "."); major != backupFormat {
		return BackupData{}, apperr.New(apperr.ErrCodeInvalidConfiguration,
			"backup %s is format %s, this build reads %s.x", importPath, env.Version, backupFormat)
	}

	backup := BackupData{
		Version:   env.Version,
		CreatedAt: env.CreatedAt,
		Source:    env.Source,
		Settings:  model.DefaultSettings(),
	}
	if len(env.Settings) > 0 {
		if err := DecodeSettings(env.Settings, true, &backup.Settings); err != nil {
			return BackupData{}, apperr.Wrap(apperr.ErrCodeInvalidConfiguration, err, "backup %s settings", importPath)
		}
	}
	if err := backup.Settings.Validate(); err != nil {
		return BackupData{}, err
	}
	return backup, nil
}
