// Package prefs persists per-user client preferences: the chosen model,
// sampling settings and locale. These never round-trip to the server.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const prefsFile = "prefs.json"

// Prefs mirror what the browser front-end kept in localStorage and the
// locale cookie.
type Prefs struct {
	Model            string  `json:"model"`
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"top_p"`
	ExtractionMethod string  `json:"extraction_method"`
	Locale           string  `json:"locale"`
}

// Defaults returns the settings used before the user touches anything.
func Defaults() Prefs {
	return Prefs{
		Temperature: 0.7,
		TopP:        0.9,
		Locale:      "en",
	}
}

func prefsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "dossier")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, prefsFile), nil
}

// Save writes prefs atomically.
func Save(p Prefs) error {
	path, err := prefsPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load returns saved prefs, or Defaults when none exist yet.
func Load() (Prefs, error) {
	path, err := prefsPath()
	if err != nil {
		return Defaults(), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return Defaults(), err
	}
	p := Defaults()
	if err := json.Unmarshal(data, &p); err != nil {
		return Defaults(), err
	}
	return p, nil
}
