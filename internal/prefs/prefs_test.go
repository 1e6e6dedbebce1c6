package prefs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadWithoutFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	p, err := Load()
	require.NoError(t, err)
	require.Equal(t, 0.7, p.Temperature)
	require.Equal(t, 0.9, p.TopP)
	require.Equal(t, "en", p.Locale)
	require.Empty(t, p.Model)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	p := Prefs{
		Model:            "mistral-large",
		Temperature:      1.2,
		TopP:             0.5,
		ExtractionMethod: "ocr",
		Locale:           "fr",
	}
	require.NoError(t, Save(p))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestSaveOverwritesAtomically(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	require.NoError(t, Save(Prefs{Model: "first", Temperature: 0.7, TopP: 0.9, Locale: "en"}))
	require.NoError(t, Save(Prefs{Model: "second", Temperature: 0.7, TopP: 0.9, Locale: "en"}))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, "second", got.Model)
}
