package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	setModel = iota
	setTemperature
	setTopP
	setExtraction
	setLocale
	settingsRows
)

func (a *App) handleSettingsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.state = viewDashboard
		a.status = ""
		return a, nil
	case "up", "k":
		if a.settingsCursor > 0 {
			a.settingsCursor--
		}
	case "down", "j":
		if a.settingsCursor < settingsRows-1 {
			a.settingsCursor++
		}
	case "enter":
		if a.settingsCursor == setModel {
			a.modal = modalModelPicker
			a.modelCursor = 0
			for i, mdl := range a.models {
				if mdl.ID == a.prefs.Model {
					a.modelCursor = i
				}
			}
		}
	case "left", "h":
		return a, a.adjustSetting(-1)
	case "right", "l":
		return a, a.adjustSetting(+1)
	}
	return a, nil
}

// adjustSetting nudges the selected row and persists. Temperature stays in
// [0,2], top_p in [0,1]; extraction method and locale cycle.
func (a *App) adjustSetting(dir int) tea.Cmd {
	switch a.settingsCursor {
	case setTemperature:
		a.prefs.Temperature = clamp(a.prefs.Temperature+0.1*float64(dir), 0, 2)
	case setTopP:
		a.prefs.TopP = clamp(a.prefs.TopP+0.05*float64(dir), 0, 1)
	case setExtraction:
		if len(a.methods) == 0 {
			return nil
		}
		idx := 0
		for i, m := range a.methods {
			if m.ID == a.prefs.ExtractionMethod {
				idx = i
			}
		}
		idx = (idx + dir + len(a.methods)) % len(a.methods)
		a.prefs.ExtractionMethod = a.methods[idx].ID
	case setLocale:
		if a.prefs.Locale == "fr" {
			a.prefs.Locale = "en"
		} else {
			a.prefs.Locale = "fr"
		}
	default:
		return nil
	}
	return a.savePrefsCmd()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (a *App) renderSettings() string {
	model := a.prefs.Model
	if model == "" {
		model = faintStyle.Render("(server default)")
	}
	method := a.prefs.ExtractionMethod
	if method == "" {
		method = faintStyle.Render("(server default)")
	}

	rows := []struct {
		label string
		value string
		hint  string
	}{
		{"Model", model, "[enter] pick from list"},
		{"Temperature", fmt.Sprintf("%.1f", a.prefs.Temperature), "[←/→] 0.0 - 2.0"},
		{"Top-p", fmt.Sprintf("%.2f", a.prefs.TopP), "[←/→] 0.00 - 1.00"},
		{"Extraction", method, "[←/→] cycle methods"},
		{"Locale", a.prefs.Locale, "[←/→] en / fr"},
	}

	out := titleStyle.Render("Settings") + "\n\n"
	for i, row := range rows {
		marker := " "
		if i == a.settingsCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %-12s %-28s %s\n", marker, row.label, row.value, faintStyle.Render(row.hint))
	}
	out += "\n[esc] Back  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}
