package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/dossier/internal/service"
)

func (a *App) handleDashboardKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.searching {
		switch m.String() {
		case "esc":
			a.searching = false
			a.searchInput.Blur()
			a.searchInput.SetValue("")
			a.applyCaseFilter()
			return a, nil
		case "enter":
			a.searching = false
			a.searchInput.Blur()
			return a, nil
		}
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(m)
		a.applyCaseFilter()
		return a, cmd
	}

	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "/":
		a.searching = true
		return a, a.searchInput.Focus()
	case "R":
		a.status = "reloading..."
		return a, a.loadCases()
	case "n":
		a.openNewCaseModal()
		return a, a.formName.Focus()
	case "s":
		a.state = viewStudy
		a.status = ""
		return a, tea.Batch(a.loadSessions(), a.loadModules())
	case "p":
		a.state = viewSettings
		a.status = ""
		return a, nil
	case "up", "k":
		if a.caseCursor > 0 {
			a.caseCursor--
		}
	case "down", "j":
		if a.caseCursor < len(a.cases)-1 {
			a.caseCursor++
		}
	case "*":
		if len(a.cases) > 0 {
			return a, a.pinCmd(a.cases[a.caseCursor])
		}
	case "backspace", "delete":
		if len(a.cases) > 0 {
			a.modal = modalConfirmDelete
		}
	case "enter":
		if len(a.cases) > 0 {
			c := a.cases[a.caseCursor]
			a.current = &c
			a.state = viewDetail
			a.tab = tabDocuments
			a.previewText = ""
			a.checklist = nil
			a.brief = nil
			a.status = ""
			return a, a.openCaseCmds()
		}
	}
	return a, nil
}

func (a *App) renderDashboard() string {
	title := titleStyle.Render("Cases")
	out := title + "\n"

	if a.searching || a.searchInput.Value() != "" {
		out += "search: " + a.searchInput.View() + "\n"
	}
	if a.fromCache {
		out += faintStyle.Render("(showing cached list, refreshing...)") + "\n"
	}
	if a.loadErr != "" {
		out += errStyle.Render("load failed: "+a.loadErr) + "  [R] Retry\n"
	}

	if len(a.cases) == 0 {
		out += "No cases.\n"
	}
	for i, c := range a.cases {
		marker := " "
		if i == a.caseCursor {
			marker = "▶"
		}
		pin := " "
		if c.Pinned {
			pin = pinStyle.Render("★")
		}
		out += fmt.Sprintf("%s %s %-32s %-12s %-11s %s  %s\n",
			marker, pin,
			truncate(c.Name, 32),
			truncate(c.TransactionType, 12),
			statusLabel(service.NormalizeStatus(c.Status)),
			renderConfidenceBar(c.ConfidenceScore, 10),
			c.UpdatedAt.Format(a.cfg.UI.DateFormat))
	}

	out += "\n[enter] Open  [n] New case  [*] Pin  [del] Delete  [/] Search  [s] Study  [p] Settings  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

// new-case modal

func (a *App) openNewCaseModal() {
	a.modal = modalNewCase
	a.formFocus = 0
	a.formName.SetValue("")
	a.formType.SetValue("")
	a.formFiles.SetValue("")
	a.formName.Focus()
	a.formType.Blur()
	a.formFiles.Blur()
}

func (a *App) closeNewCaseModal() {
	a.modal = modalNone
	a.formName.Blur()
	a.formType.Blur()
	a.formFiles.Blur()
}

// newCaseSubmitEnabled gates the form: a non-empty name plus at least one
// selected file.
func (a *App) newCaseSubmitEnabled() bool {
	if strings.TrimSpace(a.formName.Value()) == "" {
		return false
	}
	return len(splitFileList(a.formFiles.Value())) > 0
}

func (a *App) handleNewCaseKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.closeNewCaseModal()
		return a, nil
	case "tab", "shift+tab":
		a.formFocus = (a.formFocus + 1) % 3
		a.formName.Blur()
		a.formType.Blur()
		a.formFiles.Blur()
		switch a.formFocus {
		case 0:
			return a, a.formName.Focus()
		case 1:
			return a, a.formType.Focus()
		default:
			return a, a.formFiles.Focus()
		}
	case "enter":
		if !a.newCaseSubmitEnabled() {
			a.status = "name and at least one file are required"
			return a, nil
		}
		name := strings.TrimSpace(a.formName.Value())
		ttype := strings.TrimSpace(a.formType.Value())
		files := splitFileList(a.formFiles.Value())
		a.status = "creating case..."
		return a, a.createCaseCmd(name, ttype, files)
	}

	var cmd tea.Cmd
	switch a.formFocus {
	case 0:
		a.formName, cmd = a.formName.Update(m)
	case 1:
		a.formType, cmd = a.formType.Update(m)
	default:
		a.formFiles, cmd = a.formFiles.Update(m)
	}
	return a, cmd
}

func (a *App) renderNewCaseModal() string {
	out := titleStyle.Render("New case") + "\n"
	out += "Name:  " + a.formName.View() + "\n"
	out += "Type:  " + a.formType.View() + "\n"
	out += "Files: " + a.formFiles.View() + "\n"
	if a.newCaseSubmitEnabled() {
		out += "[enter] Create  [tab] Next field  [esc] Cancel"
	} else {
		out += faintStyle.Render("[enter] Create (needs name + file)") + "  [tab] Next field  [esc] Cancel"
	}
	return out
}
