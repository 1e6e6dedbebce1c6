package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/dossier/internal/api"
	"github.com/jask/dossier/internal/recorder"
)

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalNewCase:
		return a.handleNewCaseKey(m)
	case modalConfirmDelete:
		return a.handleConfirmDeleteKey(m)
	case modalUpload, modalLinkFile:
		return a.handlePathModalKey(m)
	case modalLinkDir:
		return a.handleLinkDirKey(m)
	case modalNewSession:
		return a.handleNewSessionKey(m)
	case modalNewModule:
		return a.handleNewModuleKey(m)
	case modalRecorder:
		return a.handleRecorderKey(m)
	case modalModelPicker:
		return a.handleModelPickerKey(m)
	}
	a.modal = modalNone
	return a, nil
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalNewCase:
		return a.renderNewCaseModal()
	case modalConfirmDelete:
		return a.renderConfirmDeleteModal()
	case modalUpload:
		return a.renderPathModal("Upload document")
	case modalLinkFile:
		return a.renderPathModal("Link server file")
	case modalLinkDir:
		return a.renderLinkDirModal()
	case modalNewSession:
		return a.renderNewSessionModal()
	case modalNewModule:
		return a.renderNewModuleModal()
	case modalRecorder:
		return a.renderRecorderModal()
	case modalModelPicker:
		return a.renderModelPickerModal()
	}
	return ""
}

func (a *App) handleConfirmDeleteKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "y", "Y", "enter":
		a.modal = modalNone
		if len(a.cases) > 0 && a.caseCursor < len(a.cases) {
			return a, a.deleteCaseCmd(a.cases[a.caseCursor].ID)
		}
	case "n", "N", "esc":
		a.modal = modalNone
	}
	return a, nil
}

func (a *App) renderConfirmDeleteModal() string {
	name := ""
	if a.caseCursor < len(a.cases) {
		name = a.cases[a.caseCursor].Name
	}
	return titleStyle.Render("Delete case") + "\n" +
		fmt.Sprintf("Delete %q and all its documents? This cannot be undone.\n", name) +
		"[y] Delete  [n] Cancel"
}

// handlePathModalKey backs both the local-upload and the server-link
// prompts; only the submit command differs.
func (a *App) handlePathModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.modal = modalNone
		a.linkInput.Blur()
		return a, nil
	case "enter":
		path := strings.TrimSpace(a.linkInput.Value())
		if path == "" {
			return a, nil
		}
		kind := a.modal
		a.modal = modalNone
		a.linkInput.Blur()
		if kind == modalUpload {
			a.status = "uploading..."
			return a, a.uploadDocumentCmd(path)
		}
		a.status = "linking..."
		return a, a.linkFileCmd(path)
	}
	var cmd tea.Cmd
	a.linkInput, cmd = a.linkInput.Update(m)
	return a, cmd
}

func (a *App) renderPathModal(title string) string {
	return titleStyle.Render(title) + "\n" +
		a.linkInput.View() + "\n" +
		"[enter] Confirm  [esc] Cancel"
}

func (a *App) handleLinkDirKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	// once the stream is running the only action left is cancelling
	if a.linkCh != nil {
		if m.String() == "esc" || m.String() == "ctrl+c" {
			if a.linkCancel != nil {
				a.linkCancel()
			}
			a.status = "cancelling link..."
		}
		return a, nil
	}
	switch m.String() {
	case "esc":
		a.modal = modalNone
		a.linkInput.Blur()
		return a, nil
	case "enter":
		dir := strings.TrimSpace(a.linkInput.Value())
		if dir == "" {
			return a, nil
		}
		a.linkInput.Blur()
		return a, a.linkDirectoryCmd(dir)
	}
	var cmd tea.Cmd
	a.linkInput, cmd = a.linkInput.Update(m)
	return a, cmd
}

func (a *App) renderLinkDirModal() string {
	out := titleStyle.Render("Link directory") + "\n"
	if a.linkCh == nil {
		out += a.linkInput.View() + "\n[enter] Start indexing  [esc] Cancel"
		return out
	}
	if p := a.linkProgress; p != nil {
		out += fmt.Sprintf("Indexing %d/%d %s\n%s\n",
			p.Indexed, p.Total,
			renderConfidenceBar(p.Percentage, 20),
			faintStyle.Render(truncate(p.CurrentFile, 60)))
	} else {
		out += "Starting...\n"
	}
	out += "[esc] Cancel indexing"
	return out
}

func (a *App) handleNewSessionKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.modal = modalNone
		for i := range a.sessionForm {
			a.sessionForm[i].Blur()
		}
		return a, nil
	case "tab", "shift+tab", "down", "up":
		a.sessionForm[a.sessionFocus].Blur()
		if m.String() == "shift+tab" || m.String() == "up" {
			a.sessionFocus = (a.sessionFocus + len(a.sessionForm) - 1) % len(a.sessionForm)
		} else {
			a.sessionFocus = (a.sessionFocus + 1) % len(a.sessionForm)
		}
		return a, a.sessionForm[a.sessionFocus].Focus()
	case "enter":
		s, ok := a.sessionFromForm()
		if !ok {
			a.status = "title and year are required"
			return a, nil
		}
		a.modal = modalNone
		a.sessionForm[a.sessionFocus].Blur()
		return a, a.createSessionCmd(s)
	}
	var cmd tea.Cmd
	a.sessionForm[a.sessionFocus], cmd = a.sessionForm[a.sessionFocus].Update(m)
	return a, cmd
}

func (a *App) sessionFromForm() (api.Session, bool) {
	title := strings.TrimSpace(a.sessionForm[0].Value())
	year, err := strconv.Atoi(strings.TrimSpace(a.sessionForm[2].Value()))
	if title == "" || err != nil {
		return api.Session{}, false
	}
	s := api.Session{
		Title:    title,
		Semester: strings.TrimSpace(a.sessionForm[1].Value()),
		Year:     year,
	}
	if dates := strings.SplitN(strings.TrimSpace(a.sessionForm[3].Value()), "..", 2); len(dates) == 2 {
		s.Start, s.End = dates[0], dates[1]
	}
	return s, true
}

func (a *App) renderNewSessionModal() string {
	labels := []string{"Title", "Semester", "Year", "Dates"}
	out := titleStyle.Render("New session") + "\n"
	for i, in := range a.sessionForm {
		marker := "  "
		if i == a.sessionFocus {
			marker = "▶ "
		}
		out += fmt.Sprintf("%s%-9s %s\n", marker, labels[i], in.View())
	}
	out += "[tab] Next field  [enter] Create  [esc] Cancel"
	return out
}

func (a *App) handleNewModuleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.modal = modalNone
		a.moduleInput.Blur()
		return a, nil
	case "enter":
		name := strings.TrimSpace(a.moduleInput.Value())
		if name == "" {
			a.status = "module name is required"
			return a, nil
		}
		a.moduleInput.Blur()
		return a, a.createModuleCmd(name)
	}
	var cmd tea.Cmd
	a.moduleInput, cmd = a.moduleInput.Update(m)
	return a, cmd
}

func (a *App) renderNewModuleModal() string {
	return titleStyle.Render("New module") + "\n" +
		a.moduleInput.View() + "\n" +
		"Groups the open case's documents for decks and summaries.\n" +
		"[enter] Create  [esc] Cancel"
}

func (a *App) handleRecorderKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		// leaving the modal discards any in-flight take
		a.rec.Reset()
		a.modal = modalNone
		return a, nil
	case " ":
		switch a.rec.State() {
		case recorder.StateIdle:
			if err := a.rec.Start(a.ctx); err != nil {
				if errors.Is(err, recorder.ErrPermission) {
					a.status = "microphone access denied - check OS permissions"
				} else {
					a.status = "recorder: " + err.Error()
				}
				return a, nil
			}
			return a, recorderTick()
		case recorder.StateRecording:
			if err := a.rec.Pause(); err != nil {
				a.status = err.Error()
			}
		case recorder.StatePaused:
			if err := a.rec.Resume(); err != nil {
				a.status = err.Error()
			}
		}
	case "s":
		if err := a.rec.Stop(); err != nil {
			a.status = err.Error()
		}
	case "r":
		a.rec.Reset()
		a.status = ""
	case "i":
		a.rec.IdentifySpeakers = !a.rec.IdentifySpeakers
	case "f":
		if a.rec.Language == "fr" {
			a.rec.Language = "en"
		} else {
			a.rec.Language = "fr"
		}
	case "enter":
		if a.rec.State() == recorder.StateStopped {
			a.status = "uploading recording..."
			return a, a.saveRecordingCmd()
		}
	}
	return a, nil
}

func (a *App) renderRecorderModal() string {
	state := a.rec.State()
	dur := a.rec.Duration().Round(time.Second)
	out := titleStyle.Render("Record audio") + "\n"
	out += fmt.Sprintf("%s  %s  level %s\n", state, dur, renderLevelMeter(a.rec.Level(), 12))
	out += fmt.Sprintf("name: %s  lang: %s  speakers: %v\n", a.rec.Name, a.rec.Language, a.rec.IdentifySpeakers)
	switch state {
	case recorder.StateIdle:
		out += "[space] Record  [f] Language  [i] Speakers  [esc] Close"
	case recorder.StateRecording:
		out += "[space] Pause  [s] Stop  [esc] Discard"
	case recorder.StatePaused:
		out += "[space] Resume  [s] Stop  [esc] Discard"
	case recorder.StateStopped:
		out += "[enter] Save & transcribe  [r] Discard take  [esc] Close"
	}
	return out
}

func renderLevelMeter(level float64, width int) string {
	if level > 1 {
		level = 1
	}
	filled := int(level * float64(width))
	return strings.Repeat("▮", filled) + strings.Repeat("▯", width-filled)
}

func (a *App) handleModelPickerKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.modal = modalNone
	case "up", "k":
		if a.modelCursor > 0 {
			a.modelCursor--
		}
	case "down", "j":
		if a.modelCursor < len(a.models)-1 {
			a.modelCursor++
		}
	case "enter":
		if a.modelCursor < len(a.models) {
			a.prefs.Model = a.models[a.modelCursor].ID
			a.modal = modalNone
			return a, a.savePrefsCmd()
		}
	}
	return a, nil
}

func (a *App) renderModelPickerModal() string {
	out := titleStyle.Render("Choose model") + "\n"
	for i, mdl := range a.models {
		marker := " "
		if i == a.modelCursor {
			marker = "▶"
		}
		current := ""
		if mdl.ID == a.prefs.Model {
			current = okStyle.Render(" (current)")
		}
		out += fmt.Sprintf("%s %-32s %dk ctx%s\n", marker, mdl.Label, mdl.ContextWindow/1000, current)
	}
	out += "[enter] Select  [esc] Cancel"
	return out
}
