package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// The study screen stacks three lists (sessions, modules, decks) plus the
// audio summaries for the selected module. A review overlay takes over
// while cards are due.

func (a *App) handleStudyKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.reviewCard != nil {
		return a.handleReviewKey(m)
	}

	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.state = viewDashboard
		a.status = ""
		return a, nil
	case "up", "k":
		if a.moduleCursor > 0 {
			a.moduleCursor--
			return a, tea.Batch(a.loadDecks(), a.loadSummaries())
		}
	case "down", "j":
		if a.moduleCursor < len(a.modules)-1 {
			a.moduleCursor++
			return a, tea.Batch(a.loadDecks(), a.loadSummaries())
		}
	case "left", "h":
		if a.sessionCursor > 0 {
			a.sessionCursor--
		}
	case "right":
		if a.sessionCursor < len(a.sessions)-1 {
			a.sessionCursor++
		}
	case "n":
		a.modal = modalNewSession
		a.sessionFocus = 0
		for i := range a.sessionForm {
			a.sessionForm[i].SetValue("")
			a.sessionForm[i].Blur()
		}
		return a, a.sessionForm[0].Focus()
	case "x":
		if a.sessionCursor < len(a.sessions) {
			return a, a.deleteSessionCmd(a.sessions[a.sessionCursor].ID)
		}
	case "m":
		a.modal = modalNewModule
		a.moduleInput.SetValue("")
		return a, a.moduleInput.Focus()
	case "g":
		a.status = "generating deck..."
		return a, a.generateDeckCmd()
	case "G":
		return a, a.generateSummaryCmd()
	case "enter":
		if a.deckCursor < len(a.decks) {
			return a, a.startReviewCmd(a.decks[a.deckCursor])
		}
	case "tab":
		if len(a.decks) > 0 {
			a.deckCursor = (a.deckCursor + 1) % len(a.decks)
		}
	case "r":
		a.modal = modalRecorder
		return a, nil
	}
	return a, nil
}

func (a *App) handleReviewKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.reviewCard = nil
		a.reviewBack = false
		return a, nil
	case " ", "enter":
		a.reviewBack = !a.reviewBack
		return a, nil
	case "0", "1", "2", "3", "4", "5":
		if !a.reviewBack {
			return a, nil // grade only after seeing the answer
		}
		grade := int(m.String()[0] - '0')
		if a.deckCursor < len(a.decks) {
			return a, a.gradeCardCmd(a.decks[a.deckCursor], a.reviewCard.ID, grade)
		}
	}
	return a, nil
}

func (a *App) renderStudy() string {
	if a.reviewCard != nil {
		return a.renderReview()
	}

	out := titleStyle.Render("Study") + "\n\n"

	out += "Sessions: "
	if len(a.sessions) == 0 {
		out += faintStyle.Render("none - [n] to create one")
	}
	for i, s := range a.sessions {
		label := fmt.Sprintf("%s %s %d", s.Title, s.Semester, s.Year)
		if i == a.sessionCursor {
			out += activeTab.Render(label) + " "
		} else {
			out += inactiveTab.Render(label) + " "
		}
	}
	out += "\n\n" + titleStyle.Render("Modules") + "\n"
	if len(a.modules) == 0 {
		out += faintStyle.Render("No modules in the open case - [m] to create one.") + "\n"
	}
	for i, mod := range a.modules {
		marker := " "
		if i == a.moduleCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %-32s %d docs\n", marker, truncate(mod.Name, 32), len(mod.DocumentIDs))
	}

	out += "\n" + titleStyle.Render("Decks") + "\n"
	if len(a.decks) == 0 {
		out += faintStyle.Render("No decks yet - [g] to generate one.") + "\n"
	}
	for i, d := range a.decks {
		marker := " "
		if i == a.deckCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %-32s %d cards\n", marker, truncate(d.Title, 32), len(d.Cards))
	}

	out += "\n" + titleStyle.Render("Audio summaries") + "\n"
	if len(a.summaries) == 0 {
		out += faintStyle.Render("None yet - [G] to queue one, [r] to record.") + "\n"
	}
	for _, s := range a.summaries {
		out += fmt.Sprintf("  %-28s %-4s %5.0fs %s\n", truncate(s.Name, 28), s.Language, s.Duration, statusLabel(s.Status))
	}

	out += "\n[n] New session  [x] Delete session  [m] New module  [g] Deck  [G] Summary  [r] Record  [enter] Review  [esc] Back"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderReview() string {
	card := a.reviewCard
	out := titleStyle.Render("Review") + "\n\n"
	out += card.Front + "\n\n"
	if a.reviewBack {
		out += okStyle.Render(card.Back) + "\n\n"
		out += "[0-5] Grade recall  [esc] Stop"
	} else {
		out += faintStyle.Render("(answer hidden)") + "\n\n"
		out += "[space] Flip  [esc] Stop"
	}
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}
