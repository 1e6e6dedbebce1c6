package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/dossier/internal/service"
)

func (a *App) handleDetailKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.tab == tabChat && a.chatInput.Focused() {
		switch m.String() {
		case "esc":
			a.chatInput.Blur()
			return a, nil
		case "enter":
			text := strings.TrimSpace(a.chatInput.Value())
			if text == "" {
				return a, nil
			}
			a.chatInput.SetValue("")
			a.status = "assistant is thinking..."
			return a, a.sendChatCmd(text)
		}
		var cmd tea.Cmd
		a.chatInput, cmd = a.chatInput.Update(m)
		return a, cmd
	}

	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.state = viewDashboard
		a.current = nil
		a.status = ""
		return a, nil
	case "1":
		a.tab = tabDocuments
	case "2":
		a.tab = tabChecklist
	case "3":
		a.tab = tabBrief
	case "4":
		a.tab = tabChat
	case "A":
		a.status = "starting analysis..."
		return a, a.startAnalysisCmd()
	case "i":
		if a.tab == tabChat {
			return a, a.chatInput.Focus()
		}
	}

	if a.tab == tabDocuments {
		switch m.String() {
		case "up", "k":
			if a.docCursor > 0 {
				a.docCursor--
			}
		case "down", "j":
			if a.docCursor < len(a.documents)-1 {
				a.docCursor++
			}
		case "u":
			a.modal = modalUpload
			a.linkInput.SetValue("")
			a.linkInput.Placeholder = "local file to upload"
			return a, a.linkInput.Focus()
		case "l":
			a.modal = modalLinkFile
			a.linkInput.SetValue("")
			a.linkInput.Placeholder = "/server/path/to/file"
			return a, a.linkInput.Focus()
		case "L":
			a.modal = modalLinkDir
			a.linkProgress = nil
			a.linkInput.SetValue("")
			a.linkInput.Placeholder = "/server/path/to/directory"
			return a, a.linkInput.Focus()
		case "v":
			if len(a.documents) > 0 {
				a.status = "fetching preview..."
				return a, a.previewDocumentCmd(a.documents[a.docCursor])
			}
		case "backspace", "delete":
			if len(a.documents) > 0 {
				return a, a.deleteDocumentCmd(a.documents[a.docCursor].ID)
			}
		}
	}
	return a, nil
}

func (a *App) renderDetail() string {
	if a.current == nil {
		return "no case selected"
	}
	c := *a.current

	title := titleStyle.Render(c.Name)
	header := fmt.Sprintf("%s  %s  %s  %s",
		title,
		c.TransactionType,
		statusLabel(service.NormalizeStatus(c.Status)),
		renderConfidenceBar(c.ConfidenceScore, 10))

	tabs := []string{"1 Documents", "2 Checklist", "3 Brief", "4 Chat"}
	var tabLine []string
	for i, t := range tabs {
		if detailTab(i) == a.tab {
			tabLine = append(tabLine, activeTab.Render(t))
		} else {
			tabLine = append(tabLine, inactiveTab.Render(t))
		}
	}
	out := header + "\n" + strings.Join(tabLine, "  ") + "\n\n"

	if a.analysis != nil && !a.analysis.Terminal() {
		out += fmt.Sprintf("analysis: %s %s\n", a.analysis.Stage, renderConfidenceBar(a.analysis.Percentage, 20))
	}

	switch a.tab {
	case tabChecklist:
		out += a.renderChecklist()
	case tabBrief:
		out += a.renderBrief()
	case tabChat:
		out += a.renderChat()
	default:
		out += a.renderDocuments()
	}

	out += "\n[1-4] Tabs  [A] Analyze  [esc] Back  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderDocuments() string {
	out := ""
	if len(a.documents) == 0 {
		out += "No documents yet. [u] upload, [l] link a server file, [L] link a directory.\n"
	}
	for i, d := range a.documents {
		marker := " "
		if i == a.docCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %-36s %-10s %8s  %s\n",
			marker,
			truncate(d.Filename, 36),
			d.FileType,
			humanSize(d.Size),
			faintStyle.Render(d.Extraction))
	}
	out += "\n[u] Upload  [l] Link file  [L] Link dir  [v] Preview  [del] Delete"
	if a.previewText != "" {
		out += "\n\n" + titleStyle.Render("Preview") + "\n" + truncate(a.previewText, 2000)
	}
	return out
}

func (a *App) renderChecklist() string {
	if a.checklist == nil {
		return "No checklist yet - run the analysis first ([A])."
	}
	cl := a.checklist
	out := fmt.Sprintf("Confidence %s\n\n", renderConfidenceBar(cl.ConfidenceScore, 20))
	for _, item := range cl.Items {
		mark := "☐"
		if item.Status == "done" || item.Status == "verified" {
			mark = "☑"
		}
		out += fmt.Sprintf("%s %-40s %-8s %s\n", mark, truncate(item.Title, 40), item.Priority, faintStyle.Render(item.Category))
	}
	if len(cl.AttentionPoints) > 0 {
		out += "\n" + titleStyle.Render("Attention points") + "\n"
		for _, p := range cl.AttentionPoints {
			out += "! " + p + "\n"
		}
	}
	if len(cl.MissingDocuments) > 0 {
		out += "\n" + titleStyle.Render("Missing documents") + "\n"
		for _, d := range cl.MissingDocuments {
			out += "- " + d + "\n"
		}
	}
	return out
}

func (a *App) renderBrief() string {
	if a.brief == nil || a.brief.Body == "" {
		return "No brief yet - run the analysis first ([A])."
	}
	return a.brief.Body
}

func (a *App) renderChat() string {
	out := ""
	if len(a.chat) == 0 {
		out += faintStyle.Render("No messages yet.") + "\n"
	}
	for _, msg := range a.chat {
		who := "you"
		if msg.Role == "assistant" {
			who = "assistant"
		}
		out += fmt.Sprintf("%s: %s\n", titleStyle.Render(who), msg.Body)
	}
	out += "\n> " + a.chatInput.View()
	if !a.chatInput.Focused() {
		out += "\n[i] Type a message"
	}
	return out
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
