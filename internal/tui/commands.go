package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jask/dossier/internal/api"
	"github.com/jask/dossier/internal/prefs"
	"github.com/jask/dossier/internal/preview"
	"github.com/jask/dossier/internal/recorder"
	"github.com/jask/dossier/internal/service"
)

// messages
type cachedCasesMsg []api.Case

type casesMsg []api.Case

type caseLoadErrMsg struct{ err error }

type caseCreatedMsg api.Case

type caseDeletedMsg string

type casePinnedMsg api.Case

type documentsMsg []api.Document

type documentDeletedMsg string

type documentUploadedMsg api.Document

type previewMsg struct{ text string }

type checklistMsg api.Checklist

type briefMsg api.Brief

type chatHistoryMsg []api.ChatMessage

type chatReplyMsg struct {
	user    api.ChatMessage
	reply   api.ChatMessage
	offline bool
}

// analysisUpdate carries the next stream event, or the watcher's failure
// cause when the stream dies before a terminal event.
type analysisUpdate struct {
	ev  api.AnalysisEvent
	err error
}

type analysisStartedMsg <-chan analysisUpdate

type analysisEventMsg api.AnalysisEvent

type analysisErrMsg struct{ err error }

type linkUpdate struct {
	progress *api.LinkProgress
	result   *service.LinkResult
	err      error
}

type linkStartedMsg struct {
	updates <-chan linkUpdate
	cancel  context.CancelFunc
}

type linkProgressMsg api.LinkProgress

type linkDoneMsg struct {
	result service.LinkResult
	err    error
}

type sessionsMsg []api.Session

type sessionCreatedMsg api.Session

type sessionDeletedMsg string

type modulesMsg []api.Module

type moduleCreatedMsg api.Module

type decksMsg []api.Deck

type deckGeneratedMsg api.Deck

type summariesMsg []api.AudioSummary

type summaryQueuedMsg api.AudioSummary

type reviewCardMsg struct{ card *api.Flashcard }

type recorderTickMsg time.Time

type recordingSavedMsg struct{}

type settingsMsg struct {
	models  []api.ModelInfo
	methods []api.ExtractionMethod
}

type statusMsg string

type errMsg struct{ error }

// cannedReply stands in for the assistant when the backend cannot be
// reached, mirroring the legacy offline behavior.
const cannedReply = "I cannot reach the analysis service right now. " +
	"The checklist and brief shown are from the last completed analysis; " +
	"please try again once the connection is back."

func (a *App) loadCachedCases() tea.Cmd {
	return func() tea.Msg {
		if a.stores.Cases == nil {
			return cachedCasesMsg(nil)
		}
		cached, err := a.stores.Cases.List(a.ctx)
		if err != nil {
			return cachedCasesMsg(nil) // cache misses are not worth a status line
		}
		return cachedCasesMsg(cached)
	}
}

func (a *App) loadCases() tea.Cmd {
	return func() tea.Msg {
		cases, err := a.client.ListCases(a.ctx)
		if err != nil {
			return caseLoadErrMsg{err}
		}
		return casesMsg(cases)
	}
}

func (a *App) snapshotCases(cases []api.Case) tea.Cmd {
	return func() tea.Msg {
		if a.stores.Cases == nil {
			return nil
		}
		if err := a.stores.Cases.Replace(a.ctx, cases); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

// loadSettings fetches models and extraction methods in parallel.
func (a *App) loadSettings() tea.Cmd {
	return func() tea.Msg {
		var m settingsMsg
		g, ctx := errgroup.WithContext(a.ctx)
		g.Go(func() error {
			models, err := a.client.ListModels(ctx)
			m.models = models
			return err
		})
		g.Go(func() error {
			methods, err := a.client.ListExtractionMethods(ctx)
			m.methods = methods
			return err
		})
		if err := g.Wait(); err != nil {
			return errMsg{err}
		}
		return m
	}
}

func (a *App) createCaseCmd(name, transactionType string, files []string) tea.Cmd {
	return func() tea.Msg {
		c, err := a.client.CreateCase(a.ctx, name, transactionType, files)
		if err != nil {
			return errMsg{err}
		}
		return caseCreatedMsg(c)
	}
}

func (a *App) deleteCaseCmd(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.client.DeleteCase(a.ctx, id); err != nil {
			return errMsg{err}
		}
		if a.stores.Chats != nil {
			_ = a.stores.Chats.Clear(a.ctx, id)
		}
		return caseDeletedMsg(id)
	}
}

func (a *App) pinCmd(c api.Case) tea.Cmd {
	return func() tea.Msg {
		updated, err := a.client.SetPinned(a.ctx, c.ID, !c.Pinned)
		if err != nil {
			return errMsg{err}
		}
		return casePinnedMsg(updated)
	}
}

func (a *App) openCaseCmds() tea.Cmd {
	return tea.Batch(a.loadDocuments(), a.loadChecklist(), a.loadBrief(), a.loadChatHistory())
}

func (a *App) loadDocuments() tea.Cmd {
	caseID := a.currentID()
	return func() tea.Msg {
		if caseID == "" {
			return nil
		}
		docs, err := a.client.ListDocuments(a.ctx, caseID)
		if err != nil {
			return errMsg{err}
		}
		return documentsMsg(docs)
	}
}

func (a *App) loadChecklist() tea.Cmd {
	caseID := a.currentID()
	return func() tea.Msg {
		if caseID == "" {
			return nil
		}
		cl, err := a.client.GetChecklist(a.ctx, caseID)
		if err != nil {
			return errMsg{err}
		}
		return checklistMsg(cl)
	}
}

func (a *App) loadBrief() tea.Cmd {
	caseID := a.currentID()
	return func() tea.Msg {
		if caseID == "" {
			return nil
		}
		b, err := a.client.GetBrief(a.ctx, caseID)
		if err != nil {
			return errMsg{err}
		}
		return briefMsg(b)
	}
}

func (a *App) loadChatHistory() tea.Cmd {
	caseID := a.currentID()
	return func() tea.Msg {
		if caseID == "" || a.stores.Chats == nil {
			return nil
		}
		history, err := a.stores.Chats.History(a.ctx, caseID)
		if err != nil {
			return errMsg{err}
		}
		return chatHistoryMsg(history)
	}
}

func (a *App) uploadDocumentCmd(path string) tea.Cmd {
	caseID := a.currentID()
	return func() tea.Msg {
		doc, err := a.client.UploadDocument(a.ctx, caseID, path)
		if err != nil {
			return errMsg{err}
		}
		return documentUploadedMsg(doc)
	}
}

func (a *App) linkFileCmd(serverPath string) tea.Cmd {
	caseID := a.currentID()
	return func() tea.Msg {
		doc, err := a.client.LinkPath(a.ctx, caseID, serverPath)
		if err != nil {
			return errMsg{err}
		}
		return documentUploadedMsg(doc)
	}
}

func (a *App) deleteDocumentCmd(docID string) tea.Cmd {
	caseID := a.currentID()
	return func() tea.Msg {
		if err := a.client.DeleteDocument(a.ctx, caseID, docID); err != nil {
			return errMsg{err}
		}
		return documentDeletedMsg(docID)
	}
}

func (a *App) previewDocumentCmd(doc api.Document) tea.Cmd {
	caseID := a.currentID()
	return func() tea.Msg {
		dst := filepath.Join(os.TempDir(), "dossier-preview-"+doc.ID+filepath.Ext(doc.Filename))
		if err := a.client.DownloadDocument(a.ctx, caseID, doc.ID, dst); err != nil {
			return errMsg{err}
		}
		defer os.Remove(dst)
		text, err := preview.Text(dst)
		if err != nil {
			return errMsg{err}
		}
		return previewMsg{text: text}
	}
}

func (a *App) startAnalysisCmd() tea.Cmd {
	caseID := a.currentID()
	return func() tea.Msg {
		if err := a.client.StartAnalysis(a.ctx, caseID); err != nil {
			return errMsg{err}
		}
		updates := make(chan analysisUpdate)
		go func() {
			defer close(updates)
			err := a.watcher.Watch(a.ctx, caseID, func(ev api.AnalysisEvent) {
				select {
				case updates <- analysisUpdate{ev: ev}:
				case <-a.ctx.Done():
				}
			})
			if err != nil {
				select {
				case updates <- analysisUpdate{err: err}:
				case <-a.ctx.Done():
				}
			}
		}()
		return analysisStartedMsg(updates)
	}
}

// listenAnalysis re-arms after each event, the subscription pattern for
// channel-backed streams.
func listenAnalysis(updates <-chan analysisUpdate) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return analysisErrMsg{err: errors.New("stream closed")}
		}
		if u.err != nil {
			return analysisErrMsg{err: u.err}
		}
		return analysisEventMsg(u.ev)
	}
}

func (a *App) linkDirectoryCmd(serverDir string) tea.Cmd {
	caseID := a.currentID()
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(a.ctx)
		updates := make(chan linkUpdate)
		go func() {
			defer close(updates)
			res, err := service.LinkDirectory(ctx, a.client, caseID, serverDir, func(p api.LinkProgress) {
				progress := p
				updates <- linkUpdate{progress: &progress}
			})
			updates <- linkUpdate{result: &res, err: err}
		}()
		return linkStartedMsg{updates: updates, cancel: cancel}
	}
}

func listenLink(updates <-chan linkUpdate) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return nil
		}
		if u.progress != nil {
			return linkProgressMsg(*u.progress)
		}
		var res service.LinkResult
		if u.result != nil {
			res = *u.result
		}
		return linkDoneMsg{result: res, err: u.err}
	}
}

func (a *App) sendChatCmd(text string) tea.Cmd {
	caseID := a.currentID()
	opts := api.ChatOptions{
		Model:       a.prefs.Model,
		Temperature: a.prefs.Temperature,
		TopP:        a.prefs.TopP,
	}
	return func() tea.Msg {
		user := api.ChatMessage{
			ID:        uuid.NewString(),
			Role:      "user",
			Body:      text,
			CreatedAt: time.Now().UTC(),
		}
		reply, err := a.client.Chat(a.ctx, caseID, text, opts)
		offline := false
		if err != nil {
			if !errors.Is(err, api.ErrUnreachable) {
				return errMsg{err}
			}
			offline = true
			reply = api.ChatMessage{
				ID:        uuid.NewString(),
				Role:      "assistant",
				Body:      cannedReply,
				CreatedAt: time.Now().UTC(),
			}
		}
		if reply.ID == "" {
			reply.ID = uuid.NewString()
		}
		if a.stores.Chats != nil {
			_ = a.stores.Chats.Append(a.ctx, caseID, user)
			_ = a.stores.Chats.Append(a.ctx, caseID, reply)
		}
		return chatReplyMsg{user: user, reply: reply, offline: offline}
	}
}

func (a *App) loadSessions() tea.Cmd {
	return func() tea.Msg {
		sessions, err := a.client.ListSessions(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return sessionsMsg(sessions)
	}
}

func (a *App) createSessionCmd(s api.Session) tea.Cmd {
	return func() tea.Msg {
		created, err := a.client.CreateSession(a.ctx, s)
		if err != nil {
			return errMsg{err}
		}
		return sessionCreatedMsg(created)
	}
}

func (a *App) deleteSessionCmd(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.client.DeleteSession(a.ctx, id); err != nil {
			return errMsg{err}
		}
		return sessionDeletedMsg(id)
	}
}

func (a *App) loadModules() tea.Cmd {
	caseID := a.currentID()
	return func() tea.Msg {
		if caseID == "" {
			return statusMsg("open a case first")
		}
		modules, err := a.client.ListModules(a.ctx, caseID)
		if err != nil {
			return errMsg{err}
		}
		return modulesMsg(modules)
	}
}

// createModuleCmd groups every document of the open case under the new
// module; the backend allows narrowing the set later.
func (a *App) createModuleCmd(name string) tea.Cmd {
	caseID := a.currentID()
	var docIDs []string
	for _, d := range a.documents {
		docIDs = append(docIDs, d.ID)
	}
	return func() tea.Msg {
		if caseID == "" {
			return statusMsg("open a case first")
		}
		mod, err := a.client.CreateModule(a.ctx, caseID, name, docIDs)
		if err != nil {
			return errMsg{err}
		}
		return moduleCreatedMsg(mod)
	}
}

func (a *App) loadDecks() tea.Cmd {
	moduleID := a.currentModuleID()
	return func() tea.Msg {
		if moduleID == "" {
			return nil
		}
		decks, err := a.client.ListDecks(a.ctx, moduleID)
		if err != nil {
			return errMsg{err}
		}
		return decksMsg(decks)
	}
}

func (a *App) generateDeckCmd() tea.Cmd {
	moduleID := a.currentModuleID()
	return func() tea.Msg {
		if moduleID == "" {
			return statusMsg("select a module first")
		}
		deck, err := a.client.GenerateDeck(a.ctx, moduleID)
		if err != nil {
			return errMsg{err}
		}
		return deckGeneratedMsg(deck)
	}
}

func (a *App) loadSummaries() tea.Cmd {
	moduleID := a.currentModuleID()
	return func() tea.Msg {
		if moduleID == "" {
			return nil
		}
		summaries, err := a.client.ListAudioSummaries(a.ctx, moduleID)
		if err != nil {
			return errMsg{err}
		}
		return summariesMsg(summaries)
	}
}

func (a *App) generateSummaryCmd() tea.Cmd {
	moduleID := a.currentModuleID()
	return func() tea.Msg {
		if moduleID == "" {
			return statusMsg("select a module first")
		}
		summary, err := a.client.GenerateAudioSummary(a.ctx, moduleID, a.prefs.Locale)
		if err != nil {
			return errMsg{err}
		}
		return summaryQueuedMsg(summary)
	}
}

func (a *App) startReviewCmd(deck api.Deck) tea.Cmd {
	return func() tea.Msg {
		if a.reviewer == nil {
			return statusMsg("review store not configured")
		}
		now := time.Now().UTC()
		if err := a.reviewer.SyncDeck(a.ctx, deck, now); err != nil {
			return errMsg{err}
		}
		return a.nextCardMsg(deck, now)
	}
}

func (a *App) gradeCardCmd(deck api.Deck, cardID string, grade int) tea.Cmd {
	return func() tea.Msg {
		now := time.Now().UTC()
		if _, err := a.reviewer.Grade(a.ctx, cardID, grade, now); err != nil {
			return errMsg{err}
		}
		return a.nextCardMsg(deck, now)
	}
}

func (a *App) nextCardMsg(deck api.Deck, now time.Time) tea.Msg {
	due, err := a.reviewer.Due(a.ctx, deck.ID, now)
	if err != nil {
		return errMsg{err}
	}
	if len(due) == 0 {
		return reviewCardMsg{card: nil}
	}
	for _, card := range deck.Cards {
		if card.ID == due[0].CardID {
			c := card
			return reviewCardMsg{card: &c}
		}
	}
	return reviewCardMsg{card: nil}
}

func recorderTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return recorderTickMsg(t)
	})
}

func (a *App) saveRecordingCmd() tea.Cmd {
	moduleID := a.currentModuleID()
	return func() tea.Msg {
		if moduleID == "" {
			return statusMsg("select a module first")
		}
		err := a.rec.Save(func(blob []byte, meta recorder.Meta) error {
			_, err := a.client.UploadRecording(a.ctx, moduleID, blob, api.RecordingMeta{
				Name:             meta.Name,
				Language:         meta.Language,
				IdentifySpeakers: meta.IdentifySpeakers,
				Duration:         meta.Duration,
			})
			return err
		})
		if err != nil {
			return errMsg{err}
		}
		return recordingSavedMsg{}
	}
}

func (a *App) savePrefsCmd() tea.Cmd {
	p := a.prefs
	return func() tea.Msg {
		if err := prefs.Save(p); err != nil {
			return errMsg{err}
		}
		return statusMsg("preferences saved")
	}
}

func (a *App) currentID() string {
	if a.current == nil {
		return ""
	}
	return a.current.ID
}

func (a *App) currentModuleID() string {
	if a.moduleCursor >= len(a.modules) {
		return ""
	}
	return a.modules[a.moduleCursor].ID
}

func splitFileList(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
