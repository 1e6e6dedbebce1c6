// Package tui is the terminal front-end: a dashboard of cases, a case
// detail screen (documents, checklist, brief, chat), the study screens and
// the settings view, all over the remote API.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/dossier/internal/api"
	"github.com/jask/dossier/internal/cache"
	"github.com/jask/dossier/internal/config"
	"github.com/jask/dossier/internal/prefs"
	"github.com/jask/dossier/internal/recorder"
	"github.com/jask/dossier/internal/service"
)

type appState string

const (
	viewDashboard appState = "dashboard"
	viewDetail    appState = "detail"
	viewStudy     appState = "study"
	viewSettings  appState = "settings"
)

type modalState string

const (
	modalNone          modalState = ""
	modalNewCase       modalState = "newCase"
	modalConfirmDelete modalState = "confirmDelete"
	modalUpload        modalState = "upload"
	modalLinkFile      modalState = "linkFile"
	modalLinkDir       modalState = "linkDir"
	modalNewSession    modalState = "newSession"
	modalNewModule     modalState = "newModule"
	modalRecorder      modalState = "recorder"
	modalModelPicker   modalState = "modelPicker"
)

type detailTab int

const (
	tabDocuments detailTab = iota
	tabChecklist
	tabBrief
	tabChat
)

// Stores groups the local sqlite-backed state.
type Stores struct {
	Cases *cache.CaseCache
	Chats *cache.ChatStore
}

// App ties together views.
type App struct {
	ctx      context.Context
	client   *api.Client
	stores   Stores
	reviewer *service.Reviewer
	watcher  *service.Watcher
	cfg      config.Config
	prefs    prefs.Prefs

	state appState
	modal modalState

	// dashboard
	cases         []api.Case
	allCases      []api.Case
	caseCursor    int
	searchInput   textinput.Model
	searching     bool
	fromCache     bool
	casesResolved bool
	loadErr       string

	// new-case form
	formName  textinput.Model
	formType  textinput.Model
	formFiles textinput.Model
	formFocus int

	// detail
	current     *api.Case
	tab         detailTab
	documents   []api.Document
	docCursor   int
	checklist   *api.Checklist
	brief       *api.Brief
	chat        []api.ChatMessage
	chatInput   textinput.Model
	previewText string
	analysis    *api.AnalysisEvent
	analysisCh  <-chan analysisUpdate

	// link flows
	linkInput    textinput.Model
	linkProgress *api.LinkProgress
	linkCh       <-chan linkUpdate
	linkCancel   context.CancelFunc

	// study
	sessions      []api.Session
	sessionCursor int
	modules       []api.Module
	moduleCursor  int
	decks         []api.Deck
	deckCursor    int
	summaries     []api.AudioSummary
	reviewCard    *api.Flashcard
	reviewBack    bool
	sessionForm   [4]textinput.Model // title, semester, year, dates
	sessionFocus  int
	moduleInput   textinput.Model

	// recorder
	rec *recorder.Recorder

	// settings
	models         []api.ModelInfo
	methods        []api.ExtractionMethod
	settingsCursor int
	modelCursor    int

	status string
	width  int
	height int
}

// Options carry the world the App runs against.
type Options struct {
	Client   *api.Client
	Stores   Stores
	Reviewer *service.Reviewer
	Config   config.Config
	Prefs    prefs.Prefs
	Device   recorder.Device
}

func New(ctx context.Context, opts Options) *App {
	search := textinput.New()
	search.Placeholder = "search cases"
	search.CharLimit = 64

	chatIn := textinput.New()
	chatIn.Placeholder = "ask the assistant"
	chatIn.CharLimit = 500

	linkIn := textinput.New()
	linkIn.Placeholder = "/server/path"
	linkIn.CharLimit = 256

	name := textinput.New()
	name.Placeholder = "case name"
	name.CharLimit = 120
	ttype := textinput.New()
	ttype.Placeholder = "transaction type (sale, succession, ...)"
	ttype.CharLimit = 64
	files := textinput.New()
	files.Placeholder = "local files, comma separated"
	files.CharLimit = 512

	moduleIn := textinput.New()
	moduleIn.Placeholder = "module name"
	moduleIn.CharLimit = 120

	var sessionForm [4]textinput.Model
	placeholders := []string{"title", "semester", "year", "start..end (2026-01-02..2026-06-30)"}
	for i := range sessionForm {
		sessionForm[i] = textinput.New()
		sessionForm[i].Placeholder = placeholders[i]
	}

	poll := time.Duration(opts.Config.API.PollSeconds) * time.Second
	dev := opts.Device
	if dev == nil {
		dev = &recorder.ExecDevice{}
	}

	return &App{
		ctx:         ctx,
		client:      opts.Client,
		stores:      opts.Stores,
		reviewer:    opts.Reviewer,
		watcher:     &service.Watcher{API: opts.Client, PollInterval: poll},
		cfg:         opts.Config,
		prefs:       opts.Prefs,
		state:       viewDashboard,
		searchInput: search,
		chatInput:   chatIn,
		linkInput:   linkIn,
		moduleInput: moduleIn,
		formName:    name,
		formType:    ttype,
		formFiles:   files,
		sessionForm: sessionForm,
		rec:         recorder.New(dev),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadCachedCases(), a.loadCases(), a.loadSettings())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, nil

	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		switch a.state {
		case viewDetail:
			return a.handleDetailKey(m)
		case viewStudy:
			return a.handleStudyKey(m)
		case viewSettings:
			return a.handleSettingsKey(m)
		default:
			return a.handleDashboardKey(m)
		}

	case cachedCasesMsg:
		// only paint from cache while the live fetch is still out
		if !a.casesResolved {
			a.allCases = m
			a.fromCache = true
			a.applyCaseFilter()
		}
		return a, nil

	case casesMsg:
		a.allCases = m
		a.fromCache = false
		a.casesResolved = true
		a.loadErr = ""
		a.applyCaseFilter()
		return a, a.snapshotCases(m)

	case caseLoadErrMsg:
		a.casesResolved = true
		a.loadErr = m.err.Error()
		a.status = "could not load cases - press R to retry"
		return a, nil

	case caseCreatedMsg:
		a.status = "case created"
		a.closeNewCaseModal()
		return a, a.loadCases()

	case caseDeletedMsg:
		a.status = "case deleted"
		if a.current != nil && a.current.ID == string(m) {
			a.current = nil
			a.state = viewDashboard
		}
		return a, a.loadCases()

	case casePinnedMsg:
		return a, a.loadCases()

	case documentsMsg:
		a.documents = m
		if a.docCursor >= len(a.documents) {
			a.docCursor = 0
		}
		return a, nil

	case documentDeletedMsg:
		a.documents = removeDocument(a.documents, string(m))
		if a.docCursor >= len(a.documents) && a.docCursor > 0 {
			a.docCursor--
		}
		a.status = "document deleted"
		return a, nil

	case documentUploadedMsg:
		a.status = "uploaded " + m.Filename
		return a, a.loadDocuments()

	case previewMsg:
		a.previewText = m.text
		a.status = ""
		return a, nil

	case checklistMsg:
		cl := api.Checklist(m)
		a.checklist = &cl
		return a, nil

	case briefMsg:
		b := api.Brief(m)
		a.brief = &b
		return a, nil

	case chatHistoryMsg:
		a.chat = m
		return a, nil

	case chatReplyMsg:
		a.chat = append(a.chat, m.user, m.reply)
		if m.offline {
			a.status = "assistant offline - showing canned reply"
		} else {
			a.status = ""
		}
		return a, nil

	case analysisStartedMsg:
		a.analysisCh = m
		a.status = "analysis running"
		return a, listenAnalysis(m)

	case analysisEventMsg:
		ev := api.AnalysisEvent(m)
		a.analysis = &ev
		if ev.Terminal() {
			a.analysisCh = nil
			a.status = "analysis " + ev.Status
			return a, tea.Batch(a.loadCases(), a.loadChecklist(), a.loadBrief())
		}
		return a, listenAnalysis(a.analysisCh)

	case analysisErrMsg:
		a.analysisCh = nil
		a.status = "analysis failed: " + m.err.Error()
		return a, nil

	case linkStartedMsg:
		a.linkCh = m.updates
		a.linkCancel = m.cancel
		a.modal = modalLinkDir
		return a, listenLink(m.updates)

	case linkProgressMsg:
		p := api.LinkProgress(m)
		a.linkProgress = &p
		return a, listenLink(a.linkCh)

	case linkDoneMsg:
		a.linkCh = nil
		a.linkCancel = nil
		a.linkProgress = nil
		a.modal = modalNone
		if m.err != nil {
			a.status = "link failed: " + m.err.Error()
		} else if m.result.Cancelled {
			a.status = "link cancelled, server cleaned up"
		} else {
			a.status = "linked directory"
		}
		return a, a.loadDocuments()

	case sessionsMsg:
		a.sessions = m
		if a.sessionCursor >= len(a.sessions) {
			a.sessionCursor = 0
		}
		return a, nil

	case sessionCreatedMsg:
		a.status = "session created"
		a.modal = modalNone
		return a, a.loadSessions()

	case sessionDeletedMsg:
		a.status = "session deleted"
		return a, a.loadSessions()

	case modulesMsg:
		a.modules = m
		if a.moduleCursor >= len(a.modules) {
			a.moduleCursor = 0
		}
		return a, nil

	case moduleCreatedMsg:
		a.status = "module created"
		a.modal = modalNone
		return a, a.loadModules()

	case decksMsg:
		a.decks = m
		if a.deckCursor >= len(a.decks) {
			a.deckCursor = 0
		}
		return a, nil

	case deckGeneratedMsg:
		a.status = "deck generated"
		return a, a.loadDecks()

	case summariesMsg:
		a.summaries = m
		return a, nil

	case summaryQueuedMsg:
		a.status = "audio summary queued"
		return a, a.loadSummaries()

	case reviewCardMsg:
		if m.card == nil {
			a.reviewCard = nil
			a.status = "no cards due"
		} else {
			a.reviewCard = m.card
			a.reviewBack = false
		}
		return a, nil

	case recorderTickMsg:
		if a.modal == modalRecorder {
			a.rec.TickSecond()
			return a, recorderTick()
		}
		return a, nil

	case recordingSavedMsg:
		a.status = "recording uploaded for transcription"
		a.modal = modalNone
		return a, a.loadSummaries()

	case settingsMsg:
		a.models = m.models
		a.methods = m.methods
		return a, nil

	case statusMsg:
		a.status = string(m)
		return a, nil

	case errMsg:
		a.status = "error: " + m.Error()
		return a, nil
	}
	return a, nil
}

func (a *App) View() string {
	var body string
	switch a.state {
	case viewDetail:
		body = a.renderDetail()
	case viewStudy:
		body = a.renderStudy()
	case viewSettings:
		body = a.renderSettings()
	default:
		body = a.renderDashboard()
	}
	if a.modal != modalNone {
		body += "\n\n" + a.renderModal()
	}
	return body
}

// removeDocument drops exactly the document with the given id, leaving the
// rest untouched.
func removeDocument(docs []api.Document, id string) []api.Document {
	out := make([]api.Document, 0, len(docs))
	for _, d := range docs {
		if d.ID != id {
			out = append(out, d)
		}
	}
	return out
}

func (a *App) applyCaseFilter() {
	filtered := service.FilterCases(a.allCases, a.searchInput.Value())
	service.SortCases(filtered)
	a.cases = filtered
	if a.caseCursor >= len(a.cases) {
		a.caseCursor = 0
	}
}
