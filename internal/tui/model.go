package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/simsearch/internal/applog"
	"github.com/csheth/simsearch/internal/backend"
	"github.com/csheth/simsearch/internal/session"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Client *backend.Client
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	draft := textarea.New()
	draft.Placeholder = "Paste the abstract of your paper or idea…"
	draft.CharLimit = 4000
	draft.SetWidth(72)
	draft.SetHeight(8)
	draft.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 18)

	return &model{
		config:         config,
		jobs:           newJobBus(),
		tracker:        session.NewTracker(),
		stage:          stageCompose,
		mode:           backend.ModeLocal,
		abstract:       draft,
		spinner:        spin,
		summaryView:    vp,
		summaryLoading: map[int]bool{},
		infoMessage:    "Paste an abstract (50+ characters) and press Ctrl+Enter to search.",
	}
}

type model struct {
	config  Config
	jobs    *jobBus
	tracker *session.Tracker
	stage   stage

	abstract    textarea.Model
	spinner     spinner.Model
	summaryView viewport.Model

	mode        backend.Mode
	backendInfo *backend.BackendConfig
	probeNote   string

	width int

	infoMessage   string
	validationMsg string
	errorHeading  string
	errorMessage  string

	searchStarted time.Time
	elapsed       time.Duration

	cursor         int
	summaryOpen    int // rank of the open summary overlay, 0 when closed
	summaryLoading map[int]bool

	toasts  []toast
	ticking bool
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.jobs.Start(jobKindProbe, probeJob(m.config.Client)),
	)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case toastTickMsg:
		return m, m.handleTick(time.Time(msg))
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		body := msg.Width - bodyPaddingWidth
		if body < minBodyWidth {
			body = minBodyWidth
		}
		m.abstract.SetWidth(body)
		m.summaryView.Width = body
		height := msg.Height - 10
		if height < 6 {
			height = 6
		}
		m.summaryView.Height = height
		return m, nil
	case searchResultMsg:
		return m, m.handleSearchResult(msg)
	case summaryResultMsg:
		return m, m.handleSummaryResult(msg)
	case backendInfoMsg:
		m.handleBackendInfo(msg)
		return m, nil
	}
	return m, nil
}

// busy reports whether any long-running request still needs the spinner.
func (m *model) busy() bool {
	return m.stage == stageSearching || len(m.summaryLoading) > 0
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageCompose:
		return m.handleComposeKey(key)
	case stageSearching:
		switch key.String() {
		case "esc", "n":
			// Abandon the wait; the in-flight response is discarded by the
			// stage guard when it eventually lands.
			m.returnToCompose(false)
			m.infoMessage = "Search abandoned. Edit the abstract and submit again."
			return m, nil
		}
		return m, nil
	case stageResults:
		return m.handleResultsKey(key)
	case stageError:
		switch key.String() {
		case "r", "enter":
			m.returnToCompose(false)
			m.infoMessage = "Edit the abstract if needed, then press Ctrl+Enter to retry."
			return m, nil
		case "n", "esc":
			m.returnToCompose(true)
			return m, nil
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *model) handleComposeKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+enter", "ctrl+j":
		return m, m.submitSearch()
	case "tab", "shift+tab":
		m.toggleMode()
		return m, nil
	case "esc":
		m.abstract.SetValue("")
		m.validationMsg = ""
		m.infoMessage = "Draft cleared."
		return m, nil
	}
	var cmd tea.Cmd
	m.abstract, cmd = m.abstract.Update(key)
	return m, cmd
}

func (m *model) handleResultsKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.summaryOpen != 0 {
		switch key.String() {
		case "esc":
			// Back to the result list; nothing is re-fetched.
			m.summaryOpen = 0
			return m, nil
		case "n":
			m.returnToCompose(true)
			return m, nil
		}
		var cmd tea.Cmd
		m.summaryView, cmd = m.summaryView.Update(key)
		return m, cmd
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if result := m.tracker.Result(); result != nil && m.cursor < len(result.Papers)-1 {
			m.cursor++
		}
		return m, nil
	case "enter", "s":
		return m, m.requestSummaryAtCursor()
	case "1", "2", "3", "4", "5":
		rank := int(key.String()[0] - '0')
		return m, m.requestSummary(rank)
	case "n", "esc":
		m.returnToCompose(true)
		return m, nil
	}
	return m, nil
}

func (m *model) toggleMode() {
	if m.mode == backend.ModeLocal {
		m.mode = backend.ModeArxiv
	} else {
		m.mode = backend.ModeLocal
	}
	m.infoMessage = fmt.Sprintf("Mode set to %s.", m.mode.Label())
}

// draftChars counts the characters that count toward the submit threshold.
func (m *model) draftChars() int {
	return utf8.RuneCountInString(strings.TrimSpace(m.abstract.Value()))
}

func (m *model) submitSearch() tea.Cmd {
	count := m.draftChars()
	if count < backend.MinAbstractChars {
		// Invalid submits are idempotent: no transition, no network call.
		m.validationMsg = fmt.Sprintf(
			"Abstract too short: %d of %d required characters.", count, backend.MinAbstractChars)
		return nil
	}
	m.validationMsg = ""
	abstract := strings.TrimSpace(m.abstract.Value())

	seq := m.tracker.BeginSearch()
	m.stage = stageSearching
	m.searchStarted = time.Now()
	m.elapsed = 0
	m.infoMessage = ""
	applog.Info("search.submit", "seq", seq, "mode", string(m.mode), "chars", count)

	return tea.Batch(
		m.spinner.Tick,
		m.ensureTicker(),
		m.jobs.Start(jobKindSearch, searchJob(m.config.Client, seq, m.mode, abstract)),
	)
}

func (m *model) handleSearchResult(msg searchResultMsg) tea.Cmd {
	if !m.tracker.Accept(msg.seq) {
		applog.Info("search.stale", "seq", msg.seq, "current", m.tracker.CurrentSeq())
		return nil
	}
	if m.stage != stageSearching {
		// The user navigated away; keep the state they chose.
		applog.Info("search.abandoned", "seq", msg.seq)
		return nil
	}
	if msg.err != nil {
		m.stage = stageError
		m.errorHeading = searchErrorHeading(msg.err)
		m.errorMessage = backend.UserMessage(msg.err)
		return m.pushToast(m.errorMessage, toastError)
	}

	m.tracker.RecordResult(msg.result)
	m.stage = stageResults
	m.cursor = 0
	m.summaryOpen = 0
	m.summaryLoading = map[int]bool{}
	m.infoMessage = "Press Enter (or 1-5) for a detailed summary, n for a new search."
	applog.Info("search.results", "seq", msg.seq, "papers", len(msg.result.Papers))
	return nil
}

func searchErrorHeading(err error) string {
	switch {
	case backend.IsTimeout(err):
		return "Search timed out"
	case backend.IsNetwork(err):
		return "Backend unreachable"
	default:
		return "Search failed"
	}
}

func (m *model) requestSummaryAtCursor() tea.Cmd {
	result := m.tracker.Result()
	if result == nil || m.cursor < 0 || m.cursor >= len(result.Papers) {
		return nil
	}
	return m.requestSummary(result.Papers[m.cursor].Rank)
}

func (m *model) requestSummary(rank int) tea.Cmd {
	result := m.tracker.Result()
	if result == nil {
		return nil
	}
	paper, ok := m.tracker.Paper(rank)
	if !ok {
		m.infoMessage = fmt.Sprintf("No paper at rank %d.", rank)
		return nil
	}
	if _, cached := m.tracker.Summary(paper.ArxivID); cached {
		m.openSummary(rank)
		return nil
	}
	if m.summaryLoading[rank] {
		m.infoMessage = fmt.Sprintf("Summary for #%d is already being generated.", rank)
		return nil
	}

	m.summaryLoading[rank] = true
	m.infoMessage = fmt.Sprintf("Generating summary for #%d. You can keep browsing.", rank)
	applog.Info("summary.submit", "rank", rank, "paper", paper.ArxivID)
	return tea.Batch(
		m.spinner.Tick,
		m.ensureTicker(),
		m.jobs.Start(jobKindSummary, summaryJob(m.config.Client, m.mode, result.SessionID, paper)),
	)
}

func (m *model) handleSummaryResult(msg summaryResultMsg) tea.Cmd {
	result := m.tracker.Result()
	if result == nil || result.SessionID != msg.sessionID {
		applog.Info("summary.stale", "session", msg.sessionID, "rank", msg.rank)
		return nil
	}
	delete(m.summaryLoading, msg.rank)
	if msg.err != nil {
		// Results stay on screen; only this paper's request failed.
		return m.pushToast(
			fmt.Sprintf("Summary for #%d failed: %s", msg.rank, backend.UserMessage(msg.err)),
			toastError,
		)
	}

	m.tracker.RecordSummary(msg.paperID, msg.summary)
	m.openSummary(msg.rank)
	return m.pushToast(fmt.Sprintf("Summary ready for #%d.", msg.rank), toastSuccess)
}

func (m *model) openSummary(rank int) {
	m.summaryOpen = rank
	m.summaryView.SetContent(m.renderSummaryContent(rank))
	m.summaryView.SetYOffset(0)
}

func (m *model) handleBackendInfo(msg backendInfoMsg) {
	if msg.err != nil {
		m.probeNote = "Backend not reachable yet; searches will fail until it is up."
		applog.Error("probe.failed", msg.err)
		return
	}
	m.probeNote = ""
	m.backendInfo = msg.config
	if msg.config != nil && !msg.config.LocalDatabase.Ready {
		m.probeNote = "Local database holds no papers; Local mode will return nothing."
	}
	if msg.health != nil {
		applog.Info("probe.ok", "version", msg.health.Version)
	}
}

// returnToCompose is the shared "new search" transition. The current result
// set, the summary cache, and any in-flight request's UI binding are
// discarded; the underlying network calls are not aborted, their late
// responses simply fail the stage and session guards.
func (m *model) returnToCompose(clearDraft bool) {
	m.stage = stageCompose
	m.tracker.Clear()
	m.summaryLoading = map[int]bool{}
	m.summaryOpen = 0
	m.cursor = 0
	m.errorHeading = ""
	m.errorMessage = ""
	m.validationMsg = ""
	if clearDraft {
		m.abstract.SetValue("")
	}
	m.abstract.Focus()
	m.infoMessage = "Paste an abstract (50+ characters) and press Ctrl+Enter to search."
}

func (m *model) pushToast(text string, level toastLevel) tea.Cmd {
	m.toasts = append(m.toasts, toast{
		text:      text,
		level:     level,
		expiresAt: time.Now().Add(toastLifetime),
	})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
	return m.ensureTicker()
}

// ensureTicker arms the one-second tick when something needs it and no tick
// is already scheduled.
func (m *model) ensureTicker() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

func (m *model) handleTick(now time.Time) tea.Cmd {
	m.ticking = false
	m.pruneToasts(now)
	if m.stage == stageSearching {
		m.elapsed = now.Sub(m.searchStarted)
	}
	if len(m.toasts) > 0 || m.busy() {
		return m.ensureTicker()
	}
	return nil
}

func (m *model) pruneToasts(now time.Time) {
	kept := m.toasts[:0]
	for _, item := range m.toasts {
		if item.expiresAt.After(now) {
			kept = append(kept, item)
		}
	}
	m.toasts = kept
}
