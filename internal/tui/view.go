package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/simsearch/internal/backend"
)

func (m *model) View() string {
	switch m.stage {
	case stageCompose:
		return m.viewCompose()
	case stageSearching:
		return m.viewSearching()
	case stageResults:
		return m.viewResults()
	case stageError:
		return m.viewError()
	default:
		return ""
	}
}

func (m *model) viewCompose() string {
	var sections []string
	sections = append(sections, m.heroView())

	form := strings.Builder{}
	form.WriteString(sectionHeaderStyle.Render("Describe your research"))
	form.WriteRune('\n')
	form.WriteString(m.modeSelectorView())
	form.WriteRune('\n')
	form.WriteString(m.abstract.View())
	form.WriteRune('\n')
	form.WriteString(m.charCounterView())
	form.WriteRune('\n')
	form.WriteString(helperStyle.Render("Ctrl+Enter search  •  Tab switch mode  •  Esc clear  •  Ctrl+C quit"))
	if m.validationMsg != "" {
		form.WriteRune('\n')
		form.WriteString(errorStyle.Render(m.validationMsg))
	}
	if m.infoMessage != "" {
		form.WriteRune('\n')
		form.WriteString(helperStyle.Render(m.infoMessage))
	}
	if m.probeNote != "" {
		form.WriteRune('\n')
		form.WriteString(warnStyle.Render(m.probeNote))
	}
	sections = append(sections, form.String())
	sections = append(sections, m.statsBarView(), m.toastView())
	return joinNonEmpty(sections)
}

func (m *model) viewSearching() string {
	body := strings.Builder{}
	body.WriteString(fmt.Sprintf("%s Searching %s for similar papers…", m.spinner.View(), m.mode.Label()))
	body.WriteRune('\n')
	if m.elapsed > 0 {
		body.WriteString(helperStyle.Render(fmt.Sprintf("%ds elapsed — searches typically take 10-90 seconds.", int(m.elapsed.Seconds()))))
	} else {
		body.WriteString(helperStyle.Render("Searches typically take 10-90 seconds."))
	}
	body.WriteRune('\n')
	body.WriteString(helperStyle.Render("Esc abandons the wait and returns to the editor."))
	return joinNonEmpty([]string{m.heroView(), body.String(), m.statsBarView(), m.toastView()})
}

func (m *model) viewResults() string {
	result := m.tracker.Result()
	if result == nil {
		return m.viewCompose()
	}
	if m.summaryOpen != 0 {
		return m.viewSummaryOverlay()
	}

	var sections []string
	sections = append(sections, m.heroView())

	header := strings.Builder{}
	header.WriteString(sectionHeaderStyle.Render(fmt.Sprintf("Top matches — %s mode", m.mode.Label())))
	if len(result.Keywords) > 0 {
		header.WriteRune('\n')
		header.WriteString(helperStyle.Render("Keywords: " + strings.Join(result.Keywords, ", ")))
	}
	sections = append(sections, header.String())

	rows := strings.Builder{}
	for idx, paper := range result.Papers {
		if idx > 0 {
			rows.WriteRune('\n')
		}
		rows.WriteString(m.paperRowView(idx, paper))
	}
	if len(result.Papers) == 0 {
		rows.WriteString(helperStyle.Render("No similar papers found. Try a longer or more specific abstract."))
	}
	sections = append(sections, rows.String())

	if m.infoMessage != "" {
		sections = append(sections, helperStyle.Render(m.infoMessage))
	}
	sections = append(sections,
		helperStyle.Render("↑/↓ move  •  Enter summary  •  1-5 jump  •  n new search"),
		m.statsBarView(),
		m.toastView(),
	)
	return joinNonEmpty(sections)
}

func (m *model) paperRowView(idx int, paper backend.PaperMatch) string {
	cursor := " "
	if idx == m.cursor {
		cursor = ">"
	}
	marker := " "
	switch {
	case m.summaryLoading[paper.Rank]:
		marker = m.spinner.View()
	case m.summaryCached(paper):
		marker = checkmarkStyle.Render("✓")
	}

	title := paper.Title
	line := fmt.Sprintf(" %s %d) %s %s", cursor, paper.Rank, marker, title)
	if idx == m.cursor {
		line = currentRowStyle.Render(line)
	} else {
		line = titleRowStyle.Render(line)
	}

	meta := fmt.Sprintf("      %s · %d · similarity %.2f · rerank %.2f",
		shortenList(paper.Authors, 3), paper.Year, paper.Similarity, paper.RerankScore)
	block := line + "\n" + helperStyle.Render(meta)
	if snippet := strings.TrimSpace(paper.Abstract); snippet != "" {
		block += "\n" + snippetStyle.Render(indentMultiline(wordwrap.String(snippet, m.wrapWidth(8)), "      "))
	}
	return block
}

func (m *model) summaryCached(paper backend.PaperMatch) bool {
	_, ok := m.tracker.Summary(paper.ArxivID)
	return ok
}

func (m *model) viewSummaryOverlay() string {
	paper, ok := m.tracker.Paper(m.summaryOpen)
	if !ok {
		m.summaryOpen = 0
		return m.viewResults()
	}
	head := sectionHeaderStyle.Render(fmt.Sprintf("Summary — #%d %s", paper.Rank, paper.Title))
	foot := helperStyle.Render("↑/↓ scroll  •  Esc back to results  •  n new search")
	return joinNonEmpty([]string{m.heroView(), head, summaryBoxStyle.Render(m.summaryView.View()), foot, m.toastView()})
}

// renderSummaryContent builds the scrollable overlay body for a rank. Pure
// function of tracker state so tests can call it headlessly.
func (m *model) renderSummaryContent(rank int) string {
	paper, ok := m.tracker.Paper(rank)
	if !ok {
		return ""
	}
	summary, ok := m.tracker.Summary(paper.ArxivID)
	if !ok {
		return ""
	}

	wrap := m.wrapWidth(2)
	b := strings.Builder{}
	writeSection := func(label, body string) {
		if strings.TrimSpace(body) == "" {
			return
		}
		b.WriteString(summaryLabelStyle.Render(label))
		b.WriteRune('\n')
		b.WriteString(wordwrap.String(body, wrap))
		b.WriteString("\n\n")
	}

	writeSection("Research Objective", summary.ResearchObjective)
	writeSection("Methodology", summary.MethodologySummary)
	if len(summary.KeyFindings) > 0 {
		b.WriteString(summaryLabelStyle.Render("Key Findings"))
		b.WriteRune('\n')
		for _, finding := range summary.KeyFindings {
			b.WriteString(" • ")
			b.WriteString(wordwrap.String(finding, wrap-4))
			b.WriteRune('\n')
		}
		b.WriteRune('\n')
	}
	writeSection("Innovation & Contribution", summary.InnovationContribution)
	writeSection("Technical Details", summary.TechnicalDetails)
	writeSection("Limitations & Future Work", summary.LimitationsAndFutureWork)
	return strings.TrimRight(b.String(), "\n")
}

func (m *model) viewError() string {
	heading := m.errorHeading
	if heading == "" {
		heading = "Search failed"
	}
	body := strings.Builder{}
	body.WriteString(errorBoxStyle.Render(errorStyle.Render(heading) + "\n" + wordwrap.String(m.errorMessage, m.wrapWidth(6))))
	body.WriteRune('\n')
	body.WriteString(helperStyle.Render("r retry with the same abstract  •  n new search  •  Ctrl+C quit"))
	return joinNonEmpty([]string{m.heroView(), body.String(), m.statsBarView(), m.toastView()})
}

func (m *model) heroView() string {
	title := heroTitleStyle.Render("simsearch")
	tagline := taglineStyle.Render(heroTagline)
	return lipgloss.JoinVertical(lipgloss.Left, title, tagline)
}

func (m *model) modeSelectorView() string {
	parts := make([]string, 0, 2)
	for _, mode := range []backend.Mode{backend.ModeLocal, backend.ModeArxiv} {
		label := mode.Label()
		if note := m.modeStatus(mode); note != "" {
			label += " (" + note + ")"
		}
		if mode == m.mode {
			parts = append(parts, modeActiveStyle.Render("● "+label))
		} else {
			parts = append(parts, modeInactiveStyle.Render("○ "+label))
		}
	}
	return strings.Join(parts, "   ")
}

func (m *model) modeStatus(mode backend.Mode) string {
	if m.backendInfo == nil {
		return ""
	}
	status, ok := m.backendInfo.Modes[string(mode)]
	if !ok {
		return ""
	}
	return status.Status
}

// charCounterView renders the live counter that gates the submit action.
func (m *model) charCounterView() string {
	count := m.draftChars()
	text := fmt.Sprintf("%d / %d characters", count, backend.MinAbstractChars)
	if count >= backend.MinAbstractChars {
		return counterReadyStyle.Render(text + " — ready to search")
	}
	return counterShortStyle.Render(text)
}

func (m *model) statsBarView() string {
	stats := m.tracker.Stats()
	return statusBarStyle.Render(fmt.Sprintf(
		"Searches %d  •  Papers %d  •  Summaries %d",
		stats.SearchesRun, stats.PapersAnalyzed, stats.SummariesGenerated,
	))
}

func (m *model) toastView() string {
	if len(m.toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.toasts))
	for _, item := range m.toasts {
		switch item.level {
		case toastError:
			lines = append(lines, toastErrorStyle.Render("✗ "+item.text))
		case toastSuccess:
			lines = append(lines, toastSuccessStyle.Render("✓ "+item.text))
		default:
			lines = append(lines, toastInfoStyle.Render("· "+item.text))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *model) wrapWidth(padding int) int {
	width := m.width
	if width <= 0 {
		width = 80
	}
	available := width - bodyPaddingWidth - padding
	if available < 20 {
		available = 20
	}
	return available
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func indentMultiline(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func shortenList(items []string, limit int) string {
	if len(items) == 0 {
		return "unknown authors"
	}
	if len(items) <= limit {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s…", strings.Join(items[:limit], ", "))
}

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	snippetStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	checkmarkStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#a3be8c"))

	heroTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff8c00"))
	taglineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb347")).Italic(true)

	modeActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8ecae6"))
	modeInactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	counterReadyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a3be8c"))
	counterShortStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	titleRowStyle   = lipgloss.NewStyle().Bold(true)
	currentRowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))

	summaryLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("147"))
	summaryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)
	errorBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("9")).Padding(1, 2)

	statusBarStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	toastErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#bf616a")).Padding(0, 1)
	toastSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#a3be8c")).Padding(0, 1)
	toastInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
)
