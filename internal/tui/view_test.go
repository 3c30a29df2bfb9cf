package tui

import (
	"strings"
	"testing"

	"github.com/csheth/simsearch/internal/backend"
)

func TestCharCounterGatesSubmitHint(t *testing.T) {
	m := newTestModel(t)

	m.abstract.SetValue("short")
	if view := m.charCounterView(); strings.Contains(view, "ready to search") {
		t.Fatalf("counter should not report ready below the minimum: %q", view)
	}

	m.abstract.SetValue(strings.Repeat("a", backend.MinAbstractChars))
	if view := m.charCounterView(); !strings.Contains(view, "ready to search") {
		t.Fatalf("counter should report ready at the minimum: %q", view)
	}
}

func TestComposeViewShowsValidationInline(t *testing.T) {
	m := newTestModel(t)
	m.submitFixture(t, "too short")

	view := m.View()
	if !strings.Contains(view, "Abstract too short") {
		t.Fatalf("compose view missing validation message:\n%s", view)
	}
}

func TestResultsViewMarksCachedSummaries(t *testing.T) {
	m := newTestModel(t)
	installResults(t, m, 2)
	m.tracker.RecordSummary("2101.00001", &backend.PaperSummary{ResearchObjective: "x"})

	view := m.View()
	if !strings.Contains(view, "✓") {
		t.Fatalf("cached summary marker missing:\n%s", view)
	}
}

func TestSummaryContentRendersAllSections(t *testing.T) {
	m := newTestModel(t)
	installResults(t, m, 1)
	m.tracker.RecordSummary("2101.00001", &backend.PaperSummary{
		ResearchObjective:        "Objective.",
		MethodologySummary:       "Method.",
		KeyFindings:              []string{"First finding", "Second finding"},
		InnovationContribution:   "Novelty.",
		TechnicalDetails:         "Details.",
		LimitationsAndFutureWork: "Limits.",
	})

	content := m.renderSummaryContent(1)
	for _, label := range []string{
		"Research Objective", "Methodology", "Key Findings",
		"Innovation & Contribution", "Technical Details", "Limitations & Future Work",
	} {
		if !strings.Contains(content, label) {
			t.Fatalf("summary content missing section %q:\n%s", label, content)
		}
	}
	if !strings.Contains(content, "Second finding") {
		t.Fatal("key findings not rendered as bullets")
	}
}

func TestErrorViewOffersRetry(t *testing.T) {
	m := newTestModel(t)
	m.stage = stageError
	m.errorHeading = "Backend unreachable"
	m.errorMessage = "Could not reach the search backend. Is it running?"

	view := m.View()
	if !strings.Contains(view, "Backend unreachable") {
		t.Fatalf("error view missing heading:\n%s", view)
	}
	if !strings.Contains(view, "retry") {
		t.Fatalf("error view missing retry affordance:\n%s", view)
	}
}

func TestStatsBarReflectsCounters(t *testing.T) {
	m := newTestModel(t)
	installResults(t, m, 4)

	bar := m.statsBarView()
	if !strings.Contains(bar, "Searches 1") || !strings.Contains(bar, "Papers 4") {
		t.Fatalf("stats bar wrong: %q", bar)
	}
}
