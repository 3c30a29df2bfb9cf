package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/simsearch/internal/backend"
)

func resultWithPapers(n int) *backend.SearchResult {
	result := &backend.SearchResult{SessionID: "s1"}
	for i := 0; i < n; i++ {
		result.Papers = append(result.Papers, backend.PaperMatch{Rank: i + 1, ArxivID: "id"})
	}
	return result
}

func TestBeginSearchMakesOlderSequencesStale(t *testing.T) {
	tracker := NewTracker()

	first := tracker.BeginSearch()
	second := tracker.BeginSearch()

	assert.False(t, tracker.Accept(first), "first search should be stale after the second begins")
	assert.True(t, tracker.Accept(second))
	assert.Equal(t, second, tracker.CurrentSeq())
}

func TestRecordResultCountsOncePerSearch(t *testing.T) {
	tracker := NewTracker()
	tracker.BeginSearch()
	tracker.RecordResult(resultWithPapers(3))

	stats := tracker.Stats()
	assert.Equal(t, 1, stats.SearchesRun)
	assert.Equal(t, 3, stats.PapersAnalyzed)
	assert.Equal(t, 0, stats.SummariesGenerated)
}

func TestRecordResultReplacesSetAndDropsSummaryCache(t *testing.T) {
	tracker := NewTracker()
	tracker.BeginSearch()
	tracker.RecordResult(resultWithPapers(2))
	tracker.RecordSummary("2101.00001", &backend.PaperSummary{ResearchObjective: "x"})

	_, ok := tracker.Summary("2101.00001")
	require.True(t, ok)

	tracker.BeginSearch()
	tracker.RecordResult(resultWithPapers(1))

	_, ok = tracker.Summary("2101.00001")
	assert.False(t, ok, "summary cache must die with the result set")
	require.NotNil(t, tracker.Result())
	assert.Len(t, tracker.Result().Papers, 1)
	assert.Equal(t, 2, tracker.Stats().SearchesRun)
}

func TestPaperLookupByRank(t *testing.T) {
	tracker := NewTracker()
	tracker.RecordResult(resultWithPapers(3))

	paper, ok := tracker.Paper(2)
	require.True(t, ok)
	assert.Equal(t, 2, paper.Rank)

	_, ok = tracker.Paper(9)
	assert.False(t, ok)
}

func TestClearKeepsCountersAndSequence(t *testing.T) {
	tracker := NewTracker()
	seq := tracker.BeginSearch()
	tracker.RecordResult(resultWithPapers(2))
	tracker.RecordSummary("x", &backend.PaperSummary{})

	tracker.Clear()

	assert.Nil(t, tracker.Result())
	_, ok := tracker.Summary("x")
	assert.False(t, ok)
	assert.Equal(t, Stats{SearchesRun: 1, PapersAnalyzed: 2, SummariesGenerated: 1}, tracker.Stats())
	assert.True(t, tracker.Accept(seq), "clear alone must not invalidate the sequence")
}

func TestRecordSummaryIncrementsCounter(t *testing.T) {
	tracker := NewTracker()
	tracker.RecordResult(resultWithPapers(1))
	tracker.RecordSummary("a", &backend.PaperSummary{})
	tracker.RecordSummary("b", &backend.PaperSummary{})

	assert.Equal(t, 2, tracker.Stats().SummariesGenerated)
}
