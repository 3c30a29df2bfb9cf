// Package session holds the client-side state that outlives a single screen:
// run counters, the current result set, the per-paper summary cache, and the
// request sequence used to discard stale responses. Everything here is
// mutated from the TUI update loop only, so no locking is needed.
package session

import "github.com/csheth/simsearch/internal/backend"

// Stats are the monotonically increasing session counters. They reset only
// when the process restarts.
type Stats struct {
	SearchesRun        int
	PapersAnalyzed     int
	SummariesGenerated int
}

// Tracker owns one session's mutable state. The zero value is not usable;
// construct with NewTracker.
type Tracker struct {
	stats     Stats
	searchSeq uint64
	result    *backend.SearchResult
	summaries map[string]*backend.PaperSummary
}

// NewTracker returns an empty session.
func NewTracker() *Tracker {
	return &Tracker{summaries: map[string]*backend.PaperSummary{}}
}

// Stats returns a copy of the current counters.
func (t *Tracker) Stats() Stats { return t.stats }

// BeginSearch advances the request sequence and returns the number the new
// search must stamp on its result message. Any response carrying an older
// sequence is stale and must be ignored.
func (t *Tracker) BeginSearch() uint64 {
	t.searchSeq++
	return t.searchSeq
}

// CurrentSeq reports the sequence of the most recently issued search.
func (t *Tracker) CurrentSeq() uint64 { return t.searchSeq }

// Accept reports whether a response stamped with seq belongs to the newest
// search. It does not mutate anything; stale callers just drop their result.
func (t *Tracker) Accept(seq uint64) bool {
	return seq == t.searchSeq
}

// RecordResult installs a successful search outcome, replacing the previous
// result set wholesale and dropping every cached summary with it. Counters
// move exactly once per accepted result.
func (t *Tracker) RecordResult(result *backend.SearchResult) {
	t.result = result
	t.summaries = map[string]*backend.PaperSummary{}
	t.stats.SearchesRun++
	t.stats.PapersAnalyzed += len(result.Papers)
}

// Result returns the current result set, or nil when none is held.
func (t *Tracker) Result() *backend.SearchResult { return t.result }

// Paper looks up a match of the current result set by 1-based rank.
func (t *Tracker) Paper(rank int) (backend.PaperMatch, bool) {
	if t.result == nil {
		return backend.PaperMatch{}, false
	}
	for _, paper := range t.result.Papers {
		if paper.Rank == rank {
			return paper, true
		}
	}
	return backend.PaperMatch{}, false
}

// RecordSummary caches a generated summary under the paper's arXiv ID and
// bumps the counter. Summaries are only ever cached for papers of the
// current result set; the cache dies with the set in RecordResult/Clear.
func (t *Tracker) RecordSummary(paperID string, summary *backend.PaperSummary) {
	t.summaries[paperID] = summary
	t.stats.SummariesGenerated++
}

// Summary returns the cached summary for a paper, if one was generated this
// result set.
func (t *Tracker) Summary(paperID string) (*backend.PaperSummary, bool) {
	summary, ok := t.summaries[paperID]
	return summary, ok
}

// Clear discards the result set and summary cache, for example on "new
// search". Counters and the request sequence are deliberately untouched; a
// late summary response from the discarded set fails its session ID check
// because the result it belonged to is gone.
func (t *Tracker) Clear() {
	t.result = nil
	t.summaries = map[string]*backend.PaperSummary{}
}
