package tui

import (
	"time"

	"github.com/csheth/simsearch/internal/backend"
)

type stage int

const (
	stageCompose stage = iota
	stageSearching
	stageResults
	stageError
)

const heroTagline = "Find the papers closest to your abstract."

const (
	minBodyWidth     = 40
	bodyPaddingWidth = 4
	maxToasts        = 3
	toastLifetime    = 5 * time.Second
)

// searchResultMsg carries the outcome of a search job. seq is the sequence
// stamped when the search was issued; the model drops any message whose seq
// no longer matches the tracker's current one.
type searchResultMsg struct {
	seq    uint64
	result *backend.SearchResult
	err    error
}

// summaryResultMsg carries the outcome of a per-paper summary job. It is
// bound to its originating result set by session ID, so a summary from a
// discarded search can never attach to newer results.
type summaryResultMsg struct {
	sessionID string
	rank      int
	paperID   string
	summary   *backend.PaperSummary
	err       error
}

// backendInfoMsg carries the startup probe of /api/health and /api/config.
type backendInfoMsg struct {
	health *backend.Health
	config *backend.BackendConfig
	err    error
}

// toastTickMsg drives toast expiry and the elapsed-time readout while a
// request is pending.
type toastTickMsg time.Time

type toastLevel int

const (
	toastInfo toastLevel = iota
	toastSuccess
	toastError
)

type toast struct {
	text      string
	level     toastLevel
	expiresAt time.Time
}
