package tui

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/simsearch/internal/applog"
)

type jobKind string

const (
	jobKindProbe   jobKind = "probe"
	jobKindSearch  jobKind = "search"
	jobKindSummary jobKind = "summary"
)

type jobRunner func(context.Context) (tea.Msg, error)

// jobBus runs background work as tea commands and records every completion
// in the run log. The TUI owns the terminal, so jobs must never print there.
type jobBus struct {
	counter int64
}

func newJobBus() *jobBus {
	return &jobBus{}
}

func (b *jobBus) nextID(kind jobKind) string {
	idx := atomic.AddInt64(&b.counter, 1)
	return fmt.Sprintf("%s-%d", kind, idx)
}

// Start wraps runner in a command. The runner's payload message is always
// delivered to the model, success or failure; the error only feeds the log.
// Cancellation is logical: an abandoned job keeps running to completion and
// its payload is discarded by the model's staleness guards.
func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := b.nextID(kind)
	started := time.Now()
	applog.Info("job.start", "id", id)

	return func() tea.Msg {
		payload, err := runner(context.Background())
		duration := time.Since(started)
		if err != nil {
			applog.Error("job.failed", err, "id", id, "duration", duration)
		} else {
			applog.Info("job.done", "id", id, "duration", duration)
		}
		return payload
	}
}
