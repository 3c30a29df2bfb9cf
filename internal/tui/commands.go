package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/simsearch/internal/backend"
)

func searchJob(client *backend.Client, seq uint64, mode backend.Mode, abstract string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		result, err := client.Search(ctx, mode, abstract)
		return searchResultMsg{seq: seq, result: result, err: err}, err
	}
}

func summaryJob(client *backend.Client, mode backend.Mode, sessionID string, paper backend.PaperMatch) jobRunner {
	rank := paper.Rank
	paperID := paper.ArxivID
	return func(ctx context.Context) (tea.Msg, error) {
		summary, err := client.Summarize(ctx, mode, sessionID, rank)
		return summaryResultMsg{
			sessionID: sessionID,
			rank:      rank,
			paperID:   paperID,
			summary:   summary,
			err:       err,
		}, err
	}
}

// probeJob fetches health and config in one job. A failed probe is not
// fatal; the UI just loses its mode annotations.
func probeJob(client *backend.Client) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		health, err := client.Health(ctx)
		if err != nil {
			return backendInfoMsg{err: err}, err
		}
		cfg, err := client.FetchConfig(ctx)
		if err != nil {
			return backendInfoMsg{health: health, err: err}, err
		}
		return backendInfoMsg{health: health, config: cfg}, nil
	}
}
