package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/csheth/simsearch/internal/tuitest"
)

const stubAbstract = "We study transformer attention sparsity and its effect on retrieval quality at scale."

func TestSearchAndSummaryFlow(t *testing.T) {
	t.Parallel()

	server := newStubBackend(t)
	defer server.Close()

	binary := buildBinary(t, moduleDir(t))
	ctx := context.Background()
	rec, err := tuitest.Run(ctx, tuitest.Config{
		Command: []string{
			binary,
			"--no-alt-screen",
			"--backend-url", server.URL,
			"--log-dir", t.TempDir(),
		},
		Dir:    t.TempDir(),
		Width:  110,
		Height: 32,
		Steps: []tuitest.Step{
			{Delay: time.Second},
			{Input: []byte(stubAbstract)},
			{Delay: 300 * time.Millisecond, Input: tuitest.KeyCtrlJ},
			{Delay: time.Second},
			{Input: []byte("1")},
			{Delay: time.Second},
			{Input: tuitest.KeyEsc},
			{Delay: 300 * time.Millisecond, Input: tuitest.KeyCtrlC},
		},
		Timeout:        15 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}

	for _, needle := range []string{
		"Sparse Attention at Scale",
		"transformer, retrieval, sparsity",
		"Research Objective",
	} {
		if !rec.ContainsFrame(needle) {
			t.Errorf("no frame contains %q", needle)
		}
	}
}

func TestShortAbstractStaysOnComposeScreen(t *testing.T) {
	t.Parallel()

	server := newStubBackend(t)
	defer server.Close()

	binary := buildBinary(t, moduleDir(t))
	ctx := context.Background()
	rec, err := tuitest.Run(ctx, tuitest.Config{
		Command: []string{
			binary,
			"--no-alt-screen",
			"--backend-url", server.URL,
			"--log-dir", t.TempDir(),
		},
		Dir:    t.TempDir(),
		Width:  110,
		Height: 32,
		Steps: []tuitest.Step{
			{Delay: time.Second},
			{Input: []byte("too short")},
			{Delay: 300 * time.Millisecond, Input: tuitest.KeyCtrlJ},
			{Delay: time.Second},
			{Input: tuitest.KeyCtrlC},
		},
		Timeout:        10 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}

	if !rec.ContainsFrame("Abstract too short") {
		t.Errorf("validation message never rendered")
	}
	if rec.ContainsFrame("Sparse Attention at Scale") {
		t.Errorf("search ran despite a short abstract")
	}
}

func newStubBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"status": "healthy", "service": "similarity-search"})
	})
	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"arxiv_max_results": 10,
			"top_k_papers":      5,
			"modes": map[string]any{
				"arxiv": map[string]any{"name": "ArXiv", "description": "live arXiv fetch", "status": "ready"},
				"local": map[string]any{"name": "Local Database", "description": "precomputed corpus", "status": "ready"},
			},
		})
	})
	mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"session_id": "sess-1",
			"mode":       "local",
			"keywords":   []string{"transformer", "retrieval", "sparsity"},
			"metrics":    map[string]float64{"papers_searched": 1200},
			"top_5_papers": []map[string]any{
				{
					"rank": 1, "title": "Sparse Attention at Scale",
					"authors": []string{"A. Researcher", "B. Author"}, "year": 2024,
					"arxiv_id": "2401.00001", "url": "https://arxiv.org/abs/2401.00001",
					"similarity": 0.91, "rerank_score": 0.88,
					"abstract": "We show sparse attention preserves retrieval quality.",
				},
				{
					"rank": 2, "title": "Dense Baselines Revisited",
					"authors": []string{"C. Writer"}, "year": 2023,
					"arxiv_id": "2302.00002", "url": "https://arxiv.org/abs/2302.00002",
					"similarity": 0.84, "rerank_score": 0.80,
					"abstract": "A careful comparison of dense retrieval baselines.",
				},
			},
		})
	})
	mux.HandleFunc("/api/summary", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"paper": map[string]any{
				"rank": 1, "title": "Sparse Attention at Scale",
				"authors": []string{"A. Researcher", "B. Author"}, "year": 2024,
				"arxiv_id": "2401.00001", "url": "https://arxiv.org/abs/2401.00001",
				"similarity": 0.91, "rerank_score": 0.88,
				"abstract": "We show sparse attention preserves retrieval quality.",
			},
			"summary": map[string]any{
				"research_objective":          "Quantify the retrieval cost of attention sparsity.",
				"methodology_summary":         "Ablations across three corpus sizes.",
				"key_findings":                []string{"Quality holds to 90% sparsity.", "Latency drops 4x."},
				"innovation_and_contribution": "First large-scale sparsity sweep for retrieval.",
				"technical_details":           "Block-sparse kernels over 1B-token corpora.",
				"limitations_and_future_work": "English-only evaluation; multilingual left open.",
			},
		})
	})
	return httptest.NewServer(mux)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	tmp := t.TempDir()
	name := "simsearch-integration"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(tmp, name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
