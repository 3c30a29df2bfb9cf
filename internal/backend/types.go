package backend

// Mode selects which corpus a similarity search runs against.
type Mode string

const (
	// ModeArxiv searches live arXiv data through the backend pipeline.
	ModeArxiv Mode = "arxiv"
	// ModeLocal searches the backend's precomputed local corpus.
	ModeLocal Mode = "local"
)

// Valid reports whether the mode is one the backend understands.
func (m Mode) Valid() bool {
	return m == ModeArxiv || m == ModeLocal
}

// Label returns the display name used across the UI.
func (m Mode) Label() string {
	switch m {
	case ModeArxiv:
		return "ArXiv"
	case ModeLocal:
		return "Local Database"
	default:
		return string(m)
	}
}

// PaperMatch is one ranked candidate returned by a search. The backend caps
// result sets at five entries and truncates abstracts to a snippet.
type PaperMatch struct {
	Rank        int      `json:"rank"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Year        int      `json:"year"`
	ArxivID     string   `json:"arxiv_id"`
	URL         string   `json:"url"`
	Similarity  float64  `json:"similarity"`
	RerankScore float64  `json:"rerank_score"`
	Abstract    string   `json:"abstract"`
}

// SearchResult is the decoded body of a successful /api/search call. The
// session ID addresses follow-up summary requests.
type SearchResult struct {
	SessionID           string             `json:"session_id"`
	Mode                Mode               `json:"mode"`
	QueryAbstract       string             `json:"query_abstract"`
	Timestamp           string             `json:"timestamp"`
	Keywords            []string           `json:"keywords"`
	Metrics             map[string]float64 `json:"metrics"`
	Papers              []PaperMatch       `json:"top_5_papers"`
	ComparativeAnalysis string             `json:"comparative_analysis,omitempty"`
}

// PaperSummary is the structured long-form analysis of a single match.
type PaperSummary struct {
	ResearchObjective        string   `json:"research_objective"`
	MethodologySummary       string   `json:"methodology_summary"`
	KeyFindings              []string `json:"key_findings"`
	InnovationContribution   string   `json:"innovation_and_contribution"`
	TechnicalDetails         string   `json:"technical_details"`
	LimitationsAndFutureWork string   `json:"limitations_and_future_work"`
}

// ModeStatus describes one search mode as reported by /api/config.
type ModeStatus struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// BackendConfig is the subset of /api/config the client consumes.
type BackendConfig struct {
	ArxivMaxResults int `json:"arxiv_max_results"`
	TopKPapers      int `json:"top_k_papers"`
	LocalDatabase   struct {
		Path     string `json:"path"`
		PDFCount int    `json:"pdf_count"`
		Ready    bool   `json:"ready"`
	} `json:"local_database"`
	Modes map[string]ModeStatus `json:"modes"`
}

// Health is the /api/health payload.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}
