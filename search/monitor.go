package search

import (
	"log/slog"

	"github.com/poiesic/albumsearch/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
// AfterLexicalScoring and AfterSemanticScoring may be called concurrently.
type SearchMonitor interface {
	Start(req core.SearchRequest)
	AfterCanonicalization(query Query)
	AfterCandidateAssembly(total, kept int)
	AfterLexicalScoring(matches []LexicalMatch)
	AfterSemanticScoring(scored int)
	AfterFusion(ranked []ScoredCandidate)
	AfterRerank(ranked []ScoredCandidate, applied bool)
	Finish(resp *core.SearchResponse)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ core.SearchRequest)              {}
func (n *noopMonitor) AfterCanonicalization(_ Query)           {}
func (n *noopMonitor) AfterCandidateAssembly(_, _ int)         {}
func (n *noopMonitor) AfterLexicalScoring(_ []LexicalMatch)    {}
func (n *noopMonitor) AfterSemanticScoring(_ int)              {}
func (n *noopMonitor) AfterFusion(_ []ScoredCandidate)         {}
func (n *noopMonitor) AfterRerank(_ []ScoredCandidate, _ bool) {}
func (n *noopMonitor) Finish(_ *core.SearchResponse)           {}

// LogMonitor reports every search stage to a logger at debug level.
type LogMonitor struct {
	logger *slog.Logger
	// Top limits how many ranked candidates are logged per stage.
	Top int
}

var _ SearchMonitor = (*LogMonitor)(nil)

// NewLogMonitor returns a LogMonitor writing to logger, or to slog.Default()
// when logger is nil.
func NewLogMonitor(logger *slog.Logger) *LogMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMonitor{logger: logger.With("component", "search-trace"), Top: 5}
}

func (m *LogMonitor) Start(req core.SearchRequest) {
	m.logger.Debug("search started", "query", req.Query, "subject", req.Subject, "plane", req.Plane)
}

func (m *LogMonitor) AfterCanonicalization(q Query) {
	m.logger.Debug("query resolved",
		"effective", q.Effective,
		"subject", q.Subject,
		"plane", q.Plane,
		"keywords", q.Keywords,
		"canonicalized", q.Canonicalized)
}

func (m *LogMonitor) AfterCandidateAssembly(total, kept int) {
	m.logger.Debug("candidates assembled", "total", total, "kept", kept)
}

func (m *LogMonitor) AfterLexicalScoring(matches []LexicalMatch) {
	m.logger.Debug("lexical scoring done", "matches", len(matches))
}

func (m *LogMonitor) AfterSemanticScoring(scored int) {
	m.logger.Debug("semantic scoring done", "scored", scored)
}

func (m *LogMonitor) AfterFusion(ranked []ScoredCandidate) {
	m.logRanked("fused", ranked)
}

func (m *LogMonitor) AfterRerank(ranked []ScoredCandidate, applied bool) {
	if !applied {
		m.logger.Debug("rerank skipped")
		return
	}
	m.logRanked("reranked", ranked)
}

func (m *LogMonitor) Finish(resp *core.SearchResponse) {
	m.logger.Debug("search finished", "hits", len(resp.Hits), "lowConfidence", resp.LowConfidence)
}

func (m *LogMonitor) logRanked(stage string, ranked []ScoredCandidate) {
	for i, c := range ranked[:min(len(ranked), max(m.Top, 0))] {
		m.logger.Debug(stage,
			"rank", i+1,
			"id", c.Id,
			"score", c.Score,
			"cosine", c.Cosine,
			"bm25", c.BM25)
	}
}
