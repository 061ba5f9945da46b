package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/albumsearch/ai"
	"github.com/poiesic/albumsearch/core"
	"github.com/poiesic/albumsearch/storage"
)

// EscalationQueue receives low-confidence queries for trainer review.
// storage.EscalationRepository satisfies it.
type EscalationQueue interface {
	AppendEscalation(ctx context.Context, item *core.EscalationItem) (*core.EscalationItem, error)
}

// Query is a request's query after optional canonicalization.
type Query struct {
	Raw           string
	Effective     string // Normalized query, or Raw when canonicalization did not apply
	Subject       string
	Plane         string
	Keywords      []string
	Canonicalized bool
}

// lexicalText is the text scored by BM25: the effective query plus any
// keywords from canonicalization.
func (q Query) lexicalText() string {
	if len(q.Keywords) == 0 {
		return q.Effective
	}
	return q.Effective + " " + strings.Join(q.Keywords, " ")
}

// Searcher provides hybrid lexical and semantic search over the album corpus
// and ingested documents. It holds no per-request state and is safe for
// concurrent use.
type Searcher struct {
	corpusRepository   storage.CorpusRepository
	documentRepository storage.DocumentRepository
	embedder           ai.Embedder
	canonicalizer      ai.QueryCanonicalizer
	reranker           ai.Reranker
	escalations        EscalationQueue
	config             *Config
	logger             *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithConfig replaces the default retrieval settings.
func WithConfig(config *Config) Option {
	return func(s *Searcher) error {
		if config == nil {
			return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
		}
		if err := config.Validate(); err != nil {
			return err
		}
		cfg := *config
		s.config = &cfg
		return nil
	}
}

// WithEscalationQueue sets where low-confidence queries are sent.
// Without one, low confidence is only reported on the response.
func WithEscalationQueue(queue EscalationQueue) Option {
	return func(s *Searcher) error {
		s.escalations = queue
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	corpusRepository storage.CorpusRepository,
	documentRepository storage.DocumentRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if corpusRepository == nil {
		return nil, ErrCorpusRepositoryRequired
	}
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		corpusRepository:   corpusRepository,
		documentRepository: documentRepository,
		embedder:           provider.Embedder(),
		canonicalizer:      provider.Canonicalizer(),
		reranker:           provider.Reranker(),
		config:             DefaultConfig(),
		logger:             slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	return s, nil
}

// Config returns a copy of the searcher's settings.
func (s *Searcher) Config() Config {
	return *s.config
}

// Search runs the retrieval pipeline for req.
func (s *Searcher) Search(ctx context.Context, req *core.SearchRequest) (*core.SearchResponse, error) {
	return s.SearchWithMonitor(ctx, req, nil)
}

// SearchWithMonitor runs the retrieval pipeline for req with monitoring.
// The monitor receives callbacks at each stage of the search process.
//
// Only an invalid request or a storage failure while loading candidates is
// returned as an error. Unavailable or malformed AI capabilities drop their
// signal for this request and the pipeline continues.
func (s *Searcher) SearchWithMonitor(ctx context.Context, req *core.SearchRequest, monitor SearchMonitor) (*core.SearchResponse, error) {
	if err := core.ValidateSearchRequest(req); err != nil {
		return nil, err
	}

	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(*req)

	// 1. Resolve query and filters
	query := s.resolveQuery(ctx, req)
	monitor.AfterCanonicalization(query)

	// 2. Assemble and filter candidates
	candidates, err := s.loadCandidates(ctx)
	if err != nil {
		return nil, err
	}
	filtered := FilterCandidates(candidates, query.Subject, query.Plane)
	monitor.AfterCandidateAssembly(len(candidates), len(filtered))

	// 3. Score both signals concurrently
	var lexical, semantic map[string]float64
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		lexical = s.scoreLexical(filtered, query, monitor)
	}()

	go func() {
		defer wg.Done()
		semantic = s.scoreSemantic(ctx, filtered, query, monitor)
	}()

	wg.Wait()

	// 4. Fuse, boost and sort
	ranked := fuseCandidates(filtered, lexical, semantic, weights{
		alpha:        s.config.ScoreAlpha,
		beta:         s.config.ScoreBeta,
		subjectBoost: s.config.SubjectBoost,
		planeBoost:   s.config.PlaneBoost,
		phraseBoost:  s.config.PhraseBoost,
		subject:      query.Subject,
		plane:        query.Plane,
		query:        query.Effective,
	})
	monitor.AfterFusion(ranked)

	// 5. Optional rerank of the head
	ranked, applied := s.rerank(ctx, query, ranked)
	monitor.AfterRerank(ranked, applied)

	// 6. Cutoff and confidence
	count := req.ResultCount
	if count == 0 {
		count = s.config.DefaultResultCount
	}
	kept := applyCutoff(ranked, s.config.MinimumFinalScore, count)
	resp := &core.SearchResponse{
		Hits:          toHits(kept),
		LowConfidence: isLowConfidence(kept, s.config.LowConfidenceThreshold),
	}

	if resp.LowConfidence {
		s.escalate(ctx, req)
	}

	monitor.Finish(resp)
	return resp, nil
}

// resolveQuery applies canonicalization when enabled. Any outcome other than
// success keeps the raw query and the caller's filters.
func (s *Searcher) resolveQuery(ctx context.Context, req *core.SearchRequest) Query {
	query := Query{
		Raw:       req.Query,
		Effective: req.Query,
		Subject:   req.Subject,
		Plane:     req.Plane,
	}
	if !s.config.UseLLMCanonicalization {
		return query
	}

	callCtx, cancel := s.capabilityContext(ctx)
	defer cancel()

	res := s.canonicalizer.Canonicalize(callCtx, ai.CanonicalizeRequest{
		Query:       req.Query,
		SubjectHint: req.Subject,
		PlaneHint:   req.Plane,
	})
	switch res.Status {
	case ai.StatusOK:
		canonical := res.Value
		if strings.TrimSpace(canonical.NormalizedQuery) != "" {
			query.Effective = canonical.NormalizedQuery
		}
		if canonical.Subject != "" {
			query.Subject = canonical.Subject
		}
		if canonical.Plane != "" {
			query.Plane = canonical.Plane
		}
		query.Keywords = canonical.Keywords
		query.Canonicalized = true
	case ai.StatusUnavailable:
		s.logger.Warn("canonicalization unavailable, using raw query", "err", res.Err)
	case ai.StatusMalformed:
		s.logger.Warn("canonicalization output malformed, using raw query", "err", res.Err)
	}
	return query
}

// loadCandidates reads the corpus, the documents and their chunks.
func (s *Searcher) loadCandidates(ctx context.Context) ([]Candidate, error) {
	entries, err := s.corpusRepository.ListCorpusEntries(ctx)
	if err != nil {
		s.logger.Error("error listing corpus entries", "err", err)
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	docs, err := s.documentRepository.ListDocuments(ctx)
	if err != nil {
		s.logger.Error("error listing documents", "err", err)
		return nil, fmt.Errorf("loading documents: %w", err)
	}
	chunks, err := s.documentRepository.ListChunks(ctx)
	if err != nil {
		s.logger.Error("error listing document chunks", "err", err)
		return nil, fmt.Errorf("loading chunks: %w", err)
	}
	return AssembleCandidates(entries, docs, chunks), nil
}

// scoreLexical builds a request-local BM25 index over candidates.
func (s *Searcher) scoreLexical(candidates []Candidate, query Query, monitor SearchMonitor) map[string]float64 {
	if !s.config.UseLexical {
		return nil
	}

	docs := make([]IndexDoc, len(candidates))
	for i, c := range candidates {
		docs[i] = IndexDoc{Id: c.Id, Text: c.Text}
	}
	matches := BuildIndex(docs).Score(query.lexicalText(), s.config.LexicalLimit)
	monitor.AfterLexicalScoring(matches)

	scores := make(map[string]float64, len(matches))
	for _, m := range matches {
		scores[m.Id] = m.Score
	}
	return scores
}

// scoreSemantic embeds the effective query and compares it with every
// candidate that has a stored vector. An embedding failure leaves the
// request without a semantic signal.
func (s *Searcher) scoreSemantic(ctx context.Context, candidates []Candidate, query Query, monitor SearchMonitor) map[string]float64 {
	if !s.config.UseEmbeddings {
		return nil
	}

	callCtx, cancel := s.capabilityContext(ctx)
	defer cancel()

	embedding, err := s.embedder.EmbedText(callCtx, query.Effective)
	if err != nil {
		s.logger.Warn("query embedding failed, continuing without vectors", "err", err)
		return nil
	}
	if len(embedding) == 0 {
		s.logger.Warn("query embedding is empty, continuing without vectors")
		return nil
	}

	scores := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		if len(c.Vector) == 0 {
			continue
		}
		scores[c.Id] = Cosine(embedding, c.Vector)
	}
	monitor.AfterSemanticScoring(len(scores))
	return scores
}

// rerank asks the reranker to reorder the head of ranked. On any failure
// the fused order is returned unchanged.
func (s *Searcher) rerank(ctx context.Context, query Query, ranked []ScoredCandidate) ([]ScoredCandidate, bool) {
	if !s.config.UseLLMRerank || s.config.RerankTopK == 0 || len(ranked) == 0 {
		return ranked, false
	}

	head := ranked[:min(s.config.RerankTopK, len(ranked))]

	callCtx, cancel := s.capabilityContext(ctx)
	defer cancel()

	res := s.reranker.Rerank(callCtx, query.Effective, rerankCandidates(head))
	switch res.Status {
	case ai.StatusOK:
		return applyRerankOrder(ranked, s.config.RerankTopK, res.Value), true
	case ai.StatusUnavailable:
		s.logger.Warn("rerank unavailable, keeping fused order", "err", res.Err)
	case ai.StatusMalformed:
		s.logger.Warn("rerank output malformed, keeping fused order", "err", res.Err)
	}
	return ranked, false
}

// escalate queues the request for trainer review. Failures are logged only.
func (s *Searcher) escalate(ctx context.Context, req *core.SearchRequest) {
	if s.escalations == nil {
		return
	}
	item := &core.EscalationItem{
		Query:     req.Query,
		Subject:   req.Subject,
		Plane:     req.Plane,
		CreatedAt: time.Now().UTC(),
		Status:    core.EscalationOpen,
	}
	if _, err := s.escalations.AppendEscalation(ctx, item); err != nil {
		s.logger.Error("failed to escalate low-confidence query", "query", req.Query, "err", err)
		return
	}
	s.logger.Info("low-confidence query escalated", "query", req.Query)
}

func (s *Searcher) capabilityContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.CapabilityTimeout > 0 {
		return context.WithTimeout(ctx, s.config.CapabilityTimeout)
	}
	return context.WithCancel(ctx)
}

func toHits(ranked []ScoredCandidate) []core.SearchHit {
	hits := make([]core.SearchHit, len(ranked))
	for i, c := range ranked {
		hits[i] = core.SearchHit{
			Id:      c.Id,
			Title:   c.Title,
			Excerpt: c.Excerpt,
			Source:  c.Source,
			Badge:   core.BadgeFor(c.Source),
		}
	}
	return hits
}
