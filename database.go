// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package albumsearch

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/albumsearch/ai"
	"github.com/poiesic/albumsearch/ai/openai"
	"github.com/poiesic/albumsearch/core"
	"github.com/poiesic/albumsearch/ingestion"
	"github.com/poiesic/albumsearch/reembed"
	"github.com/poiesic/albumsearch/search"
	"github.com/poiesic/albumsearch/storage"
	"github.com/poiesic/albumsearch/storage/badger"
)

// Database ties the badger repositories, the AI provider and a default
// Searcher together.
type Database struct {
	repos    *badger.Repositories
	provider ai.AIProvider
	searcher *search.Searcher
	config   *search.Config
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig     *ai.Config
	searchConfig *search.Config
	provider     ai.AIProvider
	logger       *slog.Logger
	inMemory     bool
}

// WithAIConfig selects and configures the AI provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithSearchConfig sets the settings of the default Searcher.
func WithSearchConfig(config *search.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.searchConfig = config
	}
}

// WithConfig applies both sections of a loaded config file.
func WithConfig(config *Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = &config.AI
		o.searchConfig = config.SearchSettings()
	}
}

// WithProvider uses an already constructed provider instead of building one
// from the AI config. The Database takes ownership and closes it.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// WithInMemory keeps all data in memory. The path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens (or creates) the database at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig:     ai.DefaultConfig(), // Default if not provided
		searchConfig: search.DefaultConfig(),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if options.searchConfig == nil {
		options.searchConfig = search.DefaultConfig()
	}

	repos, err := badger.OpenRepositories(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Provider variant is fixed here for the lifetime of the database
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			repos.Close()
			return nil, err
		}
	}

	db := &Database{
		repos:    repos,
		provider: provider,
		config:   options.searchConfig,
		logger:   options.logger.With("component", "database"),
	}

	db.searcher, err = db.NewSearcher()
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the provider, then the repositories.
func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}
	if err := db.repos.Close(); err != nil {
		db.logger.Error("error closing repositories", "err", err)
		return err
	}
	return nil
}

func (db *Database) CorpusRepository() storage.CorpusRepository {
	return db.repos.Corpus
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.repos.Documents
}

func (db *Database) EscalationRepository() storage.EscalationRepository {
	return db.repos.Escalations
}

// Provider returns the AI provider chosen at construction.
func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

// NewSearcher builds a Searcher over this database. It escalates
// low-confidence queries to the trainer queue and uses the database's search
// settings unless opts override them.
func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	base := []search.Option{
		search.WithLogger(db.logger),
		search.WithConfig(db.config),
		search.WithEscalationQueue(db.repos.Escalations),
	}
	return search.NewSearcher(db.repos.Corpus, db.repos.Documents, db.provider, append(base, opts...)...)
}

// Search runs a request through the default Searcher.
func (db *Database) Search(ctx context.Context, req *core.SearchRequest) (*core.SearchResponse, error) {
	return db.searcher.Search(ctx, req)
}

// SearchWithMonitor runs a request through the default Searcher, reporting
// each stage to monitor.
func (db *Database) SearchWithMonitor(ctx context.Context, req *core.SearchRequest, monitor search.SearchMonitor) (*core.SearchResponse, error) {
	return db.searcher.SearchWithMonitor(ctx, req, monitor)
}

// SearchConfig returns the settings of the default Searcher.
func (db *Database) SearchConfig() search.Config {
	return db.searcher.Config()
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	base := []ingestion.Option{
		ingestion.WithLogger(db.logger),
		ingestion.WithEmbeddings(db.config.UseEmbeddings),
	}
	return ingestion.NewPipeline(db.repos.Corpus, db.repos.Documents, db.provider, append(base, opts...)...)
}

// NewReembedder builds a Reembedder over the corpus entries and the chunks of
// every ingested document.
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(db.provider.Embedder(), config, progress,
		reembed.NewCorpusSource(db.repos.Corpus),
		reembed.NewChunkSource(db.repos.Documents),
	)
}

// Lookup returns the full text behind a search hit id.
// Returns storage.ErrNotFound when the passage no longer exists.
func (db *Database) Lookup(ctx context.Context, hitID string) (*core.Item, error) {
	ref, err := core.ParseCandidateID(hitID)
	if err != nil {
		return nil, err
	}

	switch ref.Origin {
	case core.OriginCorpus:
		entry, err := db.repos.Corpus.GetCorpusEntry(ctx, ref.EntryId)
		if err != nil {
			return nil, err
		}
		return &core.Item{
			Id:     hitID,
			Title:  entry.Title,
			Text:   entry.Text,
			Source: entry.Source,
		}, nil

	default:
		chunk, err := db.repos.Documents.GetChunk(ctx, ref.DocId, ref.Seq)
		if err != nil {
			return nil, err
		}
		if chunk.Page != ref.Page {
			return nil, fmt.Errorf("%w: chunk %d of %q is on page %d", storage.ErrNotFound, ref.Seq, ref.DocId, chunk.Page)
		}
		doc, err := db.repos.Documents.GetDocument(ctx, ref.DocId)
		if err != nil {
			return nil, err
		}

		// Same title and citation the hit was rendered with
		c := search.AssembleCandidates(nil, []*core.Document{doc}, []*core.DocChunk{chunk})[0]
		return &core.Item{
			Id:     hitID,
			Title:  c.Title,
			Text:   chunk.Text,
			Source: c.Source,
			Locator: &core.Locator{
				DocId:    doc.Id,
				Filename: doc.Filename,
				Page:     chunk.Page,
			},
		}, nil
	}
}

// Escalations lists the trainer queue. An empty status lists every item.
func (db *Database) Escalations(ctx context.Context, status core.EscalationStatus) ([]*core.EscalationItem, error) {
	return db.repos.Escalations.ListEscalations(ctx, status)
}

// Reply records a trainer answer. A non-zero id resolves that queued query;
// a zero id stores a reply not attached to any queue item.
func (db *Database) Reply(ctx context.Context, id core.ID, text string) (*core.TrainerReply, error) {
	if id == 0 {
		return db.repos.Escalations.AddReply(ctx, &core.TrainerReply{Text: text})
	}
	return db.repos.Escalations.ResolveEscalation(ctx, id, text)
}

// Replies lists every trainer reply in arrival order.
func (db *Database) Replies(ctx context.Context) ([]*core.TrainerReply, error) {
	return db.repos.Escalations.ListReplies(ctx)
}
