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

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/albumsearch"
	"github.com/poiesic/albumsearch/ai"
	"github.com/poiesic/albumsearch/core"
	"github.com/poiesic/albumsearch/ingestion"
	"github.com/poiesic/albumsearch/reembed"
	"github.com/poiesic/albumsearch/search"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "albumsearch",
		Usage: "Hybrid passage retrieval over Montessori albums",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML config file",
				EnvVars: []string{"ALBUMSEARCH_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides the config file)",
				EnvVars: []string{"ALBUMSEARCH_DB"},
			},
			&cli.StringFlag{
				Name:    "provider",
				Usage:   "AI provider (local, cloud, disabled)",
				EnvVars: []string{"EMBEDDING_PROVIDER"},
			},
			&cli.BoolFlag{
				Name:    "cloud",
				Usage:   "Use the OpenAI cloud provider",
				EnvVars: []string{"USE_CLOUD_LLM"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API key for the cloud provider",
				EnvVars: []string{"OPENAI_API_KEY"},
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host URL for both embedding and chat services",
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				EnvVars: []string{"EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:  "llm-model",
				Usage: "Chat model name used for canonicalization and reranking",
			},
			&cli.BoolFlag{
				Name:    "use-embeddings",
				Usage:   "Enable semantic scoring",
				EnvVars: []string{"USE_EMBEDDINGS"},
			},
			&cli.BoolFlag{
				Name:    "use-bm25",
				Usage:   "Enable lexical BM25 scoring",
				EnvVars: []string{"USE_BM25"},
			},
			&cli.BoolFlag{
				Name:    "use-llm",
				Usage:   "Enable LLM query canonicalization and reranking",
				EnvVars: []string{"USE_LLM"},
			},
			&cli.Float64Flag{
				Name:    "score-alpha",
				Usage:   "Weight of the semantic score",
				EnvVars: []string{"SCORE_ALPHA"},
			},
			&cli.Float64Flag{
				Name:    "score-beta",
				Usage:   "Weight of the lexical score",
				EnvVars: []string{"SCORE_BETA"},
			},
			&cli.Float64Flag{
				Name:    "subject-boost",
				Usage:   "Multiplier for candidates matching the query subject",
				EnvVars: []string{"SUBJECT_BOOST"},
			},
			&cli.Float64Flag{
				Name:    "plane-boost",
				Usage:   "Multiplier for candidates matching the query plane",
				EnvVars: []string{"PLANE_BOOST"},
			},
			&cli.Float64Flag{
				Name:    "phrase-boost",
				Usage:   "Multiplier for candidates containing the query verbatim",
				EnvVars: []string{"PHRASE_BOOST"},
			},
			&cli.Float64Flag{
				Name:    "low-confidence-threshold",
				Usage:   "Cosine score below which a hit without lexical support is low confidence",
				EnvVars: []string{"LOW_CONFIDENCE_THRESHOLD"},
			},
			&cli.DurationFlag{
				Name:  "capability-timeout",
				Usage: "Timeout for each embedding, canonicalization and rerank call",
				Value: search.DefaultCapabilityTimeout,
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search the corpus and ingested documents",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Usage: "Restrict to a subject"},
					&cli.StringFlag{Name: "plane", Usage: "Restrict to a plane of development"},
					&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "Number of hits (0 uses the configured default)"},
					&cli.BoolFlag{Name: "trace", Usage: "Print every pipeline stage to stderr"},
				},
			},
			{
				Name:      "seed",
				Usage:     "Load or refresh corpus entries from a JSON file",
				ArgsUsage: "<corpus.json>",
				Action:    seedCommand,
			},
			{
				Name:      "ingest",
				Usage:     "Ingest a plain text document, pages separated by form feeds",
				ArgsUsage: "<file>",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Document title (defaults to the file name)"},
					&cli.StringFlag{Name: "subject", Usage: "Subject tag for every chunk"},
					&cli.StringFlag{Name: "plane", Usage: "Plane tag for every chunk"},
					&cli.IntFlag{
						Name:    "max-pages",
						Usage:   "Reject documents with more pages",
						Value:   ingestion.DefaultMaxPages,
						EnvVars: []string{"MAX_PAGES"},
					},
				},
			},
			{
				Name:   "documents",
				Usage:  "List ingested documents",
				Action: documentsCommand,
			},
			{
				Name:      "delete-document",
				Usage:     "Delete an ingested document and its chunks",
				ArgsUsage: "<document-id>",
				Action:    deleteDocumentCommand,
			},
			{
				Name:   "backfill",
				Usage:  "Embed corpus entries and chunks that have no vector",
				Action: backfillCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Re-embed every item, replacing existing vectors",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of items to embed in each call",
						Value: reembed.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N items",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts for each embedding call",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "queue",
				Usage:  "List queries escalated for trainer review",
				Action: queueCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only items in this status (open, resolved); empty lists all",
						Value: string(core.EscalationOpen),
					},
				},
			},
			{
				Name:      "reply",
				Usage:     "Resolve a queued query with a trainer reply, or store a standalone reply",
				ArgsUsage: "<queue-id> <reply> | --standalone <reply>",
				Action:    replyCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "standalone",
						Usage: "Store a reply that answers no queued query",
					},
				},
			},
			{
				Name:      "lookup",
				Usage:     "Print the full text behind a hit id",
				ArgsUsage: "<hit-id>",
				Action:    lookupCommand,
			},
		},
	}
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(c *cli.Context) (*albumsearch.Config, error) {
	cfg := albumsearch.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = albumsearch.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
	}

	if c.IsSet("db") {
		cfg.DB = c.String("db")
	}

	if err := applyAIFlags(c, &cfg.AI); err != nil {
		return nil, err
	}
	applySearchFlags(c, &cfg.Search.Config)

	if err := cfg.Search.Config.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyAIFlags(c *cli.Context, cfg *ai.Config) error {
	if c.IsSet("provider") {
		kind, err := ai.ParseProviderKind(c.String("provider"))
		if err != nil {
			return err
		}
		cfg.Kind = kind
	}
	if c.Bool("cloud") {
		cfg.Kind = ai.ProviderCloud
		if !c.IsSet("host") {
			cfg.EmbeddingHost = ai.DefaultCloudHost
			cfg.LLMHost = ai.DefaultCloudHost
		}
	}
	if c.IsSet("host") {
		cfg.EmbeddingHost = c.String("host")
		cfg.LLMHost = c.String("host")
	}
	if c.IsSet("api-key") {
		cfg.APIKey = c.String("api-key")
	}
	if c.IsSet("embedding-model") {
		cfg.EmbeddingModel = c.String("embedding-model")
	}
	if c.IsSet("llm-model") {
		cfg.LLMModel = c.String("llm-model")
	}
	return nil
}

func applySearchFlags(c *cli.Context, cfg *search.Config) {
	if c.IsSet("use-embeddings") {
		cfg.UseEmbeddings = c.Bool("use-embeddings")
	}
	if c.IsSet("use-bm25") {
		cfg.UseLexical = c.Bool("use-bm25")
	}
	if c.IsSet("use-llm") {
		cfg.UseLLMCanonicalization = c.Bool("use-llm")
		cfg.UseLLMRerank = c.Bool("use-llm")
	}

	floats := map[string]*float64{
		"score-alpha":              &cfg.ScoreAlpha,
		"score-beta":               &cfg.ScoreBeta,
		"subject-boost":            &cfg.SubjectBoost,
		"plane-boost":              &cfg.PlaneBoost,
		"phrase-boost":             &cfg.PhraseBoost,
		"low-confidence-threshold": &cfg.LowConfidenceThreshold,
	}
	for name, field := range floats {
		if c.IsSet(name) {
			*field = c.Float64(name)
		}
	}

	if c.IsSet("capability-timeout") {
		cfg.CapabilityTimeout = c.Duration("capability-timeout")
	}
}

func openDatabase(c *cli.Context) (*albumsearch.Database, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.DB == "" {
		return nil, errors.New("database path is required (--db or db in the config file)")
	}

	db, err := albumsearch.NewDatabase(cfg.DB, albumsearch.WithConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("a query is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	req := &core.SearchRequest{
		Query:       query,
		Subject:     c.String("subject"),
		Plane:       c.String("plane"),
		ResultCount: c.Int("count"),
	}

	var resp *core.SearchResponse
	if c.Bool("trace") {
		tracer := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: slog.LevelDebug}))
		resp, err = db.SearchWithMonitor(ctx, req, search.NewLogMonitor(tracer))
	} else {
		resp, err = db.Search(ctx, req)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := c.App.Writer
	for i, hit := range resp.Hits {
		fmt.Fprintf(out, "%d. %s [%s]\n", i+1, hit.Title, hit.Badge)
		fmt.Fprintf(out, "   %s\n", hit.Source)
		fmt.Fprintf(out, "   id: %s\n", hit.Id)
		fmt.Fprintf(out, "   %s\n\n", hit.Excerpt)
	}
	if len(resp.Hits) == 0 {
		fmt.Fprintln(out, "No results.")
	}
	if resp.LowConfidence {
		fmt.Fprintln(out, "Low confidence: the query was sent to the trainer queue.")
	}
	return nil
}

func seedCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.Args().Len() != 1 {
		return errors.New("exactly one corpus file is required")
	}
	f, err := os.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	result, err := pipeline.SeedCorpus(ctx, f)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Corpus seeded: %d added, %d updated, %d unchanged\n",
		result.Added, result.Updated, result.Unchanged)
	if result.Added+result.Updated > 0 {
		fmt.Fprintln(c.App.Writer, "Run backfill to embed the new entries.")
	}
	return nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.Args().Len() != 1 {
		return errors.New("exactly one document file is required")
	}
	path := c.Args().First()
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(ingestion.WithMaxPages(c.Int("max-pages")))
	if err != nil {
		return err
	}
	defer pipeline.Release()

	doc, err := pipeline.IngestDocument(ctx, ingestion.DocumentInput{
		Title:    c.String("title"),
		Filename: filepath.Base(path),
		Pages:    strings.Split(string(data), "\f"),
		Subject:  c.String("subject"),
		Plane:    c.String("plane"),
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	// Chunk embeddings run in the background
	pipeline.Wait()

	fmt.Fprintf(c.App.Writer, "Ingested %s (%q, %d pages)\n", doc.Id, doc.Title, doc.Pages)
	return nil
}

func documentsCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	docs, err := db.DocumentRepository().ListDocuments(ctx)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\t%d pages\t%s\n",
			doc.Id, doc.Title, doc.Filename, doc.Pages, doc.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func deleteDocumentCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.Args().Len() != 1 {
		return errors.New("exactly one document id is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	id := c.Args().First()
	if err := pipeline.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Deleted %s\n", id)
	return nil
}

func backfillCommand(c *cli.Context) error {
	ctx := context.Background()

	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		All:            c.Bool("all"),
	}

	// Validate config
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	reembedder, err := db.NewReembedder(config, c.App.ErrWriter)
	if err != nil {
		return err
	}

	result, err := reembedder.Run(ctx)
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}
	for _, sr := range result.Sources {
		fmt.Fprintf(c.App.Writer, "%s: embedded %d of %d\n", sr.Name, sr.Embedded, sr.Total)
	}
	return nil
}

func queueCommand(c *cli.Context) error {
	ctx := context.Background()

	status := core.EscalationStatus(c.String("status"))
	switch status {
	case "", core.EscalationOpen, core.EscalationResolved:
	default:
		return fmt.Errorf("invalid status %q: must be open, resolved or empty", status)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	items, err := db.Escalations(ctx, status)
	if err != nil {
		return err
	}
	for _, item := range items {
		fmt.Fprintf(c.App.Writer, "%d\t%s\t%s\t%s\t%s\t%s\n",
			item.Id, item.Status, item.CreatedAt.Format(time.RFC3339), item.Subject, item.Plane, item.Query)
	}
	return nil
}

func replyCommand(c *cli.Context) error {
	ctx := context.Background()

	var id uint64
	args := c.Args().Slice()
	if c.Bool("standalone") {
		if len(args) == 0 {
			return errors.New("a reply is required")
		}
	} else {
		if len(args) < 2 {
			return errors.New("a queue id and a reply are required")
		}
		var err error
		id, err = strconv.ParseUint(args[0], 10, 64)
		if err != nil || id == 0 {
			return fmt.Errorf("invalid queue id %q", args[0])
		}
		args = args[1:]
	}
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		return errors.New("a reply is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	reply, err := db.Reply(ctx, core.ID(id), text)
	if err != nil {
		return fmt.Errorf("reply failed: %w", err)
	}
	if id == 0 {
		fmt.Fprintf(c.App.Writer, "Stored reply %d\n", reply.Id)
		return nil
	}
	fmt.Fprintf(c.App.Writer, "Resolved %d\n", id)
	return nil
}

func lookupCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.Args().Len() != 1 {
		return errors.New("exactly one hit id is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	item, err := db.Lookup(ctx, c.Args().First())
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	out := c.App.Writer
	fmt.Fprintf(out, "%s\n%s\n", item.Title, item.Source)
	if item.Locator != nil {
		fmt.Fprintf(out, "file: %s, page %d\n", item.Locator.Filename, item.Locator.Page)
	}
	fmt.Fprintf(out, "\n%s\n", item.Text)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
