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

package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/albumsearch/ai"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of items to embed in each call
	BatchSize int

	// ReportInterval is how often to report progress (number of items)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for each embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// All re-embeds every item. When false only items without a vector are embedded.
	All bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// SourceResult counts the work done on one source.
type SourceResult struct {
	Name     string
	Total    int
	Embedded int
}

// Result summarises a Run.
type Result struct {
	Sources []SourceResult
}

// Embedded returns the number of items embedded across every source.
func (r Result) Embedded() int {
	n := 0
	for _, s := range r.Sources {
		n += s.Embedded
	}
	return n
}

// Reembedder orchestrates vector backfill across one or more sources.
type Reembedder struct {
	sources   []Source
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr), nil discards it
func NewReembedder(embedder ai.Embedder, config *Config, progress io.Writer, sources ...Source) (*Reembedder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxRetries <= 0 {
		return nil, ErrInvalidMaxAttempts
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		sources:   sources,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(embedder, config.MaxRetries, config.RetryDelay),
	}, nil
}

// Run embeds the pending items of every source in order.
// The result holds the counts of every source finished before an error.
func (r *Reembedder) Run(ctx context.Context) (Result, error) {
	var result Result
	for _, source := range r.sources {
		sr, err := r.runSource(ctx, source)
		result.Sources = append(result.Sources, sr)
		if err != nil {
			return result, fmt.Errorf("%s: %w", source.Name(), err)
		}
	}
	return result, nil
}

func (r *Reembedder) runSource(ctx context.Context, source Source) (SourceResult, error) {
	sr := SourceResult{Name: source.Name()}

	items, err := source.Items(ctx)
	if err != nil {
		return sr, fmt.Errorf("failed to list items: %w", err)
	}
	sr.Total = len(items)

	pending := items
	if !r.config.All {
		pending = pending[:0:0]
		for _, item := range items {
			if len(item.Vector) == 0 {
				pending = append(pending, item)
			}
		}
	}

	if len(pending) == 0 {
		fmt.Fprintf(r.progress, "%s: nothing to embed (%d items)\n", sr.Name, sr.Total)
		return sr, nil
	}

	fmt.Fprintf(r.progress, "Starting embedding of %d %s items (batch size: %d)\n",
		len(pending), sr.Name, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, sr.Name, len(pending), r.config.ReportInterval)
	tracker.Start()

	err = forEachBatch(ctx, pending, r.config.BatchSize, func(batch []Item) error {
		if err := r.processor.Process(ctx, source, batch); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		sr.Embedded += len(batch)
		tracker.Add(len(batch))
		return nil
	})
	tracker.Finish()
	if err != nil {
		return sr, err
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Embedding complete. Processed %d %s items in %v (%.1f items/sec)\n",
		sr.Embedded, sr.Name, elapsed.Round(time.Millisecond), float64(sr.Embedded)/max(elapsed.Seconds(), 1e-9))

	return sr, nil
}
