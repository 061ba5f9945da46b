package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/albumsearch/core"
	"github.com/poiesic/albumsearch/storage"
)

// corpusRecord is the JSON shape of one entry in a corpus seed file.
type corpusRecord struct {
	Id      string `json:"id"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	Source  string `json:"source"`
	Subject string `json:"subject,omitempty"`
	Plane   string `json:"plane,omitempty"`
}

// SeedResult counts what SeedCorpus did.
type SeedResult struct {
	Added     int
	Updated   int
	Unchanged int
}

// SeedCorpus upserts corpus entries from a JSON array. New entries are added
// without vectors. Changed entries are replaced, keeping their vector only
// when the text is unchanged. Run the reembed backfill afterwards to embed
// what is missing.
func (p *Pipeline) SeedCorpus(ctx context.Context, r io.Reader) (SeedResult, error) {
	var records []corpusRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return SeedResult{}, fmt.Errorf("%w: %w", ErrInvalidCorpusFile, err)
	}

	var result SeedResult
	var added, updated []*core.CorpusEntry
	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		entry := &core.CorpusEntry{
			Id:      strings.TrimSpace(rec.Id),
			Title:   rec.Title,
			Text:    rec.Text,
			Source:  rec.Source,
			Subject: rec.Subject,
			Plane:   rec.Plane,
		}
		if err := core.ValidateCorpusEntry(entry); err != nil {
			return SeedResult{}, fmt.Errorf("%w: entry %d: %w", ErrInvalidCorpusFile, i, err)
		}
		if seen[entry.Id] {
			return SeedResult{}, fmt.Errorf("%w: duplicate id %q", ErrInvalidCorpusFile, entry.Id)
		}
		seen[entry.Id] = true

		current, err := p.corpusRepository.GetCorpusEntry(ctx, entry.Id)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			added = append(added, entry)
			continue
		case err != nil:
			return SeedResult{}, err
		}

		if current.Text == entry.Text {
			entry.Vector = current.Vector
		}
		if sameEntry(current, entry) {
			result.Unchanged++
			continue
		}
		updated = append(updated, entry)
	}

	if len(added) > 0 {
		if _, err := p.corpusRepository.AddCorpusEntries(ctx, added...); err != nil {
			return SeedResult{}, err
		}
	}
	if len(updated) > 0 {
		if err := p.corpusRepository.UpdateCorpusEntries(ctx, updated...); err != nil {
			return SeedResult{}, err
		}
	}
	result.Added = len(added)
	result.Updated = len(updated)

	p.logger.Info("corpus seeded", "added", result.Added, "updated", result.Updated, "unchanged", result.Unchanged)
	return result, nil
}

func sameEntry(a, b *core.CorpusEntry) bool {
	return a.Title == b.Title &&
		a.Text == b.Text &&
		a.Source == b.Source &&
		a.Subject == b.Subject &&
		a.Plane == b.Plane
}
