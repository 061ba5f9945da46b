package search

import "github.com/poiesic/albumsearch/core"

const fallbackDocumentTitle = "Ingested Document"

// Candidate is a retrievable passage projected from a corpus entry or a
// document chunk for the duration of one request.
type Candidate struct {
	Id      string
	Title   string
	Text    string
	Source  string
	Subject string
	Plane   string
	Vector  []float32
}

// AssembleCandidates projects corpus entries followed by document chunks into
// candidates. Chunks take their citation from the owning document's title; a
// chunk whose document is missing or untitled falls back to its heading, then
// to a generic title.
func AssembleCandidates(entries []*core.CorpusEntry, docs []*core.Document, chunks []*core.DocChunk) []Candidate {
	titles := make(map[string]string, len(docs))
	for _, doc := range docs {
		titles[doc.Id] = doc.Title
	}

	candidates := make([]Candidate, 0, len(entries)+len(chunks))
	for _, entry := range entries {
		candidates = append(candidates, Candidate{
			Id:      core.CorpusCandidateID(entry.Id),
			Title:   entry.Title,
			Text:    entry.Text,
			Source:  entry.Source,
			Subject: entry.Subject,
			Plane:   entry.Plane,
			Vector:  entry.Vector,
		})
	}

	for _, chunk := range chunks {
		docTitle := titles[chunk.DocId]
		if docTitle == "" {
			docTitle = chunk.Heading
		}
		if docTitle == "" {
			docTitle = fallbackDocumentTitle
		}
		title := chunk.Heading
		if title == "" {
			title = docTitle
		}
		candidates = append(candidates, Candidate{
			Id:      core.ChunkCandidateID(chunk.DocId, chunk.Page, chunk.Seq),
			Title:   title,
			Text:    chunk.Text,
			Source:  core.PageCitation(docTitle, chunk.Page),
			Subject: chunk.Subject,
			Plane:   chunk.Plane,
			Vector:  chunk.Vector,
		})
	}
	return candidates
}

// FilterCandidates applies the hard subject and plane filters. A candidate is
// dropped only when it carries a tag that differs from a non-empty filter;
// untagged candidates always pass.
func FilterCandidates(candidates []Candidate, subject, plane string) []Candidate {
	if subject == "" && plane == "" {
		return candidates
	}
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if excludedBy(c.Subject, subject) || excludedBy(c.Plane, plane) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func excludedBy(tag, filter string) bool {
	return filter != "" && tag != "" && tag != filter
}
