package core

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for sequence-backed entities such as escalation
// items and trainer replies.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// CorpusEntry is a curated reference passage loaded from the album corpus.
type CorpusEntry struct {
	Id      string
	Title   string
	Text    string
	Source  string    // Human citation string, e.g. "Elementary Math Album · p.212"
	Subject string    // Optional subject tag
	Plane   string    // Optional plane of development tag
	Vector  []float32 // Embedding vector (populated by the corpus backfill)
}

// Document is an ingested document. Its chunks are stored separately.
type Document struct {
	Id          string
	Title       string
	Filename    string
	Pages       int
	ContentHash ID // Hash of the page texts, used to reject duplicate uploads
	CreatedAt   time.Time
}

// DocChunk is a segment of one page of an ingested document.
type DocChunk struct {
	DocId   string
	Page    int // 1-based
	Seq     int // Position of the chunk within its document
	Heading string
	Text    string
	Subject string
	Plane   string
	Vector  []float32 // Embedding vector (populated by the ingestion pipeline)
}

// EscalationStatus is the review state of an escalated query.
type EscalationStatus string

const (
	EscalationOpen     EscalationStatus = "open"
	EscalationResolved EscalationStatus = "resolved"
)

// EscalationItem is a low-confidence query queued for trainer review.
type EscalationItem struct {
	Id        ID
	Query     string
	Subject   string
	Plane     string
	CreatedAt time.Time
	Status    EscalationStatus
}

// TrainerReply is a trainer's answer to an escalated query.
type TrainerReply struct {
	Id        ID
	QueueId   ID // Zero when the reply is not attached to a queue item
	Text      string
	CreatedAt time.Time
}

// SearchRequest is a retrieval query with optional category filters.
type SearchRequest struct {
	Query       string
	Subject     string
	Plane       string
	ResultCount int // Zero selects the configured default
}

// SearchHit is the public shape of a retrieved passage.
type SearchHit struct {
	Id      string
	Title   string
	Excerpt string
	Source  string
	Badge   string
}

// SearchResponse holds the ranked hits and the confidence verdict.
type SearchResponse struct {
	Hits          []SearchHit
	LowConfidence bool
}

const (
	// BadgeAlbum labels hits whose source is a page citation.
	BadgeAlbum = "Album-sourced | AMI"
	// BadgeTrainer labels every other hit.
	BadgeTrainer = "Trainer-reviewed"

	pageCitationMarker = "· p."
)

// BadgeFor derives the authenticity badge from a citation string.
func BadgeFor(source string) string {
	if strings.Contains(source, pageCitationMarker) {
		return BadgeAlbum
	}
	return BadgeTrainer
}

// PageCitation formats the citation for a document page.
func PageCitation(title string, page int) string {
	return title + " " + pageCitationMarker + strconv.Itoa(page)
}

// Locator points at the original file and page for a chunk-origin item.
type Locator struct {
	DocId    string
	Filename string
	Page     int
}

// Item is the full text behind a search hit.
type Item struct {
	Id      string
	Title   string
	Text    string
	Source  string
	Locator *Locator // Nil for corpus entries
}
