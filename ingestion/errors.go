package ingestion

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrCorpusRepositoryRequired is returned when a corpus repository is not provided.
	ErrCorpusRepositoryRequired = errors.New("corpus repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrTooManyPages is returned when a document exceeds the page limit.
	ErrTooManyPages = errors.New("document has too many pages")

	// ErrDuplicateDocument is returned when identical content was already ingested.
	ErrDuplicateDocument = errors.New("document already ingested")

	// ErrEmptyDocument is returned when no page of a document has text.
	ErrEmptyDocument = errors.New("document has no text")

	// ErrInvalidCorpusFile is returned when a corpus seed file cannot be decoded.
	ErrInvalidCorpusFile = errors.New("invalid corpus file")
)
