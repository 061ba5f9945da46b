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

package core

import (
	"fmt"
	"strings"
)

// MaxDocumentIDLength is the longest document id storage can key.
const MaxDocumentIDLength = 1<<16 - 1

// ValidateSearchRequest validates a SearchRequest.
//
// Validation rules:
//   - Query must contain non-whitespace text
//   - ResultCount must not be negative (zero selects the default)
//
// Subject and Plane are free-form filters and are not validated.
func ValidateSearchRequest(req *SearchRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidRequest)
	}

	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrEmptyQuery)
	}

	if req.ResultCount < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrInvalidResultCount)
	}

	return nil
}

// ValidateCorpusEntry validates a CorpusEntry according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - Text must not be empty
//
// NOT validated:
//   - Vector (can be empty until the corpus backfill runs)
func ValidateCorpusEntry(entry *CorpusEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidCorpusEntry)
	}

	if entry.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCorpusEntry, ErrEmptyID)
	}

	if strings.TrimSpace(entry.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCorpusEntry, ErrEmptyContent)
	}

	return nil
}

// ValidateDocument validates a Document.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyID)
	}
	if len(doc.Id) > MaxDocumentIDLength {
		return fmt.Errorf("%w: id is %d bytes, limit is %d", ErrInvalidDocument, len(doc.Id), MaxDocumentIDLength)
	}

	return nil
}

// ValidateDocChunk validates a DocChunk.
//
// Validation rules:
//   - DocId must not be empty
//   - Page must be 1 or greater
//   - Seq must not be negative
//   - Text must not be empty
func ValidateDocChunk(chunk *DocChunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.DocId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyID)
	}

	if chunk.Page < 1 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrInvalidPage)
	}

	if chunk.Seq < 0 {
		return fmt.Errorf("%w: negative sequence %d", ErrInvalidChunk, chunk.Seq)
	}

	if strings.TrimSpace(chunk.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	return nil
}
