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
	"strconv"
	"strings"
)

const (
	corpusIDPrefix = "corpus-"
	chunkIDPrefix  = "chunk-"
)

// CandidateOrigin identifies which store a candidate was projected from.
type CandidateOrigin int

const (
	OriginCorpus CandidateOrigin = iota + 1
	OriginChunk
)

// CandidateRef is a parsed candidate id.
type CandidateRef struct {
	Origin  CandidateOrigin
	EntryId string // Set for OriginCorpus
	DocId   string // Set for OriginChunk
	Page    int
	Seq     int
}

// CorpusCandidateID returns the namespaced candidate id of a corpus entry.
func CorpusCandidateID(entryID string) string {
	return corpusIDPrefix + entryID
}

// ChunkCandidateID returns the namespaced candidate id of a document chunk.
// Format: chunk-<docId>-<page>-<seq>
func ChunkCandidateID(docID string, page, seq int) string {
	return fmt.Sprintf("%s%s-%d-%d", chunkIDPrefix, docID, page, seq)
}

// ParseCandidateID resolves a candidate id back to its origin.
// Document ids may contain hyphens, so page and seq are read from the right.
func ParseCandidateID(id string) (CandidateRef, error) {
	switch {
	case strings.HasPrefix(id, corpusIDPrefix):
		entryID := strings.TrimPrefix(id, corpusIDPrefix)
		if entryID == "" {
			return CandidateRef{}, fmt.Errorf("%w: %q", ErrInvalidCandidateID, id)
		}
		return CandidateRef{Origin: OriginCorpus, EntryId: entryID}, nil

	case strings.HasPrefix(id, chunkIDPrefix):
		rest := strings.TrimPrefix(id, chunkIDPrefix)
		seqAt := strings.LastIndexByte(rest, '-')
		if seqAt <= 0 {
			return CandidateRef{}, fmt.Errorf("%w: %q", ErrInvalidCandidateID, id)
		}
		pageAt := strings.LastIndexByte(rest[:seqAt], '-')
		if pageAt <= 0 {
			return CandidateRef{}, fmt.Errorf("%w: %q", ErrInvalidCandidateID, id)
		}
		page, err := strconv.Atoi(rest[pageAt+1 : seqAt])
		if err != nil || page < 1 {
			return CandidateRef{}, fmt.Errorf("%w: bad page in %q", ErrInvalidCandidateID, id)
		}
		seq, err := strconv.Atoi(rest[seqAt+1:])
		if err != nil || seq < 0 {
			return CandidateRef{}, fmt.Errorf("%w: bad sequence in %q", ErrInvalidCandidateID, id)
		}
		return CandidateRef{Origin: OriginChunk, DocId: rest[:pageAt], Page: page, Seq: seq}, nil
	}
	return CandidateRef{}, fmt.Errorf("%w: %q", ErrInvalidCandidateID, id)
}
