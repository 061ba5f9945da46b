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

import "errors"

// Domain validation errors
var (
	// ErrInvalidRequest indicates a SearchRequest failed validation.
	ErrInvalidRequest = errors.New("invalid search request")

	// ErrEmptyQuery indicates the query is missing or blank.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrInvalidResultCount indicates a negative result count.
	ErrInvalidResultCount = errors.New("result count cannot be negative")

	// ErrInvalidCorpusEntry indicates a CorpusEntry failed validation.
	ErrInvalidCorpusEntry = errors.New("invalid corpus entry")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidChunk indicates a DocChunk failed validation.
	ErrInvalidChunk = errors.New("invalid document chunk")

	// ErrEmptyID indicates an identifier field is empty.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrEmptyContent indicates the text field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidPage indicates a page number below 1.
	ErrInvalidPage = errors.New("page must be 1 or greater")

	// ErrInvalidCandidateID indicates an id that is not a corpus or chunk candidate id.
	ErrInvalidCandidateID = errors.New("invalid candidate id")
)
