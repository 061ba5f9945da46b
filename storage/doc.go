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

// Package storage provides the storage abstraction layer for album search.
//
// This package defines repository interfaces that decouple storage implementation
// from retrieval logic, plus the binary encoding shared by backends.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return interfaces:
//
//	corpus, err := badger.NewCorpusRepository(backend) // storage.CorpusRepository
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Architecture
//
//   - CorpusRepository: curated reference passages
//   - DocumentRepository: ingested documents and their page chunks
//   - EscalationRepository: the trainer review queue and trainer replies
//
// Retrieval reads every corpus entry and chunk per request; there is no
// index stored alongside them.
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	repos, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repos.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
