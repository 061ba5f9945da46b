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

// Package search provides hybrid lexical and semantic passage retrieval over
// the album corpus and ingested documents.
//
// The Searcher type implements a staged pipeline:
//
//  1. Optional query canonicalization by a language model, which may rewrite
//     the query, add keywords and classify its subject and plane
//  2. Candidate assembly from corpus entries and document chunks, with hard
//     subject and plane filters
//  3. BM25 scoring over a per-request index and cosine scoring against stored
//     embeddings, run concurrently
//  4. Weighted fusion with multiplicative subject, plane and phrase boosts
//  5. Optional reranking of the top candidates by a language model
//  6. A minimum-score cutoff and a confidence gate that escalates weak
//     queries to trainer review
//
// Every AI capability is optional. When one is disabled, unreachable or
// returns output that does not parse, its signal is dropped for the request
// and the remaining signals carry the ranking.
package search
