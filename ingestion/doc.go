// Package ingestion loads album material into storage.
//
// The Pipeline type covers the two ways passages enter the system:
//   - Documents: page texts are chunked on sentence boundaries, stored with
//     their chunks, and the chunks embedded asynchronously on a worker pool
//   - Corpus seeding: curated entries are upserted from a JSON file
//
// Errors during async processing are logged but do not fail the ingestion operation.
// Chunks without vectors remain searchable lexically, and the reembed package
// can fill them in later.
package ingestion
