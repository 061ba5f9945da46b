// Package reembed fills in or refreshes the embeddings of stored passages.
//
// A Reembedder walks one or more Sources (the curated corpus and the chunks
// of ingested documents), embeds their texts in batches with retry and
// exponential backoff, and writes the vectors back. It backfills entries that
// have no vector by default and re-embeds everything when Config.All is set,
// for example after switching embedding models.
package reembed
