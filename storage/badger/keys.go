package badger

import (
	"encoding/binary"

	"github.com/poiesic/albumsearch/core"
)

// Key prefixes for different data types. Every prefix ends in a separator
// so that no prefix matches another family's keys.
const (
	corpusEntryPrefix  = "corpus:"
	documentPrefix     = "doc:"
	documentHashPrefix = "dochash:"
	chunkPrefix        = "chunk:"
	escalationPrefix   = "escal:"
	replyPrefix        = "reply:"
	escalationIDSeq    = "seq:escal"
	replyIDSeq         = "seq:reply"
)

// makeCorpusEntryKey generates a key for a corpus entry by ID.
func makeCorpusEntryKey(id string) []byte {
	return []byte(corpusEntryPrefix + id)
}

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id string) []byte {
	return []byte(documentPrefix + id)
}

// makeDocumentHashKey generates the content hash index key.
// Format: prefix:hash
func makeDocumentHashKey(hash core.ID) []byte {
	return appendUint64([]byte(documentHashPrefix), uint64(hash))
}

// makeDocumentChunkPrefix generates the prefix shared by one document's chunks.
// Format: prefix:len(docID):docID, with the length as a big-endian uint16 so
// that no document's prefix matches another document's keys.
func makeDocumentChunkPrefix(docID string) []byte {
	key := binary.BigEndian.AppendUint16([]byte(chunkPrefix), uint16(len(docID)))
	return append(key, docID...)
}

// makeChunkKey generates a composite key for a chunk.
// Format: prefix:len(docID):docID:seq
func makeChunkKey(docID string, seq int) []byte {
	return binary.BigEndian.AppendUint32(makeDocumentChunkPrefix(docID), uint32(seq))
}

// makeEscalationKey generates a key for a queue item by ID.
func makeEscalationKey(id core.ID) []byte {
	return appendUint64([]byte(escalationPrefix), uint64(id))
}

// makeReplyKey generates a key for a trainer reply by ID.
func makeReplyKey(id core.ID) []byte {
	return appendUint64([]byte(replyPrefix), uint64(id))
}

// appendUint64 writes v in BigEndian order so lexicographic sort matches
// numeric order.
func appendUint64(prefix []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(prefix, v)
}
