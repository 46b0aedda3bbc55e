package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/summarit/core"
)

// Key prefixes for different data types
const (
	embeddingRecordPrefix = "embrec"
	jobRecordPrefix       = "jobrec"
	jobRecordIDSeq        = "jobrecseq"
	resultRecordPrefix    = "sumrec"
	resultJobIndexPrefix  = "sumrecj"
)

// makeEmbeddingKey generates a composite key for an embedding record.
// Format: prefix:documentID:chunkIndex
func makeEmbeddingKey(documentID core.ID, chunkIndex int) []byte {
	prefix := embeddingRecordPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for documentID + 8 bytes for chunkIndex
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort follows chunk order
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkIndex))
	return buf
}

// makeEmbeddingPrefix generates the scan prefix for all embeddings of a document.
// Format: prefix:documentID
func makeEmbeddingPrefix(documentID core.ID) []byte {
	prefix := embeddingRecordPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for documentID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}

// makeJobKey generates a key for a job record by ID.
func makeJobKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", jobRecordPrefix, id))
}

// makeResultKey generates a key for a pipeline result by ID.
func makeResultKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", resultRecordPrefix, id))
}

// makeResultJobKey generates a key for the job-to-result index.
func makeResultJobKey(jobID core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", resultJobIndexPrefix, jobID))
}
