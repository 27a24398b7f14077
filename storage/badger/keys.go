package badger

import (
	"encoding/binary"

	"github.com/poiesic/scholarmatch/core"
)

// Key prefixes for different data types
const (
	vectorPrefix = "vec:"
)

// makeVectorKey generates a key for a cached vector.
// Format: prefix + 8 bytes big-endian ID
func makeVectorKey(id core.ID) []byte {
	buf := make([]byte, len(vectorPrefix)+8)
	offset := copy(buf, vectorPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}
