package vector

import (
	"encoding/binary"

	"github.com/poiesic/evidex/core"
)

// Key prefixes for the vector store
const (
	vecRawPrefix  = "vecraw"
	vecNormPrefix = "vecnorm"
	vecMetaKey    = "vecmeta"
)

// makeVectorKey generates a key under the given prefix.
// IDs are written BigEndian so iteration yields them in insertion order.
func makeVectorKey(prefix string, id core.ID) []byte {
	p := prefix + ":"
	buf := make([]byte, len(p)+8)
	offset := copy(buf, p)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// idFromVectorKey recovers the record ID from a prefixed key.
func idFromVectorKey(prefix string, key []byte) (core.ID, bool) {
	p := prefix + ":"
	if len(key) != len(p)+8 || string(key[:len(p)]) != p {
		return 0, false
	}
	return core.ID(binary.BigEndian.Uint64(key[len(p):])), true
}
