package vector

import (
	"fmt"

	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/evidex/core"
)

// marshalVector serializes a float32 vector: a varint length followed by
// fixed-width components.
func marshalVector(vec []float32) []byte {
	n := int64(len(vec))
	size := varint.Int64.Size(n)
	for _, f := range vec {
		size += raw.Float32.Size(f)
	}
	buf := make([]byte, size)
	off := varint.Int64.Marshal(n, buf)
	for _, f := range vec {
		off += raw.Float32.Marshal(f, buf[off:])
	}
	return buf
}

// unmarshalVector deserializes a vector written by marshalVector.
func unmarshalVector(bs []byte) ([]float32, error) {
	n, off, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative vector length %d", ErrCorruptIndex, n)
	}
	vec := make([]float32, n)
	for i := range vec {
		f, m, err := raw.Float32.Unmarshal(bs[off:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
		}
		vec[i] = f
		off += m
	}
	return vec, nil
}

// vectorEncodedSize returns the byte length marshalVector produces for vec.
func vectorEncodedSize(vec []float32) int {
	size := varint.Int64.Size(int64(len(vec)))
	for _, f := range vec {
		size += raw.Float32.Size(f)
	}
	return size
}

// marshalID serializes a record ID.
func marshalID(id core.ID) []byte {
	buf := make([]byte, varint.Int64.Size(int64(id)))
	varint.Int64.Marshal(int64(id), buf)
	return buf
}

// unmarshalID deserializes a record ID.
func unmarshalID(bs []byte) (core.ID, error) {
	v, _, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	return core.ID(v), nil
}
