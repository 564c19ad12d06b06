package sqlitecache

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeVector encodes a vector as a little-endian sequence of IEEE 754
// float64 values without a length prefix; the length is derived from the
// blob size on decode.
func EncodeVector(vec []float64) ([]byte, error) {
	if len(vec) == 0 {
		return nil, fmt.Errorf("sqlitecache: refusing to encode empty vector")
	}
	b := make([]byte, len(vec)*8)
	for i, v := range vec {
		binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(v))
	}
	return b, nil
}

// DecodeVector decodes a blob produced by EncodeVector.
func DecodeVector(b []byte) ([]float64, error) {
	if len(b) == 0 || len(b)%8 != 0 {
		return nil, fmt.Errorf("sqlitecache: invalid vector blob length %d", len(b))
	}
	vec := make([]float64, len(b)/8)
	for i := range vec {
		vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return vec, nil
}
