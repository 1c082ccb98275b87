package session

import (
	"encoding/binary"
	"fmt"
)

// PCM16FromBigEndian converts big-endian 16-bit PCM samples to native byte
// order. The host's wire convention for sample bytes is big-endian; the
// session consumes native order. Only byte order is touched, never sample
// content.
func PCM16FromBigEndian(data []byte) ([]byte, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("pcm data is %d bytes, not a whole number of 16-bit samples", len(data))
	}
	out := make([]byte, len(data))
	for i := 0; i < len(data); i += 2 {
		binary.NativeEndian.PutUint16(out[i:], binary.BigEndian.Uint16(data[i:]))
	}
	return out, nil
}
