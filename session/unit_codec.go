package session

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/machinefabric/mediaplug-go/stream"
)

// Media units cross the data channel as CBOR maps with integer keys: compact,
// self-describing, and one encode per unit.
type unitEnvelope struct {
	Kind        uint8  `cbor:"1,keyasint"`
	StreamID    int64  `cbor:"2,keyasint"`
	StreamName  string `cbor:"3,keyasint,omitempty"`
	Width       int    `cbor:"4,keyasint,omitempty"`
	Height      int    `cbor:"5,keyasint,omitempty"`
	Stereo      bool   `cbor:"6,keyasint,omitempty"`
	SampleRate  int    `cbor:"7,keyasint,omitempty"`
	TimestampUs int64  `cbor:"8,keyasint,omitempty"`
	DurationUs  int64  `cbor:"9,keyasint,omitempty"`
	Data        []byte `cbor:"10,keyasint"`
}

// EncodeUnit encodes a media unit for transport.
func EncodeUnit(u *stream.Unit) ([]byte, error) {
	env := unitEnvelope{
		Kind:        uint8(u.Kind),
		StreamID:    u.StreamID,
		StreamName:  u.StreamName,
		Width:       u.Width,
		Height:      u.Height,
		Stereo:      u.Stereo,
		SampleRate:  u.SampleRate,
		TimestampUs: u.TimestampUs,
		DurationUs:  u.DurationUs,
		Data:        u.Data,
	}
	data, err := cbor.Marshal(&env)
	if err != nil {
		return nil, fmt.Errorf("encoding media unit: %w", err)
	}
	return data, nil
}

// DecodeUnit decodes a media unit from the wire. Video units are checked for
// the exact Width*Height*3 byte count; a mismatched unit never reaches the
// queue.
func DecodeUnit(data []byte) (*stream.Unit, error) {
	var env unitEnvelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding media unit: %w", err)
	}
	u := &stream.Unit{
		Kind:        stream.Kind(env.Kind),
		StreamID:    env.StreamID,
		StreamName:  env.StreamName,
		Width:       env.Width,
		Height:      env.Height,
		Stereo:      env.Stereo,
		SampleRate:  env.SampleRate,
		TimestampUs: env.TimestampUs,
		DurationUs:  env.DurationUs,
		Data:        env.Data,
	}
	if u.Kind == stream.KindVideo {
		want := u.Width * u.Height * 3
		if len(u.Data) != want {
			return nil, fmt.Errorf("video unit is %d bytes, want %d for %dx%d", len(u.Data), want, u.Width, u.Height)
		}
	}
	return u, nil
}
