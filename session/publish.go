package session

import (
	"fmt"

	"github.com/machinefabric/mediaplug-go/rpc"
	"github.com/machinefabric/mediaplug-go/stream"
)

// Publisher forwards validated media units from the dispatcher to the
// session's outbound data channels. It implements rpc.Sink.
type Publisher struct {
	sess *WebRTC
}

// NewPublisher creates a publisher over a send-only session.
func NewPublisher(sess *WebRTC) *Publisher {
	return &Publisher{sess: sess}
}

// HandleAudio converts the sample bytes to native order and pushes one audio
// unit.
func (p *Publisher) HandleAudio(params rpc.AudioParams, data []byte) error {
	samples, err := PCM16FromBigEndian(data)
	if err != nil {
		return fmt.Errorf("audio stream %d: %w", params.StreamID, err)
	}
	return p.sess.SendUnit(&stream.Unit{
		Kind:        stream.KindAudio,
		StreamID:    params.StreamID,
		Stereo:      params.Stereo,
		SampleRate:  params.SampleRate,
		TimestampUs: params.TimestampUs,
		DurationUs:  params.DurationUs,
		Data:        samples,
	})
}

// HandleVideo pushes one video unit. The dispatcher has already verified the
// byte count against the frame geometry.
func (p *Publisher) HandleVideo(params rpc.VideoParams, data []byte) error {
	return p.sess.SendUnit(&stream.Unit{
		Kind:        stream.KindVideo,
		StreamID:    params.StreamID,
		Width:       params.Width,
		Height:      params.Height,
		TimestampUs: params.TimestampUs,
		DurationUs:  params.DurationUs,
		Data:        data,
	})
}
