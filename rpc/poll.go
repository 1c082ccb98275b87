package rpc

import (
	"github.com/machinefabric/mediaplug-go/stream"
)

// poll_output result type tags.
const (
	PollFinished   = "finished"
	PollWaiting    = "waiting_input_any"
	PollVideoFrame = "video_frame"
)

// StatusResult is a poll_output result with no accompanying payload.
type StatusResult struct {
	Type string `json:"type"`
}

// VideoFrameResult describes a dequeued video unit. The response frame is
// immediately followed by a binary payload frame of Width*Height*3 bytes.
// Zero timestamps are meaningful, so nothing here is omitempty.
type VideoFrameResult struct {
	Type        string `json:"type"`
	StreamName  string `json:"stream_name"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	TimestampUs int64  `json:"timestamp_us"`
	DurationUs  int64  `json:"duration_us"`
}

// Reply is one poll_output answer. Payload is non-nil only for video_frame
// results and becomes the trailing payload frame.
type Reply struct {
	Result  any
	Payload []byte
}

// Poller answers a host poll_output. Implementations are direction-specific.
type Poller interface {
	Poll() *Reply
}

// PublishPoller answers polls in the publish direction: once the registry has
// ever been non-empty, finished exactly when it is currently empty; otherwise
// still waiting for input.
type PublishPoller struct {
	registry *stream.Registry
}

// NewPublishPoller creates a publish-direction poller over the registry.
func NewPublishPoller(registry *stream.Registry) *PublishPoller {
	return &PublishPoller{registry: registry}
}

func (p *PublishPoller) Poll() *Reply {
	if p.registry.EverActive() && p.registry.Empty() {
		return &Reply{Result: StatusResult{Type: PollFinished}}
	}
	return &Reply{Result: StatusResult{Type: PollWaiting}}
}

// ReceivePoller answers polls in the receive direction: hand back the oldest
// queued unit if there is one; otherwise finished once every expected stream
// has ended, else still waiting. targetStreams == 0 means no known target and
// the poller never reports finished.
type ReceivePoller struct {
	queue         *stream.Queue
	registry      *stream.Registry
	targetStreams int
}

// NewReceivePoller creates a receive-direction poller.
func NewReceivePoller(queue *stream.Queue, registry *stream.Registry, targetStreams int) *ReceivePoller {
	return &ReceivePoller{queue: queue, registry: registry, targetStreams: targetStreams}
}

func (p *ReceivePoller) Poll() *Reply {
	if u, ok := p.queue.Dequeue(); ok {
		return &Reply{
			Result: VideoFrameResult{
				Type:        PollVideoFrame,
				StreamName:  u.StreamName,
				Width:       u.Width,
				Height:      u.Height,
				TimestampUs: u.TimestampUs,
				DurationUs:  u.DurationUs,
			},
			Payload: u.Data,
		}
	}
	if p.targetStreams > 0 && p.registry.FinishedCount() >= p.targetStreams {
		return &Reply{Result: StatusResult{Type: PollFinished}}
	}
	return &Reply{Result: StatusResult{Type: PollWaiting}}
}
