package mediaplug

import (
	"io"

	"github.com/machinefabric/mediaplug-go/rpc"
	"github.com/machinefabric/mediaplug-go/session"
	"github.com/machinefabric/mediaplug-go/stream"
)

// NewSourceLoop assembles a receive-direction plugin: a recv-only session
// enqueues inbound video units and the host drains them one per poll_output.
// The configured stream names fix the expected stream count; once that many
// streams have ended and the queue is empty, polls report finished.
func NewSourceLoop(cfg *Config, in io.Reader, out io.Writer) *Loop {
	sess := session.NewWebRTC(session.Config{
		SignalingURLs:  cfg.SignalingURLs,
		ChannelID:      cfg.ChannelID,
		Role:           session.RoleRecvOnly,
		Video:          len(cfg.VideoStreamNames) > 0,
		ConnectTimeout: cfg.ConnectTimeout(),
	})

	registry := stream.NewRegistry()
	queue := stream.NewQueue()
	session.NewReceiver(sess, registry, queue, cfg.VideoStreamNames)

	poller := rpc.NewReceivePoller(queue, registry, len(cfg.VideoStreamNames))
	dispatcher := rpc.NewDispatcher(registry, nil, poller)
	return NewLoop(in, out, dispatcher, sess)
}
