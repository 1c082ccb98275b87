package mediaplug

import (
	"io"

	"github.com/machinefabric/mediaplug-go/rpc"
	"github.com/machinefabric/mediaplug-go/session"
	"github.com/machinefabric/mediaplug-go/stream"
)

// NewPublishLoop assembles a publish-direction plugin: the host feeds media
// units in over stdin and the loop forwards them to a send-only session.
// poll_output reports finished once every stream the host announced has
// ended.
func NewPublishLoop(cfg *Config, in io.Reader, out io.Writer) *Loop {
	sess := session.NewWebRTC(session.Config{
		SignalingURLs:  cfg.SignalingURLs,
		ChannelID:      cfg.ChannelID,
		Role:           session.RoleSendOnly,
		Audio:          true,
		Video:          true,
		ConnectTimeout: cfg.ConnectTimeout(),
	})

	registry := stream.NewRegistry()
	dispatcher := rpc.NewDispatcher(registry, session.NewPublisher(sess), rpc.NewPublishPoller(registry))
	return NewLoop(in, out, dispatcher, sess)
}
