// Package mediaplug implements an inter-process media plugin driven by a host
// pipeline over stdin/stdout.
//
// The host sends header-plus-body frames (Content-Length/Content-Type, a
// blank line, then exactly Content-Length raw bytes) carrying JSON-RPC 2.0
// control messages, optionally followed by one binary payload frame. The
// plugin multiplexes concurrent audio/video streams by integer id, tracks
// their lifecycle, and answers poll_output under pull-based backpressure: the
// host only receives output when it asks.
//
// # Layout
//
//   - wire: the frame codec. Byte-exact, no JSON or media knowledge.
//   - rpc: envelope parsing, per-method validation, dispatch, pollers.
//   - stream: stream registry and the producer/consumer output queue.
//   - session: the WebRTC-backed collaborator session (signaling, data
//     channels, media-unit transport).
//
// # Directions
//
// A publish plugin (NewPublishLoop) accepts notify_audio/notify_video units
// from the host and forwards them to the session. A source plugin
// (NewSourceLoop) receives units from the session and hands them back one per
// poll_output. Both run the same Loop; only the sink and poller differ.
//
// All diagnostics go to stderr. Stdout carries protocol frames and nothing
// else.
package mediaplug
