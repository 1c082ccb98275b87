// mediaplug-source is the receive-direction plugin binary: it receives video
// units from a channel and hands them to the host one per poll_output.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	mediaplug "github.com/machinefabric/mediaplug-go"
)

type stringList []string

func (s *stringList) String() string { return fmt.Sprint(*s) }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	var urls, names stringList
	channelID := flag.String("channel-id", "", "channel to receive from (required)")
	configPath := flag.String("config", "", "path to a JSON config file")
	flag.Var(&urls, "signaling-url", "signaling URL (repeatable)")
	flag.Var(&names, "video-stream-name", "video stream name to expect (repeatable)")
	flag.Parse()

	cfg := &mediaplug.Config{}
	if *configPath != "" {
		loaded, err := mediaplug.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[mediaplug-source] %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *channelID != "" {
		cfg.ChannelID = *channelID
	}
	if len(urls) > 0 {
		cfg.SignalingURLs = urls
	}
	if len(names) > 0 {
		cfg.VideoStreamNames = names
	}
	if cfg.ChannelID == "" {
		fmt.Fprintln(os.Stderr, "[mediaplug-source] --channel-id is required")
		os.Exit(1)
	}
	if len(cfg.SignalingURLs) == 0 {
		fmt.Fprintln(os.Stderr, "[mediaplug-source] --signaling-url is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loop := mediaplug.NewSourceLoop(cfg, os.Stdin, os.Stdout)
	if err := loop.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "[mediaplug-source] %v\n", err)
		if errors.Is(err, mediaplug.ErrSessionConnect) {
			os.Exit(1)
		}
	}
}
