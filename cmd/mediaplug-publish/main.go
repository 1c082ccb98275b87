// mediaplug-publish is the publish-direction plugin binary: it reads media
// units from the host on stdin and publishes them to a channel.
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
	var urls stringList
	channelID := flag.String("channel-id", "", "channel to publish to (required)")
	configPath := flag.String("config", "", "path to a JSON config file")
	flag.Var(&urls, "signaling-url", "signaling URL (repeatable)")
	flag.Parse()

	cfg := &mediaplug.Config{}
	if *configPath != "" {
		loaded, err := mediaplug.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[mediaplug-publish] %v\n", err)
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
	if cfg.ChannelID == "" {
		fmt.Fprintln(os.Stderr, "[mediaplug-publish] --channel-id is required")
		os.Exit(1)
	}
	if len(cfg.SignalingURLs) == 0 {
		cfg.SignalingURLs = []string{"ws://localhost:3000/signaling"}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loop := mediaplug.NewPublishLoop(cfg, os.Stdin, os.Stdout)
	if err := loop.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "[mediaplug-publish] %v\n", err)
		if errors.Is(err, mediaplug.ErrSessionConnect) {
			os.Exit(1)
		}
	}
}
