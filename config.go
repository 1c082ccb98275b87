package mediaplug

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/machinefabric/mediaplug-go/session"
)

// Config is the plugin configuration, settable by flags or a JSON file.
type Config struct {
	ChannelID        string   `json:"channel_id"`
	SignalingURLs    []string `json:"signaling_urls"`
	VideoStreamNames []string `json:"video_stream_names,omitempty"`
	ConnectTimeoutMs int      `json:"connect_timeout_ms,omitempty"`
}

// configSchema validates config files before unmarshaling, so a typo in a
// field name or type fails loudly instead of silently zero-filling.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["channel_id", "signaling_urls"],
  "additionalProperties": false,
  "properties": {
    "channel_id": {"type": "string", "minLength": 1},
    "signaling_urls": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string", "pattern": "^wss?://"}
    },
    "video_stream_names": {
      "type": "array",
      "items": {"type": "string", "minLength": 1}
    },
    "connect_timeout_ms": {"type": "integer", "minimum": 1}
  }
}`

// LoadConfig reads and validates a JSON config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := ValidateConfigJSON(data); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// ValidateConfigJSON checks a raw config document against the schema.
func ValidateConfigJSON(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// ConnectTimeout returns the configured connect timeout, or the session
// default when unset.
func (c *Config) ConnectTimeout() time.Duration {
	if c.ConnectTimeoutMs > 0 {
		return time.Duration(c.ConnectTimeoutMs) * time.Millisecond
	}
	return session.DefaultConnectTimeout
}
