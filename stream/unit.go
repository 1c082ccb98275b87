package stream

// Unit is one timestamped chunk of decoded audio or video data.
//
// Video units carry Width/Height and a packed 3-channel image of exactly
// Width*Height*3 bytes. Audio units carry Stereo/SampleRate and interleaved
// 16-bit PCM samples. Data is raw bytes either way; this package does no
// content processing.
type Unit struct {
	StreamID   int64
	StreamName string
	Kind       Kind

	// Video geometry
	Width  int
	Height int

	// Audio parameters
	Stereo     bool
	SampleRate int

	TimestampUs int64
	DurationUs  int64
	Data        []byte
}
