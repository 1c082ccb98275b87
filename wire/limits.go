package wire

// Default maximum body size (32 MiB) - covers 4K RGB24 frames with margin.
// Larger declared bodies are rejected before allocation.
const DefaultMaxBody int = 33_554_432

// Hard limit on body size (128 MiB) - prevents a corrupt Content-Length from
// driving an enormous allocation.
const MaxBodyHardLimit int = 134_217_728

// Limits bounds what the codec will read or write in a single frame.
type Limits struct {
	MaxBody int
}

// DefaultLimits returns the default codec limits.
func DefaultLimits() Limits {
	return Limits{MaxBody: DefaultMaxBody}
}
