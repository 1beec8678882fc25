// Package frame extracts JSON payloads from the profiler's stdout.
//
// The profiler interleaves free-form text with structured events. Each event
// region starts with a sentinel literal; the decoder buffers raw chunks, finds
// complete payloads, and hands them out one at a time through Next. Chunk
// boundaries carry no meaning: a payload may be split anywhere and is only
// released once it is complete.
//
// Three framing modes are supported:
//
//	braces      sentinel, then one depth-balanced JSON object (default)
//	last-brace  sentinel, then everything up to the last '}' in the buffer
//	lines       newline-delimited objects between start and end sentinels
package frame

import (
	"bytes"
	"fmt"

	"github.com/rileyhilliard/profdash/internal/errors"
	"github.com/rileyhilliard/profdash/internal/logger"
)

// Mode selects how payload boundaries are found.
type Mode string

const (
	ModeBraces    Mode = "braces"
	ModeLastBrace Mode = "last-brace"
	ModeLines     Mode = "lines"
)

// Default sentinels written by the profiler script.
const (
	DefaultStart = "@@@PROFILER_START@@@"
	DefaultEnd   = "@@@PROFILER_END@@@"
)

// Decoder turns a growing byte stream into complete payloads.
type Decoder interface {
	// Feed appends a raw chunk. An empty chunk is a no-op.
	Feed(chunk []byte)
	// Next returns the next complete payload, consuming exactly the bytes it
	// occupies. It returns false when no complete payload is buffered.
	Next() ([]byte, bool)
	// Buffered reports how many bytes are retained for future input.
	Buffered() int
}

// Options configures a Decoder.
type Options struct {
	Mode   Mode
	Start  string
	End    string
	Logger logger.Logger
}

// Modes lists the valid framing modes.
func Modes() []Mode {
	return []Mode{ModeBraces, ModeLastBrace, ModeLines}
}

// New creates a decoder for the given options. Empty sentinels fall back to
// the defaults; an empty mode means ModeBraces.
func New(opts Options) (Decoder, error) {
	if opts.Start == "" {
		opts.Start = DefaultStart
	}
	if opts.End == "" {
		opts.End = DefaultEnd
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewEnvLogger("[frame]")
	}
	if opts.Start == opts.End {
		return nil, errors.New(errors.ErrConfig,
			"Start and end sentinels must differ",
			"Set framing.start and framing.end to distinct literals")
	}

	base := buffer{start: []byte(opts.Start), log: opts.Logger}

	switch opts.Mode {
	case "", ModeBraces:
		return &braceDecoder{buffer: base}, nil
	case ModeLastBrace:
		return &lastBraceDecoder{buffer: base}, nil
	case ModeLines:
		return &lineDecoder{buffer: base, end: []byte(opts.End)}, nil
	default:
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown framing mode %q", opts.Mode),
			fmt.Sprintf("Use one of: %s, %s, %s", ModeBraces, ModeLastBrace, ModeLines))
	}
}

// buffer is the accumulated, not yet consumed part of the stream.
type buffer struct {
	buf   []byte
	start []byte
	log   logger.Logger
}

func (b *buffer) Feed(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	b.buf = append(b.buf, chunk...)
}

func (b *buffer) Buffered() int {
	return len(b.buf)
}

// consume drops the first n bytes. The backing array is released once the
// buffer is empty so long sessions don't pin old chunks.
func (b *buffer) consume(n int) {
	b.buf = b.buf[n:]
	if len(b.buf) == 0 {
		b.buf = nil
	}
}

// discardUntilSentinel drops text that cannot belong to a frame. When no
// sentinel is present, only a tail that could be the beginning of a split
// sentinel is kept.
func (b *buffer) discardUntilSentinel(idx int) {
	if idx >= 0 {
		b.consume(idx)
		return
	}
	b.consume(len(b.buf) - partialSuffix(b.buf, b.start))
}

// partialSuffix returns the length of the longest suffix of buf that is a
// proper prefix of sentinel.
func partialSuffix(buf, sentinel []byte) int {
	n := len(sentinel) - 1
	if n > len(buf) {
		n = len(buf)
	}
	for ; n > 0; n-- {
		if bytes.HasSuffix(buf, sentinel[:n]) {
			return n
		}
	}
	return 0
}

// take copies out b.buf[from:to] so callers never alias the buffer.
func (b *buffer) take(from, to int) []byte {
	out := make([]byte, to-from)
	copy(out, b.buf[from:to])
	return out
}
