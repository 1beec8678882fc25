package frame

import (
	"context"
	"io"
)

// ChunkSize is the read size used by Pump.
const ChunkSize = 32 * 1024

// Pump reads r until EOF, feeding every chunk into dec and calling fn for each
// complete payload in stream order. It returns nil at EOF, the context error
// if ctx is cancelled between reads, or the first read error.
func Pump(ctx context.Context, r io.Reader, dec Decoder, fn func(payload []byte)) error {
	chunk := make([]byte, ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := r.Read(chunk)
		if n > 0 {
			dec.Feed(chunk[:n])
			for {
				payload, ok := dec.Next()
				if !ok {
					break
				}
				fn(payload)
			}
		}

		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
