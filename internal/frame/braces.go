package frame

import "bytes"

// braceDecoder finds the object that starts at the first '{' after a start
// sentinel and ends at its depth-balanced '}'. Braces and sentinels inside
// JSON strings are ignored. Scan progress is kept across Feed calls so a large
// payload that arrives in many chunks is scanned once.
type braceDecoder struct {
	buffer

	// scan state for the frame currently in flight (open >= 0)
	open     int
	pos      int
	depth    int
	inString bool
	escaped  bool
	active   bool
}

// scanResult is the outcome of one scan over the buffered bytes.
type scanResult int

const (
	scanMore   scanResult = iota // object still open, wait for more bytes
	scanClosed                   // object closed at the returned offset
	scanCut                      // a new sentinel starts at the returned offset
)

func (d *braceDecoder) Next() ([]byte, bool) {
	for {
		if !d.active {
			idx := bytes.Index(d.buf, d.start)
			if idx < 0 {
				d.discardUntilSentinel(-1)
				return nil, false
			}
			d.discardUntilSentinel(idx)

			rel := bytes.IndexByte(d.buf[len(d.start):], '{')
			if rel < 0 {
				// Sentinel seen, object not started yet.
				return nil, false
			}
			d.open = len(d.start) + rel
			d.pos = d.open
			d.depth = 0
			d.inString = false
			d.escaped = false
			d.active = true
		}

		at, res := d.scan()
		switch res {
		case scanClosed:
			payload := d.take(d.open, at+1)
			d.consume(at + 1)
			d.active = false
			return payload, true
		case scanCut:
			// The object was cut short; drop it and resynchronise on the
			// newer frame.
			d.log.Warn("dropping truncated frame (%d bytes) before next sentinel", at-d.open)
			d.consume(at)
			d.active = false
			continue
		}
		return nil, false
	}
}

// scan advances from d.pos until the object opened at d.open closes or a
// start sentinel appears outside a string. A partial sentinel at the end of
// the buffer stops the scan without consuming it.
func (d *braceDecoder) scan() (int, scanResult) {
	for ; d.pos < len(d.buf); d.pos++ {
		c := d.buf[d.pos]

		if d.inString {
			switch {
			case d.escaped:
				d.escaped = false
			case c == '\\':
				d.escaped = true
			case c == '"':
				d.inString = false
			}
			continue
		}

		switch c {
		case '"':
			d.inString = true
		case '{':
			d.depth++
		case '}':
			d.depth--
			if d.depth == 0 {
				end := d.pos
				d.pos++
				return end, scanClosed
			}
		case d.start[0]:
			rest := d.buf[d.pos:]
			if bytes.HasPrefix(rest, d.start) {
				return d.pos, scanCut
			}
			if len(rest) < len(d.start) && bytes.HasPrefix(d.start, rest) {
				return 0, scanMore
			}
		}
	}
	return 0, scanMore
}

// consume keeps the scan offsets valid when bytes before them are removed.
func (d *braceDecoder) consume(n int) {
	d.buffer.consume(n)
	if d.active {
		d.open -= n
		d.pos -= n
	}
}
