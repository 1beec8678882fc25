package frame

import "bytes"

// lastBraceDecoder takes everything from the first '{' after a start sentinel
// to the last '}' currently buffered. It is not depth-aware: two payloads that
// are both complete when Next runs are merged into one invalid payload, which
// the caller drops. Kept for profiler scripts that write exactly one evolving
// object per read.
type lastBraceDecoder struct {
	buffer
}

func (d *lastBraceDecoder) Next() ([]byte, bool) {
	idx := bytes.Index(d.buf, d.start)
	if idx < 0 {
		d.discardUntilSentinel(-1)
		return nil, false
	}
	d.discardUntilSentinel(idx)

	rel := bytes.IndexByte(d.buf[len(d.start):], '{')
	if rel < 0 {
		return nil, false
	}
	open := len(d.start) + rel

	end := bytes.LastIndexByte(d.buf, '}')
	if end < open {
		return nil, false
	}

	payload := d.take(open, end+1)
	d.consume(end + 1)
	return payload, true
}
