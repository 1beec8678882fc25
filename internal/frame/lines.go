package frame

import "bytes"

// lineDecoder yields one payload per non-blank line between the start and
// end sentinels. Lines are released as soon as their newline arrives; the end
// sentinel only closes the region. Text outside a region is discarded.
type lineDecoder struct {
	buffer
	end      []byte
	inRegion bool
}

func (d *lineDecoder) Next() ([]byte, bool) {
	for {
		if !d.inRegion {
			idx := bytes.Index(d.buf, d.start)
			if idx < 0 {
				d.discardUntilSentinel(-1)
				return nil, false
			}
			d.consume(idx + len(d.start))
			d.inRegion = true
			continue
		}

		nl := bytes.IndexByte(d.buf, '\n')
		endIdx := bytes.Index(d.buf, d.end)

		if endIdx >= 0 && (nl < 0 || endIdx < nl) {
			line := d.line(endIdx)
			d.consume(endIdx + len(d.end))
			d.inRegion = false
			if line != nil {
				return line, true
			}
			continue
		}

		if nl < 0 {
			return nil, false
		}

		line := d.line(nl)
		d.consume(nl + 1)
		if line != nil {
			return line, true
		}
	}
}

// line returns a copy of the trimmed text before n, or nil for a blank line.
// A repeated start sentinel at the head of a line is skipped.
func (d *lineDecoder) line(n int) []byte {
	text := bytes.TrimSpace(d.buf[:n])
	if bytes.HasPrefix(text, d.start) {
		text = bytes.TrimSpace(text[len(d.start):])
	}
	if len(text) == 0 {
		return nil
	}
	out := make([]byte, len(text))
	copy(out, text)
	return out
}
