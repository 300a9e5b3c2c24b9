package runner

import "bytes"

// cappedBuffer keeps at most max bytes and silently drops the rest, so a
// chatty build cannot balloon a run report.
type cappedBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func newCappedBuffer(max int) *cappedBuffer {
	return &cappedBuffer{max: max}
}

// Write always reports the full length as written so the wrapped command
// never sees a short-write error.
func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.max - b.buf.Len()
	if room <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > room {
		b.buf.Write(p[:room])
		b.truncated = true
		return len(p), nil
	}
	b.buf.Write(p)
	return len(p), nil
}

func (b *cappedBuffer) Bytes() []byte {
	if !b.truncated {
		return b.buf.Bytes()
	}
	return append(b.buf.Bytes(), []byte("\n[output truncated]\n")...)
}
