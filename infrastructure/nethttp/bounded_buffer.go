package nethttp

import (
	"bytes"
)

// boundedBuffer is a bytes.Buffer wrapper that keeps at most limit bytes.
// Writes past the limit are dropped and flagged in truncated.
type boundedBuffer struct {
	buffer    bytes.Buffer
	limit     int64
	truncated bool
}

func newBoundedBuffer(limit int64) *boundedBuffer {
	return &boundedBuffer{limit: limit}
}

// Write implements io.Writer. It always reports len(p) so that io.Copy does
// not fail with a short write once the limit is hit.
func (b *boundedBuffer) Write(p []byte) (int, error) {
	remaining := b.limit - int64(b.buffer.Len())
	if remaining <= 0 {
		b.truncated = len(p) > 0 || b.truncated
		return len(p), nil
	}
	if int64(len(p)) > remaining {
		b.truncated = true
		if _, err := b.buffer.Write(p[:remaining]); err != nil {
			return 0, err
		}
		return len(p), nil
	}
	return b.buffer.Write(p)
}

// Bytes returns the kept bytes.
func (b *boundedBuffer) Bytes() []byte {
	return b.buffer.Bytes()
}

// Truncated reports whether any written data was dropped.
func (b *boundedBuffer) Truncated() bool {
	return b.truncated
}
