package encoding

import (
	"bytes"
	"encoding/json"
	"sync"
	"sync/atomic"
)

// maxPooledBuffer keeps oversized buffers from pinning memory in the pool.
const maxPooledBuffer = 64 * 1024

// Codec encodes and decodes JSON payloads through pooled buffers.
type Codec struct {
	buffers sync.Pool

	marshals   atomic.Int64
	unmarshals atomic.Int64
	failures   atomic.Int64
}

// NewCodec creates a codec with an empty buffer pool
func NewCodec() *Codec {
	return &Codec{
		buffers: sync.Pool{
			New: func() any { return new(bytes.Buffer) },
		},
	}
}

// Marshal encodes v without HTML escaping and without the trailing newline
// json.Encoder would add.
func (c *Codec) Marshal(v any) ([]byte, error) {
	buf := c.buffers.Get().(*bytes.Buffer)
	buf.Reset()
	defer c.release(buf)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		c.failures.Add(1)
		return nil, err
	}
	c.marshals.Add(1)

	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Unmarshal decodes data into v.
func (c *Codec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		c.failures.Add(1)
		return err
	}
	c.unmarshals.Add(1)
	return nil
}

func (c *Codec) release(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBuffer {
		return
	}
	c.buffers.Put(buf)
}

// Stats returns codec usage counters
func (c *Codec) Stats() map[string]interface{} {
	return map[string]interface{}{
		"marshals":   c.marshals.Load(),
		"unmarshals": c.unmarshals.Load(),
		"failures":   c.failures.Load(),
	}
}

var defaultCodec = NewCodec()

// Default returns the process-wide codec.
func Default() *Codec {
	return defaultCodec
}
