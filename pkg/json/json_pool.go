// Package json provides JSON serialization backed by goccy/go-json with
// pooled buffers for the write paths.
package json

import (
	"bytes"
	"io"
	"os"
	"sync"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/perfbible/pkg/errors"
)

// maxPooledBuffer bounds the buffers returned to the pool.
const maxPooledBuffer = 1024 * 1024

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

// GetBuffer gets a pooled bytes.Buffer
func GetBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBuffer {
		return
	}
	bufferPool.Put(buf)
}

// Marshal is a drop-in replacement for encoding/json.Marshal
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal is a drop-in replacement for encoding/json.Unmarshal
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// MarshalToWriter encodes v to w through a pooled buffer, so w sees a single
// write. HTML escaping is disabled.
func MarshalToWriter(w io.Writer, v interface{}, indent string) error {
	buf := GetBuffer()
	defer PutBuffer(buf)

	enc := gojson.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// ReadFile decodes the JSON document at path into v.
func ReadFile(path string, v interface{}) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: caller supplies the path
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to read JSON file").
			WithDetail("path", path)
	}
	if err := gojson.Unmarshal(data, v); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to decode JSON file").
			WithDetail("path", path)
	}
	return nil
}

// WriteFile encodes v with two space indentation and writes it to path.
func WriteFile(path string, v interface{}) error {
	f, err := os.Create(path) //nolint:gosec // G304: caller supplies the path
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create JSON file").
			WithDetail("path", path)
	}
	if err := MarshalToWriter(f, v, "  "); err != nil {
		_ = f.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write JSON file").
			WithDetail("path", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close JSON file").
			WithDetail("path", path)
	}
	return nil
}
