package nethttp

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// readBody decodes resp.Body according to Content-Encoding and keeps at most
// maxBodySize bytes of the decoded stream. truncated reports whether the
// decoded body was longer.
func readBody(resp *http.Response, maxBodySize int64) (body []byte, truncated bool, err error) {
	r, err := decodeBody(resp.Body, resp.Header.Get("Content-Encoding"))
	if errors.Is(err, io.EOF) {
		return []byte{}, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	buf := newBoundedBuffer(maxBodySize)
	if _, err := io.Copy(buf, io.LimitReader(r, maxBodySize+1)); err != nil {
		return nil, false, err
	}
	if buf.Bytes() == nil {
		return []byte{}, false, nil
	}
	return buf.Bytes(), buf.Truncated(), nil
}

// decodeBody wraps body with the decoder for encoding.
func decodeBody(body io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return body, nil
	case "gzip", "x-gzip":
		return gzip.NewReader(body)
	case "br":
		return brotli.NewReader(body), nil
	case "deflate":
		return newDeflateReader(body)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}

// newDeflateReader accepts both zlib-wrapped and raw deflate streams; servers
// disagree on what "deflate" means.
func newDeflateReader(body io.Reader) (io.Reader, error) {
	br := bufio.NewReader(body)
	header, err := br.Peek(2)
	if len(header) == 0 && err != nil {
		return nil, err
	}
	if len(header) == 2 && isZlibHeader(header[0], header[1]) {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}

func isZlibHeader(cmf, flg byte) bool {
	return cmf&0x0f == 8 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}
