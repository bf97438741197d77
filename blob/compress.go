package blob

import (
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression is a compression method identified by a file suffix.
type Compression string

const (
	None Compression = ""
	Gzip Compression = ".gz"
	Zstd Compression = ".zst"
)

func compressionOf(path string) (Compression, string) {
	for _, c := range []Compression{Gzip, Zstd} {
		if strings.HasSuffix(strings.ToLower(path), string(c)) {
			return c, path[:len(path)-len(c)]
		}
	}
	return None, path
}

// Reader decompresses r.
func (c Compression) Reader(r io.Reader) (io.ReadCloser, error) {
	switch c {
	case Gzip:
		return gzip.NewReader(r)
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	}
	return io.NopCloser(r), nil
}

// Writer compresses into w. Closing the result does not close w.
func (c Compression) Writer(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		return zstd.NewWriter(w)
	}
	return nopWriteCloser{w}, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
