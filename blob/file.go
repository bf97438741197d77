package blob

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"

	"github.com/signadot/objyaml/debug"
)

// FileLoader loads blobs from the local file system. Relative paths are
// taken relative to Dir, or to the working directory if Dir is empty.
type FileLoader struct {
	Dir string
}

var _ Loader = (*FileLoader)(nil)

func (l *FileLoader) path(p string) string {
	if filepath.IsAbs(p) || l == nil || l.Dir == "" {
		return p
	}
	return filepath.Join(l.Dir, p)
}

func (l *FileLoader) Load(locator string) (any, error) {
	loc, err := ParseLocator(locator)
	if err != nil {
		return nil, err
	}
	p := l.path(loc.Path)
	codec, comp, err := CodecFor(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBlobLoad, err)
	}
	d, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBlobLoad, err)
	}
	if loc.Digest != "" {
		if got := loc.Digest.Algorithm().FromBytes(d); got != loc.Digest {
			return nil, fmt.Errorf("%w: %s has %s, expected %s", ErrDigest, p, got, loc.Digest)
		}
	}
	if debug.Blob() {
		debug.Logf("loading %s (%d bytes, %T%s)\n", p, len(d), codec, comp)
	}
	v, err := decode(bytes.NewReader(d), codec, comp)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", ErrBlobLoad, p, err)
	}
	return v, nil
}

// Decode reads a value from r using the codec and compression implied by
// name.
func Decode(r io.Reader, name string) (any, error) {
	codec, comp, err := CodecFor(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBlobLoad, err)
	}
	v, err := decode(r, codec, comp)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", ErrBlobLoad, name, err)
	}
	return v, nil
}

func decode(r io.Reader, codec Codec, comp Compression) (v any, err error) {
	zr, err := comp.Reader(r)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, zr.Close())
	}()
	v, err = codec.Decode(zr)
	if err != nil {
		return nil, err
	}
	return Normalize(v), nil
}

// Encode writes v to w using the codec and compression implied by name.
func Encode(w io.Writer, name string, v any) error {
	codec, comp, err := CodecFor(name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBlobSave, err)
	}
	zw, err := comp.Writer(w)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBlobSave, err)
	}
	if err := codec.Encode(zw, v); err != nil {
		zw.Close()
		return fmt.Errorf("%w: encoding %s: %w", ErrBlobSave, name, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrBlobSave, err)
	}
	return nil
}

// Save writes v to path, replacing any existing file atomically, and
// returns the digest of the written bytes for pinning.
func Save(path string, v any) (digest.Digest, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, path, v); err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBlobSave, err)
	}
	tmp := f.Name()
	_, err = f.Write(buf.Bytes())
	err = errors.Join(err, f.Close())
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: %w", ErrBlobSave, err)
	}
	d := digest.FromBytes(buf.Bytes())
	if debug.Blob() {
		debug.Logf("saved %s as %s\n", path, d)
	}
	return d, nil
}

// Normalize converts decoded integers to int where they fit and leaves
// other values alone, descending into []any and map[string]any.
func Normalize(v any) any {
	switch x := v.(type) {
	case int64:
		if x >= math.MinInt && x <= math.MaxInt {
			return int(x)
		}
	case uint64:
		if x <= math.MaxInt {
			return int(x)
		}
	case int32:
		return int(x)
	case uint32:
		return int(x)
	case float32:
		return float64(x)
	case []any:
		for i := range x {
			x[i] = Normalize(x[i])
		}
	case map[string]any:
		for k := range x {
			x[k] = Normalize(x[k])
		}
	case map[any]any:
		res := make(map[string]any, len(x))
		for k, e := range x {
			res[fmt.Sprint(k)] = Normalize(e)
		}
		return res
	}
	return v
}
