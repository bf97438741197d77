package blob

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/require"
)

func params() map[string]any {
	return map[string]any{
		"W":      []any{[]any{0.5, -1.25}, []any{2.5, 0.75}},
		"b":      []any{1, 2, 3},
		"name":   "layer1",
		"frozen": false,
		"meta":   map[string]any{"epochs": 10, "lr": 0.01},
		"none":   nil,
	}
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{
		"weights.pkl", "weights.msgpack", "weights.mpk.gz", "weights.pkl.zst",
		"weights.json", "weights.yaml", "weights.yml.gz", "weights.gob", "weights.gob.zst",
	} {
		t.Run(name, func(t *testing.T) {
			r := require.New(t)
			dir := t.TempDir()
			p := filepath.Join(dir, name)
			dgst, err := Save(p, params())
			r.NoError(err)

			data, err := os.ReadFile(p)
			r.NoError(err)
			r.Equal(digest.FromBytes(data), dgst)

			l := &FileLoader{Dir: dir}
			v, err := l.Load(name)
			r.NoError(err)
			r.Equal(params(), v)

			v, err = l.Load(name + "@" + dgst.String())
			r.NoError(err)
			r.Equal(params(), v)
		})
	}
}

func TestDigestMismatch(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	_, err := Save(filepath.Join(dir, "x.pkl"), []any{1, 2})
	r.NoError(err)
	l := &FileLoader{Dir: dir}
	_, err = l.Load("x.pkl@" + digest.FromString("other").String())
	r.ErrorIs(err, ErrDigest)
	r.ErrorIs(err, ErrBlobLoad)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	r := require.New(t)
	r.NoError(os.WriteFile(filepath.Join(dir, "bad.pkl"), []byte{0xc1}, 0o644))
	r.NoError(os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644))
	r.NoError(os.WriteFile(filepath.Join(dir, "data.bin"), []byte("x"), 0o644))

	l := &FileLoader{Dir: dir}
	for _, loc := range []string{
		"missing.pkl",
		"bad.pkl",
		"bad.json",
		"data.bin",
		"",
		"x.pkl@sha256:short",
	} {
		_, err := l.Load(loc)
		r.ErrorIs(err, ErrBlobLoad, "locator %q", loc)
	}
}

func TestParseLocator(t *testing.T) {
	r := require.New(t)
	d := digest.FromString("hello")

	loc, err := ParseLocator(" a/b.pkl ")
	r.NoError(err)
	r.Equal(Locator{Path: "a/b.pkl"}, loc)

	loc, err = ParseLocator("a/b.pkl@" + d.String())
	r.NoError(err)
	r.Equal(Locator{Path: "a/b.pkl", Digest: d}, loc)
	r.Equal("a/b.pkl@"+d.String(), loc.String())

	loc, err = ParseLocator("user@host.pkl")
	r.NoError(err)
	r.Equal("user@host.pkl", loc.Path)

	_, err = ParseLocator("@" + d.String())
	r.ErrorIs(err, ErrLocator)
}

func TestEncodeDecode(t *testing.T) {
	r := require.New(t)
	var buf bytes.Buffer
	r.NoError(Encode(&buf, "stream.json.gz", map[string]any{"a": 1}))
	v, err := Decode(&buf, "stream.json.gz")
	r.NoError(err)
	r.Equal(map[string]any{"a": 1}, v)

	r.ErrorIs(Encode(&buf, "stream.txt", 1), ErrBlobSave)
	_, err = Decode(&buf, "stream.txt")
	r.ErrorIs(err, ErrUnknownFormat)
}

func TestJSONNumbers(t *testing.T) {
	r := require.New(t)
	v, err := Decode(strings.NewReader(`{"lr": 1e-3, "decay": 5E-1, "n": 12, "s": "1e-3"}`), "opt.json")
	r.NoError(err)
	r.Equal(map[string]any{"lr": 0.001, "decay": 0.5, "n": 12, "s": "1e-3"}, v)
}

type linesCodec struct{}

func (linesCodec) Encode(w io.Writer, v any) error {
	_, err := fmt.Fprintln(w, v)
	return err
}

func (linesCodec) Decode(r io.Reader) (any, error) {
	d, err := io.ReadAll(r)
	return strings.TrimSpace(string(d)), err
}

func TestRegisterCodec(t *testing.T) {
	r := require.New(t)
	RegisterCodec(".Lines", linesCodec{})
	r.Contains(Extensions(), ".lines")
	c, comp, err := CodecFor("x.lines.gz")
	r.NoError(err)
	r.Equal(Gzip, comp)
	r.IsType(linesCodec{}, c)

	p := filepath.Join(t.TempDir(), "x.lines.gz")
	_, err = Save(p, "hello")
	r.NoError(err)
	v, err := (&FileLoader{}).Load(p)
	r.NoError(err)
	r.Equal("hello", v)
}
