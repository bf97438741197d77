package blob

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec serializes values of one format.
type Codec interface {
	Encode(w io.Writer, v any) error
	Decode(r io.Reader) (any, error)
}

var (
	mu     sync.RWMutex
	codecs = map[string]Codec{}
)

func init() {
	mp := MsgpackCodec{}
	RegisterCodec(".pkl", mp)
	RegisterCodec(".msgpack", mp)
	RegisterCodec(".mpk", mp)
	RegisterCodec(".json", JSONCodec{})
	RegisterCodec(".yaml", YAMLCodec{})
	RegisterCodec(".yml", YAMLCodec{})
	RegisterCodec(".gob", GobCodec{})
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// RegisterCodec associates a file extension, including its leading dot,
// with c. A later registration replaces an earlier one.
func RegisterCodec(ext string, c Codec) {
	mu.Lock()
	defer mu.Unlock()
	codecs[strings.ToLower(ext)] = c
}

// Extensions returns the extensions which have a codec, sorted.
func Extensions() []string {
	mu.RLock()
	defer mu.RUnlock()
	res := make([]string, 0, len(codecs))
	for k := range codecs {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

// CodecFor returns the codec and compression for path.
func CodecFor(path string) (Codec, Compression, error) {
	comp, rest := compressionOf(path)
	ext := strings.ToLower(filepath.Ext(rest))
	mu.RLock()
	c, ok := codecs[ext]
	mu.RUnlock()
	if !ok {
		return nil, comp, fmt.Errorf("%w %s (extension %q)", ErrUnknownFormat, path, ext)
	}
	return c, comp, nil
}

// MsgpackCodec decodes maps as map[string]any and integers as int64 or
// uint64.
type MsgpackCodec struct{}

func (MsgpackCodec) Encode(w io.Writer, v any) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	return enc.Encode(v)
}

func (MsgpackCodec) Decode(r io.Reader) (any, error) {
	dec := msgpack.NewDecoder(r)
	dec.UseLooseInterfaceDecoding(true)
	dec.SetMapDecoder(func(d *msgpack.Decoder) (any, error) {
		return d.DecodeMap()
	})
	return dec.DecodeInterface()
}

// JSONCodec decodes integral numbers as int64 and other numbers, including
// exponent forms without a dot such as 1e-3, as float64.
type JSONCodec struct{}

func (JSONCodec) Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (JSONCodec) Decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return normalizeJSON(v), nil
}

// normalizeJSON turns json.Number into int64 when integral, float64
// otherwise.
func normalizeJSON(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case []any:
		for i := range x {
			x[i] = normalizeJSON(x[i])
		}
	case map[string]any:
		for k := range x {
			x[k] = normalizeJSON(x[k])
		}
	}
	return v
}

type YAMLCodec struct{}

func (YAMLCodec) Encode(w io.Writer, v any) error {
	return yaml.NewEncoder(w).Encode(v)
}

func (YAMLCodec) Decode(r io.Reader) (any, error) {
	d, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var v any
	if err := yaml.Unmarshal(d, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// GobCodec handles gob streams. Concrete types stored behind interfaces
// must be registered with gob.Register.
type GobCodec struct{}

func (GobCodec) Encode(w io.Writer, v any) error {
	return gob.NewEncoder(w).Encode(&v)
}

func (GobCodec) Decode(r io.Reader) (any, error) {
	var v any
	if err := gob.NewDecoder(r).Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
