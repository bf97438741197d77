// Package blob loads externally serialized values referenced from
// documents.
//
// A locator names a file and optionally pins its content:
//
//	weights.pkl
//	params/layer1.msgpack.zst@sha256:4f2a...
//
// The codec is chosen by the file extension after removing a compression
// suffix (.gz or .zst).
package blob

import (
	_ "crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"
)

var (
	ErrBlobLoad = errors.New("blob load error")
	ErrBlobSave = errors.New("blob save error")

	ErrLocator       = fmt.Errorf("%w: invalid locator", ErrBlobLoad)
	ErrDigest        = fmt.Errorf("%w: digest mismatch", ErrBlobLoad)
	ErrUnknownFormat = errors.New("no codec for file")
)

// Loader resolves a locator to a value.
type Loader interface {
	Load(locator string) (any, error)
}

type LoaderFunc func(locator string) (any, error)

func (f LoaderFunc) Load(locator string) (any, error) { return f(locator) }

// Locator is a parsed resource locator.
type Locator struct {
	Path   string
	Digest digest.Digest
}

func (l Locator) String() string {
	if l.Digest == "" {
		return l.Path
	}
	return l.Path + "@" + l.Digest.String()
}

// ParseLocator splits "path[@algorithm:hex]". An '@' not followed by a
// valid digest is part of the path.
func ParseLocator(s string) (Locator, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Locator{}, fmt.Errorf("%w: empty", ErrLocator)
	}
	i := strings.LastIndexByte(s, '@')
	if i == -1 {
		return Locator{Path: s}, nil
	}
	d := digest.Digest(s[i+1:])
	if !strings.Contains(string(d), ":") {
		return Locator{Path: s}, nil
	}
	if err := d.Validate(); err != nil {
		return Locator{}, fmt.Errorf("%w %q: %w", ErrLocator, s, err)
	}
	if i == 0 {
		return Locator{}, fmt.Errorf("%w: no path in %q", ErrLocator, s)
	}
	return Locator{Path: s[:i], Digest: d}, nil
}
