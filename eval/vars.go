package eval

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/signadot/objyaml/debug"
)

var ErrUndefinedVar = errors.New("undefined variable")

// LookupFunc returns the value of a variable and whether it is set.
type LookupFunc func(name string) (string, bool)

// Lookup looks names up in environ, then in the process environment.
func Lookup(environ Env) LookupFunc {
	return func(name string) (string, bool) {
		if v, ok := environ[name]; ok {
			return anyToString(v), true
		}
		return os.LookupEnv(name)
	}
}

// ExpandVars replaces ${NAME} and ${NAME:-default} references. "$${" is a
// literal "${". A reference to an unset variable without a default is an
// error matching ErrUndefinedVar.
func ExpandVars(s string, lookup LookupFunc) (string, error) {
	if !strings.Contains(s, "${") {
		return s, nil
	}
	var b strings.Builder
	for {
		i := strings.Index(s, "${")
		if i == -1 {
			b.WriteString(s)
			break
		}
		if i > 0 && s[i-1] == '$' {
			b.WriteString(s[:i])
			b.WriteString("{")
			s = s[i+2:]
			continue
		}
		j := strings.IndexByte(s[i:], '}')
		if j == -1 {
			return "", fmt.Errorf("unterminated reference in %q", s)
		}
		ref := s[i+2 : i+j]
		name, def, hasDef := strings.Cut(ref, ":-")
		if !validName(name) {
			return "", fmt.Errorf("invalid variable name %q", name)
		}
		v, ok := lookup(name)
		switch {
		case ok:
		case hasDef:
			v = def
		default:
			return "", fmt.Errorf("%w %s", ErrUndefinedVar, name)
		}
		if debug.Expand() {
			debug.Logf("${%s} expanded to %q\n", name, v)
		}
		b.WriteString(s[:i])
		b.WriteString(v)
		s = s[i+j+1:]
	}
	return b.String(), nil
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
