package construct

import (
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type corruptor struct {
	Level float64 `objyaml:"corruption_level,required"`
}

type autoencoder struct {
	Nvis       int
	Nhid       int
	ActEnc     string `yaml:"act_enc"`
	Corruptor  *corruptor
	Tied       bool
	Layers     []int
	Extra      map[string]float64
	Timeout    time.Duration
	Addr       netip.Addr
	Ignored    string `json:"-"`
	initCalled bool
}

func (a *autoencoder) SetDefaults() {
	a.Nhid = 500
}

func (a *autoencoder) Init() error {
	if a.Nvis < 0 {
		return errors.New("nvis must be positive")
	}
	a.initCalled = true
	return nil
}

func TestStruct(t *testing.T) {
	shared := &corruptor{Level: 0.5}
	res, err := Call(Struct[autoencoder](), Args{
		"nvis":      784,
		"act_enc":   "tanh",
		"corruptor": shared,
		"Tied":      true,
		"layers":    []any{1, int64(2), 3.0},
		"extra":     map[string]any{"a": 1, "b": 0.5},
		"timeout":   "1m30s",
		"addr":      "10.0.0.1",
	})
	if err != nil {
		t.Fatal(err)
	}
	ae := res.(*autoencoder)
	if ae.Corruptor != shared {
		t.Errorf("corruptor was copied")
	}
	want := autoencoder{
		Nvis:       784,
		Nhid:       500,
		ActEnc:     "tanh",
		Corruptor:  shared,
		Tied:       true,
		Layers:     []int{1, 2, 3},
		Extra:      map[string]float64{"a": 1, "b": 0.5},
		Timeout:    90 * time.Second,
		Addr:       netip.MustParseAddr("10.0.0.1"),
		initCalled: true,
	}
	addrEq := cmp.Comparer(func(a, b netip.Addr) bool { return a == b })
	if diff := cmp.Diff(want, *ae, cmp.AllowUnexported(autoencoder{}), addrEq); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestStructNested(t *testing.T) {
	res, err := Call(Struct[autoencoder](), Args{
		"corruptor": map[string]any{"corruption_level": 0.1},
		"timeout":   2,
	})
	if err != nil {
		t.Fatal(err)
	}
	ae := res.(*autoencoder)
	if ae.Corruptor == nil || ae.Corruptor.Level != 0.1 {
		t.Errorf("corruptor: %+v", ae.Corruptor)
	}
	if ae.Timeout != 2*time.Second {
		t.Errorf("timeout: %s", ae.Timeout)
	}
}

func TestStructErrors(t *testing.T) {
	tests := []struct {
		name string
		args Args
		e    error
	}{
		{"unknown", Args{"nvis": 1, "nope": 2}, ErrUnknownArgument},
		{"ignored field", Args{"ignored": "x"}, ErrUnknownArgument},
		{"type", Args{"nvis": "many"}, ErrArgument},
		{"fraction", Args{"nvis": 1.5}, ErrArgument},
		{"null int", Args{"nvis": nil}, ErrArgument},
		{"missing required", Args{"corruptor": map[string]any{}}, ErrMissingArgument},
		{"bad duration", Args{"timeout": "soon"}, ErrArgument},
		{"bad addr", Args{"addr": "nowhere"}, ErrArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Call(Struct[autoencoder](), tt.args)
			if !errors.Is(err, tt.e) {
				t.Errorf("got %v, expected %v", err, tt.e)
			}
		})
	}
	_, err := Call(Struct[autoencoder](), Args{"nvis": -1})
	if err == nil || errors.Is(err, ErrArgument) {
		t.Errorf("expected the Init error, got %v", err)
	}
	if _, err := Call(Struct[autoencoder](AllowUnknown()), Args{"nope": 1}); err != nil {
		t.Errorf("AllowUnknown: %v", err)
	}
}

type config struct {
	Rate  float64
	Steps int
}

type model struct {
	cfg config
}

func TestCall(t *testing.T) {
	counter := 0
	tests := []struct {
		name   string
		target any
		args   Args
		want   any
	}{
		{"func args", func(a Args) (any, error) { return len(a), nil }, Args{"x": 1}, 1},
		{"func map", func(m map[string]any) (any, error) { return m["x"], nil }, Args{"x": 2}, 2},
		{"constructor", Func(func(a Args) (any, error) { return "ok", nil }), nil, "ok"},
		{"zero args", func() int { counter++; return counter }, nil, 1},
		{"zero args with error", func() (string, error) { return "v", nil }, Args{}, "v"},
		{"struct param", func(c config) *model { return &model{cfg: c} }, Args{"rate": 0.5, "steps": 10}, &model{cfg: config{Rate: 0.5, Steps: 10}}},
		{"struct pointer param", func(c *config) (float64, error) { return c.Rate, nil }, Args{"rate": 0.25}, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Call(tt.target, tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(model{})); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestCallErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name   string
		target any
		args   Args
		e      error
	}{
		{"nil", nil, nil, ErrNotCallable},
		{"value", 3, nil, ErrNotCallable},
		{"positional", func(x float64) float64 { return x }, nil, ErrNotCallable},
		{"no result", func() {}, nil, ErrNotCallable},
		{"zero args given args", func() int { return 1 }, Args{"x": 1}, ErrUnknownArgument},
		{"error result", func(a Args) (any, error) { return nil, boom }, nil, boom},
		{"reflected error", func() (int, error) { return 0, boom }, nil, boom},
		{"panic", func(a Args) (any, error) { panic("kaboom") }, nil, ErrPanic},
		{"panic error", func() int { panic(boom) }, nil, boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Call(tt.target, tt.args)
			if !errors.Is(err, tt.e) {
				t.Errorf("got %v, expected %v", err, tt.e)
			}
		})
	}
	if Callable(3) || !Callable(func() int { return 1 }) || !Callable(Struct[config]()) {
		t.Errorf("Callable")
	}
}

func TestSnake(t *testing.T) {
	for in, want := range map[string]string{
		"BatchSize":  "batch_size",
		"NHid":       "n_hid",
		"Nvis":       "nvis",
		"HTTPServer": "http_server",
		"Layer2Size": "layer2_size",
	} {
		if got := Snake(in); got != want {
			t.Errorf("Snake(%q) = %q, want %q", in, got, want)
		}
	}
}
