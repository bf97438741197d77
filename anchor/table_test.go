package anchor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type dataset struct{ name string }

func TestTableIdentity(t *testing.T) {
	tab := New()
	ds := &dataset{name: "mnist"}
	if err := tab.Begin("ds"); err != nil {
		t.Fatal(err)
	}
	if err := tab.Register("ds", ds); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		v, err := tab.Lookup("ds")
		if err != nil {
			t.Fatal(err)
		}
		if v.(*dataset) != ds {
			t.Fatalf("lookup %d returned a different instance", i)
		}
	}
}

func TestTableErrors(t *testing.T) {
	tab := New()
	if _, err := tab.Lookup("missing"); !errors.Is(err, ErrUndefinedAnchor) {
		t.Errorf("expected undefined anchor, got %v", err)
	}

	if err := tab.Begin("outer"); err != nil {
		t.Fatal(err)
	}
	_, err := tab.Lookup("outer")
	if !errors.Is(err, ErrAnchorCycle) {
		t.Errorf("expected cycle, got %v", err)
	}
	if !errors.Is(err, ErrUndefinedAnchor) {
		t.Errorf("cycle should also be an undefined anchor: %v", err)
	}
	if err := tab.Begin("outer"); !errors.Is(err, ErrDuplicateAnchor) {
		t.Errorf("expected duplicate on Begin, got %v", err)
	}
	if err := tab.Register("outer", 1); err != nil {
		t.Fatal(err)
	}
	if err := tab.Register("outer", 2); !errors.Is(err, ErrDuplicateAnchor) {
		t.Errorf("expected duplicate on Register, got %v", err)
	}
	if err := tab.Register("direct", nil); err != nil {
		t.Fatal(err)
	}
	v, err := tab.Lookup("direct")
	if err != nil || v != nil {
		t.Errorf("got (%v, %v)", v, err)
	}
	if diff := cmp.Diff([]string{"outer", "direct"}, tab.Names()); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
}
