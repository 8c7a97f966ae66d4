package keymap

import (
	"errors"
	"testing"
)

func TestBindLookupRoundTrip(t *testing.T) {
	km := New()
	if err := km.Bind("a b", "inner"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	v, err := km.Lookup("a b")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if v != "inner" {
		t.Fatalf("Lookup(a b) = %v, want inner", v)
	}
}

func TestUnbindLeavesSubmap(t *testing.T) {
	km := New()
	if err := km.Bind("a b", "inner"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := km.Unbind("a b"); err != nil {
		t.Fatalf("Unbind: %v", err)
	}
	v, err := km.Lookup("a")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	sub, ok := v.(*Keymap)
	if !ok {
		t.Fatalf("Lookup(a) = %T, want *Keymap", v)
	}
	if sub.Len() != 0 {
		t.Fatalf("submap has %d entries, want 0", sub.Len())
	}
}

func TestBindThroughLeaf(t *testing.T) {
	km := New()
	if err := km.Bind("c", "leaf"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	err := km.Bind("c d", "deeper")
	if !errors.Is(err, ErrNotKeymap) {
		t.Fatalf("Bind(c d) err = %v, want ErrNotKeymap", err)
	}
}

func TestLookupMissing(t *testing.T) {
	km := New()
	v, err := km.Lookup("z")
	if err != nil || v != nil {
		t.Fatalf("Lookup(z) = %v, %v, want nil, nil", v, err)
	}
}

func TestBindUntypableIsNoop(t *testing.T) {
	km := New()
	if err := km.Bind("Hyper-x", "nothing"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if km.Len() != 0 {
		t.Fatalf("untypable binding materialized, Len = %d", km.Len())
	}
}

func TestCopyIsolatesSubmaps(t *testing.T) {
	km := New()
	if err := km.Bind("a b", "original"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	cp := km.Copy()
	if err := cp.Bind("a b", "rebound"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := cp.Bind("a c", "extra"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if v, _ := km.Lookup("a b"); v != "original" {
		t.Fatalf("prototype saw the copy's rebind: %v", v)
	}
	if v, _ := km.Lookup("a c"); v != nil {
		t.Fatalf("prototype saw the copy's new binding: %v", v)
	}
	if v, _ := cp.Lookup("a b"); v != "rebound" {
		t.Fatalf("copy lost its rebind: %v", v)
	}
}
