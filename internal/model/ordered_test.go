package model

import (
	"slices"
	"testing"
)

func TestOrderedMapKeepsInsertionOrder(t *testing.T) {
	m := NewOrderedMap[int]()
	m.Set("zsh", 1)
	m.Set("node", 2)
	m.Set("go", 3)
	m.Set("zsh", 4) // update keeps position

	if got, want := m.Keys(), []string{"zsh", "node", "go"}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if got, want := m.SortedKeys(), []string{"go", "node", "zsh"}; !slices.Equal(got, want) {
		t.Errorf("SortedKeys() = %v, want %v", got, want)
	}
	if v, _ := m.Get("zsh"); v != 4 {
		t.Errorf("Get(zsh) = %d, want 4", v)
	}
}

func TestOrderedMapDelete(t *testing.T) {
	m := NewOrderedMap[string]()
	m.Set("a", "1")
	m.Set("b", "2")
	m.Set("c", "3")
	m.Delete("b")
	m.Delete("missing")

	if got, want := m.Keys(), []string{"a", "c"}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if m.Has("b") {
		t.Error("deleted key still present")
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestOrderedMapNilReceiver(t *testing.T) {
	var m *OrderedMap[string]

	if m.Len() != 0 {
		t.Error("nil map should have zero length")
	}
	if m.Keys() != nil {
		t.Error("nil map should have nil keys")
	}
	if _, ok := m.Get("x"); ok {
		t.Error("nil map should not find keys")
	}
	for range m.All() {
		t.Error("nil map should not yield entries")
	}
}

func TestOrderedMapAllStopsEarly(t *testing.T) {
	m := NewOrderedMap[int]()
	for i, k := range []string{"a", "b", "c"} {
		m.Set(k, i)
	}

	var seen []string
	for k := range m.All() {
		seen = append(seen, k)
		if k == "b" {
			break
		}
	}
	if !slices.Equal(seen, []string{"a", "b"}) {
		t.Errorf("seen = %v", seen)
	}
}
