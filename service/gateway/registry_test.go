package gateway

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func TestRegistryScenario(t *testing.T) {
	r := NewRegistry()
	r.Register("10.0.0.5")

	if !r.Contains("10.0.0.5") {
		t.Fatalf("expected 10.0.0.5 to be present")
	}
	if got := r.List(); !reflect.DeepEqual(got, []string{"10.0.0.5"}) {
		t.Fatalf("List = %v", got)
	}

	r.Deregister("10.0.0.5")
	if r.Contains("10.0.0.5") {
		t.Fatalf("expected 10.0.0.5 to be absent after deregister")
	}
}

func TestRegistryDeregisterAbsentIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Deregister("10.0.0.9")
	r.Deregister("10.0.0.9")
	if r.Len() != 0 {
		t.Fatalf("Len = %d", r.Len())
	}
}

func TestRegistryReferenceCounted(t *testing.T) {
	r := NewRegistry()
	r.Register("10.0.0.5")
	r.Register("10.0.0.5")

	r.Deregister("10.0.0.5")
	if !r.Contains("10.0.0.5") {
		t.Fatalf("second connection still live, identifier must stay registered")
	}
	if n := r.Connections("10.0.0.5"); n != 1 {
		t.Fatalf("Connections = %d", n)
	}
	r.Deregister("10.0.0.5")
	if r.Contains("10.0.0.5") {
		t.Fatalf("identifier must be gone once all connections closed")
	}
}

// List equals the identifiers with a net positive connect-disconnect count.
func TestRegistryNetCount(t *testing.T) {
	r := NewRegistry()
	ops := []struct {
		id      string
		connect bool
	}{
		{"a", true}, {"b", true}, {"a", true}, {"c", true},
		{"a", false}, {"b", false}, {"c", false}, {"c", false}, {"d", false},
	}
	for _, op := range ops {
		if op.connect {
			r.Register(op.id)
		} else {
			r.Deregister(op.id)
		}
	}
	if got := r.List(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("List = %v, want [a]", got)
	}
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("10.0.0.%d", i%8)
			r.Register(id)
			_ = r.List()
			_ = r.Contains(id)
			r.Deregister(id)
		}(i)
	}
	wg.Wait()
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %v", r.List())
	}
}
