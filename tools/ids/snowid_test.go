package ids

import (
	"sync"
	"testing"
)

func TestGeneratorMonotonic(t *testing.T) {
	g := NewGenerator(7)
	g.now = func() int64 { return epoch + 1000 }

	prev := g.Next()
	for i := 0; i < 10000; i++ {
		id := g.Next()
		if id <= prev {
			t.Fatalf("id %d not greater than %d at step %d", id, prev, i)
		}
		prev = id
	}
}

func TestGeneratorClockBackwards(t *testing.T) {
	g := NewGenerator(1)
	ts := epoch + 5000
	g.now = func() int64 { return ts }
	a := g.Next()
	ts -= 100
	b := g.Next()
	if b <= a {
		t.Fatalf("expected monotonic ids across clock rollback: %d then %d", a, b)
	}
}

func TestGeneratorConcurrentUnique(t *testing.T) {
	g := NewGenerator(3)
	const workers, per = 8, 500

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*per)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				id := g.NextString()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(seen) != workers*per {
		t.Fatalf("got %d unique ids, want %d", len(seen), workers*per)
	}
}

func TestNewGeneratorClampsNode(t *testing.T) {
	if g := NewGenerator(5000); g.nodeID != 1 {
		t.Fatalf("nodeID = %d, want 1", g.nodeID)
	}
}
