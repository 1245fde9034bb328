package match

import (
	"fmt"
	"sync"
	"testing"
)

func TestFIFOOrder(t *testing.T) {
	q := NewQueue()
	for _, id := range []string{"a", "b", "c", "d"} {
		if !q.Enqueue(id) { t.Fatalf("enqueue %s rejected", id) }
	}
	a, b, ok := q.DequeuePair()
	if !ok || a != "a" || b != "b" { t.Fatalf("first pair = %s,%s ok=%v", a, b, ok) }
	a, b, ok = q.DequeuePair()
	if !ok || a != "c" || b != "d" { t.Fatalf("second pair = %s,%s ok=%v", a, b, ok) }
	if _, _, ok := q.DequeuePair(); ok { t.Fatal("pair from empty queue") }
}

func TestEnqueueIdempotent(t *testing.T) {
	q := NewQueue()
	if !q.Enqueue("a") { t.Fatal("first enqueue rejected") }
	if q.Enqueue("a") { t.Fatal("duplicate enqueue accepted") }
	if q.Len() != 1 { t.Fatalf("len = %d", q.Len()) }
	if q.Enqueue("") { t.Fatal("empty id accepted") }
}

func TestSingleEntryStaysQueued(t *testing.T) {
	q := NewQueue()
	q.Enqueue("a")
	if _, _, ok := q.DequeuePair(); ok { t.Fatal("paired a lone entry") }
	if q.Len() != 1 { t.Fatalf("len = %d", q.Len()) }
}

func TestRemove(t *testing.T) {
	q := NewQueue()
	q.Enqueue("a")
	q.Enqueue("b")
	q.Enqueue("c")
	q.Remove("b")
	q.Remove("missing") // no-op
	got := q.Waiting()
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("waiting = %v", got)
	}
	// removed id can re-enter
	if !q.Enqueue("b") { t.Fatal("re-enqueue after remove rejected") }
}

func TestConcurrentEnqueueDrain(t *testing.T) {
	q := NewQueue()
	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q.Enqueue(fmt.Sprintf("c%03d", i))
		}(i)
	}
	wg.Wait()
	seen := make(map[string]bool)
	pairs := 0
	for {
		a, b, ok := q.DequeuePair()
		if !ok { break }
		if seen[a] || seen[b] { t.Fatalf("duplicate dequeue: %s %s", a, b) }
		seen[a], seen[b] = true, true
		pairs++
	}
	if pairs != n/2 { t.Fatalf("pairs = %d", pairs) }
	if q.Len() != 0 { t.Fatalf("leftover = %d", q.Len()) }
}
