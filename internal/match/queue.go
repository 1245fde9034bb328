// Package match holds the FIFO waiting list of unpaired connections.
package match

import "sync"

// Queue is the ordered waiting list. A connection ID appears at most once;
// pairing always consumes the two oldest entries. All methods are safe for
// concurrent use.
type Queue struct {
	mu      sync.Mutex
	ids     []string
	present map[string]struct{}
}

func NewQueue() *Queue {
	return &Queue{present: make(map[string]struct{})}
}

// Enqueue appends id to the tail. Returns false (no-op) when the id is
// already waiting.
func (q *Queue) Enqueue(id string) bool {
	if id == "" { return false }
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.present[id]; ok {
		return false
	}
	q.ids = append(q.ids, id)
	q.present[id] = struct{}{}
	return true
}

// DequeuePair atomically removes and returns the two oldest entries. ok is
// false when fewer than two connections are waiting.
func (q *Queue) DequeuePair() (a, b string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.ids) < 2 {
		return "", "", false
	}
	a, b = q.ids[0], q.ids[1]
	q.ids = q.ids[2:]
	delete(q.present, a)
	delete(q.present, b)
	return a, b, true
}

// Remove deletes id wherever it sits. Absent ids are a no-op.
func (q *Queue) Remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.present[id]; !ok {
		return
	}
	delete(q.present, id)
	for i, v := range q.ids {
		if v == id {
			q.ids = append(q.ids[:i], q.ids[i+1:]...)
			return
		}
	}
}

// Len reports the number of waiting connections.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ids)
}

// Waiting returns a snapshot of the queue in FIFO order.
func (q *Queue) Waiting() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.ids...)
}
