// Package crawl — bounded BFS queue with deduplication.
package crawl

// Queue is a BFS queue that remembers every URL it has accepted and stops
// accepting once it holds limit URLs.
type Queue struct {
	items []string
	seen  map[string]bool
	idx   int
	limit int
}

// NewQueue creates an empty Queue. limit <= 0 means unbounded.
func NewQueue(limit int) *Queue {
	return &Queue{
		seen:  make(map[string]bool),
		limit: limit,
	}
}

// Add enqueues url and reports whether it was accepted. Duplicates and
// URLs past the limit are rejected.
func (q *Queue) Add(url string) bool {
	if q.seen[url] || q.Full() {
		return false
	}
	q.seen[url] = true
	q.items = append(q.items, url)
	return true
}

// Full reports whether the queue has reached its limit.
func (q *Queue) Full() bool {
	return q.limit > 0 && len(q.items) >= q.limit
}

// HasNext returns true if there are unprocessed URLs.
func (q *Queue) HasNext() bool {
	return q.idx < len(q.items)
}

// Next returns the next unprocessed URL and advances the pointer.
func (q *Queue) Next() string {
	url := q.items[q.idx]
	q.idx++
	return url
}

// Len returns the number of accepted URLs.
func (q *Queue) Len() int {
	return len(q.items)
}

// All returns every accepted URL in BFS order.
func (q *Queue) All() []string {
	return q.items
}
