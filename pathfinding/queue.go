package pathfinding

import "container/heap"

// searchItem is a frontier entry. The same region may be queued several
// times; stale entries are skipped once the region is frozen.
type searchItem struct {
	id        int
	cost      float64 // tentative distance from the source
	priority  float64 // ordering key: cost, or cost plus heuristic for A*
	heuristic float64 // estimated distance to the destination
	seq       uint64  // insertion order, breaks priority ties FIFO
	index     int     // index in the heap
}

// searchQueue is a priority queue of frontier entries.
type searchQueue struct {
	items []*searchItem
	next  uint64
}

func (q *searchQueue) Len() int { return len(q.items) }

func (q *searchQueue) Less(i, j int) bool {
	if q.items[i].priority != q.items[j].priority {
		return q.items[i].priority < q.items[j].priority
	}
	return q.items[i].seq < q.items[j].seq
}

func (q *searchQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

func (q *searchQueue) Push(x any) {
	item := x.(*searchItem)
	item.index = len(q.items)
	q.items = append(q.items, item)
}

func (q *searchQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.index = -1
	q.items = old[:n-1]
	return item
}

// push queues a region, stamping it with the next insertion sequence.
func (q *searchQueue) push(id int, cost, priority, h float64) {
	heap.Push(q, &searchItem{id: id, cost: cost, priority: priority, heuristic: h, seq: q.next})
	q.next++
}

func (q *searchQueue) pop() *searchItem {
	return heap.Pop(q).(*searchItem)
}
