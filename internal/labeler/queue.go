package labeler

import (
	"container/heap"

	"github.com/fast-trips/fast-trips-core/internal/netmodel"
)

// queueEntry is one priority-queue item: a candidate hyperlink cost for a
// stop. seq is a monotonically increasing push counter that breaks ties
// in FIFO order, giving the deterministic search its bit-reproducible
// ordering guarantee (spec §5).
type queueEntry struct {
	cost float64
	stop netmodel.StopID
	seq  uint64
}

type priorityQueue []queueEntry

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].cost != pq[j].cost {
		return pq[i].cost < pq[j].cost
	}
	return pq[i].seq < pq[j].seq
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any)   { *pq = append(*pq, x.(queueEntry)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// labelQueue wraps priorityQueue with push-sequence bookkeeping so callers
// never need to think about heap mechanics directly.
type labelQueue struct {
	pq      priorityQueue
	nextSeq uint64
}

func newLabelQueue() *labelQueue {
	q := &labelQueue{}
	heap.Init(&q.pq)
	return q
}

func (q *labelQueue) push(cost float64, stop netmodel.StopID) {
	heap.Push(&q.pq, queueEntry{cost: cost, stop: stop, seq: q.nextSeq})
	q.nextSeq++
}

func (q *labelQueue) empty() bool { return q.pq.Len() == 0 }

func (q *labelQueue) pop() (cost float64, stop netmodel.StopID) {
	e := heap.Pop(&q.pq).(queueEntry)
	return e.cost, e.stop
}
