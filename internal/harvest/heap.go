package harvest

import "container/heap"

// jobHeap is a min-heap of jobs ordered by ReadyAt, ties broken by job ID.
type jobHeap []*Job

func (h jobHeap) Len() int {
	return len(h)
}

func (h jobHeap) Less(i, j int) bool {
	if h[i].ReadyAt.Equal(h[j].ReadyAt) {
		return h[i].ID < h[j].ID
	}
	return h[i].ReadyAt.Before(h[j].ReadyAt)
}

func (h jobHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *jobHeap) Push(x any) {
	*h = append(*h, x.(*Job))
}

func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	job := old[n-1]
	old[n-1] = nil // Avoid memory leak
	*h = old[0 : n-1]
	return job
}

// Peek returns the job that becomes ready soonest, or nil if empty.
func (h *jobHeap) Peek() *Job {
	if len(*h) == 0 {
		return nil
	}
	return (*h)[0]
}

func newJobHeap() *jobHeap {
	h := &jobHeap{}
	heap.Init(h)
	return h
}
