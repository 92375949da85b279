package main

import "container/heap"

// scheduledTask is a callback due at a given match tick
type scheduledTask struct {
	due   uint64
	seq   uint64
	fn    func()
	index int
}

// taskQueue implements heap.Interface ordered by due tick, then insertion
type taskQueue []*scheduledTask

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*scheduledTask)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// Scheduler holds delayed callbacks for one match. It is not safe for
// concurrent use; the owning match goroutine drives it.
type Scheduler struct {
	queue taskQueue
	seq   uint64
}

// After schedules fn to run once the clock reaches now+delay
func (s *Scheduler) After(now, delay uint64, fn func()) {
	s.seq++
	heap.Push(&s.queue, &scheduledTask{due: now + delay, seq: s.seq, fn: fn})
}

// RunDue runs every task due at or before now, in order. Tasks scheduled
// by a running task for the same tick also run.
func (s *Scheduler) RunDue(now uint64) int {
	n := 0
	for len(s.queue) > 0 && s.queue[0].due <= now {
		t := heap.Pop(&s.queue).(*scheduledTask)
		t.fn()
		n++
	}
	return n
}

// Pending returns the number of queued tasks
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// Clear drops all queued tasks
func (s *Scheduler) Clear() {
	s.queue = nil
}
