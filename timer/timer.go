// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

// Task is one scheduled callback. A positive Interval reschedules it after
// every run.
type Task struct {
	ID       int64
	Execute  time.Time
	Interval time.Duration
	Callback func()
	index    int
}

type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].Execute.Before(q[j].Execute)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	n := len(*q)
	task := x.(*Task)
	task.index = n
	*q = append(*q, task)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	task.index = -1
	*q = old[0 : n-1]
	return task
}

// Manager runs scheduled tasks off a single heap-driven loop.
type Manager struct {
	queue    taskQueue
	mutex    sync.Mutex
	nextID   int64
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewManager() *Manager {
	m := &Manager{
		queue:    make(taskQueue, 0),
		nextID:   1,
		stopChan: make(chan struct{}),
	}
	heap.Init(&m.queue)
	go m.process()
	return m
}

// Schedule registers a callback to run after delay, then every interval if
// interval is positive. Returns the task ID for cancellation.
func (m *Manager) Schedule(delay time.Duration, interval time.Duration, callback func()) int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	task := &Task{
		ID:       m.nextID,
		Execute:  time.Now().Add(delay),
		Interval: interval,
		Callback: callback,
	}
	m.nextID++

	heap.Push(&m.queue, task)
	return task.ID
}

// Cancel removes a scheduled task.
func (m *Manager) Cancel(taskID int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, task := range m.queue {
		if task.ID == taskID {
			heap.Remove(&m.queue, i)
			break
		}
	}
}

// Stop shuts the scheduling loop down.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

func (m *Manager) process() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, task := range m.due(time.Now()) {
				go task.Callback()
			}
		case <-m.stopChan:
			return
		}
	}
}

// due pops every task scheduled at or before now, rescheduling the periodic
// ones.
func (m *Manager) due(now time.Time) []*Task {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var ready []*Task
	for m.queue.Len() > 0 {
		task := m.queue[0]
		if task.Execute.After(now) {
			break
		}
		heap.Pop(&m.queue)
		ready = append(ready, task)

		if task.Interval > 0 {
			task.Execute = now.Add(task.Interval)
			heap.Push(&m.queue, task)
		}
	}
	return ready
}
