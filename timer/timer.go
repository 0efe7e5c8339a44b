// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

// Task is one scheduled callback. A positive Interval re-arms it after every
// run; otherwise it fires once.
type Task struct {
	Execute  time.Time
	Interval time.Duration
	Callback func()
}

type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].Execute.Before(q[j].Execute)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *taskQueue) Push(x interface{}) {
	*q = append(*q, x.(*Task))
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	*q = old[0 : n-1]
	return task
}

// Manager runs scheduled tasks off a min-heap, polled every 100ms. The
// server uses it for the idle-session sweep and the room-gauge refresh.
type Manager struct {
	queue    taskQueue
	mutex    sync.Mutex
	trigger  chan *Task
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewManager() *Manager {
	manager := &Manager{
		queue:    make(taskQueue, 0),
		trigger:  make(chan *Task, 1000),
		stopChan: make(chan struct{}),
	}
	heap.Init(&manager.queue)
	go manager.process()
	return manager
}

// AddTimer schedules callback after delay; interval > 0 makes it periodic.
func (m *Manager) AddTimer(delay time.Duration, interval time.Duration, callback func()) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	heap.Push(&m.queue, &Task{
		Execute:  time.Now().Add(delay),
		Interval: interval,
		Callback: callback,
	})
}

// Stop shuts the scheduling loop down. Pending tasks never fire afterwards.
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
		case <-m.stopChan:
			return

		case <-ticker.C:
			m.mutex.Lock()
			now := time.Now()

			for m.queue.Len() > 0 {
				task := m.queue[0]
				if task.Execute.After(now) {
					break
				}

				heap.Pop(&m.queue)
				m.trigger <- task

				if task.Interval > 0 {
					task.Execute = now.Add(task.Interval)
					heap.Push(&m.queue, task)
				}
			}
			m.mutex.Unlock()

		case task := <-m.trigger:
			go task.Callback()
		}
	}
}
