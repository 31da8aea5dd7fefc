package methodchannel

import (
	"container/list"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Executor runs posted work on some execution context.
type Executor interface {
	Post(fn func())
}

// Inline runs work immediately on the posting goroutine.
type Inline struct{}

func (Inline) Post(fn func()) { fn() }

// SerialQueue runs posted work one item at a time, in FIFO order, on a
// single goroutine. It plays the role of the caller's main queue: results
// hop back onto it after background work completes.
type SerialQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  *list.List
	closed bool
	done   chan struct{}
}

// NewSerialQueue starts the queue goroutine.
func NewSerialQueue() *SerialQueue {
	q := &SerialQueue{
		tasks: list.New(),
		done:  make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.loop()
	return q
}

// Post enqueues fn. After Close, fn runs inline so a pending caller is
// never left without an answer.
func (q *SerialQueue) Post(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		fn()
		return
	}
	q.tasks.PushBack(fn)
	q.mu.Unlock()
	q.cond.Signal()
}

func (q *SerialQueue) loop() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for q.tasks.Len() == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.tasks.Len() == 0 {
			q.mu.Unlock()
			return
		}
		front := q.tasks.Front()
		q.tasks.Remove(front)
		q.mu.Unlock()

		front.Value.(func())()
	}
}

// Close stops accepting work and waits for queued work to finish.
func (q *SerialQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
	<-q.done
}

// WorkerPool runs posted work on background goroutines. At most size
// drainer goroutines exist at once; work posted while all of them are busy
// waits in a FIFO queue. Post never blocks.
type WorkerPool struct {
	sem   *semaphore.Weighted
	mu    sync.Mutex
	tasks *list.List
	wg    sync.WaitGroup
}

// NewWorkerPool returns a pool running at most size tasks concurrently.
func NewWorkerPool(size int) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{sem: semaphore.NewWeighted(int64(size)), tasks: list.New()}
}

// Post queues fn and starts a drainer if the pool has a free slot.
func (p *WorkerPool) Post(fn func()) {
	p.wg.Add(1)

	p.mu.Lock()
	p.tasks.PushBack(fn)
	spawn := p.sem.TryAcquire(1)
	p.mu.Unlock()

	if spawn {
		go p.drain()
	}
}

// drain runs queued work until the queue is empty. The slot is released
// under mu so a concurrent Post either sees the slot free or its task is
// picked up here.
func (p *WorkerPool) drain() {
	for {
		p.mu.Lock()
		front := p.tasks.Front()
		if front == nil {
			p.sem.Release(1)
			p.mu.Unlock()
			return
		}
		p.tasks.Remove(front)
		p.mu.Unlock()

		p.run(front.Value.(func()))
	}
}

func (p *WorkerPool) run(fn func()) {
	defer p.wg.Done()
	fn()
}

// Wait blocks until all posted work has finished.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}
