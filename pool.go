package dealcore

import (
	"sync"
	"sync/atomic"
)

// Pool is a bounded worker pool for background cache rebuilds. Submission
// never blocks: when the queue is full the task is dropped, on the premise
// that a dropped rebuild is re-triggered by the next stale read. Construct
// one per application (or per client) and inject it; there is no process-wide
// singleton.
type Pool struct {
	q      chan func()
	wg     sync.WaitGroup
	once   sync.Once
	closed atomic.Bool
}

func NewPool(workers, qlen int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 64
	}

	p := &Pool{q: make(chan func(), qlen)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for f := range p.q {
				f()
			}
		}()
	}
	return p
}

// TrySubmit enqueues f if a slot is free and reports whether it did.
// After Close it rejects everything. Submitters must still be quiesced
// before Close is called; a submit racing Close may panic.
func (p *Pool) TrySubmit(f func()) bool {
	if p.closed.Load() {
		return false
	}
	select {
	case p.q <- f:
		return true
	default: // drop
		return false
	}
}

// Close drains the queue and waits for in-flight tasks. Idempotent.
func (p *Pool) Close() {
	p.once.Do(func() {
		p.closed.Store(true)
		close(p.q)
		p.wg.Wait()
	})
}
