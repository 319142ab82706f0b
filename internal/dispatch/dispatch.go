// Package dispatch provides the app's scheduling model: a fixed-size worker
// pool for network operations and a single-consumer loop with UI affinity.
//
// Completions are delivered to the loop as closures over a channel. There is
// no cancellation and no ordering guarantee across operations; whichever
// completion the loop runs last wins.
package dispatch

import "sync"

// Pool executes submitted work on a fixed set of background goroutines.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool starts size workers.
func NewPool(size int) *Pool {
	p := &Pool{tasks: make(chan func(), 64)}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for fn := range p.tasks {
				fn()
			}
		}()
	}
	return p
}

// Submit queues fn for execution. Work submitted after Close is dropped.
func (p *Pool) Submit(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.tasks <- fn
}

// Close stops accepting work and waits for in-flight tasks to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}

// Loop is the single consumer permitted to mutate shared display state.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	wg    sync.WaitGroup
	stop  sync.Once
}

// NewLoop returns a stopped loop; call Start to begin consuming.
func NewLoop() *Loop {
	return &Loop{
		tasks: make(chan func(), 128),
		done:  make(chan struct{}),
	}
}

// Start launches the consumer goroutine.
func (l *Loop) Start() {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			select {
			case <-l.done:
				return
			case fn := <-l.tasks:
				fn()
			}
		}
	}()
}

// Post queues fn to run on the loop. Posts after Stop are dropped: a late
// completion whose owner is gone has nothing left to update.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
	case l.tasks <- fn:
	}
}

// Stop shuts the loop down and waits for the consumer to exit. Queued tasks
// that have not run yet are discarded.
func (l *Loop) Stop() {
	l.stop.Do(func() { close(l.done) })
	l.wg.Wait()
}
