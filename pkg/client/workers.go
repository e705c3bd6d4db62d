package client

import (
	"sync"
	"time"
)

// workerGroup counts running subscription workers and lets callers wait
// for all of them to finish. Unlike sync.WaitGroup it tolerates add and
// wait racing, which happens when subscriptions are restored while an
// application goroutine sits in JoinAllSubscriptions.
type workerGroup struct {
	mu   sync.Mutex
	n    int
	idle chan struct{}
}

func newWorkerGroup() *workerGroup {
	idle := make(chan struct{})
	close(idle)
	return &workerGroup{idle: idle}
}

func (g *workerGroup) add() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.n == 0 {
		g.idle = make(chan struct{})
	}
	g.n++
}

func (g *workerGroup) done() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n--
	if g.n == 0 {
		close(g.idle)
	}
}

func (g *workerGroup) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}

// wait blocks until no workers are running.
func (g *workerGroup) wait() {
	for {
		g.mu.Lock()
		idle := g.idle
		g.mu.Unlock()

		<-idle

		// A restoration may have started new workers between the idle
		// signal and here; only return once the count is really zero.
		g.mu.Lock()
		n := g.n
		g.mu.Unlock()
		if n == 0 {
			return
		}
	}
}

// waitTimeout blocks until no workers are running or the timeout
// expires. Returns true if all workers finished.
func (g *workerGroup) waitTimeout(d time.Duration) bool {
	deadline := time.NewTimer(d)
	defer deadline.Stop()

	for {
		g.mu.Lock()
		idle := g.idle
		g.mu.Unlock()

		select {
		case <-idle:
		case <-deadline.C:
			return g.count() == 0
		}

		g.mu.Lock()
		n := g.n
		g.mu.Unlock()
		if n == 0 {
			return true
		}
	}
}
