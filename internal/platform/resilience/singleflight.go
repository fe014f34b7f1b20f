package resilience

import "sync"

// SingleFlight deduplicates concurrent calls for the same key.
type SingleFlight[T any] struct {
	mu    sync.Mutex
	calls map[string]*call[T]
}

type call[T any] struct {
	wg    sync.WaitGroup
	val   T
	err   error
	dups  int
	chans []chan<- Result[T]
}

// Result is what DoChan delivers.
type Result[T any] struct {
	Val    T
	Err    error
	Shared bool
}

// Do runs fn once per key among concurrent callers; shared reports whether
// the result came from another caller's run.
func (g *SingleFlight[T]) Do(key string, fn func() (T, error)) (val T, err error, shared bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*call[T])
	}

	if c, ok := g.calls[key]; ok {
		c.dups++
		g.mu.Unlock()
		c.wg.Wait()
		return c.val, c.err, true
	}

	c := &call[T]{}
	c.wg.Add(1)
	g.calls[key] = c
	g.mu.Unlock()

	g.run(c, key, fn)
	return c.val, c.err, false
}

// DoChan is Do without blocking: the result arrives on the returned channel,
// so a caller can stop waiting while the shared run carries on for the rest.
func (g *SingleFlight[T]) DoChan(key string, fn func() (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*call[T])
	}

	if c, ok := g.calls[key]; ok {
		c.dups++
		c.chans = append(c.chans, ch)
		g.mu.Unlock()
		return ch
	}

	c := &call[T]{chans: []chan<- Result[T]{ch}}
	c.wg.Add(1)
	g.calls[key] = c
	g.mu.Unlock()

	go g.run(c, key, fn)
	return ch
}

func (g *SingleFlight[T]) run(c *call[T], key string, fn func() (T, error)) {
	defer func() {
		g.mu.Lock()
		delete(g.calls, key)
		chans, shared := c.chans, c.dups > 0
		g.mu.Unlock()
		c.wg.Done()

		for _, ch := range chans {
			ch <- Result[T]{Val: c.val, Err: c.err, Shared: shared}
		}
	}()

	c.val, c.err = fn()
}
