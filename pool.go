package logging

import (
	"errors"
	"io"
	"sync"
	"time"
)

var errPoolClosed = errors.New("delivery pool is closed")
var errPoolFlushTimeout = errors.New("delivery pool flush timed out")

// poolWriter fans records out to a fixed set of delivery workers. Producers
// enqueue onto a bounded queue and block when it is full, so records are
// never dropped before delivery. With a single worker records reach the sink
// in order; with more workers cross-record order is not guaranteed.
type poolWriter struct {
	out     io.Writer
	queue   chan []byte
	workers sync.WaitGroup

	// writeMu serializes sink writes so multi-worker pools do not
	// interleave partial lines on the console or file writers.
	writeMu sync.Mutex

	mu     sync.RWMutex
	closed bool
}

func newPoolWriter(out io.Writer, workers int) *poolWriter {
	if workers < 1 {
		workers = 1
	}
	p := &poolWriter{
		out:   out,
		queue: make(chan []byte, defaultPoolBuffer),
	}
	for i := 0; i < workers; i++ {
		p.workers.Add(1)
		go p.deliver()
	}
	return p
}

func (p *poolWriter) deliver() {
	defer p.workers.Done()
	for record := range p.queue {
		p.writeMu.Lock()
		_, _ = p.out.Write(record)
		p.writeMu.Unlock()
	}
}

// Write enqueues one record for delivery. The record is copied before
// hand-off because zerolog reuses its event buffers.
func (p *poolWriter) Write(record []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, errPoolClosed
	}

	buf := make([]byte, len(record))
	copy(buf, record)
	p.queue <- buf
	return len(record), nil
}

// Close stops accepting records and waits for the workers to drain the
// queue. A zero timeout waits indefinitely.
func (p *poolWriter) Close(timeout time.Duration) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	if timeout <= 0 {
		p.workers.Wait()
		return nil
	}

	done := make(chan struct{})
	go func() {
		p.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return errPoolFlushTimeout
	}
}
